package clubs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func clubRows() *sqlmock.Rows {
	return sqlmock.NewRows(clubColumns)
}

func TestPGRepoReplaceAllRunsInTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM clubs").WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`INSERT INTO clubs \(name,acronym,.*\) VALUES \(\$1,.*\),\(\$11,`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.ReplaceAll(context.Background(), []Club{
		{Name: "Launchpad", Acronym: "LP"},
		{Name: ""},
		{Name: "Blueprint"},
		{Name: "Launchpad"},
	})
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 clubs stored, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoReplaceAllRollsBackOnInsertError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM clubs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO clubs").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	if _, err := repo.ReplaceAll(context.Background(), []Club{{Name: "Launchpad"}}); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByName(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT name, acronym, .* FROM clubs WHERE name = \$1 LIMIT 1`).
		WithArgs("Launchpad").
		WillReturnRows(clubRows().AddRow("Launchpad", "LP", "ML", "", "", "High", "", "", "", ""))

	club, err := repo.GetByName(context.Background(), "Launchpad")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if club.Acronym != "LP" || club.FreshmanFriendliness != "High" {
		t.Fatalf("unexpected club: %+v", club)
	}

	mock.ExpectQuery(`FROM clubs WHERE name = \$1`).
		WithArgs("Nope").
		WillReturnRows(clubRows())

	if _, err := repo.GetByName(context.Background(), "Nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSearchEscapesPattern(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM clubs WHERE \(name ILIKE \$1 OR acronym ILIKE \$2 OR primary_focus ILIKE \$3\) ORDER BY name`).
		WithArgs(`%100\%%`, `%100\%%`, `%100\%%`).
		WillReturnRows(clubRows().AddRow("Hundred Percent", "", "", "", "", "", "", "", "", ""))

	clubs, err := repo.Search(context.Background(), " 100% ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(clubs) != 1 || clubs[0].Name != "Hundred Percent" {
		t.Fatalf("unexpected clubs: %+v", clubs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoStats(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE freshman_friendliness ILIKE '%high%'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "high"}).AddRow(12, 5))

	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats != (Stats{Total: 12, HighFreshmanFriendly: 5}) {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPGFavoritesAddReportsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	favs := &PGFavorites{DB: db}

	mock.ExpectExec("INSERT INTO club_favorites").
		WithArgs("u1", "Launchpad").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO club_favorites").
		WithArgs("u1", "Launchpad").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT club_name\s+FROM club_favorites`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"club_name"}).AddRow("Launchpad"))

	added, err := favs.Add(context.Background(), "u1", "Launchpad")
	if err != nil || !added {
		t.Fatalf("first Add: added=%v err=%v", added, err)
	}
	added, err = favs.Add(context.Background(), "u1", "Launchpad")
	if err != nil || added {
		t.Fatalf("second Add: added=%v err=%v", added, err)
	}
	names, err := favs.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "Launchpad" {
		t.Fatalf("unexpected favorites: %v", names)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

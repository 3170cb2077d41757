package clubs

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var clubColumns = []string{
	"name",
	"acronym",
	"primary_focus",
	"typical_activities",
	"typical_recruitment",
	"freshman_friendliness",
	"notes_for_freshmen",
	"how_to_join",
	"website",
	"application_link",
}

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// ReplaceAll deletes every club and inserts the given ones in a single transaction.
func (r *PGRepo) ReplaceAll(ctx context.Context, clubs []Club) (n int, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM clubs`); err != nil {
		return 0, fmt.Errorf("clear clubs: %w", err)
	}

	insert := psql.Insert("clubs").Columns(clubColumns...)
	seen := make(map[string]struct{}, len(clubs))
	for _, c := range clubs {
		if c.Name == "" {
			continue
		}
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		insert = insert.Values(
			c.Name,
			c.Acronym,
			c.PrimaryFocus,
			c.TypicalActivities,
			c.TypicalRecruitment,
			c.FreshmanFriendliness,
			c.NotesForFreshmen,
			c.HowToJoin,
			c.Website,
			c.ApplicationLink,
		)
	}
	if len(seen) > 0 {
		query, args, buildErr := insert.ToSql()
		if buildErr != nil {
			return 0, buildErr
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert clubs: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return len(seen), nil
}

func (r *PGRepo) List(ctx context.Context) ([]Club, error) {
	return r.selectClubs(ctx, nil)
}

func (r *PGRepo) GetByName(ctx context.Context, name string) (Club, error) {
	query, args, err := psql.Select(clubColumns...).From("clubs").Where(sq.Eq{"name": name}).Limit(1).ToSql()
	if err != nil {
		return Club{}, err
	}
	var club Club
	if err := sqlscan.Get(ctx, r.DB, &club, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return Club{}, ErrNotFound
		}
		return Club{}, err
	}
	return club, nil
}

func (r *PGRepo) Search(ctx context.Context, term string) ([]Club, error) {
	pattern := likePattern(term)
	return r.selectClubs(ctx, sq.Or{
		sq.ILike{"name": pattern},
		sq.ILike{"acronym": pattern},
		sq.ILike{"primary_focus": pattern},
	})
}

func (r *PGRepo) ByFriendliness(ctx context.Context, level string) ([]Club, error) {
	return r.selectClubs(ctx, sq.ILike{"freshman_friendliness": likePattern(level)})
}

func (r *PGRepo) Stats(ctx context.Context) (Stats, error) {
	const query = `
SELECT
    COUNT(*),
    COUNT(*) FILTER (WHERE freshman_friendliness ILIKE '%high%')
FROM clubs`
	var stats Stats
	if err := r.DB.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.HighFreshmanFriendly); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (r *PGRepo) selectClubs(ctx context.Context, where sq.Sqlizer) ([]Club, error) {
	builder := psql.Select(clubColumns...).From("clubs").OrderBy("name")
	if where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	out := []Club{}
	if err := sqlscan.Select(ctx, r.DB, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}

// PGFavorites implements FavoritesRepo using Postgres.
type PGFavorites struct {
	DB *sql.DB
}

func (f *PGFavorites) List(ctx context.Context, userID string) ([]string, error) {
	const query = `
SELECT club_name
FROM club_favorites
WHERE user_id = $1
ORDER BY created_at ASC, club_name ASC`
	names := []string{}
	if err := sqlscan.Select(ctx, f.DB, &names, query, userID); err != nil {
		return nil, err
	}
	return names, nil
}

func (f *PGFavorites) Add(ctx context.Context, userID, clubName string) (bool, error) {
	const query = `
INSERT INTO club_favorites (user_id, club_name)
VALUES ($1, $2)
ON CONFLICT (user_id, club_name) DO NOTHING`
	res, err := f.DB.ExecContext(ctx, query, userID, clubName)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (f *PGFavorites) Remove(ctx context.Context, userID, clubName string) (bool, error) {
	const query = `DELETE FROM club_favorites WHERE user_id = $1 AND club_name = $2`
	res, err := f.DB.ExecContext(ctx, query, userID, clubName)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

var (
	_ Repo          = (*PGRepo)(nil)
	_ FavoritesRepo = (*PGFavorites)(nil)
)

//go:build integration

package analyses

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/25eliu/ClubApp/internal/shared/storage/db"
)

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error
)

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "clubapp",
				"POSTGRES_PASSWORD": "clubapp",
				"POSTGRES_DB":       "clubapp",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}
	return fmt.Sprintf("postgres://clubapp:clubapp@%s:%s/clubapp?sslmode=disable", host, port.Port()), nil
}

func setupPG(t *testing.T) *sql.DB {
	t.Helper()
	pgOnce.Do(func() { pgDSN, pgErr = startPostgres() })
	if pgErr != nil {
		t.Fatalf("postgres: %v", pgErr)
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, pgDSN, db.DefaultMigrateOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(ctx, database))

	_, err = database.ExecContext(ctx, "TRUNCATE resume_analyses")
	require.NoError(t, err)
	return database
}

func TestPGRepoRoundTrip(t *testing.T) {
	database := setupPG(t)
	clk := newClock(t0)
	repo := &PGRepo{DB: database, Now: clk.Now}
	ctx := context.Background()

	id, err := repo.Save(ctx, "r1", "Launchpad", sampleResult(40))
	require.NoError(t, err)
	clk.Set(t0.Add(time.Hour))
	again, err := repo.Save(ctx, "r1", "Launchpad", sampleResult(88))
	require.NoError(t, err)
	assert.Equal(t, id, again)

	rec, err := repo.Get(ctx, "r1", "Launchpad")
	require.NoError(t, err)
	assert.Equal(t, 88, rec.MatchScore)
	assert.Equal(t, []string{"n"}, rec.NetworkingStrategy)
	assert.True(t, rec.AnalyzedAt.Equal(t0.Add(time.Hour)))

	_, err = repo.Get(ctx, "r1", "Blueprint")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoAggregates(t *testing.T) {
	database := setupPG(t)
	clk := newClock(t0)
	repo := &PGRepo{DB: database, Now: clk.Now}
	ctx := context.Background()

	clk.Set(t0.Add(-10 * 24 * time.Hour))
	_, err := repo.Save(ctx, "r1", "Zeta", sampleResult(90))
	require.NoError(t, err)
	clk.Set(t0)
	for _, s := range []struct {
		resume, club string
		score        int
	}{
		{"r1", "Alpha", 90},
		{"r2", "Beta", 60},
		{"r3", "Beta", 80},
	} {
		_, err := repo.Save(ctx, s.resume, s.club, sampleResult(s.score))
		require.NoError(t, err)
	}

	stats, err := repo.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalCount)
	assert.Equal(t, 3, stats.UniqueResumes)
	assert.Equal(t, 3, stats.RecentCount)
	require.Len(t, stats.TopClubs, 3)
	assert.Equal(t, "Alpha", stats.TopClubs[0].ClubName)
	assert.Equal(t, "Zeta", stats.TopClubs[1].ClubName)
	assert.InDelta(t, 70.0, stats.TopClubs[2].AverageScore, 1e-9)

	summary, err := repo.ClubSummary(ctx, "Beta")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 80, summary.HighestScore)
	assert.Equal(t, 60, summary.LowestScore)

	removed, err := repo.CleanupOlderThan(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	recent, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	ok, err := repo.DeleteForResume(ctx, "r2")
	require.NoError(t, err)
	assert.True(t, ok)
}

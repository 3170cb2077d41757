package main

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/25eliu/ClubApp/internal/analyses"
	"github.com/25eliu/ClubApp/internal/clubs"
	"github.com/25eliu/ClubApp/internal/llm"
	"github.com/25eliu/ClubApp/internal/shared/config"
	"github.com/25eliu/ClubApp/internal/shared/storage/db"
	"github.com/25eliu/ClubApp/internal/shared/telemetry"
)

var (
	databaseURL string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "clubctl",
	Short:         "Maintain the club directory and stored analyses",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return errors.Wrap(telemetry.Setup(false, logLevel), "logger setup")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")
}

// env bundles the config and an open, migrated database for one command.
type env struct {
	cfg config.Config
	db  *sql.DB
}

func openEnv(ctx context.Context) (*env, error) {
	cfg := config.Load()
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	return &env{cfg: cfg, db: sqlDB}, nil
}

func (e *env) Close() { _ = e.db.Close() }

func (e *env) clubs() *clubs.Service {
	return &clubs.Service{Repo: &clubs.PGRepo{DB: e.db}, Favorites: &clubs.PGFavorites{DB: e.db}}
}

func (e *env) analyses(client llm.Client) *analyses.Service {
	return &analyses.Service{Repo: &analyses.PGRepo{DB: e.db}, LLM: client}
}

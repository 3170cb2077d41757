package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/25eliu/ClubApp/internal/analyses"
	"github.com/25eliu/ClubApp/internal/clubs"
	"github.com/25eliu/ClubApp/internal/llm"
	"github.com/25eliu/ClubApp/internal/llm/providers"
	"github.com/25eliu/ClubApp/internal/resumes"
	"github.com/25eliu/ClubApp/internal/services/health"
	"github.com/25eliu/ClubApp/internal/shared/config"
	"github.com/25eliu/ClubApp/internal/shared/server"
	"github.com/25eliu/ClubApp/internal/shared/server/middleware"
	"github.com/25eliu/ClubApp/internal/shared/storage/db"
	"github.com/25eliu/ClubApp/internal/shared/storage/object"
	localstore "github.com/25eliu/ClubApp/internal/shared/storage/object/local"
	s3store "github.com/25eliu/ClubApp/internal/shared/storage/object/s3"
	"github.com/25eliu/ClubApp/internal/shared/telemetry"
)

const analyzeRateGroup = "ANALYZE"

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	LLM    llm.Client

	ClubsService    *clubs.Service
	ResumesService  *resumes.Service
	AnalysesService *analyses.Service
}

// Build connects storage, wires services and handlers, and seeds the club
// directory when it is empty.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		LLM:    providers.New(ctx, cfg.LLMSettings()),
	}
	buildServices(app)

	if _, err := app.ClubsService.SeedIfEmpty(ctx, cfg.ClubsFile); err != nil {
		telemetry.Warn("bootstrap.clubs_seed_failed", map[string]any{
			"path":  cfg.ClubsFile,
			"error": err,
		})
	}

	throttle := middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: analyzeRateGroup,
		Rules: map[string]middleware.RateLimitRule{
			analyzeRateGroup: middleware.PerMinute(cfg.AnalyzeRatePerMin, cfg.AnalyzeBurst),
		},
	})
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Health:          health.NewService(pinger(sqlDB)),
		ClubHandler:     clubs.NewHandler(app.ClubsService),
		ResumeHandler:   resumes.NewHandler(app.ResumesService),
		AnalysisHandler: analyses.NewHandler(app.AnalysesService, app.ResumesService, app.ClubsService, throttle),
	})
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildServices(app *App) {
	var (
		clubRepo     clubs.Repo
		favRepo      clubs.FavoritesRepo
		resumeRepo   resumes.Repo
		analysisRepo analyses.Repo
	)
	if app.DB != nil {
		clubRepo = &clubs.PGRepo{DB: app.DB}
		favRepo = &clubs.PGFavorites{DB: app.DB}
		resumeRepo = &resumes.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		clubRepo = clubs.NewMemoryRepo()
		favRepo = clubs.NewMemoryFavorites()
		resumeRepo = resumes.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
	}

	app.ClubsService = &clubs.Service{Repo: clubRepo, Favorites: favRepo}
	app.AnalysesService = &analyses.Service{Repo: analysisRepo, LLM: app.LLM}
	app.ResumesService = &resumes.Service{
		Store:    app.Store,
		Repo:     resumeRepo,
		Analyses: app.AnalysesService,
	}
}

// buildDB connects and migrates Postgres. Outside production a missing or
// unreachable database falls back to in-memory repositories.
func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		if err = db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			err = fmt.Errorf("run migrations: %w", err)
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

// pinger avoids handing health a typed-nil *sql.DB.
func pinger(sqlDB *sql.DB) health.Pinger {
	if sqlDB == nil {
		return nil
	}
	return sqlDB
}

package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mlowery/tasktrack-api/internal/config"
	"github.com/mlowery/tasktrack-api/internal/platform/memcache"
	"github.com/mlowery/tasktrack-api/internal/platform/postgres"
	"github.com/mlowery/tasktrack-api/internal/platform/rediscache"
	"github.com/mlowery/tasktrack-api/internal/service"
	"github.com/mlowery/tasktrack-api/internal/service/auth"
	"github.com/mlowery/tasktrack-api/internal/store"
)

// application bundles the wired dependencies: configuration, database,
// stores, cache and services.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	taskService  *service.TaskService
	tagService   *service.TagService
	statsService *service.StatsService
	authService  *auth.AuthService
	jwtService   auth.JWTService
}

// newApplication connects the database, selects the cache backend and
// wires the store and service graph.
func newApplication(cfg *config.Config, logg *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, logg)
	if err != nil {
		return nil, err
	}

	app := &application{
		config: cfg,
		logger: logg,
		db:     db,
	}

	// Redis when configured, otherwise the in-process cache. Both sit
	// behind the same interface; only the stats service uses it.
	var cache store.Cache
	if cfg.Cache.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		cache = rediscache.New(app.redis)
		logg.Info("using redis statistics cache", "addr", cfg.Cache.RedisAddr)
	} else {
		cache = memcache.New()
		logg.Info("using in-process statistics cache")
	}

	taskStore := postgres.NewPostgresTaskStore(db, logg)
	tagStore := postgres.NewPostgresTagStore(db, logg)
	userStore := postgres.NewPostgresUserStore(db, logg, cfg.Auth.BcryptCost)
	statsStore := postgres.NewPostgresStatsStore(db, logg)

	app.statsService = service.NewStatsService(statsStore, cache, logg)
	app.taskService = service.NewTaskService(db, taskStore, app.statsService, logg)
	app.tagService = service.NewTagService(tagStore, logg)

	app.jwtService = auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	app.authService = auth.NewAuthService(userStore, auth.BcryptVerifier{}, app.jwtService, logg)

	return app, nil
}

// Close releases the application's connections.
func (app *application) Close() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn("failed to close redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn("failed to close database", "error", err)
		}
	}
}

// healthCheck pings the database so the health endpoint reflects real
// readiness, not just process liveness.
func (app *application) healthCheck() error {
	if err := app.db.Ping(); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// Package main implements the entry point for the task tracking API
// server: task lifecycle, tags, filtered listing and per-user
// statistics behind a JWT-authenticated HTTP API.
package main

import (
	"context"
	"log"

	"github.com/mlowery/tasktrack-api/internal/config"
	"github.com/mlowery/tasktrack-api/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logg := logger.Setup(cfg.Server.LogLevel)
	logg.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"redis_enabled", cfg.Cache.RedisAddr != "")

	app, err := newApplication(cfg, logg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer app.Close()

	if err := app.runMigrations(); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	if err := app.startHTTPServer(context.Background(), app.setupRouter()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

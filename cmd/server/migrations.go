package main

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// runMigrations applies any pending schema migrations at startup.
func (app *application) runMigrations() error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}

	if err := goose.Up(app.db, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	app.logger.Info("migrations applied")
	return nil
}

//go:build integration

// Package testdb provides helpers for database-backed integration
// tests: locating the test database, migrating its schema, and running
// each test inside a transaction that is always rolled back.
//
// Tests using this package skip themselves when no test database URL is
// set, so the integration suite is a no-op on machines without Postgres.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pressly/goose/v3"
)

// Environment variables checked, in order, for the test database URL.
var urlEnvVars = []string{"TASKTRACK_TEST_DATABASE_URL", "DATABASE_URL"}

var (
	migrateOnce sync.Once
	migrateErr  error
)

// GetTestDB opens a connection to the test database and ensures its
// schema is migrated. The test is skipped when no database URL is set.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := testDatabaseURL()
	if dbURL == "" {
		t.Skip("no test database URL set, skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("pinging test database: %v", err)
	}

	migrateOnce.Do(func() { migrateErr = migrate(db) })
	if migrateErr != nil {
		t.Fatalf("migrating test database: %v", migrateErr)
	}

	return db
}

func testDatabaseURL() string {
	for _, name := range urlEnvVars {
		if url := os.Getenv(name); url != "" {
			return url
		}
	}
	return ""
}

func migrate(db *sql.DB) error {
	dir, err := migrationsDir()
	if err != nil {
		return err
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, dir)
}

// migrationsDir walks up from the working directory to the module root,
// marked by go.mod, and returns the server's migrations directory. Test
// binaries run with their package directory as the working directory, so
// the root is always some number of levels up.
func migrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "cmd", "server", "migrations"), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("module root not found above %q", dir)
		}
		dir = parent
	}
}

// WithTx runs fn inside a transaction that is always rolled back after
// fn returns, so rows seeded by one test never leak into another.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("beginning test transaction: %v", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			t.Logf("warning: failed to roll back test transaction: %v", rbErr)
		}
	}()

	fn(t, tx)
}

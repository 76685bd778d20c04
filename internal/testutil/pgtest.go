// Package testutil provides helpers shared by the PostgreSQL integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/epeers/bankruptcy/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewEphemeralDB connects to PG_URL with search_path pinned to a fresh schema
// that is dropped when the test ends. The test is skipped if PG_URL is unset.
func NewEphemeralDB(t *testing.T) *database.DB {
	t.Helper()

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		t.Skip("PG_URL environment variable not set, skipping integration test")
	}
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	schema := fmt.Sprintf("test_ratios_%d", time.Now().UnixNano())
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		admin.Close()
		t.Fatalf("failed to create schema %s: %v", schema, err)
	}

	cfg, err := pgxpool.ParseConfig(pgURL)
	if err != nil {
		t.Fatalf("failed to parse PG_URL: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	db, err := database.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect to schema %s: %v", schema, err)
	}

	t.Cleanup(func() {
		db.Close()
		admin.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+schema+" CASCADE")
		admin.Close()
	})

	return db
}

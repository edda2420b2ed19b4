package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const gameSchema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	state TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// ConnectSQLite opens the SQLite database at dbPath and makes sure the games
// table exists.
func ConnectSQLite(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Every connection to :memory: is its own database.
	if dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory") {
		pool.SetMaxOpenConns(1)
	}

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	if _, err := pool.ExecContext(ctx, gameSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create games table: %w", err)
	}

	slog.InfoContext(ctx, "SQLite connection initialized and schema verified", "sqlite.path", dbPath)
	return pool, nil
}

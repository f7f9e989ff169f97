// Package sqlite implements the repository contracts on top of SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

// Repository stores the price baseline and chat subscriptions in a SQLite database.
type Repository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewRepository opens (or creates) the database at storagePath and migrates the schema.
func NewRepository(ctx context.Context, log *slog.Logger, storagePath string) (*Repository, error) {
	dtb, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", storagePath))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err = dtb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("unable to establish connection to database: %w", err)
	}

	if err = initSchema(ctx, dtb); err != nil {
		return nil, fmt.Errorf("DB schema initialization error: %w", err)
	}

	return &Repository{db: dtb, log: log}, nil
}

// NewForTest wraps an existing connection without migrating it.
func NewForTest(db *sql.DB) *Repository {
	return &Repository{db: db, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// initSchema creates the necessary tables if they don't already exist.
func initSchema(ctx context.Context, dtb *sql.DB) error {
	const migrationQuery = `
	CREATE TABLE IF NOT EXISTS page_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		page_hash TEXT NOT NULL,
		source_id TEXT NOT NULL,
		source_url TEXT NOT NULL,
		captured_at TEXT NOT NULL,
		update_time_label TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS buyback (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		label TEXT NOT NULL,
		sell_price INTEGER NOT NULL,
		buy_price INTEGER,
		formatted_sell_price TEXT NOT NULL,
		formatted_buy_price TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS price_records (
		position INTEGER PRIMARY KEY,
		weight REAL NOT NULL,
		unweighted INTEGER NOT NULL DEFAULT 0,
		label TEXT NOT NULL,
		sell_price INTEGER NOT NULL,
		buy_price INTEGER,
		formatted_sell_price TEXT NOT NULL,
		formatted_buy_price TEXT NOT NULL DEFAULT '',
		price_per_unit INTEGER NOT NULL,
		formatted_price_per_unit TEXT NOT NULL DEFAULT '',
		origin_strategy TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS subscriptions (
		chat_id INTEGER PRIMARY KEY NOT NULL
	);
	`
	_, err := dtb.ExecContext(ctx, migrationQuery)
	if err != nil {
		return fmt.Errorf("failed to execute migration query: %w", err)
	}

	return nil
}

// Close closes the connection to the database.
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		r.log.Error("failed to close the database", "op", "repository.sqlite.Close", "error", err)
		return fmt.Errorf("failed to close the database: %w", err)
	}

	return nil
}

// DB is a getter for database handler.
func (r *Repository) DB() *sql.DB {
	return r.db
}

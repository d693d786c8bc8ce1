package datastore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection and provides methods for interacting
// with subscriptions and monitoring history.
type DB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewDB initializes a new DB connection and ensures the schema is set up.
func NewDB(dataSourceName string, logger zerolog.Logger) (*DB, error) {
	logger = logger.With().Str("component", "Datastore").Logger()
	logger.Info().Str("db_path", dataSourceName).Msg("Initializing database connection")

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}

	// modernc sqlite works best with a single writer connection.
	dbInstance.SetMaxOpenConns(1)

	db := &DB{
		db:     dbInstance,
		logger: logger,
	}

	if err := db.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Info().Str("path", dataSourceName).Msg("Database initialized and schema verified")
	return db, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// InitSchema creates the application tables if they don't already exist.
func (d *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS subscriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		gift_name TEXT NOT NULL,
		model TEXT,
		background TEXT,
		pattern TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS monitoring_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subscription_id INTEGER NOT NULL,
		count INTEGER NOT NULL,
		has_changed BOOLEAN NOT NULL DEFAULT 0,
		checked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (subscription_id) REFERENCES subscriptions (id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_subscriptions_user_id ON subscriptions (user_id);
	CREATE INDEX IF NOT EXISTS idx_subscriptions_active ON subscriptions (is_active);
	CREATE INDEX IF NOT EXISTS idx_history_subscription_id ON monitoring_history (subscription_id);
	CREATE INDEX IF NOT EXISTS idx_history_checked_at ON monitoring_history (checked_at);
	`
	if _, err := d.db.Exec(query); err != nil {
		d.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}

	// Cascade deletes from subscriptions into history rows.
	if _, err := d.db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return err
	}

	d.logger.Debug().Msg("Schema initialized (subscriptions and monitoring_history tables ensured)")
	return nil
}

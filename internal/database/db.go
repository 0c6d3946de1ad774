// Package database provides SQLite-backed persistence for WatchHive.
// Schema changes are applied through embedded goose migrations on open.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

var ErrDatabasePathRequired = errors.New("database path not provided")

// Config holds database connection settings.
type Config struct {
	DatabasePath string
}

// DB wraps the SQLite connection pool.
type DB struct {
	conn *sql.DB
}

// NewDB opens (creating if necessary) the SQLite database at the
// configured path and runs pending migrations.
func NewDB(cfg Config) (*DB, error) {
	if cfg.DatabasePath == "" {
		return nil, ErrDatabasePathRequired
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	// Foreign keys drive the account-deletion cascades; busy timeout keeps
	// concurrent request handlers from failing fast on writer contention.
	dsn := cfg.DatabasePath + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// SQLite allows a single writer; serializing through one connection
	// avoids SQLITE_BUSY races between handlers.
	conn.SetMaxOpenConns(1)

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func migrate(conn *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Connection exposes the underlying pool for repositories.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

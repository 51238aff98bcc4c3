package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// DB wraps a sql.DB connection to the ledger database file.
type DB struct {
	path string
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	db := &DB{path: path}
	if err := db.open(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *DB) open() error {
	if !db.InMemory() {
		if dir := filepath.Dir(db.path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create db directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", db.dsn())
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}

	// One session, one connection. This also keeps ":memory:" a single database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return err
	}

	db.conn = conn
	return nil
}

// dsn adds the pragmas every pooled connection must run with.
func (db *DB) dsn() string {
	sep := "?"
	if strings.Contains(db.path, "?") {
		sep = "&"
	}
	return db.path + sep + "_pragma=foreign_keys(1)"
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// InMemory reports whether the database lives only in memory.
func (db *DB) InMemory() bool {
	return db.path == ":memory:" || strings.Contains(db.path, "mode=memory")
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	err := db.conn.Close()
	db.conn = nil
	return err
}

// Reopen opens a fresh connection to the same path, closing any current one.
// Components holding db keep working after it returns.
func (db *DB) Reopen(ctx context.Context) error {
	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.open()
}

func (db *DB) handle() (*sql.DB, error) {
	if db.conn == nil {
		return nil, errors.New("database is closed")
	}
	return db.conn, nil
}

// Package sqlite implements storage.Store on an embedded SQLite database
// using sqlx over the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ashita-ai/knapsack/internal/storage"
)

const defaultBusyTimeout = 5 * time.Second

// Store wraps a pooled sqlx.DB connection to the SQLite file.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path. The special path
// ":memory:" opens a private in-memory database limited to one connection.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage: sqlite path required")
	}

	dsn, maxConns := ":memory:", 1
	if path != ":memory:" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("storage: resolve sqlite path: %w", err)
		}
		dsn, maxConns = "file:"+abs, 4
	}
	dsn += fmt.Sprintf("?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		defaultBusyTimeout.Milliseconds())

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	if maxConns == 1 {
		// An in-memory database lives only as long as its connection.
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultBusyTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping sqlite: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// DB exposes the underlying sqlx.DB.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	return s.db.Close()
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var sqlErr *moderncsqlite.Error
	return errors.As(err, &sqlErr) && sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// Package store persists enrollments and reminder run history in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrInvalidStatus is returned for payment statuses outside PaymentStatuses.
	ErrInvalidStatus = errors.New("invalid payment status")
)

// Store wraps a Postgres handle.
type Store struct{ db *sql.DB }

// New creates a Store over an open database.
func New(db *sql.DB) *Store { return &Store{db: db} }

// Open connects to dsn with the postgres driver and pings it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// DB exposes the underlying handle for health checks and locks.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		tx.Rollback()
		return fmt.Errorf("apply schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

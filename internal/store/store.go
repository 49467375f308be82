package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Sentinel errors surfaced by the store.
var (
	// ErrNotFound is returned by point queries when no row matches.
	ErrNotFound = errors.New("store: not found")

	// ErrIntegrityViolation is returned when an insert would break the
	// same-file invariant between a callable and its owning type. This
	// indicates a defect in extraction, so callers abort the whole run.
	ErrIntegrityViolation = errors.New("store: integrity violation")
)

// Store is the relational persistence layer over SQLite.
// Writes go through a Tx so a populate run commits atomically or not at all.
type Store struct {
	db     *sql.DB
	ownsDB bool // true if we opened the connection, false if shared
}

// Open opens (or creates) the analysis database at dbPath and ensures the
// schema exists. Foreign keys are enabled for relational integrity.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys (must be set for each connection)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, ownsDB: true}, nil
}

// NewWithDB creates a Store using an existing database connection.
// The caller is responsible for the connection lifecycle, including
// enabling foreign keys and creating the schema.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db, ownsDB: false}
}

// Close closes the database connection if owned by this store.
func (s *Store) Close() error {
	if !s.ownsDB {
		return nil
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Begin starts a write transaction. All inserts for one analysis run
// happen inside a single Tx so a mid-run failure leaves the previous
// run's data intact.
func (s *Store) Begin() (*Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Tx wraps one write transaction over the four entity tables.
type Tx struct {
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Safe to call after Commit.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

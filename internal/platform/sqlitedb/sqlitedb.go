// Package sqlitedb opens the embedded SQLite record store and shares one
// connection between repositories and transactions.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Schema mirrors the Postgres tables. Dates are stored as RFC 3339 text.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS patient (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		ssn        TEXT NOT NULL,
		email      TEXT NOT NULL,
		city       TEXT NOT NULL,
		street     TEXT NOT NULL,
		state      TEXT NOT NULL,
		postal     TEXT NOT NULL,
		age        INTEGER,
		height     REAL,
		weight     REAL,
		insurance  TEXT NOT NULL,
		gender     TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS patient_email_key ON patient (email)`,
	`CREATE TABLE IF NOT EXISTS encounter (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		patient_id      INTEGER NOT NULL,
		notes           TEXT,
		visit_code      TEXT NOT NULL,
		provider        TEXT NOT NULL,
		billing_code    TEXT NOT NULL,
		icd10           TEXT NOT NULL,
		total_cost      REAL,
		copay           REAL,
		chief_complaint TEXT NOT NULL,
		pulse           INTEGER,
		systolic        INTEGER,
		diastolic       INTEGER,
		date            TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS encounter_patient_id_idx ON encounter (patient_id)`,
}

// Open opens the database at path, creating parent directories, and
// applies Schema. SQLite allows a single writer, so the pool is capped at
// one connection.
func Open(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		path = "patients.db"
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	d := &DB{db: sqlDB}
	if err := d.EnsureSchema(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return d, nil
}

// DB wraps *sql.DB with context-scoped transactions.
type DB struct {
	db *sql.DB
}

func (d *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error { return d.db.PingContext(ctx) }

func (d *DB) Close() error { return d.db.Close() }

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// Conn returns the transaction bound to ctx by WithinTx, or the database.
func (d *DB) Conn(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return d.db
}

// WithinTx implements store.Transactor. Nested calls reuse the outer
// transaction.
func (d *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

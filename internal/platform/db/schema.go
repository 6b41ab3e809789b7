package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the patient and encounter tables. Statements are
// idempotent so it can run on every start.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS patient (
		id         BIGSERIAL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		ssn        TEXT NOT NULL,
		email      TEXT NOT NULL,
		city       TEXT NOT NULL,
		street     TEXT NOT NULL,
		state      TEXT NOT NULL,
		postal     TEXT NOT NULL,
		age        INTEGER,
		height     DOUBLE PRECISION,
		weight     DOUBLE PRECISION,
		insurance  TEXT NOT NULL,
		gender     TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS patient_email_key ON patient (email)`,
	`CREATE TABLE IF NOT EXISTS encounter (
		id              BIGSERIAL PRIMARY KEY,
		patient_id      BIGINT NOT NULL,
		notes           TEXT,
		visit_code      TEXT NOT NULL,
		provider        TEXT NOT NULL,
		billing_code    TEXT NOT NULL,
		icd10           TEXT NOT NULL,
		total_cost      DOUBLE PRECISION,
		copay           DOUBLE PRECISION,
		chief_complaint TEXT NOT NULL,
		pulse           INTEGER,
		systolic        INTEGER,
		diastolic       INTEGER,
		date            TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS encounter_patient_id_idx ON encounter (patient_id)`,
}

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range Schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Execer is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SyncSequence moves the id sequence of table past its largest id, which
// keeps generated ids clear of rows inserted with explicit ids.
func SyncSequence(ctx context.Context, q Execer, table string) error {
	_, err := q.Exec(ctx, fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), GREATEST((SELECT MAX(id) FROM %[1]s), 1))`, table))
	return err
}

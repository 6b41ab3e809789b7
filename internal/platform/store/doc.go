// Package store holds the pieces shared by every record store adapter:
// sentinel errors, the in-memory table used by the memory backend, the
// query-by-example SQL builder used by the Postgres and SQLite backends,
// and the Transactor seam used for guarded multi-step operations.
//
// Adapters live next to their domain (patient/repo_pg.go and friends);
// this package knows nothing about patients or encounters.
package store

package store

import "errors"

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("store: record not found")

	// ErrDuplicateValue is returned when a write violates a unique column.
	ErrDuplicateValue = errors.New("store: duplicate value for unique field")
)

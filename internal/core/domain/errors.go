package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Lookups surface it when an identifier matches neither a substance nor an alias.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyDataset indicates an upstream fetch produced no records.
	// The cache keeps its previous value rather than swapping in an empty one.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrMalformedRecord indicates a single upstream record is missing expected fields.
	// Only the affected record is skipped.
	ErrMalformedRecord = errors.New("malformed upstream record")

	// ErrSourceUnavailable indicates a source client is not configured.
	ErrSourceUnavailable = errors.New("source unavailable")
)

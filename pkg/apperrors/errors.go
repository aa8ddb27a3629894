package apperrors

import "errors"

var (
	// ErrMalformedDocument marks a raw document that cannot be flattened
	// (missing id or id is not an integer). The transformer skips the
	// document and continues the batch.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoSnapshot is returned when no landed JSON snapshot exists for an
	// entity in the raw data directory.
	ErrNoSnapshot = errors.New("no snapshot found")

	// ErrQualityFailed signals that at least one hard quality check reported
	// FAIL. The CLI maps it to a nonzero exit code.
	ErrQualityFailed = errors.New("data quality validation failed")
)

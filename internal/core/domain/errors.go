package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Bundle Errors.

	// ErrBundleNotFound indicates the bundle file does not exist.
	ErrBundleNotFound = errors.New("bundle not found")

	// ErrBundleInvalid indicates the bundle exists but its contents are inconsistent
	// (unknown schema version, vector length mismatch, misaligned fields).
	ErrBundleInvalid = errors.New("bundle invalid")

	// ErrUnsupportedMetric indicates the bundle names a distance metric this build cannot compute.
	ErrUnsupportedMetric = errors.New("unsupported metric")

	// Recommendation Errors.

	// ErrInsufficientListings indicates the reference table holds fewer listings
	// than the number of neighbours requested.
	ErrInsufficientListings = errors.New("insufficient listings")

	// ErrFallbackUnavailable indicates the keyword fallback was needed but no
	// listings CSV is configured.
	ErrFallbackUnavailable = errors.New("fallback recommender unavailable")
)

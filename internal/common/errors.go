// Package common defines shared constants and sentinel errors used across
// macroledger components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors.
	ErrInvalidDate = errors.New("invalid date, want YYYY-MM-DD")

	// Transport-level errors.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// Session errors. An absent session is an expected state, not a failure:
	// store methods treat it as a guarded no-op.
	ErrNoSession    = errors.New("no active session")
	ErrTokenExpired = errors.New("token expired")

	// Sync errors.
	ErrSyncInProgress = errors.New("sync already in progress")
)

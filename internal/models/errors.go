package models

import "errors"

// Sentinel errors shared across the storage and pipeline layers. Handlers
// map them onto HTTP statuses with errors.Is, so they must never be wrapped
// into opaque failures.
var (
	// ErrComplaintNotFound is returned when a complaint ID does not exist.
	ErrComplaintNotFound = errors.New("complaint not found")

	// ErrAlreadyResolved is returned when a resolution is attempted on a
	// complaint whose status is already "resolved", including the case
	// where a concurrent resolve won the conditional status update.
	ErrAlreadyResolved = errors.New("complaint already resolved")
)

package services

import "errors"

// Shared business-rule errors. Every mutating operation detects and rejects
// these synchronously, before any partial persistence. Handlers translate
// them to HTTP status codes with errors.Is.
var (
	// ErrValidation covers malformed or contradictory input, e.g. a dine-in
	// order without a table.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden is returned when the caller's role or outlet scope
	// excludes the target. Checked before existence lookups so a caller
	// cannot probe for outlets it may not see.
	ErrForbidden = errors.New("operation not permitted for caller")

	// ErrConflict covers illegal state transitions, duplicate invoices,
	// already-occupied tables and mismatched split totals.
	ErrConflict = errors.New("operation conflicts with current state")
)

package graph

import "errors"

// Sentinel errors for the load engine. Callers classify failures with
// errors.Is; the wrapped chain carries the underlying store error.
var (
	// ErrConnection means the store (or source) could not be reached.
	ErrConnection = errors.New("graph: connection failed")

	// ErrResolution means a reference-resolution request against the
	// store failed at the transport level.
	ErrResolution = errors.New("graph: reference resolution failed")

	// ErrUpsert means a create-or-update request failed.
	ErrUpsert = errors.New("graph: upsert failed")

	// ErrInvalidInput means a record field is malformed, e.g. a blank
	// transliteration value. Handled locally by skipping the field.
	ErrInvalidInput = errors.New("graph: invalid input")
)

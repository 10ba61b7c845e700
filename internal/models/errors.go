// Package models defines the domain types and sentinel errors shared across
// the service and API layers. Callers match the errors with errors.Is.
package models

import "errors"

var (
	// ErrUnauthenticated covers every token failure mode: absent, malformed,
	// bad signature, expired. Handlers must not distinguish between them.
	ErrUnauthenticated = errors.New("authentication invalid")

	// ErrForbidden means the caller is valid but does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the resource id resolved to nothing.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers malformed input: missing fields, length bounds.
	ErrValidation = errors.New("validation failed")

	// ErrConflict covers duplicate unique keys, e.g. an already-registered email.
	ErrConflict = errors.New("conflict")

	// ErrUpstream covers language model gateway errors, timeouts and
	// cancellations. Safe for the client to retry.
	ErrUpstream = errors.New("upstream failure")
)

// Package apperr defines the sentinel errors shared across Raido components.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrNoNotesFound means the vault produced no candidate notes at all.
	// One of the two hard failures a generation request can surface.
	ErrNoNotesFound = errors.New("no notes found")

	// ErrGoalNotFound means the requested goal note does not exist.
	// The other hard generation failure.
	ErrGoalNotFound = errors.New("goal note not found")

	// ErrCircularDependency is reported by strict orderings when the graph
	// contains a cycle. Callers recover by switching to the cycle-tolerant
	// fallback order instead of propagating it.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrServiceUnavailable means the language model or semantic search is
	// not configured. Triggers strategy fallback, never a hard failure.
	ErrServiceUnavailable = errors.New("external service unavailable")

	// ErrMalformedResponse means the model returned output that could not be
	// parsed as the expected JSON shape. Treated like unavailability.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrNoMatchingNotes means the semantic strategy matched zero notes and
	// the link strategy should run instead.
	ErrNoMatchingNotes = errors.New("no matching notes")
)

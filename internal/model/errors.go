package model

import "errors"

var (
	// ErrUnauthenticated is returned when no session token is present or
	// the backend no longer recognizes it.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound covers renames and moves against ids the backend no
	// longer knows.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTarget is the backend's rejection of a move that would
	// place a folder inside itself or one of its descendants. The client
	// performs no cycle detection of its own.
	ErrInvalidTarget = errors.New("invalid move target")

	// ErrInvalidInput marks client-side validation failures (empty
	// names, no file selected) before any network call is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackendUnavailable wraps transport-level failures reaching the
	// TeleDrive backend.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrStaleLoad marks a folder load whose response arrived after the
	// user had already navigated elsewhere; its data was discarded.
	ErrStaleLoad = errors.New("stale folder load discarded")
)

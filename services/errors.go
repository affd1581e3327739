package services

import "errors"

// Sentinel errors for the guard checks shared by the lifecycle and
// betting paths. Fiber-facing methods translate these to HTTP statuses;
// the core logic never touches a response writer.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrAccessDenied is deliberately generic: an invite token mismatch
	// is indistinguishable from a missing token so a private challenge's
	// existence never leaks.
	ErrAccessDenied = errors.New("access denied")
)

// TransitionError is a lifecycle guard failure. Reason says which guard
// tripped — for UI messaging, not programmatic branching.
type TransitionError struct {
	Reason string
}

func (e *TransitionError) Error() string { return e.Reason }

// ValidationError is malformed input, safe to retry after correcting.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Reason }

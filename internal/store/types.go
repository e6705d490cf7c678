package store

import "errors"

// Engine error taxonomy. The conditional-write kinds originate here in the
// store; ErrForbidden and ErrValidation are returned by the service layer
// but live alongside the rest so callers have one `errors.Is` surface.
var (
	// ErrAlreadyOpen is returned when a clock-in is attempted while the
	// employee already has an open session. Enforced by a partial unique
	// index, not by check-then-insert.
	ErrAlreadyOpen = errors.New("attendance session already open")

	// ErrAlreadyClosed is returned when a clock-out hits a session whose
	// clock-out is already set. Exactly one of two concurrent closes wins.
	ErrAlreadyClosed = errors.New("attendance session already closed")

	// ErrNotFound is returned for an unknown or inaccessible session or
	// schedule id.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden is returned when the caller is neither the resource
	// owner nor an admin for an operation that requires ownership.
	ErrForbidden = errors.New("caller does not own this resource")

	// ErrInvalidTransition is returned when a schedule's current status
	// does not permit the requested transition.
	ErrInvalidTransition = errors.New("schedule status does not permit this transition")

	// ErrValidation is returned for missing or malformed mandatory input.
	ErrValidation = errors.New("validation failed")
)

// IsConflict reports whether the error should map to a conflict response:
// the request was well-formed but lost to the current state of the record.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyOpen) ||
		errors.Is(err, ErrAlreadyClosed) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

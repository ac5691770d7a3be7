package services

import "errors"

// Service-level error taxonomy. Handlers map these onto HTTP status codes;
// anything else is treated as a storage failure (500).
var (
	// ErrNotFound covers both "does not exist" and "owned by someone else" so
	// responses never leak whether a resource exists.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument rejects malformed input before any mutation happens.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict marks internal invariant violations (e.g. two active streaks
	// for one habit). It should never be reachable through the API.
	ErrConflict = errors.New("conflict")
)

func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }
func IsConflict(err error) bool        { return errors.Is(err, ErrConflict) }

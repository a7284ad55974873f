package userprofile

import "errors"

// Predefined errors for the userprofile package.
var (
	// ErrInvalidProfileMap indicates that a stored profile map does not
	// follow the wire shape and must be ignored.
	ErrInvalidProfileMap = errors.New("invalid user profile map")

	// ErrLookupFailed indicates that the underlying store failed to look up
	// a profile.
	ErrLookupFailed = errors.New("user profile lookup failed")

	// ErrSaveFailed indicates that the underlying store failed to persist
	// a profile.
	ErrSaveFailed = errors.New("user profile save failed")
)

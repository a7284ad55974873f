package notification

import "errors"

// Predefined errors for the notification package.
var (
	// ErrInvalidType indicates an unrecognized notification type.
	ErrInvalidType = errors.New("invalid notification type")

	// ErrNilHandler indicates a nil handler was passed to AddHandler.
	ErrNilHandler = errors.New("notification handler must not be nil")

	// ErrHandlerNotFound indicates the handler ID is not registered for the
	// given notification type.
	ErrHandlerNotFound = errors.New("notification handler not found")
)

package expkit

import "errors"

var (
	// ErrEventNotFound is returned by Track when the event key is not
	// registered in the project config.
	ErrEventNotFound = errors.New("event not found in project config")

	// ErrVariableNotFound is returned when a feature flag has no variable
	// with the requested key.
	ErrVariableNotFound = errors.New("feature variable not found")

	// ErrVariableTypeMismatch is returned when a variable is accessed
	// through a getter of the wrong type.
	ErrVariableTypeMismatch = errors.New("feature variable type mismatch")

	// ErrVariableCastFailed is returned when a variable's configured value
	// cannot be cast to its declared type.
	ErrVariableCastFailed = errors.New("unable to cast variable value")
)

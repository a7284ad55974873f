package condition

import "errors"

// Predefined errors for the condition package.
var (
	// ErrMalformedCondition indicates that a serialized condition document
	// does not follow the expected expression grammar.
	ErrMalformedCondition = errors.New("malformed condition expression")

	// ErrUnknownOperator indicates that an expression uses an operator other
	// than "and", "or" or "not".
	ErrUnknownOperator = errors.New("unknown condition operator")
)

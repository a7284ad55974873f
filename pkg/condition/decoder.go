package condition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Operator names in the serialized expression grammar.
const (
	operatorAnd = "and"
	operatorOr  = "or"
	operatorNot = "not"
)

// Parse decodes a serialized condition expression into a Condition tree.
// The grammar is JSON: an object is a leaf attribute match, an array is an
// operator application whose first element names the operator.
func Parse(data []byte) (Condition, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrMalformedCondition, err)
	}
	return parseNode(raw)
}

// ParseString is a convenience wrapper for datafiles, which carry audience
// conditions as JSON-encoded strings.
func ParseString(conditions string) (Condition, error) {
	return Parse([]byte(conditions))
}

func parseNode(raw json.RawMessage) (Condition, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrMalformedCondition
	}

	switch trimmed[0] {
	case '{':
		return parseLeaf(trimmed)
	case '[':
		return parseOperator(trimmed)
	default:
		return nil, fmt.Errorf("%w: expected object or array node", ErrMalformedCondition)
	}
}

func parseLeaf(raw json.RawMessage) (Condition, error) {
	var leaf struct {
		Name  string `json:"name"`
		Type  string `json:"type"`
		Value any    `json:"value"`
	}
	if err := json.Unmarshal(raw, &leaf); err != nil {
		return nil, errors.Join(ErrMalformedCondition, err)
	}
	if leaf.Name == "" {
		return nil, fmt.Errorf("%w: leaf condition without attribute name", ErrMalformedCondition)
	}
	return Leaf{Name: leaf.Name, Type: leaf.Type, Value: leaf.Value}, nil
}

func parseOperator(raw json.RawMessage) (Condition, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Join(ErrMalformedCondition, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty operator node", ErrMalformedCondition)
	}

	var operator string
	if err := json.Unmarshal(items[0], &operator); err != nil {
		return nil, fmt.Errorf("%w: operator node must start with an operator name", ErrMalformedCondition)
	}

	operands := make([]Condition, 0, len(items)-1)
	for _, item := range items[1:] {
		child, err := parseNode(item)
		if err != nil {
			return nil, err
		}
		operands = append(operands, child)
	}

	switch operator {
	case operatorAnd:
		return And{Operands: operands}, nil
	case operatorOr:
		return Or{Operands: operands}, nil
	case operatorNot:
		if len(operands) != 1 {
			return nil, fmt.Errorf("%w: \"not\" takes exactly one operand, got %d", ErrMalformedCondition, len(operands))
		}
		return Not{Operand: operands[0]}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, operator)
	}
}

package condition

// CustomAttributeType is the only leaf condition type the evaluator matches.
// Leaves with any other type never match.
const CustomAttributeType = "custom_attribute"

// Condition is a node in an audience targeting expression.
type Condition interface {
	// Evaluate reports whether the given user attributes satisfy the
	// condition. A nil or empty attributes map fails every leaf match.
	Evaluate(attributes map[string]any) bool
}

// Leaf matches a single user attribute by name, type and value.
type Leaf struct {
	Name  string
	Type  string
	Value any
}

// Evaluate matches iff the attribute is present and equal to the expected
// value in both type and value. Numeric values are compared numerically
// regardless of the concrete Go number type they were decoded into.
func (l Leaf) Evaluate(attributes map[string]any) bool {
	if l.Type != CustomAttributeType {
		return false
	}
	actual, ok := attributes[l.Name]
	if !ok {
		return false
	}
	return valuesMatch(l.Value, actual)
}

// And is true iff every operand is true. An And over zero operands is
// vacuously true, matching the reference evaluator; such trees are not
// producible through normal configuration authoring.
type And struct {
	Operands []Condition
}

func (a And) Evaluate(attributes map[string]any) bool {
	for _, op := range a.Operands {
		if op == nil || !op.Evaluate(attributes) {
			return false
		}
	}
	return true
}

// Or is true iff at least one operand is true. An Or over zero operands is
// false.
type Or struct {
	Operands []Condition
}

func (o Or) Evaluate(attributes map[string]any) bool {
	for _, op := range o.Operands {
		if op != nil && op.Evaluate(attributes) {
			return true
		}
	}
	return false
}

// Not negates its single operand. A Not with a nil operand never matches.
type Not struct {
	Operand Condition
}

func (n Not) Evaluate(attributes map[string]any) bool {
	if n.Operand == nil {
		return false
	}
	return !n.Operand.Evaluate(attributes)
}

func valuesMatch(expected, actual any) bool {
	if en, ok := asFloat(expected); ok {
		an, ok := asFloat(actual)
		return ok && en == an
	}
	switch e := expected.(type) {
	case string:
		a, ok := actual.(string)
		return ok && e == a
	case bool:
		a, ok := actual.(bool)
		return ok && e == a
	}
	return false
}

// asFloat normalizes the numeric types produced by JSON decoding and by
// host applications passing attributes directly.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

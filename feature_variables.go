package expkit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/expkit/expkit/pkg/entities"
)

// GetFeatureVariableString returns the value of a string feature variable
// for the visitor: the deciding variation's override when one exists,
// otherwise the variable's default.
func (c *Client) GetFeatureVariableString(ctx context.Context, featureKey, variableKey, userID string, attributes map[string]any) (string, error) {
	return c.featureVariableValue(ctx, featureKey, variableKey, userID, attributes, entities.VariableTypeString)
}

// GetFeatureVariableBoolean returns the value of a boolean feature variable
// for the visitor. Only the string "true" (case-insensitive) is truthy;
// every other value is false.
func (c *Client) GetFeatureVariableBoolean(ctx context.Context, featureKey, variableKey, userID string, attributes map[string]any) (bool, error) {
	raw, err := c.featureVariableValue(ctx, featureKey, variableKey, userID, attributes, entities.VariableTypeBoolean)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(raw, "true"), nil
}

// GetFeatureVariableInteger returns the value of an integer feature
// variable for the visitor. A value that does not parse as an integer
// yields ErrVariableCastFailed.
func (c *Client) GetFeatureVariableInteger(ctx context.Context, featureKey, variableKey, userID string, attributes map[string]any) (int, error) {
	raw, err := c.featureVariableValue(ctx, featureKey, variableKey, userID, attributes, entities.VariableTypeInteger)
	if err != nil {
		return 0, err
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		c.logger.Error("unable to cast variable value",
			"variable", variableKey, "value", raw, "type", entities.VariableTypeInteger)
		return 0, fmt.Errorf("%w: %q to %s", ErrVariableCastFailed, raw, entities.VariableTypeInteger)
	}
	return value, nil
}

// GetFeatureVariableDouble returns the value of a double feature variable
// for the visitor. A value that does not parse as a float yields
// ErrVariableCastFailed.
func (c *Client) GetFeatureVariableDouble(ctx context.Context, featureKey, variableKey, userID string, attributes map[string]any) (float64, error) {
	raw, err := c.featureVariableValue(ctx, featureKey, variableKey, userID, attributes, entities.VariableTypeDouble)
	if err != nil {
		return 0, err
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.logger.Error("unable to cast variable value",
			"variable", variableKey, "value", raw, "type", entities.VariableTypeDouble)
		return 0, fmt.Errorf("%w: %q to %s", ErrVariableCastFailed, raw, entities.VariableTypeDouble)
	}
	return value, nil
}

// featureVariableValue resolves the raw string value of a feature variable:
// the flag's declared default, overridden by the deciding variation's usage
// when the visitor gets one. Variable access never emits an impression.
func (c *Client) featureVariableValue(ctx context.Context, featureKey, variableKey, userID string, attributes map[string]any, wantType string) (string, error) {
	flag, err := c.projectConfig.GetFeatureFlag(featureKey)
	if err != nil {
		return "", err
	}

	variable, ok := flag.GetVariable(variableKey)
	if !ok {
		return "", fmt.Errorf("%w: %q in feature %q", ErrVariableNotFound, variableKey, featureKey)
	}
	if variable.Type != wantType {
		c.logger.Error("feature variable accessed with the wrong type getter",
			"feature", featureKey,
			"variable", variableKey,
			"declared_type", variable.Type,
			"requested_type", wantType)
		return "", fmt.Errorf("%w: %q is %s, not %s", ErrVariableTypeMismatch, variableKey, variable.Type, wantType)
	}

	value := variable.DefaultValue
	featureDecision := c.decisions.GetVariationForFeature(ctx, flag, userID, attributes)
	if featureDecision.Variation != nil {
		if usage, ok := featureDecision.Variation.GetVariableUsage(variable.ID); ok {
			value = usage.Value
			c.logger.Debug("returning variable value from variation",
				"feature", featureKey,
				"variable", variableKey,
				"variation", featureDecision.Variation.Key)
		}
	} else {
		c.logger.Debug("user is in no variation, returning default variable value",
			"user_id", userID, "feature", featureKey, "variable", variableKey)
	}
	return value, nil
}

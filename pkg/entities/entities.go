package entities

import "github.com/expkit/expkit/pkg/condition"

// Experiment statuses as they appear in the datafile.
const (
	StatusRunning    = "Running"
	StatusPaused     = "Paused"
	StatusLaunched   = "Launched"
	StatusNotStarted = "Not started"
	StatusArchived   = "Archived"
)

// Feature variable types as they appear in the datafile.
const (
	VariableTypeString  = "string"
	VariableTypeBoolean = "boolean"
	VariableTypeInteger = "integer"
	VariableTypeDouble  = "double"
)

// Group traffic policies.
const (
	GroupPolicyRandom      = "random"
	GroupPolicyOverlapping = "overlapping"
)

// TrafficAllocation is a single cumulative bucket range. Ranges are ordered
// and cover a subset of [0, 10000); a bucket value below EndOfRange that is
// not claimed by an earlier range belongs to EntityID.
type TrafficAllocation struct {
	EntityID   string `json:"entityId"`
	EndOfRange int    `json:"endOfRange"`
}

// VariableUsage is a variation-level override of a feature variable value.
type VariableUsage struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Variation is one arm of an experiment.
type Variation struct {
	ID        string          `json:"id"`
	Key       string          `json:"key"`
	Variables []VariableUsage `json:"variables,omitempty"`
}

// GetVariableUsage returns the variation's override for the given feature
// variable ID.
func (v Variation) GetVariableUsage(variableID string) (VariableUsage, bool) {
	for _, usage := range v.Variables {
		if usage.ID == variableID {
			return usage, true
		}
	}
	return VariableUsage{}, false
}

// Experiment is a single test with an ordered variation list and a cumulative
// traffic allocation table. Rollout rules reuse this shape: each rule is an
// experiment with an audience condition and a single-entity allocation.
type Experiment struct {
	ID                string              `json:"id"`
	Key               string              `json:"key"`
	Status            string              `json:"status"`
	LayerID           string              `json:"layerId,omitempty"`
	GroupID           string              `json:"-"`
	AudienceIDs       []string            `json:"audienceIds,omitempty"`
	Variations        []Variation         `json:"variations"`
	ForcedVariations  map[string]string   `json:"forcedVariations,omitempty"`
	TrafficAllocation []TrafficAllocation `json:"trafficAllocation"`
}

// IsRunning reports whether the experiment is eligible for bucketing.
func (e Experiment) IsRunning() bool {
	return e.Status == StatusRunning
}

// Group is a set of experiments sharing one traffic pool. Under the "random"
// policy members are mutually exclusive: a visitor buckets into at most one.
type Group struct {
	ID                string              `json:"id"`
	Policy            string              `json:"policy"`
	Experiments       []Experiment        `json:"experiments"`
	TrafficAllocation []TrafficAllocation `json:"trafficAllocation"`
}

// FeatureVariable declares a typed variable belonging to a feature flag.
type FeatureVariable struct {
	ID           string `json:"id"`
	Key          string `json:"key"`
	Type         string `json:"type"`
	DefaultValue string `json:"defaultValue"`
}

// FeatureFlag ties a feature to its delivery mechanisms: zero or more
// attached experiments and an optional rollout.
type FeatureFlag struct {
	ID            string            `json:"id"`
	Key           string            `json:"key"`
	RolloutID     string            `json:"rolloutId,omitempty"`
	ExperimentIDs []string          `json:"experimentIds,omitempty"`
	Variables     []FeatureVariable `json:"variables,omitempty"`
}

// GetVariable returns the flag's variable declaration with the given key.
func (f FeatureFlag) GetVariable(key string) (FeatureVariable, bool) {
	for _, variable := range f.Variables {
		if variable.Key == key {
			return variable, true
		}
	}
	return FeatureVariable{}, false
}

// Rollout is an ordered list of audience-gated rules; by convention the last
// rule is the unconditional "everyone else" rule.
type Rollout struct {
	ID          string       `json:"id"`
	Experiments []Experiment `json:"experiments"`
}

// Audience is a named targeting condition referenced by experiments.
// Conditions is decoded from the datafile's serialized expression by the
// configuration loader; the raw form never reaches the decision pipeline.
type Audience struct {
	ID         string
	Name       string
	Conditions condition.Condition
}

// Attribute is a custom user attribute registered in the project.
type Attribute struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Event is a conversion event registered in the project.
type Event struct {
	ID            string   `json:"id"`
	Key           string   `json:"key"`
	ExperimentIDs []string `json:"experimentIds,omitempty"`
}

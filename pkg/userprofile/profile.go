package userprofile

import "fmt"

// Wire shape keys shared by every SDK implementation.
const (
	UserIDKey              = "user_id"
	ExperimentBucketMapKey = "experiment_bucket_map"
	VariationIDKey         = "variation_id"
)

// Decision records the variation a visitor was bucketed into for one
// experiment.
type Decision struct {
	VariationID string
}

// UserProfile is a visitor's decision history. It is owned by a single
// decision call for its duration and is not safe for concurrent mutation.
type UserProfile struct {
	UserID              string
	ExperimentBucketMap map[string]Decision
}

// New creates an empty profile for the given visitor.
func New(userID string) *UserProfile {
	return &UserProfile{
		UserID:              userID,
		ExperimentBucketMap: make(map[string]Decision),
	}
}

// DecisionForExperiment returns the stored decision for an experiment, if any.
func (p *UserProfile) DecisionForExperiment(experimentID string) (Decision, bool) {
	decision, ok := p.ExperimentBucketMap[experimentID]
	return decision, ok
}

// SaveDecision records a decision for an experiment, replacing any previous
// one.
func (p *UserProfile) SaveDecision(experimentID string, decision Decision) {
	if p.ExperimentBucketMap == nil {
		p.ExperimentBucketMap = make(map[string]Decision)
	}
	p.ExperimentBucketMap[experimentID] = decision
}

// IsValidMap reports whether a raw profile map follows the wire shape.
func IsValidMap(profile map[string]any) bool {
	_, err := FromMap(profile)
	return err == nil
}

// FromMap converts a raw profile map into a UserProfile. The map must carry
// a string user ID and an experiment bucket map whose entries each contain a
// string variation ID; anything else is ErrInvalidProfileMap.
func FromMap(profile map[string]any) (*UserProfile, error) {
	if profile == nil {
		return nil, ErrInvalidProfileMap
	}

	userID, ok := profile[UserIDKey].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing or non-string %q", ErrInvalidProfileMap, UserIDKey)
	}

	rawBucketMap, ok := profile[ExperimentBucketMapKey].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing or malformed %q", ErrInvalidProfileMap, ExperimentBucketMapKey)
	}

	converted := New(userID)
	for experimentID, rawDecision := range rawBucketMap {
		decisionMap, ok := rawDecision.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: decision for experiment %q is not a map", ErrInvalidProfileMap, experimentID)
		}
		variationID, ok := decisionMap[VariationIDKey].(string)
		if !ok {
			return nil, fmt.Errorf("%w: decision for experiment %q has no %q", ErrInvalidProfileMap, experimentID, VariationIDKey)
		}
		converted.ExperimentBucketMap[experimentID] = Decision{VariationID: variationID}
	}
	return converted, nil
}

// ToMap converts the profile into its wire shape for persistence.
func (p *UserProfile) ToMap() map[string]any {
	bucketMap := make(map[string]any, len(p.ExperimentBucketMap))
	for experimentID, decision := range p.ExperimentBucketMap {
		bucketMap[experimentID] = map[string]any{VariationIDKey: decision.VariationID}
	}
	return map[string]any{
		UserIDKey:              p.UserID,
		ExperimentBucketMapKey: bucketMap,
	}
}

package decision_test

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/expkit/expkit/pkg/bucketer"
	"github.com/expkit/expkit/pkg/entities"
)

// MockBucketer is a mock implementation of decision.Bucketer.
type MockBucketer struct {
	mock.Mock
}

func (m *MockBucketer) Bucket(groups bucketer.GroupSource, experiment entities.Experiment, bucketingID, userID string) *entities.Variation {
	args := m.Called(groups, experiment, bucketingID, userID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*entities.Variation)
}

// MockStore is a mock implementation of userprofile.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Lookup(ctx context.Context, userID string) (map[string]any, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, profile map[string]any) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// fakeConfig is a hand-built decision.Config over in-memory fixtures.
type fakeConfig struct {
	experiments map[string]entities.Experiment // by ID
	groups      map[string]entities.Group
	audiences   map[string]entities.Audience
	rollouts    map[string]entities.Rollout
	forced      map[string]map[string]entities.Variation // experimentKey -> userID
}

func newFakeConfig(experiments ...entities.Experiment) *fakeConfig {
	c := &fakeConfig{
		experiments: make(map[string]entities.Experiment),
		groups:      make(map[string]entities.Group),
		audiences:   make(map[string]entities.Audience),
		rollouts:    make(map[string]entities.Rollout),
		forced:      make(map[string]map[string]entities.Variation),
	}
	for _, experiment := range experiments {
		c.experiments[experiment.ID] = experiment
	}
	return c
}

func (c *fakeConfig) addAudience(audience entities.Audience) {
	c.audiences[audience.ID] = audience
}

func (c *fakeConfig) addRollout(rollout entities.Rollout) {
	c.rollouts[rollout.ID] = rollout
}

func (c *fakeConfig) forceVariation(experimentKey, userID string, variation entities.Variation) {
	if c.forced[experimentKey] == nil {
		c.forced[experimentKey] = make(map[string]entities.Variation)
	}
	c.forced[experimentKey][userID] = variation
}

func (c *fakeConfig) GetExperimentByID(id string) (entities.Experiment, error) {
	experiment, ok := c.experiments[id]
	if !ok {
		return entities.Experiment{}, fmt.Errorf("experiment %q not found", id)
	}
	return experiment, nil
}

func (c *fakeConfig) GetGroup(id string) (entities.Group, error) {
	group, ok := c.groups[id]
	if !ok {
		return entities.Group{}, fmt.Errorf("group %q not found", id)
	}
	return group, nil
}

func (c *fakeConfig) GetAudience(id string) (entities.Audience, error) {
	audience, ok := c.audiences[id]
	if !ok {
		return entities.Audience{}, fmt.Errorf("audience %q not found", id)
	}
	return audience, nil
}

func (c *fakeConfig) GetRollout(id string) (entities.Rollout, error) {
	rollout, ok := c.rollouts[id]
	if !ok {
		return entities.Rollout{}, fmt.Errorf("rollout %q not found", id)
	}
	return rollout, nil
}

func (c *fakeConfig) experimentByKey(key string) (entities.Experiment, bool) {
	for _, experiment := range c.experiments {
		if experiment.Key == key {
			return experiment, true
		}
	}
	return entities.Experiment{}, false
}

func (c *fakeConfig) GetVariationByKey(experimentKey, variationKey string) (entities.Variation, error) {
	if experiment, ok := c.experimentByKey(experimentKey); ok {
		for _, variation := range experiment.Variations {
			if variation.Key == variationKey {
				return variation, nil
			}
		}
	}
	return entities.Variation{}, fmt.Errorf("variation %q not found", variationKey)
}

func (c *fakeConfig) GetVariationByID(experimentKey, variationID string) (entities.Variation, error) {
	if experiment, ok := c.experimentByKey(experimentKey); ok {
		for _, variation := range experiment.Variations {
			if variation.ID == variationID {
				return variation, nil
			}
		}
	}
	return entities.Variation{}, fmt.Errorf("variation %q not found", variationID)
}

func (c *fakeConfig) IsVariationIDValid(experimentKey, variationID string) bool {
	_, err := c.GetVariationByID(experimentKey, variationID)
	return err == nil
}

func (c *fakeConfig) GetForcedVariation(experimentKey, userID string) (entities.Variation, bool) {
	variation, ok := c.forced[experimentKey][userID]
	return variation, ok
}

package projectconfig

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/expkit/expkit/pkg/entities"
)

// Config is an immutable configuration snapshot plus the mutable
// forced-variation override map.
type Config struct {
	accountID    string
	projectID    string
	revision     string
	version      string
	anonymizeIP  bool
	botFiltering bool

	experimentsByKey map[string]entities.Experiment
	experimentsByID  map[string]entities.Experiment
	groups           map[string]entities.Group
	audiences        map[string]entities.Audience
	featuresByKey    map[string]entities.FeatureFlag
	rollouts         map[string]entities.Rollout
	attributesByKey  map[string]entities.Attribute
	eventsByKey      map[string]entities.Event

	// experimentKey -> variationKey/variationID -> Variation
	variationsByKey map[string]map[string]entities.Variation
	variationsByID  map[string]map[string]entities.Variation

	logger *slog.Logger

	// forcedVariations is userID -> experimentID -> variationID. It is the
	// only mutable state in the snapshot.
	forcedMu         sync.RWMutex
	forcedVariations map[string]map[string]string
}

// Option configures a Config during construction.
type Option func(*Config)

// WithLogger sets the logger used for lookup diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// AccountID returns the project's account ID.
func (c *Config) AccountID() string { return c.accountID }

// ProjectID returns the project ID.
func (c *Config) ProjectID() string { return c.projectID }

// Revision returns the datafile revision.
func (c *Config) Revision() string { return c.revision }

// Version returns the datafile schema version.
func (c *Config) Version() string { return c.version }

// AnonymizeIP reports whether the project requests IP anonymization.
func (c *Config) AnonymizeIP() bool { return c.anonymizeIP }

// BotFiltering reports whether the project requests bot filtering.
func (c *Config) BotFiltering() bool { return c.botFiltering }

// GetExperimentByKey resolves an experiment by its key.
func (c *Config) GetExperimentByKey(key string) (entities.Experiment, error) {
	experiment, ok := c.experimentsByKey[key]
	if !ok {
		return entities.Experiment{}, fmt.Errorf("%w: key %q", ErrExperimentNotFound, key)
	}
	return experiment, nil
}

// GetExperimentByID resolves an experiment by its ID.
func (c *Config) GetExperimentByID(id string) (entities.Experiment, error) {
	experiment, ok := c.experimentsByID[id]
	if !ok {
		return entities.Experiment{}, fmt.Errorf("%w: id %q", ErrExperimentNotFound, id)
	}
	return experiment, nil
}

// Experiments returns every experiment in the snapshot.
func (c *Config) Experiments() []entities.Experiment {
	experiments := make([]entities.Experiment, 0, len(c.experimentsByID))
	for _, experiment := range c.experimentsByID {
		experiments = append(experiments, experiment)
	}
	return experiments
}

// GetGroup resolves a mutually exclusive group by ID.
func (c *Config) GetGroup(id string) (entities.Group, error) {
	group, ok := c.groups[id]
	if !ok {
		return entities.Group{}, fmt.Errorf("%w: id %q", ErrGroupNotFound, id)
	}
	return group, nil
}

// GetAudience resolves an audience by ID.
func (c *Config) GetAudience(id string) (entities.Audience, error) {
	audience, ok := c.audiences[id]
	if !ok {
		return entities.Audience{}, fmt.Errorf("%w: id %q", ErrAudienceNotFound, id)
	}
	return audience, nil
}

// GetFeatureFlag resolves a feature flag by key.
func (c *Config) GetFeatureFlag(key string) (entities.FeatureFlag, error) {
	flag, ok := c.featuresByKey[key]
	if !ok {
		return entities.FeatureFlag{}, fmt.Errorf("%w: key %q", ErrFeatureNotFound, key)
	}
	return flag, nil
}

// FeatureFlags returns every feature flag in the snapshot.
func (c *Config) FeatureFlags() []entities.FeatureFlag {
	flags := make([]entities.FeatureFlag, 0, len(c.featuresByKey))
	for _, flag := range c.featuresByKey {
		flags = append(flags, flag)
	}
	return flags
}

// GetRollout resolves a rollout by ID.
func (c *Config) GetRollout(id string) (entities.Rollout, error) {
	rollout, ok := c.rollouts[id]
	if !ok {
		return entities.Rollout{}, fmt.Errorf("%w: id %q", ErrRolloutNotFound, id)
	}
	return rollout, nil
}

// GetAttribute resolves a custom attribute by key.
func (c *Config) GetAttribute(key string) (entities.Attribute, bool) {
	attribute, ok := c.attributesByKey[key]
	return attribute, ok
}

// GetEvent resolves a conversion event by key.
func (c *Config) GetEvent(key string) (entities.Event, bool) {
	event, ok := c.eventsByKey[key]
	return event, ok
}

// GetVariationByKey resolves a variation of an experiment by variation key.
func (c *Config) GetVariationByKey(experimentKey, variationKey string) (entities.Variation, error) {
	if variations, ok := c.variationsByKey[experimentKey]; ok {
		if variation, ok := variations[variationKey]; ok {
			return variation, nil
		}
	}
	return entities.Variation{}, fmt.Errorf("%w: key %q in experiment %q", ErrVariationNotFound, variationKey, experimentKey)
}

// GetVariationByID resolves a variation of an experiment by variation ID.
func (c *Config) GetVariationByID(experimentKey, variationID string) (entities.Variation, error) {
	if variations, ok := c.variationsByID[experimentKey]; ok {
		if variation, ok := variations[variationID]; ok {
			return variation, nil
		}
	}
	return entities.Variation{}, fmt.Errorf("%w: id %q in experiment %q", ErrVariationNotFound, variationID, experimentKey)
}

// IsVariationIDValid reports whether a variation ID belongs to the
// experiment. Used to invalidate stale sticky-bucketing decisions.
func (c *Config) IsVariationIDValid(experimentKey, variationID string) bool {
	_, err := c.GetVariationByID(experimentKey, variationID)
	return err == nil
}

// GetForcedVariation returns the variation a user has been force-assigned to
// for an experiment, if any. Forced variations precede every other decision
// rule.
func (c *Config) GetForcedVariation(experimentKey, userID string) (entities.Variation, bool) {
	experiment, ok := c.experimentsByKey[experimentKey]
	if !ok {
		return entities.Variation{}, false
	}

	c.forcedMu.RLock()
	variationID, ok := c.forcedVariations[userID][experiment.ID]
	c.forcedMu.RUnlock()
	if !ok {
		c.logger.Debug("user is not in the forced variation map", "user_id", userID)
		return entities.Variation{}, false
	}

	variation, err := c.GetVariationByID(experimentKey, variationID)
	if err != nil {
		c.logger.Warn("forced variation no longer exists",
			"user_id", userID,
			"experiment", experimentKey,
			"variation_id", variationID)
		return entities.Variation{}, false
	}

	c.logger.Debug("user is forced into variation",
		"user_id", userID,
		"experiment", experimentKey,
		"variation", variation.Key)
	return variation, true
}

// SetForcedVariation force-assigns a user to a variation of an experiment.
// An empty variation key clears the assignment.
func (c *Config) SetForcedVariation(experimentKey, userID, variationKey string) error {
	experiment, ok := c.experimentsByKey[experimentKey]
	if !ok {
		return fmt.Errorf("%w: key %q", ErrExperimentNotFound, experimentKey)
	}

	if variationKey == "" {
		c.forcedMu.Lock()
		delete(c.forcedVariations[userID], experiment.ID)
		if len(c.forcedVariations[userID]) == 0 {
			delete(c.forcedVariations, userID)
		}
		c.forcedMu.Unlock()
		return nil
	}

	variation, err := c.GetVariationByKey(experimentKey, variationKey)
	if err != nil {
		return err
	}

	c.forcedMu.Lock()
	if c.forcedVariations[userID] == nil {
		c.forcedVariations[userID] = make(map[string]string)
	}
	c.forcedVariations[userID][experiment.ID] = variation.ID
	c.forcedMu.Unlock()
	return nil
}

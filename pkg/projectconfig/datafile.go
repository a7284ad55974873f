package projectconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/expkit/expkit/pkg/condition"
	"github.com/expkit/expkit/pkg/entities"
)

// supportedVersions lists the datafile schema versions this SDK accepts.
var supportedVersions = []string{"2", "3", "4"}

// datafile is the raw wire layout of a project datafile. Audience conditions
// arrive as JSON-encoded strings and are decoded separately.
type datafile struct {
	AccountID    string                 `json:"accountId"`
	ProjectID    string                 `json:"projectId"`
	Revision     string                 `json:"revision"`
	Version      string                 `json:"version"`
	AnonymizeIP  bool                   `json:"anonymizeIP"`
	BotFiltering bool                   `json:"botFiltering"`
	Experiments  []entities.Experiment  `json:"experiments"`
	Groups       []entities.Group       `json:"groups"`
	Audiences    []rawAudience          `json:"audiences"`
	FeatureFlags []entities.FeatureFlag `json:"featureFlags"`
	Rollouts     []entities.Rollout     `json:"rollouts"`
	Attributes   []entities.Attribute   `json:"attributes"`
	Events       []entities.Event       `json:"events"`
}

type rawAudience struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Conditions string `json:"conditions"`
}

// New builds a configuration snapshot from raw datafile JSON. The document
// is schema-validated before decoding; group member experiments are folded
// into the experiment indexes with their group ID attached.
func New(raw []byte, opts ...Option) (*Config, error) {
	if err := validateDatafile(raw); err != nil {
		return nil, err
	}

	var df datafile
	if err := json.Unmarshal(raw, &df); err != nil {
		return nil, errors.Join(ErrInvalidDatafile, err)
	}
	if !slices.Contains(supportedVersions, df.Version) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, df.Version)
	}

	c := &Config{
		accountID:    df.AccountID,
		projectID:    df.ProjectID,
		revision:     df.Revision,
		version:      df.Version,
		anonymizeIP:  df.AnonymizeIP,
		botFiltering: df.BotFiltering,

		experimentsByKey: make(map[string]entities.Experiment),
		experimentsByID:  make(map[string]entities.Experiment),
		groups:           make(map[string]entities.Group, len(df.Groups)),
		audiences:        make(map[string]entities.Audience, len(df.Audiences)),
		featuresByKey:    make(map[string]entities.FeatureFlag, len(df.FeatureFlags)),
		rollouts:         make(map[string]entities.Rollout, len(df.Rollouts)),
		attributesByKey:  make(map[string]entities.Attribute, len(df.Attributes)),
		eventsByKey:      make(map[string]entities.Event, len(df.Events)),
		variationsByKey:  make(map[string]map[string]entities.Variation),
		variationsByID:   make(map[string]map[string]entities.Variation),

		logger:           slog.Default(),
		forcedVariations: make(map[string]map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, experiment := range df.Experiments {
		c.addExperiment(experiment)
	}
	for _, group := range df.Groups {
		c.groups[group.ID] = group
		for _, experiment := range group.Experiments {
			experiment.GroupID = group.ID
			c.addExperiment(experiment)
		}
	}
	for _, audience := range df.Audiences {
		conditions, err := condition.ParseString(audience.Conditions)
		if err != nil {
			return nil, fmt.Errorf("%w: audience %q: %w", ErrInvalidDatafile, audience.ID, err)
		}
		c.audiences[audience.ID] = entities.Audience{
			ID:         audience.ID,
			Name:       audience.Name,
			Conditions: conditions,
		}
	}
	for _, flag := range df.FeatureFlags {
		c.featuresByKey[flag.Key] = flag
	}
	for _, rollout := range df.Rollouts {
		c.rollouts[rollout.ID] = rollout
	}
	for _, attribute := range df.Attributes {
		c.attributesByKey[attribute.Key] = attribute
	}
	for _, event := range df.Events {
		c.eventsByKey[event.Key] = event
	}

	return c, nil
}

func (c *Config) addExperiment(experiment entities.Experiment) {
	c.experimentsByKey[experiment.Key] = experiment
	c.experimentsByID[experiment.ID] = experiment

	byKey := make(map[string]entities.Variation, len(experiment.Variations))
	byID := make(map[string]entities.Variation, len(experiment.Variations))
	for _, variation := range experiment.Variations {
		byKey[variation.Key] = variation
		byID[variation.ID] = variation
	}
	c.variationsByKey[experiment.Key] = byKey
	c.variationsByID[experiment.Key] = byID
}

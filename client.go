package expkit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/expkit/expkit/pkg/decision"
	"github.com/expkit/expkit/pkg/entities"
	"github.com/expkit/expkit/pkg/notification"
	"github.com/expkit/expkit/pkg/projectconfig"
	"github.com/expkit/expkit/pkg/userprofile"
)

// Client is the top-level entry point of the SDK. It owns a parsed project
// config snapshot, the decision pipeline and a notification center, and is
// safe for concurrent use.
type Client struct {
	projectConfig *projectconfig.Config
	decisions     *decision.Service
	notifications *notification.Center
	logger        *slog.Logger
}

type clientConfig struct {
	logger   *slog.Logger
	profiles userprofile.Store
	center   *notification.Center
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

// WithLogger sets the logger used by the client and all its components.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProfileStore enables sticky bucketing: decisions are persisted per
// visitor and replayed on subsequent calls even if traffic allocation
// changes.
func WithProfileStore(store userprofile.Store) ClientOption {
	return func(c *clientConfig) {
		c.profiles = store
	}
}

// WithNotificationCenter replaces the client's notification center, allowing
// handlers registered before construction to be carried over.
func WithNotificationCenter(center *notification.Center) ClientOption {
	return func(c *clientConfig) {
		if center != nil {
			c.center = center
		}
	}
}

// NewClient parses the datafile and assembles a ready-to-use client.
func NewClient(datafile []byte, opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	projectConfig, err := projectconfig.New(datafile, projectconfig.WithLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("parsing datafile: %w", err)
	}

	decisionOpts := []decision.Option{decision.WithLogger(cfg.logger)}
	if cfg.profiles != nil {
		decisionOpts = append(decisionOpts, decision.WithProfileStore(cfg.profiles))
	}

	center := cfg.center
	if center == nil {
		center = notification.NewCenter(notification.WithLogger(cfg.logger))
	}

	return &Client{
		projectConfig: projectConfig,
		decisions:     decision.NewService(projectConfig, decisionOpts...),
		notifications: center,
		logger:        cfg.logger,
	}, nil
}

// Activate decides the visitor's variation for the experiment and, when a
// variation is assigned, emits a Decision notification carrying the
// impression event. Returns an empty key when the visitor is not in the
// experiment.
func (c *Client) Activate(ctx context.Context, experimentKey, userID string, attributes map[string]any) (string, error) {
	experiment, err := c.projectConfig.GetExperimentByKey(experimentKey)
	if err != nil {
		return "", err
	}

	variation := c.decisions.GetVariation(ctx, experiment, userID, attributes)
	if variation == nil {
		c.logger.Debug("not activating user",
			"user_id", userID, "experiment", experimentKey)
		return "", nil
	}

	c.sendDecision(experiment, *variation, userID, attributes)
	return variation.Key, nil
}

// GetVariation decides the visitor's variation for the experiment without
// emitting an impression. Returns an empty key when the visitor is not in
// the experiment.
func (c *Client) GetVariation(ctx context.Context, experimentKey, userID string, attributes map[string]any) (string, error) {
	experiment, err := c.projectConfig.GetExperimentByKey(experimentKey)
	if err != nil {
		return "", err
	}

	if variation := c.decisions.GetVariation(ctx, experiment, userID, attributes); variation != nil {
		return variation.Key, nil
	}
	return "", nil
}

// IsFeatureEnabled reports whether the feature flag is on for the visitor,
// either through a feature test or a rollout rule. Feature test assignments
// emit a Decision notification; rollout assignments do not.
func (c *Client) IsFeatureEnabled(ctx context.Context, featureKey, userID string, attributes map[string]any) (bool, error) {
	flag, err := c.projectConfig.GetFeatureFlag(featureKey)
	if err != nil {
		return false, err
	}

	featureDecision := c.decisions.GetVariationForFeature(ctx, flag, userID, attributes)
	if featureDecision.Variation == nil {
		return false, nil
	}

	if featureDecision.Source == decision.SourceFeatureTest && featureDecision.Experiment != nil {
		c.sendDecision(*featureDecision.Experiment, *featureDecision.Variation, userID, attributes)
	}
	return true, nil
}

// GetEnabledFeatures returns the keys of all feature flags enabled for the
// visitor, sorted alphabetically.
func (c *Client) GetEnabledFeatures(ctx context.Context, userID string, attributes map[string]any) []string {
	var enabled []string
	for _, flag := range c.projectConfig.FeatureFlags() {
		ok, err := c.IsFeatureEnabled(ctx, flag.Key, userID, attributes)
		if err != nil {
			c.logger.Warn("skipping feature flag",
				"feature", flag.Key, "error", err)
			continue
		}
		if ok {
			enabled = append(enabled, flag.Key)
		}
	}
	sort.Strings(enabled)
	return enabled
}

// Track records a conversion event for the visitor and emits a Track
// notification. Returns ErrEventNotFound for unknown event keys.
func (c *Client) Track(ctx context.Context, eventKey, userID string, attributes, eventTags map[string]any) error {
	event, ok := c.projectConfig.GetEvent(eventKey)
	if !ok {
		return fmt.Errorf("%w: %q", ErrEventNotFound, eventKey)
	}

	logEvent := notification.LogEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Params: map[string]any{
			"account_id": c.projectConfig.AccountID(),
			"project_id": c.projectConfig.ProjectID(),
			"revision":   c.projectConfig.Revision(),
			"event_id":   event.ID,
			"event_key":  event.Key,
			"user_id":    userID,
			"attributes": attributes,
			"event_tags": eventTags,
		},
	}

	if err := c.notifications.Send(notification.Track, notification.TrackPayload{
		EventKey:   eventKey,
		UserID:     userID,
		Attributes: attributes,
		EventTags:  eventTags,
		Event:      logEvent,
	}); err != nil {
		c.logger.Warn("failed to send track notification", "error", err)
	}

	c.logger.Info("tracked conversion event",
		"user_id", userID, "event", eventKey)
	return nil
}

// SetForcedVariation pins the visitor to a specific variation of the
// experiment, bypassing audience checks and bucketing. An empty variation
// key clears the pin.
func (c *Client) SetForcedVariation(experimentKey, userID, variationKey string) error {
	return c.projectConfig.SetForcedVariation(experimentKey, userID, variationKey)
}

// GetForcedVariation returns the variation key the visitor is pinned to,
// if any.
func (c *Client) GetForcedVariation(experimentKey, userID string) (string, bool) {
	variation, ok := c.projectConfig.GetForcedVariation(experimentKey, userID)
	if !ok {
		return "", false
	}
	return variation.Key, true
}

// Notifications exposes the client's notification center for handler
// registration.
func (c *Client) Notifications() *notification.Center {
	return c.notifications
}

// ProjectConfig exposes the parsed config snapshot.
func (c *Client) ProjectConfig() *projectconfig.Config {
	return c.projectConfig
}

// sendDecision emits a Decision notification carrying a freshly minted
// impression event.
func (c *Client) sendDecision(experiment entities.Experiment, variation entities.Variation, userID string, attributes map[string]any) {
	logEvent := notification.LogEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Params: map[string]any{
			"account_id":    c.projectConfig.AccountID(),
			"project_id":    c.projectConfig.ProjectID(),
			"revision":      c.projectConfig.Revision(),
			"campaign_id":   experiment.LayerID,
			"experiment_id": experiment.ID,
			"variation_id":  variation.ID,
			"user_id":       userID,
			"attributes":    attributes,
			"anonymize_ip":  c.projectConfig.AnonymizeIP(),
		},
	}

	if err := c.notifications.Send(notification.Decision, notification.DecisionPayload{
		Experiment: experiment,
		UserID:     userID,
		Attributes: attributes,
		Variation:  variation,
		Event:      logEvent,
	}); err != nil {
		c.logger.Warn("failed to send decision notification", "error", err)
	}

	c.logger.Info("activated experiment for user",
		"user_id", userID, "experiment", experiment.Key, "variation", variation.Key)
}

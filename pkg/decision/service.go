package decision

import (
	"context"
	"log/slog"

	"github.com/expkit/expkit/pkg/bucketer"
	"github.com/expkit/expkit/pkg/entities"
	"github.com/expkit/expkit/pkg/userprofile"
)

// BucketingIDAttribute is the reserved attribute key whose value replaces
// the user ID as the bucketing hash input. It overrides the hash identity
// only: whitelists, forced variations and user profiles still key on the
// real user ID. The "$" prefix keeps it out of the custom-attribute
// namespace.
const BucketingIDAttribute = "$opt_bucketing_id"

// Config is the read-only configuration lookup surface the decision
// pipeline runs against. Satisfied by *projectconfig.Config.
type Config interface {
	GetExperimentByID(id string) (entities.Experiment, error)
	GetGroup(id string) (entities.Group, error)
	GetAudience(id string) (entities.Audience, error)
	GetRollout(id string) (entities.Rollout, error)
	GetVariationByKey(experimentKey, variationKey string) (entities.Variation, error)
	GetVariationByID(experimentKey, variationID string) (entities.Variation, error)
	IsVariationIDValid(experimentKey, variationID string) bool
	GetForcedVariation(experimentKey, userID string) (entities.Variation, bool)
}

// Bucketer performs deterministic hash bucketing. Satisfied by
// *bucketer.Bucketer.
type Bucketer interface {
	Bucket(groups bucketer.GroupSource, experiment entities.Experiment, bucketingID, userID string) *entities.Variation
}

// Service decides which variation, if any, a visitor sees.
type Service struct {
	config   Config
	bucketer Bucketer
	profiles userprofile.Store
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for decision diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProfileStore enables sticky bucketing through the given store.
func WithProfileStore(store userprofile.Store) Option {
	return func(s *Service) {
		s.profiles = store
	}
}

// WithBucketer replaces the default bucketer.
func WithBucketer(b Bucketer) Option {
	return func(s *Service) {
		if b != nil {
			s.bucketer = b
		}
	}
}

// NewService creates a decision service over the given configuration
// snapshot.
func NewService(config Config, opts ...Option) *Service {
	s := &Service{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bucketer == nil {
		s.bucketer = bucketer.New(bucketer.WithLogger(s.logger))
	}
	return s
}

// GetVariation runs the experiment decision pipeline and returns the
// variation the visitor is allocated to, or nil if they are not in the
// experiment.
func (s *Service) GetVariation(ctx context.Context, experiment entities.Experiment, userID string, attributes map[string]any) *entities.Variation {
	if !experiment.IsRunning() {
		s.logger.Info("experiment is not running", "experiment", experiment.Key)
		return nil
	}

	if forced, ok := s.config.GetForcedVariation(experiment.Key, userID); ok {
		return &forced
	}

	if whitelisted := s.whitelistedVariation(experiment, userID); whitelisted != nil {
		return whitelisted
	}

	profile := userprofile.New(userID)
	if s.profiles != nil {
		if stored := s.storedProfile(ctx, userID); stored != nil {
			profile = stored
			if variation := s.storedVariation(experiment, stored); variation != nil {
				return variation
			}
		}
	}

	if !s.meetsAudienceConditions(experiment, userID, attributes) {
		s.logger.Info("user does not meet conditions to be in experiment",
			"user_id", userID, "experiment", experiment.Key)
		return nil
	}

	variation := s.bucketer.Bucket(s.config, experiment, s.bucketingID(userID, attributes), userID)
	if variation != nil {
		s.saveVariation(ctx, experiment, *variation, profile)
	}
	return variation
}

// bucketingID resolves the effective hash input: the reserved attribute
// value when present and non-empty, otherwise the user ID.
func (s *Service) bucketingID(userID string, attributes map[string]any) string {
	if override, ok := attributes[BucketingIDAttribute].(string); ok && override != "" {
		s.logger.Debug("using bucketing ID override", "bucketing_id", override)
		return override
	}
	return userID
}

// whitelistedVariation resolves the experiment's own per-user variation
// map. Entries naming a variation key that no longer resolves fall through
// to the rest of the pipeline.
func (s *Service) whitelistedVariation(experiment entities.Experiment, userID string) *entities.Variation {
	variationKey, ok := experiment.ForcedVariations[userID]
	if !ok {
		return nil
	}

	variation, err := s.config.GetVariationByKey(experiment.Key, variationKey)
	if err != nil {
		s.logger.Warn("whitelisted variation is not in the experiment",
			"user_id", userID,
			"experiment", experiment.Key,
			"variation_key", variationKey)
		return nil
	}

	s.logger.Info("user is forced into variation",
		"user_id", userID,
		"experiment", experiment.Key,
		"variation", variation.Key)
	return &variation
}

// meetsAudienceConditions reports whether the visitor qualifies for the
// experiment. An experiment without audiences targets everyone; otherwise
// any one matching audience suffices.
func (s *Service) meetsAudienceConditions(experiment entities.Experiment, userID string, attributes map[string]any) bool {
	if len(experiment.AudienceIDs) == 0 {
		return true
	}

	for _, audienceID := range experiment.AudienceIDs {
		audience, err := s.config.GetAudience(audienceID)
		if err != nil {
			s.logger.Warn("experiment references unknown audience",
				"experiment", experiment.Key, "audience_id", audienceID)
			continue
		}
		if audience.Conditions != nil && audience.Conditions.Evaluate(attributes) {
			return true
		}
	}
	return false
}

// storedProfile looks the visitor up in the profile store. Store failures
// and malformed maps are logged and reported as absence.
func (s *Service) storedProfile(ctx context.Context, userID string) *userprofile.UserProfile {
	raw, err := s.profiles.Lookup(ctx, userID)
	if err != nil {
		s.logger.Error("user profile lookup failed", "user_id", userID, "error", err)
		return nil
	}
	if raw == nil {
		s.logger.Info("no user profile found", "user_id", userID)
		return nil
	}

	profile, err := userprofile.FromMap(raw)
	if err != nil {
		s.logger.Warn("profile store returned an invalid user profile map",
			"user_id", userID, "error", err)
		return nil
	}
	return profile
}

// storedVariation resolves a sticky decision for the experiment out of the
// profile. Stored variation IDs that are no longer valid in the current
// configuration trigger a fresh bucketing.
func (s *Service) storedVariation(experiment entities.Experiment, profile *userprofile.UserProfile) *entities.Variation {
	stored, ok := profile.DecisionForExperiment(experiment.ID)
	if !ok {
		s.logger.Info("no previously activated variation found in user profile",
			"user_id", profile.UserID, "experiment", experiment.Key)
		return nil
	}

	if !s.config.IsVariationIDValid(experiment.Key, stored.VariationID) {
		s.logger.Info("stored variation no longer exists, re-bucketing user",
			"user_id", profile.UserID,
			"experiment", experiment.Key,
			"variation_id", stored.VariationID)
		return nil
	}

	variation, err := s.config.GetVariationByID(experiment.Key, stored.VariationID)
	if err != nil {
		return nil
	}

	s.logger.Info("returning previously activated variation from user profile",
		"user_id", profile.UserID,
		"experiment", experiment.Key,
		"variation", variation.Key)
	return &variation
}

// saveVariation persists a fresh decision, best-effort: save failures are
// logged and never abort the decision.
func (s *Service) saveVariation(ctx context.Context, experiment entities.Experiment, variation entities.Variation, profile *userprofile.UserProfile) {
	if s.profiles == nil {
		return
	}

	profile.SaveDecision(experiment.ID, userprofile.Decision{VariationID: variation.ID})
	if err := s.profiles.Save(ctx, profile.ToMap()); err != nil {
		s.logger.Warn("failed to save variation to user profile",
			"user_id", profile.UserID,
			"experiment", experiment.Key,
			"variation", variation.Key,
			"error", err)
		return
	}

	s.logger.Info("saved variation to user profile",
		"user_id", profile.UserID,
		"experiment", experiment.Key,
		"variation", variation.Key)
}

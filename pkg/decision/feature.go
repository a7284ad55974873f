package decision

import (
	"context"

	"github.com/expkit/expkit/pkg/entities"
)

// Decision sources.
const (
	SourceFeatureTest = "feature-test"
	SourceRollout     = "rollout"
)

// FeatureDecision is the outcome of the feature pipeline. Experiment is nil
// when the decision came from a rollout rule; both fields are nil when the
// visitor gets no variation at all.
type FeatureDecision struct {
	Experiment *entities.Experiment
	Variation  *entities.Variation
	Source     string
}

// GetVariationForFeature decides which variation of a feature flag the
// visitor sees: attached experiments first, rollout rules second.
func (s *Service) GetVariationForFeature(ctx context.Context, flag entities.FeatureFlag, userID string, attributes map[string]any) FeatureDecision {
	if experimentDecision := s.featureExperimentDecision(ctx, flag, userID, attributes); experimentDecision != nil {
		return *experimentDecision
	}

	if variation := s.rolloutVariation(ctx, flag, userID, attributes); variation != nil {
		s.logger.Info("user is in the rollout for feature",
			"user_id", userID, "feature", flag.Key)
		return FeatureDecision{Variation: variation, Source: SourceRollout}
	}

	s.logger.Info("user is not in the rollout for feature",
		"user_id", userID, "feature", flag.Key)
	return FeatureDecision{}
}

// featureExperimentDecision tries each attached experiment in configured
// order; the first one that yields a variation wins. Experiment IDs that no
// longer resolve are skipped. Mutual exclusion is enforced by the bucketer's
// group pass inside GetVariation, so a group sibling claiming the visitor's
// traffic simply yields no variation here.
func (s *Service) featureExperimentDecision(ctx context.Context, flag entities.FeatureFlag, userID string, attributes map[string]any) *FeatureDecision {
	if len(flag.ExperimentIDs) == 0 {
		s.logger.Debug("feature is not attached to any experiments", "feature", flag.Key)
		return nil
	}

	for _, experimentID := range flag.ExperimentIDs {
		experiment, err := s.config.GetExperimentByID(experimentID)
		if err != nil {
			s.logger.Warn("feature references unknown experiment",
				"feature", flag.Key, "experiment_id", experimentID)
			continue
		}

		if variation := s.GetVariation(ctx, experiment, userID, attributes); variation != nil {
			s.logger.Info("user is bucketed into an experiment of the feature",
				"user_id", userID,
				"feature", flag.Key,
				"experiment", experiment.Key)
			return &FeatureDecision{
				Experiment: &experiment,
				Variation:  variation,
				Source:     SourceFeatureTest,
			}
		}
	}

	s.logger.Info("user is not bucketed into any experiment of the feature",
		"user_id", userID, "feature", flag.Key)
	return nil
}

// rolloutVariation evaluates the flag's rollout rules in priority order.
// Failing a rule's audience moves on to the next rule, but failing its
// traffic allocation skips straight to the terminal "everyone else" rule:
// allocation percentages of later targeted rules are meaningless for a
// visitor already counted against an earlier eligible rule.
func (s *Service) rolloutVariation(ctx context.Context, flag entities.FeatureFlag, userID string, attributes map[string]any) *entities.Variation {
	if flag.RolloutID == "" {
		s.logger.Debug("feature has no rollout", "feature", flag.Key)
		return nil
	}

	rollout, err := s.config.GetRollout(flag.RolloutID)
	if err != nil {
		s.logger.Warn("feature references unknown rollout",
			"feature", flag.Key, "rollout_id", flag.RolloutID)
		return nil
	}
	if len(rollout.Experiments) == 0 {
		s.logger.Debug("rollout has no rules", "rollout_id", rollout.ID)
		return nil
	}

	bucketingID := s.bucketingID(userID, attributes)

	for i := 0; i < len(rollout.Experiments)-1; i++ {
		rule := rollout.Experiments[i]
		if !s.meetsAudienceConditions(rule, userID, attributes) {
			s.logger.Debug("user does not meet conditions for rollout rule",
				"user_id", userID, "rule", rule.Key)
			continue
		}
		if variation := s.bucketer.Bucket(s.config, rule, bucketingID, userID); variation != nil {
			return variation
		}
		break
	}

	everyoneElse := rollout.Experiments[len(rollout.Experiments)-1]
	return s.bucketer.Bucket(s.config, everyoneElse, bucketingID, userID)
}

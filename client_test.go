package expkit_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expkit/expkit"
	"github.com/expkit/expkit/pkg/decision"
	"github.com/expkit/expkit/pkg/notification"
	"github.com/expkit/expkit/pkg/projectconfig"
	"github.com/expkit/expkit/pkg/userprofile"
)

func loadDatafile(t *testing.T) []byte {
	t.Helper()
	raw, err := os.ReadFile("testdata/datafile.json")
	require.NoError(t, err)
	return raw
}

func newTestClient(t *testing.T, opts ...expkit.ClientOption) *expkit.Client {
	t.Helper()
	client, err := expkit.NewClient(loadDatafile(t), opts...)
	require.NoError(t, err)
	return client
}

// sfIPhone satisfies the "iPhone users in San Francisco" audience.
func sfIPhone() map[string]any {
	return map[string]any{
		"device_type": "iPhone",
		"location":    "San Francisco",
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("ParsesDatafile", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)
		assert.Equal(t, "15", client.ProjectConfig().Revision())
	})

	t.Run("RejectsMalformedDatafile", func(t *testing.T) {
		t.Parallel()
		_, err := expkit.NewClient([]byte("{"))
		assert.ErrorIs(t, err, projectconfig.ErrInvalidDatafile)
	})
}

func TestActivate(t *testing.T) {
	t.Parallel()

	t.Run("FullRangeExperimentActivatesEveryone", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		variation, err := client.Activate(context.Background(), "full_on_experiment", "any_visitor", nil)
		require.NoError(t, err)
		assert.Equal(t, "all_traffic", variation)
	})

	t.Run("EmitsDecisionNotificationWithImpression", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		var payload notification.DecisionPayload
		_, err := client.Notifications().AddHandler(notification.Decision, func(p any) {
			payload = p.(notification.DecisionPayload)
		})
		require.NoError(t, err)

		_, err = client.Activate(context.Background(), "full_on_experiment", "any_visitor", nil)
		require.NoError(t, err)

		assert.Equal(t, "full_on_experiment", payload.Experiment.Key)
		assert.Equal(t, "all_traffic", payload.Variation.Key)
		assert.Equal(t, "any_visitor", payload.UserID)
		assert.NotEmpty(t, payload.Event.ID)
		assert.False(t, payload.Event.Timestamp.IsZero())
		assert.Equal(t, "111140", payload.Event.Params["experiment_id"])
		assert.Equal(t, "111141", payload.Event.Params["variation_id"])
	})

	t.Run("PausedExperimentActivatesNobody", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		var notified bool
		_, err := client.Notifications().AddHandler(notification.Decision, func(p any) { notified = true })
		require.NoError(t, err)

		variation, err := client.Activate(context.Background(), "paused_experiment", "any_visitor", nil)
		require.NoError(t, err)
		assert.Empty(t, variation)
		assert.False(t, notified)
	})

	t.Run("UnknownExperiment", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		_, err := client.Activate(context.Background(), "no_such_experiment", "any_visitor", nil)
		assert.ErrorIs(t, err, projectconfig.ErrExperimentNotFound)
	})

	t.Run("AudienceGatesActivation", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		variation, err := client.Activate(context.Background(), "test_experiment", "testBucketingIdControl!", nil)
		require.NoError(t, err)
		assert.Empty(t, variation)

		variation, err = client.Activate(context.Background(), "test_experiment", "testBucketingIdControl!", sfIPhone())
		require.NoError(t, err)
		assert.Equal(t, "control", variation)
	})

	t.Run("BucketingIDOverrideChangesAllocation", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		// This visitor hashes into the second bucket on their own id.
		variation, err := client.Activate(context.Background(), "test_experiment", "123456789", sfIPhone())
		require.NoError(t, err)
		assert.Equal(t, "variation", variation)

		attrs := sfIPhone()
		attrs[decision.BucketingIDAttribute] = "testBucketingIdControl!"
		variation, err = client.Activate(context.Background(), "test_experiment", "123456789", attrs)
		require.NoError(t, err)
		assert.Equal(t, "control", variation)
	})
}

func TestGetVariation(t *testing.T) {
	t.Parallel()

	t.Run("DecidesWithoutImpression", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		var notified bool
		_, err := client.Notifications().AddHandler(notification.Decision, func(p any) { notified = true })
		require.NoError(t, err)

		variation, err := client.GetVariation(context.Background(), "full_on_experiment", "any_visitor", nil)
		require.NoError(t, err)
		assert.Equal(t, "all_traffic", variation)
		assert.False(t, notified)
	})

	t.Run("WhitelistedUser", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		// Whitelist bypasses the audience gate, so no attributes needed.
		variation, err := client.GetVariation(context.Background(), "test_experiment", "user1", nil)
		require.NoError(t, err)
		assert.Equal(t, "control", variation)
	})
}

func TestForcedVariations(t *testing.T) {
	t.Parallel()

	t.Run("ForcedVariationWinsOverEverything", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		require.NoError(t, client.SetForcedVariation("test_experiment", "forced_user", "variation"))

		variation, err := client.GetVariation(context.Background(), "test_experiment", "forced_user", nil)
		require.NoError(t, err)
		assert.Equal(t, "variation", variation)

		got, ok := client.GetForcedVariation("test_experiment", "forced_user")
		require.True(t, ok)
		assert.Equal(t, "variation", got)
	})

	t.Run("EmptyKeyClearsTheMapping", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		require.NoError(t, client.SetForcedVariation("test_experiment", "forced_user", "variation"))
		require.NoError(t, client.SetForcedVariation("test_experiment", "forced_user", ""))

		_, ok := client.GetForcedVariation("test_experiment", "forced_user")
		assert.False(t, ok)
	})

	t.Run("UnknownVariationKey", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		err := client.SetForcedVariation("test_experiment", "forced_user", "no_such_variation")
		assert.ErrorIs(t, err, projectconfig.ErrVariationNotFound)
	})
}

func TestIsFeatureEnabled(t *testing.T) {
	t.Parallel()

	t.Run("FeatureTestEmitsImpression", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		var payload notification.DecisionPayload
		_, err := client.Notifications().AddHandler(notification.Decision, func(p any) {
			payload = p.(notification.DecisionPayload)
		})
		require.NoError(t, err)

		enabled, err := client.IsFeatureEnabled(context.Background(), "always_on_feature", "any_visitor", nil)
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.Equal(t, "full_on_experiment", payload.Experiment.Key)
	})

	t.Run("AudienceMissDisablesFeature", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		enabled, err := client.IsFeatureEnabled(context.Background(), "test_feature", "any_visitor", nil)
		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("RolloutEnablesWithoutImpression", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		var notified bool
		_, err := client.Notifications().AddHandler(notification.Decision, func(p any) { notified = true })
		require.NoError(t, err)

		enabled, err := client.IsFeatureEnabled(context.Background(), "rollout_feature", "any_visitor", sfIPhone())
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.False(t, notified)
	})

	t.Run("UnknownFeature", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		_, err := client.IsFeatureEnabled(context.Background(), "no_such_feature", "any_visitor", nil)
		assert.ErrorIs(t, err, projectconfig.ErrFeatureNotFound)
	})
}

func TestGetEnabledFeatures(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)

	features := client.GetEnabledFeatures(context.Background(), "123456789", sfIPhone())
	assert.Equal(t, []string{"always_on_feature", "rollout_feature", "test_feature"}, features)

	// Without the audience attributes the feature test behind test_feature
	// is out of reach; the always-on feature stays on for everyone.
	features = client.GetEnabledFeatures(context.Background(), "any_visitor", nil)
	assert.Contains(t, features, "always_on_feature")
	assert.NotContains(t, features, "test_feature")
}

func TestTrack(t *testing.T) {
	t.Parallel()

	t.Run("EmitsTrackNotification", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		var payload notification.TrackPayload
		_, err := client.Notifications().AddHandler(notification.Track, func(p any) {
			payload = p.(notification.TrackPayload)
		})
		require.NoError(t, err)

		tags := map[string]any{"revenue": 4200}
		require.NoError(t, client.Track(context.Background(), "purchase", "any_visitor", nil, tags))

		assert.Equal(t, "purchase", payload.EventKey)
		assert.Equal(t, "any_visitor", payload.UserID)
		assert.Equal(t, tags, payload.EventTags)
		assert.NotEmpty(t, payload.Event.ID)
		assert.Equal(t, "7718020063", payload.Event.Params["event_id"])
	})

	t.Run("UnknownEvent", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t)

		err := client.Track(context.Background(), "no_such_event", "any_visitor", nil, nil)
		assert.ErrorIs(t, err, expkit.ErrEventNotFound)
	})
}

func TestStickyBucketing(t *testing.T) {
	t.Parallel()

	store := userprofile.NewMemoryStore()
	client := newTestClient(t, expkit.WithProfileStore(store))

	variation, err := client.GetVariation(context.Background(), "test_experiment", "123456789", sfIPhone())
	require.NoError(t, err)
	require.Equal(t, "variation", variation)

	saved, err := store.Lookup(context.Background(), "123456789")
	require.NoError(t, err)
	require.NotNil(t, saved)

	bucketMap, ok := saved[userprofile.ExperimentBucketMapKey].(map[string]any)
	require.True(t, ok)
	entry, ok := bucketMap["111127"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "111129", entry[userprofile.VariationIDKey])
}

func TestWithNotificationCenter(t *testing.T) {
	t.Parallel()

	center := notification.NewCenter()
	var notified bool
	_, err := center.AddHandler(notification.Decision, func(p any) { notified = true })
	require.NoError(t, err)

	client := newTestClient(t, expkit.WithNotificationCenter(center))

	_, err = client.Activate(context.Background(), "full_on_experiment", "any_visitor", nil)
	require.NoError(t, err)
	assert.True(t, notified)
}

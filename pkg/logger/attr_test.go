package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/expkit/expkit/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("NilErrorYieldsEmptyAttr", func(t *testing.T) {
		t.Parallel()
		attr := logger.Error(nil)
		assert.Empty(t, attr.Key)
	})

	t.Run("WrapsError", func(t *testing.T) {
		t.Parallel()
		err := errors.New("boom")
		attr := logger.Error(err)
		assert.Equal(t, "error", attr.Key)
		assert.Equal(t, err, attr.Value.Any())
	})
}

func TestUserID(t *testing.T) {
	t.Parallel()

	t.Run("EmptyIDYieldsEmptyAttr", func(t *testing.T) {
		t.Parallel()
		attr := logger.UserID("")
		assert.Empty(t, attr.Key)
	})

	t.Run("RecordsID", func(t *testing.T) {
		t.Parallel()
		attr := logger.UserID("visitor-1")
		assert.Equal(t, "user_id", attr.Key)
		assert.Equal(t, "visitor-1", attr.Value.String())
	})
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "experiment_key", logger.ExperimentKey("exp").Key)
	assert.Equal(t, "variation_key", logger.VariationKey("var").Key)
	assert.Equal(t, "feature_key", logger.FeatureKey("flag").Key)
	assert.Equal(t, "event_key", logger.EventKey("purchase").Key)
	assert.Equal(t, "component", logger.Component("bucketer").Key)
	assert.Equal(t, int64(5254), logger.BucketValue(5254).Value.Int64())
}

func TestGroup(t *testing.T) {
	t.Parallel()

	attr := logger.Group("decision",
		logger.ExperimentKey("exp"),
		logger.VariationKey("var"),
	)
	assert.Equal(t, "decision", attr.Key)
	assert.Len(t, attr.Value.Group(), 2)
}

package logger

import "log/slog"

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the visitor identifier under the key "user_id".
// If id is empty, it returns an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// ExperimentKey records the experiment key under the key "experiment_key".
func ExperimentKey(key string) slog.Attr {
	return slog.String("experiment_key", key)
}

// VariationKey records the variation key under the key "variation_key".
func VariationKey(key string) slog.Attr {
	return slog.String("variation_key", key)
}

// FeatureKey records the feature flag key under the key "feature_key".
func FeatureKey(key string) slog.Attr {
	return slog.String("feature_key", key)
}

// BucketValue records the computed bucket value under the key "bucket_value".
func BucketValue(v int) slog.Attr {
	return slog.Int("bucket_value", v)
}

// EventKey records the conversion event key under the key "event_key".
func EventKey(key string) slog.Attr {
	return slog.String("event_key", key)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

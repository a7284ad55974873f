package projectconfig

import "errors"

// Predefined errors for the projectconfig package.
var (
	// ErrInvalidDatafile indicates the datafile could not be parsed or
	// failed schema validation.
	ErrInvalidDatafile = errors.New("invalid project datafile")

	// ErrUnsupportedVersion indicates the datafile version is not supported
	// by this SDK.
	ErrUnsupportedVersion = errors.New("unsupported datafile version")

	// ErrExperimentNotFound indicates the requested experiment is not in
	// the configuration.
	ErrExperimentNotFound = errors.New("experiment not found in configuration")

	// ErrVariationNotFound indicates the requested variation is not in the
	// experiment.
	ErrVariationNotFound = errors.New("variation not found in configuration")

	// ErrGroupNotFound indicates the requested group is not in the
	// configuration.
	ErrGroupNotFound = errors.New("group not found in configuration")

	// ErrAudienceNotFound indicates the requested audience is not in the
	// configuration.
	ErrAudienceNotFound = errors.New("audience not found in configuration")

	// ErrFeatureNotFound indicates the requested feature flag is not in the
	// configuration.
	ErrFeatureNotFound = errors.New("feature flag not found in configuration")

	// ErrRolloutNotFound indicates the requested rollout is not in the
	// configuration.
	ErrRolloutNotFound = errors.New("rollout not found in configuration")
)

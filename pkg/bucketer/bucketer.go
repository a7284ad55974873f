package bucketer

import (
	"log/slog"
	"math"

	"github.com/twmb/murmur3"

	"github.com/expkit/expkit/pkg/entities"
)

const (
	// hashSeed is the fixed MurmurHash3 seed shared by all SDK
	// implementations. Changing it breaks cross-SDK bucketing parity.
	hashSeed uint32 = 1

	// maxTrafficValue is the size of the traffic allocation space.
	maxTrafficValue = 10000
)

// maxHashValue is 2^32, the size of the 32-bit hash space.
var maxHashValue = math.Pow(2, 32)

// GroupSource resolves mutually exclusive groups by ID. It is satisfied by
// the projectconfig lookup surface.
type GroupSource interface {
	GetGroup(id string) (entities.Group, error)
}

// Bucketer assigns bucket values and walks traffic allocation tables.
type Bucketer struct {
	logger *slog.Logger
}

// Option configures a Bucketer.
type Option func(*Bucketer)

// WithLogger sets the logger used for bucketing diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bucketer) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a Bucketer.
func New(opts ...Option) *Bucketer {
	b := &Bucketer{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GenerateBucketValue maps a bucketing key onto [0, maxTrafficValue). The
// scaling follows the reference algorithm exactly: the unsigned 32-bit hash
// is divided by 2^32 and the ratio scaled to the traffic space, truncating.
func (b *Bucketer) GenerateBucketValue(bucketingKey string) int {
	hash := murmur3.SeedStringSum32(hashSeed, bucketingKey)
	ratio := float64(hash) / maxHashValue
	return int(ratio * maxTrafficValue)
}

// FindBucket returns the entity ID owning the bucket the bucketing ID falls
// into, or "" if the computed value lands in unallocated space (traffic held
// back). parentID is the experiment or group the allocation belongs to and
// is part of the hash input; userID is carried for diagnostics only.
func (b *Bucketer) FindBucket(bucketingID, userID, parentID string, allocations []entities.TrafficAllocation) string {
	bucketValue := b.GenerateBucketValue(bucketingID + parentID)
	b.logger.Debug("assigned bucket value",
		"user_id", userID,
		"bucketing_id", bucketingID,
		"parent_id", parentID,
		"bucket_value", bucketValue)

	for _, allocation := range allocations {
		if bucketValue < allocation.EndOfRange {
			return allocation.EntityID
		}
	}
	return ""
}

// Bucket assigns the visitor to a variation of the experiment, or nil if the
// visitor is excluded.
//
// If the experiment belongs to a mutually exclusive ("random" policy) group,
// the visitor is first bucketed into the group's shared traffic pool using
// the plain user ID; landing on a different member experiment excludes them.
// The experiment's own variation allocation is then walked using the
// effective bucketing ID, which may differ from the user ID when the
// bucketing ID attribute override is in play.
func (b *Bucketer) Bucket(groups GroupSource, experiment entities.Experiment, bucketingID, userID string) *entities.Variation {
	if experiment.GroupID != "" {
		group, err := groups.GetGroup(experiment.GroupID)
		if err != nil {
			b.logger.Error("failed to resolve experiment group",
				"experiment", experiment.Key,
				"group_id", experiment.GroupID,
				"error", err)
			return nil
		}
		if group.Policy == entities.GroupPolicyRandom {
			bucketedExperimentID := b.FindBucket(userID, userID, group.ID, group.TrafficAllocation)
			if bucketedExperimentID == "" {
				b.logger.Info("user is in no experiment of the mutex group",
					"user_id", userID, "group_id", group.ID)
				return nil
			}
			if bucketedExperimentID != experiment.ID {
				b.logger.Info("user is not in the experiment of the mutex group",
					"user_id", userID,
					"experiment", experiment.Key,
					"group_id", group.ID)
				return nil
			}
			b.logger.Info("user is in the experiment of the mutex group",
				"user_id", userID,
				"experiment", experiment.Key,
				"group_id", group.ID)
		}
	}

	variationID := b.FindBucket(bucketingID, userID, experiment.ID, experiment.TrafficAllocation)
	if variationID == "" {
		b.logger.Info("user is in no variation", "user_id", userID, "experiment", experiment.Key)
		return nil
	}

	for i := range experiment.Variations {
		if experiment.Variations[i].ID == variationID {
			b.logger.Info("user is in variation",
				"user_id", userID,
				"experiment", experiment.Key,
				"variation", experiment.Variations[i].Key)
			return &experiment.Variations[i]
		}
	}

	// Allocation tables referencing unknown variation IDs are a datafile
	// authoring defect; treat as unallocated traffic.
	b.logger.Error("traffic allocation references unknown variation",
		"experiment", experiment.Key,
		"variation_id", variationID)
	return nil
}

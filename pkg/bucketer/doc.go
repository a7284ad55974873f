// Package bucketer deterministically assigns visitors to experiments and
// variations using hash-based traffic allocation.
//
// A bucketing key (bucketing ID concatenated with the experiment or group ID)
// is hashed with MurmurHash3-32 under a fixed seed and scaled onto the
// [0, 10000) traffic space. The same key always produces the same bucket
// value, in this SDK and in every other SDK implementing the scheme; the
// hash algorithm, seed and scaling arithmetic are a cross-implementation
// contract and must not change.
//
// Bucketing is a pure function of its inputs: the bucketer holds no state
// besides a logger, so concurrent decisions need no synchronization.
package bucketer

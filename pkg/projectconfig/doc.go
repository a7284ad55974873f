// Package projectconfig loads a project datafile into an immutable
// configuration snapshot and exposes the lookup surface the decision
// pipeline runs against.
//
// A snapshot is built once from the raw datafile JSON (schema-validated,
// then decoded into the entities model): group members are flattened into
// the experiment maps with their group ID attached, audience condition
// strings are decoded into condition trees, and by-key/by-ID indexes are
// precomputed. After construction nothing in the snapshot mutates, so any
// number of concurrent decisions can share it without locking.
//
// The one mutable surface is the forced-variation map, a test/debug override
// assigning users to variations ahead of every other decision rule; it is
// guarded by its own lock.
//
// Lookup misses are reported as typed sentinel errors (ErrExperimentNotFound
// and friends) so callers on the decision hot path can skip candidates by
// errors.Is checks rather than control-flow panics.
package projectconfig

// Package entities defines the immutable configuration model shared by the
// decision pipeline: experiments, variations, mutually exclusive groups,
// feature flags and rollouts.
//
// All entities are plain value types loaded once from a project datafile
// (see package projectconfig) and never mutated afterwards, which is what
// makes concurrent decision calls safe without locking.
package entities

// Package userprofile implements sticky bucketing state: per-visitor records
// of past experiment decisions and the pluggable store they persist through.
//
// A UserProfile maps experiment IDs to the variation a visitor was bucketed
// into, so repeat visits keep seeing the same variation even after traffic
// allocations change. Profiles round-trip through a plain map wire shape:
//
//	{"user_id": "u1", "experiment_bucket_map": {"111127": {"variation_id": "v1"}}}
//
// The Store interface is the integration point for host applications; the
// package ships an in-memory store for tests and single-process use, and a
// Redis-backed store for shared deployments. Store failures never abort a
// decision - the decision service logs them and re-buckets.
package userprofile

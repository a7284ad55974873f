package userprofile

import "context"

// Store is the pluggable persistence interface for user profiles. Host
// applications implement it over whatever backend suits their deployment.
//
// Lookup returns the raw profile map for a visitor, or (nil, nil) when no
// profile exists. Both methods may fail; the decision pipeline treats
// failures as "no stored profile" and proceeds with fresh bucketing.
type Store interface {
	Lookup(ctx context.Context, userID string) (map[string]any, error)
	Save(ctx context.Context, profile map[string]any) error
}

package userprofile

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store implementation. It is safe for
// concurrent use and suitable for tests and single-process deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]map[string]any
}

// NewMemoryStore creates an empty in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]map[string]any),
	}
}

// Lookup returns a copy of the stored profile map, or (nil, nil) when the
// visitor has no profile.
func (s *MemoryStore) Lookup(ctx context.Context, userID string) (map[string]any, error) {
	s.mu.RLock()
	profile, ok := s.profiles[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return copyProfileMap(profile), nil
}

// Save stores a copy of the profile map keyed by its user ID. Profiles
// without a string user ID are rejected.
func (s *MemoryStore) Save(ctx context.Context, profile map[string]any) error {
	userID, ok := profile[UserIDKey].(string)
	if !ok || userID == "" {
		return ErrInvalidProfileMap
	}

	s.mu.Lock()
	s.profiles[userID] = copyProfileMap(profile)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored profiles.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// copyProfileMap deep-copies the two map levels of the wire shape so callers
// cannot mutate stored state through a returned or retained reference.
func copyProfileMap(profile map[string]any) map[string]any {
	copied := make(map[string]any, len(profile))
	for key, value := range profile {
		if nested, ok := value.(map[string]any); ok {
			nestedCopy := make(map[string]any, len(nested))
			for nestedKey, nestedValue := range nested {
				if decision, ok := nestedValue.(map[string]any); ok {
					decisionCopy := make(map[string]any, len(decision))
					for dKey, dValue := range decision {
						decisionCopy[dKey] = dValue
					}
					nestedCopy[nestedKey] = decisionCopy
					continue
				}
				nestedCopy[nestedKey] = nestedValue
			}
			copied[key] = nestedCopy
			continue
		}
		copied[key] = value
	}
	return copied
}

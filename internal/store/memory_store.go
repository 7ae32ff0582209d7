package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process ProfileStore used in tests and single-node
// development setups
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]map[string]string

	// FailWrites makes every write return an error, for exercising
	// persistence-failure paths in tests
	FailWrites error

	// FailReads does the same for reads
	FailReads error
}

// NewMemoryStore creates an empty in-memory profile store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]map[string]string)}
}

func (s *MemoryStore) bag(profileID string) map[string]string {
	bag, ok := s.profiles[profileID]
	if !ok {
		bag = make(map[string]string)
		s.profiles[profileID] = bag
	}
	return bag
}

// Get returns the value for a key, or "" when absent
func (s *MemoryStore) Get(_ context.Context, profileID, key string) (string, error) {
	if s.FailReads != nil {
		return "", s.FailReads
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[profileID][key], nil
}

// Set writes a single key
func (s *MemoryStore) Set(_ context.Context, profileID, key, value string) error {
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bag(profileID)[key] = value
	return nil
}

// SetAll writes several keys in one operation
func (s *MemoryStore) SetAll(_ context.Context, profileID string, values map[string]string) error {
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bag := s.bag(profileID)
	for k, v := range values {
		bag[k] = v
	}
	return nil
}

// Delete removes the given keys
func (s *MemoryStore) Delete(_ context.Context, profileID string, keys ...string) error {
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bag := s.profiles[profileID]
	for _, k := range keys {
		delete(bag, k)
	}
	return nil
}

// Snapshot returns every key currently set for a profile
func (s *MemoryStore) Snapshot(_ context.Context, profileID string) (map[string]string, error) {
	if s.FailReads != nil {
		return nil, s.FailReads
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.profiles[profileID]))
	for k, v := range s.profiles[profileID] {
		out[k] = v
	}
	return out, nil
}

var _ ProfileStore = (*MemoryStore)(nil)

// Package memory is a process-local Store used in tests and for throwaway sessions.
package memory

import (
	"context"
	"sync"

	"github.com/ssbags/storefront/internal/storage"
	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// Store keeps values in a map.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	// FailWrites makes every Set and Delete return this error when non-nil.
	FailWrites error
}

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, apperrors.NotFound("storage key", key)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Set(_ context.Context, entries ...storage.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	for _, e := range entries {
		v := make([]byte, len(e.Value))
		copy(v, e.Value)
		s.values[e.Key] = v
	}
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

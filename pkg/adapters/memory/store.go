package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/provview/pkg/domain"
)

// Store implements ports.ResultStore in memory.
// Safe for concurrent use.
type Store[T any] struct {
	data map[string]T
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[string]T),
	}
}

// Save stores the value, replacing any previous value for id.
func (s *Store[T]) Save(ctx context.Context, id string, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = value
	return nil
}

// Load retrieves the value from memory.
func (s *Store[T]) Load(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[id]
	if !ok {
		var zero T
		return zero, domain.ErrResultNotFound
	}
	return value, nil
}

// Delete removes the value.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored ids in ascending order.
func (s *Store[T]) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

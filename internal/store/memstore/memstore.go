// Package memstore is a process-local key-value medium. Nothing survives the
// process; it backs tests and the "memory" driver.
package memstore

import (
	"context"
	"sync"
)

type Store struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	s.sets++
	return nil
}

func (s *Store) Close() error { return nil }

// Sets reports how many writes the store has seen.
func (s *Store) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

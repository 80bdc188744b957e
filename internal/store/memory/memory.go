// Package memory is the in-memory store backend used by tests and local
// development. Semantics match the production backend: whole-array reads and
// replacements keyed by (owner, collection).
package memory

import (
	"context"
	"sync"
)

type Store struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

func (s *Store) List(_ context.Context, ownerID, collection string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[key(ownerID, collection)]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *Store) Replace(_ context.Context, ownerID, collection string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.docs[key(ownerID, collection)] = stored
	return nil
}

func key(ownerID, collection string) string {
	return collection + ":" + ownerID
}

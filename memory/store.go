package memory

import (
	"context"
	"sync"
)

// Store persists artifacts by key.
type Store interface {
	// Load returns the artifact, or ErrKeyNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save creates or overwrites the artifact.
	Save(ctx context.Context, key string, value []byte) error
	// Delete removes the artifact. Missing keys are ignored.
	Delete(ctx context.Context, key string) error
}

// MemStore is an in-process Store.
type MemStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemStore) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests. It counts Save calls so
// tests can assert that mutations persist synchronously.
type MemoryStore struct {
	mu        sync.Mutex
	data      []byte
	written   bool
	SaveCalls int
	LoadErr   error
	SaveErr   error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed pre-populates the store, as if a previous process had written it.
func (s *MemoryStore) Seed(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.written = true
}

func (s *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if !s.written {
		return nil, nil
	}
	return append([]byte(nil), s.data...), nil
}

func (s *MemoryStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.data = append([]byte(nil), data...)
	s.written = true
	s.SaveCalls++
	return nil
}

// Bytes returns the last saved document.
func (s *MemoryStore) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...)
}

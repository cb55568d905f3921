// Package pool owns the per-pair reserve and share records and the state
// transitions applied to them.
package pool

import (
	"context"
	"sync"

	"simpleswap/internal/pair"
)

// Store persists pool records keyed by canonical pair.
type Store interface {
	Get(ctx context.Context, key pair.Key) (Record, bool, error)
	Put(ctx context.Context, key pair.Key, rec Record) error
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[pair.Key]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[pair.Key]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, key pair.Key) (Record, bool, error) {
	s.mu.RLock()
	rec, ok := s.data[key]
	s.mu.RUnlock()
	return rec, ok, nil
}

func (s *MemoryStore) Put(ctx context.Context, key pair.Key, rec Record) error {
	s.mu.Lock()
	s.data[key] = rec
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored pools.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

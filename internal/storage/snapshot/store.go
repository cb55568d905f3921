// Package snapshot persists pool records as a single JSON document that is
// rewritten on every commit.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"simpleswap/internal/model"
	"simpleswap/internal/pair"
	"simpleswap/internal/pool"
	"simpleswap/internal/storage"
)

// Store is a pool.Store backed by a local JSON file.
type Store struct {
	path string

	mu   sync.RWMutex
	data map[pair.Key]pool.Record
}

type document struct {
	UpdatedAt string            `json:"updated_at"`
	Pools     []model.PoolState `json:"pools"`
}

// Open loads path if it exists. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("state file path is required")
	}
	s := &Store{path: path, data: make(map[pair.Key]pool.Record)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	for _, state := range doc.Pools {
		key, rec, err := storage.DecodePool(state)
		if err != nil {
			return nil, fmt.Errorf("load state: %w", err)
		}
		s.data[key] = rec
	}
	return s, nil
}

func (s *Store) Get(ctx context.Context, key pair.Key) (pool.Record, bool, error) {
	s.mu.RLock()
	rec, ok := s.data[key]
	s.mu.RUnlock()
	return rec, ok, nil
}

// Put records rec and rewrites the file. The in-memory view is left
// unchanged when the write fails.
func (s *Store) Put(ctx context.Context, key pair.Key, rec pool.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	s.data[key] = rec
	if err := s.flush(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// Pools returns every stored pool ordered by pair.
func (s *Store) Pools(ctx context.Context) ([]model.PoolState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states(), nil
}

func (s *Store) states() []model.PoolState {
	out := make([]model.PoolState, 0, len(s.data))
	for key, rec := range s.data {
		out = append(out, storage.EncodePool(key, rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AssetA != out[j].AssetA {
			return out[i].AssetA < out[j].AssetA
		}
		return out[i].AssetB < out[j].AssetB
	})
	return out
}

func (s *Store) flush() error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	doc := document{
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Pools:     s.states(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}

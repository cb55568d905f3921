package storage

import (
	"context"
	"sync"

	"simpleswap/internal/model"
)

// Storage defines a sink for emitted exchange logs.
type Storage interface {
	PutLogBatch(ctx context.Context, logs []model.LogRecord) error
}

// MemoryStorage keeps emitted logs in process memory.
type MemoryStorage struct {
	mu   sync.Mutex
	logs []model.LogRecord
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) PutLogBatch(ctx context.Context, logs []model.LogRecord) error {
	s.mu.Lock()
	s.logs = append(s.logs, logs...)
	s.mu.Unlock()
	return nil
}

// Logs returns a copy of the stored logs in emission order.
func (s *MemoryStorage) Logs() []model.LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LogRecord, len(s.logs))
	copy(out, s.logs)
	return out
}

// Discard drops every log.
type Discard struct{}

func (Discard) PutLogBatch(ctx context.Context, logs []model.LogRecord) error { return nil }

type tee []Storage

// Tee fans every batch out to each sink in order, stopping at the first
// error.
func Tee(sinks ...Storage) Storage {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return tee(sinks)
}

func (t tee) PutLogBatch(ctx context.Context, logs []model.LogRecord) error {
	for _, sink := range t {
		if err := sink.PutLogBatch(ctx, logs); err != nil {
			return err
		}
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"testing"

	"simpleswap/internal/model"
)

type failingStorage struct{}

func (failingStorage) PutLogBatch(context.Context, []model.LogRecord) error {
	return errors.New("sink down")
}

func TestTee(t *testing.T) {
	first, second := NewMemoryStorage(), NewMemoryStorage()
	sink := Tee(first, second)
	logs := []model.LogRecord{{Sequence: 3}}
	if err := sink.PutLogBatch(context.Background(), logs); err != nil {
		t.Fatalf("put: %v", err)
	}
	if len(first.Logs()) != 1 || len(second.Logs()) != 1 {
		t.Fatalf("fan out: %d %d", len(first.Logs()), len(second.Logs()))
	}

	third := NewMemoryStorage()
	if err := Tee(failingStorage{}, third).PutLogBatch(context.Background(), logs); err == nil {
		t.Fatalf("expected error")
	}
	if len(third.Logs()) != 0 {
		t.Fatalf("sink after a failure should not receive the batch")
	}
}

func TestMemoryStorageCopies(t *testing.T) {
	s := NewMemoryStorage()
	_ = s.PutLogBatch(context.Background(), []model.LogRecord{{Sequence: 1}})
	logs := s.Logs()
	logs[0].Sequence = 99
	if s.Logs()[0].Sequence != 1 {
		t.Fatalf("Logs exposed internal slice")
	}
}

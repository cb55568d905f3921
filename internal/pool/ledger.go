package pool

import (
	"context"
	"fmt"

	"simpleswap/internal/pair"
	"simpleswap/internal/revert"
)

// Ledger reads and commits pool records through a Store. The store's
// lifecycle belongs to the caller.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// LookupOrCreate returns the stored record for key, or a zeroed record when
// the pair has never been written.
func (l *Ledger) LookupOrCreate(ctx context.Context, key pair.Key) (Record, error) {
	rec, _, err := l.store.Get(ctx, key)
	if err != nil {
		return Record{}, fmt.Errorf("get pool %s: %w", key, err)
	}
	return rec, nil
}

// Lookup returns the stored record for key or revert.ErrPoolNotFound.
func (l *Ledger) Lookup(ctx context.Context, key pair.Key) (Record, error) {
	rec, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return Record{}, fmt.Errorf("get pool %s: %w", key, err)
	}
	if !ok {
		return Record{}, revert.ErrPoolNotFound
	}
	return rec, nil
}

// Commit validates rec and writes it.
func (l *Ledger) Commit(ctx context.Context, key pair.Key, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := l.store.Put(ctx, key, rec); err != nil {
		return fmt.Errorf("put pool %s: %w", key, err)
	}
	return nil
}

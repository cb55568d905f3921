package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"simpleswap/internal/config"
	"simpleswap/internal/model"
	"simpleswap/internal/pool"
	"simpleswap/internal/storage"
	"simpleswap/internal/storage/postgres"
	"simpleswap/internal/storage/snapshot"
)

type poolLister interface {
	Pools(ctx context.Context) ([]model.PoolState, error)
}

// poolBackend is an opened pool store. pg is set for the postgres backend,
// which also persists emitted logs.
type poolBackend struct {
	store  pool.Store
	lister poolLister
	pg     *postgres.Store
}

func (b *poolBackend) Close() {
	if b.pg != nil {
		b.pg.Close()
	}
}

// ensureFresh refuses a store that already holds pools. Replay rebuilds
// asset and share balances from genesis, so pools left by an earlier run
// would have reserves no balance backs.
func (b *poolBackend) ensureFresh(ctx context.Context) error {
	if b.lister == nil {
		return nil
	}
	pools, err := b.lister.Pools(ctx)
	if err != nil {
		return fmt.Errorf("list pools: %w", err)
	}
	if len(pools) > 0 {
		return fmt.Errorf("pool store already holds %d pools (first %s/%s); replay needs an empty store",
			len(pools), pools[0].AssetA, pools[0].AssetB)
	}
	return nil
}

func openPools(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*poolBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case config.StoreFile:
		s, err := snapshot.Open(cfg.StateFile)
		if err != nil {
			return nil, err
		}
		logger.Info("pool store opened", zap.String("store", cfg.Kind), zap.String("state_file", cfg.StateFile))
		return &poolBackend{store: s, lister: s}, nil
	case config.StorePostgres:
		s, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		logger.Info("pool store opened", zap.String("store", cfg.Kind))
		return &poolBackend{store: s, lister: s, pg: s}, nil
	default:
		logger.Info("pool store opened", zap.String("store", cfg.Kind))
		return &poolBackend{store: pool.NewMemoryStore()}, nil
	}
}

// logSinks returns the sinks emitted logs go to: the JSONL file at path
// when set, plus Postgres when that is the pool backend.
func (b *poolBackend) logSinks(path string) storage.Storage {
	var sinks []storage.Storage
	if path != "" {
		sinks = append(sinks, storage.NewJsonlStorage(path))
	}
	if b.pg != nil {
		sinks = append(sinks, b.pg)
	}
	if len(sinks) == 0 {
		return storage.Discard{}
	}
	return storage.Tee(sinks...)
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"simpleswap/internal/model"
	"simpleswap/internal/pair"
	"simpleswap/internal/pool"
	"simpleswap/internal/storage"
)

// Store provides Postgres persistence for pool records and emitted logs.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	conn, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: conn}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS pools (
	pair_id      TEXT PRIMARY KEY,
	asset_a      TEXT NOT NULL,
	asset_b      TEXT NOT NULL,
	reserve_a    NUMERIC(78, 0) NOT NULL,
	reserve_b    NUMERIC(78, 0) NOT NULL,
	total_shares NUMERIC(78, 0) NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS exchange_logs (
	chain_id    BIGINT NOT NULL,
	address     TEXT NOT NULL,
	sequence    BIGINT NOT NULL,
	topics      TEXT[] NOT NULL,
	data        TEXT NOT NULL,
	timestamp   BIGINT NOT NULL,
	emitted_at  TEXT NOT NULL,
	PRIMARY KEY (chain_id, address, sequence)
);
`

// EnsureSchema creates the tables the store writes to.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Get loads the pool stored for key.
func (s *Store) Get(ctx context.Context, key pair.Key) (pool.Record, bool, error) {
	var state model.PoolState
	row := s.pool.QueryRow(ctx, `
		SELECT pair_id, asset_a, asset_b, reserve_a::text, reserve_b::text, total_shares::text
		FROM pools WHERE pair_id = $1
	`, key.ID().Hex())
	if err := row.Scan(
		&state.PairID,
		&state.AssetA,
		&state.AssetB,
		&state.ReserveA,
		&state.ReserveB,
		&state.TotalShares,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pool.Record{}, false, nil
		}
		return pool.Record{}, false, err
	}

	gotKey, rec, err := storage.DecodePool(state)
	if err != nil {
		return pool.Record{}, false, err
	}
	if gotKey != key {
		return pool.Record{}, false, fmt.Errorf("pool row %s holds pair %s", state.PairID, gotKey)
	}
	return rec, true, nil
}

// Put upserts the pool stored for key.
func (s *Store) Put(ctx context.Context, key pair.Key, rec pool.Record) error {
	state := storage.EncodePool(key, rec)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pools (
			pair_id, asset_a, asset_b, reserve_a, reserve_b, total_shares, created_at, updated_at
		) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, now(), now())
		ON CONFLICT (pair_id)
		DO UPDATE SET
			reserve_a = EXCLUDED.reserve_a,
			reserve_b = EXCLUDED.reserve_b,
			total_shares = EXCLUDED.total_shares,
			updated_at = now()
	`,
		state.PairID,
		state.AssetA,
		state.AssetB,
		state.ReserveA,
		state.ReserveB,
		state.TotalShares,
	)
	return err
}

// Pools lists every stored pool ordered by pair.
func (s *Store) Pools(ctx context.Context) ([]model.PoolState, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pair_id, asset_a, asset_b, reserve_a::text, reserve_b::text, total_shares::text
		FROM pools ORDER BY asset_a, asset_b
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PoolState
	for rows.Next() {
		var state model.PoolState
		if err := rows.Scan(
			&state.PairID,
			&state.AssetA,
			&state.AssetB,
			&state.ReserveA,
			&state.ReserveB,
			&state.TotalShares,
		); err != nil {
			return nil, err
		}
		out = append(out, state)
	}
	return out, rows.Err()
}

// NextSequence returns the sequence after the highest one stored for the
// exchange at address, or zero when none is stored.
func (s *Store) NextSequence(ctx context.Context, chainID uint64, address string) (uint64, error) {
	var next int64
	row := s.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(sequence) + 1, 0) FROM exchange_logs
		WHERE chain_id = $1 AND address = $2
	`, int64(chainID), strings.ToLower(address))
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return uint64(next), nil
}

// PutLogBatch inserts emitted logs. Re-inserting a sequence already stored
// for the same exchange is a no-op.
func (s *Store) PutLogBatch(ctx context.Context, logs []model.LogRecord) error {
	if len(logs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, log := range logs {
		batch.Queue(`
			INSERT INTO exchange_logs (
				chain_id, address, sequence, topics, data, timestamp, emitted_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (chain_id, address, sequence) DO NOTHING
		`,
			int64(log.ChainID),
			strings.ToLower(log.Address),
			int64(log.Sequence),
			log.Topics,
			log.Data,
			int64(log.Timestamp),
			log.EmittedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range logs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

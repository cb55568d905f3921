package storage

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"simpleswap/internal/model"
	"simpleswap/internal/pair"
	"simpleswap/internal/pool"
)

// EncodePool converts a pool record into its persisted form.
func EncodePool(key pair.Key, rec pool.Record) model.PoolState {
	return model.PoolState{
		PairID:      key.ID().Hex(),
		AssetA:      strings.ToLower(key.A.Hex()),
		AssetB:      strings.ToLower(key.B.Hex()),
		ReserveA:    rec.ReserveA.Dec(),
		ReserveB:    rec.ReserveB.Dec(),
		TotalShares: rec.TotalShares.Dec(),
	}
}

// DecodePool parses a persisted pool. The assets must already be in
// canonical order and the pair id must match them.
func DecodePool(state model.PoolState) (pair.Key, pool.Record, error) {
	if !common.IsHexAddress(state.AssetA) || !common.IsHexAddress(state.AssetB) {
		return pair.Key{}, pool.Record{}, fmt.Errorf("invalid asset address %q/%q", state.AssetA, state.AssetB)
	}
	key, swapped, err := pair.Resolve(common.HexToAddress(state.AssetA), common.HexToAddress(state.AssetB))
	if err != nil {
		return pair.Key{}, pool.Record{}, fmt.Errorf("pair %s/%s: %w", state.AssetA, state.AssetB, err)
	}
	if swapped {
		return pair.Key{}, pool.Record{}, fmt.Errorf("pair %s/%s is not in canonical order", state.AssetA, state.AssetB)
	}
	if state.PairID != "" && !strings.EqualFold(state.PairID, key.ID().Hex()) {
		return pair.Key{}, pool.Record{}, fmt.Errorf("pair id %s does not match %s", state.PairID, key)
	}

	amounts := make([]*uint256.Int, 0, 3)
	for _, raw := range []string{state.ReserveA, state.ReserveB, state.TotalShares} {
		v, err := uint256.FromDecimal(raw)
		if err != nil {
			return pair.Key{}, pool.Record{}, fmt.Errorf("pool %s amount %q: %w", key, raw, err)
		}
		amounts = append(amounts, v)
	}
	rec, err := pool.NewRecord(amounts[0], amounts[1], amounts[2])
	if err != nil {
		return pair.Key{}, pool.Record{}, fmt.Errorf("pool %s: %w", key, err)
	}
	return key, rec, nil
}

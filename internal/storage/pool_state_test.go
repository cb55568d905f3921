package storage

import (
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"simpleswap/internal/pair"
	"simpleswap/internal/pool"
)

func TestPoolStateRoundTrip(t *testing.T) {
	key, _, err := pair.Resolve(
		common.HexToAddress("0x00000000000000000000000000000000000000A1"),
		common.HexToAddress("0x00000000000000000000000000000000000000B2"),
	)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	rec, err := pool.NewRecord(
		uint256.MustFromDecimal("1000000000000000000"),
		uint256.MustFromDecimal("4000000000000000000"),
		uint256.MustFromDecimal("2000000000000000000"),
	)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	state := EncodePool(key, rec)
	if state.AssetA != "0x00000000000000000000000000000000000000a1" {
		t.Fatalf("asset a: %s", state.AssetA)
	}
	if state.TotalShares != "2000000000000000000" {
		t.Fatalf("total shares: %s", state.TotalShares)
	}

	gotKey, gotRec, err := DecodePool(state)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gotKey != key || !reflect.DeepEqual(gotRec, rec) {
		t.Fatalf("round trip: %s %s", gotKey, gotRec)
	}

	state.PairID = "0x01"
	if _, _, err := DecodePool(state); err == nil {
		t.Fatalf("expected pair id mismatch")
	}
}

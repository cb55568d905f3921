package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"simpleswap/internal/pair"
	"simpleswap/internal/pool"
)

func testKey(t *testing.T) pair.Key {
	t.Helper()
	key, _, err := pair.Resolve(
		common.HexToAddress("0x00000000000000000000000000000000000000b2"),
		common.HexToAddress("0x00000000000000000000000000000000000000a1"),
	)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return key
}

func testRecord(t *testing.T, a, b, s uint64) pool.Record {
	t.Helper()
	rec, err := pool.NewRecord(uint256.NewInt(a), uint256.NewInt(b), uint256.NewInt(s))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return rec
}

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok, _ := s.Get(context.Background(), testKey(t)); ok {
		t.Fatalf("expected empty store")
	}
	if pools, _ := s.Pools(context.Background()); len(pools) != 0 {
		t.Fatalf("expected no pools")
	}
}

func TestPutPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	key := testKey(t)
	want := testRecord(t, 1000, 4000, 2000)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Put(context.Background(), key, want); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("tmp file left behind: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok, err := reopened.Get(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("record: got %s want %s", got, want)
	}

	pools, err := reopened.Pools(context.Background())
	if err != nil || len(pools) != 1 || pools[0].ReserveB != "4000" || pools[0].PairID != key.ID().Hex() {
		t.Fatalf("pools: %+v", pools)
	}
}

func TestOpenRejectsCorruptState(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"syntax":    `{"pools": [`,
		"amount":    `{"pools":[{"asset_a":"0x00000000000000000000000000000000000000a1","asset_b":"0x00000000000000000000000000000000000000b2","reserve_a":"x","reserve_b":"1","total_shares":"1"}]}`,
		"order":     `{"pools":[{"asset_a":"0x00000000000000000000000000000000000000b2","asset_b":"0x00000000000000000000000000000000000000a1","reserve_a":"1","reserve_b":"1","total_shares":"1"}]}`,
		"invariant": `{"pools":[{"asset_a":"0x00000000000000000000000000000000000000a1","asset_b":"0x00000000000000000000000000000000000000b2","reserve_a":"1","reserve_b":"0","total_shares":"1"}]}`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Open(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestPutFailureKeepsPreviousView(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	key := testKey(t)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	first := testRecord(t, 10, 10, 10)
	if err := s.Put(context.Background(), key, first); err != nil {
		t.Fatalf("put: %v", err)
	}

	// A directory at the tmp path makes the next write fail.
	if err := os.Mkdir(path+".tmp", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := s.Put(context.Background(), key, testRecord(t, 20, 20, 20)); err == nil {
		t.Fatalf("expected write error")
	}
	got, _, _ := s.Get(context.Background(), key)
	if !reflect.DeepEqual(got, first) {
		t.Fatalf("record: got %s want %s", got, first)
	}
}

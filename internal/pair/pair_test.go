package pair

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"simpleswap/internal/revert"
)

var (
	lo = common.HexToAddress("0x1000000000000000000000000000000000000001")
	hi = common.HexToAddress("0xf000000000000000000000000000000000000002")
)

func TestCompare(t *testing.T) {
	if Compare(lo, hi) >= 0 {
		t.Fatalf("lo should sort before hi")
	}
	if Compare(hi, lo) <= 0 {
		t.Fatalf("hi should sort after lo")
	}
	if Compare(lo, lo) != 0 {
		t.Fatalf("address should equal itself")
	}
}

func TestResolveOrderIndependent(t *testing.T) {
	k1, swapped1, err := Resolve(lo, hi)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	k2, swapped2, err := Resolve(hi, lo)
	if err != nil {
		t.Fatalf("resolve reversed: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("keys differ: %v vs %v", k1, k2)
	}
	if swapped1 || !swapped2 {
		t.Fatalf("swapped flags: got %v, %v", swapped1, swapped2)
	}
	if k1.A != lo || k1.B != hi {
		t.Fatalf("unexpected canonical order: %v", k1)
	}
	if k1.ID() != k2.ID() {
		t.Fatalf("ids differ")
	}
}

func TestResolveErrors(t *testing.T) {
	cases := []struct {
		name string
		x, y common.Address
		want error
	}{
		{"identical", lo, lo, revert.ErrIdenticalAssets},
		{"zero x", common.Address{}, hi, revert.ErrZeroAsset},
		{"zero y", lo, common.Address{}, revert.ErrZeroAsset},
		{"both zero", common.Address{}, common.Address{}, revert.ErrIdenticalAssets},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := Resolve(tc.x, tc.y); !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
		})
	}
}

func TestIDDistinguishesPairs(t *testing.T) {
	other := common.HexToAddress("0x2000000000000000000000000000000000000003")
	k1, _, _ := Resolve(lo, hi)
	k2, _, _ := Resolve(lo, other)
	if k1.ID() == k2.ID() {
		t.Fatalf("distinct pairs share an id")
	}
}

func TestOrient(t *testing.T) {
	x, y := Orient(false, 1, 2)
	if x != 1 || y != 2 {
		t.Fatalf("unswapped: got %d, %d", x, y)
	}
	x, y = Orient(true, 1, 2)
	if x != 2 || y != 1 {
		t.Fatalf("swapped: got %d, %d", x, y)
	}
}

package pricing

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"simpleswap/internal/pool"
	"simpleswap/internal/revert"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func dec(s string) *uint256.Int { return uint256.MustFromDecimal(s) }

func seeded(t *testing.T) pool.Record {
	t.Helper()
	rec, err := pool.NewRecord(dec("1000000000000000000"), dec("10000000000000000"), dec("100000000000000000"))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return rec
}

func TestAmountOut(t *testing.T) {
	got, err := AmountOut(dec("100000000000000000"), dec("1000000000000000000"), dec("10000000000000000"))
	if err != nil {
		t.Fatalf("amount out: %v", err)
	}
	if got.Dec() != "909090909090909" {
		t.Fatalf("amount out: got %s", got.Dec())
	}
}

func TestAmountOutErrors(t *testing.T) {
	cases := []struct {
		name          string
		in, rIn, rOut uint64
		want          error
	}{
		{"zero reserve in", 10, 0, 100, revert.ErrInsufficientLiquidity},
		{"zero reserve out", 10, 100, 0, revert.ErrInsufficientLiquidity},
		{"empty pool and zero input", 0, 0, 0, revert.ErrInsufficientLiquidity},
		{"zero input", 0, 100, 100, revert.ErrInsufficientInputAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := AmountOut(u(tc.in), u(tc.rIn), u(tc.rOut)); !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
		})
	}

	max := new(uint256.Int).SetAllOne()
	if _, err := AmountOut(u(1), max, u(10)); !errors.Is(err, revert.ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestSwapScenario(t *testing.T) {
	res, err := Swap(seeded(t), true, dec("100000000000000000"), u(0))
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if res.AmountOut.Dec() != "909090909090909" {
		t.Fatalf("amount out: got %s", res.AmountOut.Dec())
	}
	if res.Next.ReserveA.Dec() != "1100000000000000000" || res.Next.ReserveB.Dec() != "9090909090909091" {
		t.Fatalf("reserves after swap: %s", res.Next)
	}
	if res.Next.TotalShares.Dec() != "100000000000000000" {
		t.Fatalf("swap must not change shares: %s", res.Next)
	}
}

func TestSwapSlippage(t *testing.T) {
	rec := seeded(t)
	if _, err := Swap(rec, true, dec("100000000000000000"), dec("909090909090910")); !errors.Is(err, revert.ErrInsufficientOutputAmount) {
		t.Fatalf("expected insufficient output, got %v", err)
	}
	// One unit of A buys less than one unit of B.
	if _, err := Swap(rec, true, u(1), u(0)); !errors.Is(err, revert.ErrInsufficientOutputAmount) {
		t.Fatalf("expected zero output rejection, got %v", err)
	}
	if _, err := Swap(pool.Record{}, true, u(1), u(0)); !errors.Is(err, revert.ErrInsufficientLiquidity) {
		t.Fatalf("expected insufficient liquidity, got %v", err)
	}
}

func TestProductNonDecreasing(t *testing.T) {
	inputs := []string{"1000", "99999", "123456789123", "100000000000000000", "5000000000000000000"}
	for _, aToB := range []bool{true, false} {
		for _, in := range inputs {
			rec := seeded(t)
			res, err := Swap(rec, aToB, dec(in), u(0))
			if err != nil {
				if errors.Is(err, revert.ErrInsufficientOutputAmount) {
					continue
				}
				t.Fatalf("swap %s: %v", in, err)
			}
			before := new(uint256.Int).Mul(&rec.ReserveA, &rec.ReserveB)
			after := new(uint256.Int).Mul(&res.Next.ReserveA, &res.Next.ReserveB)
			if after.Lt(before) {
				t.Fatalf("product decreased for input %s (aToB=%v)", in, aToB)
			}
		}
	}
}

func TestPrice(t *testing.T) {
	scale, err := Scale(18)
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	rec := seeded(t)

	ab, err := Price(&rec.ReserveA, &rec.ReserveB, scale)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if ab.Dec() != "10000000000000000" {
		t.Fatalf("price a->b: got %s", ab.Dec())
	}
	ba, err := Price(&rec.ReserveB, &rec.ReserveA, scale)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if ba.Dec() != "100000000000000000000" {
		t.Fatalf("price b->a: got %s", ba.Dec())
	}

	if _, err := Price(u(0), u(0), scale); !errors.Is(err, revert.ErrInsufficientLiquidity) {
		t.Fatalf("expected insufficient liquidity, got %v", err)
	}
}

func TestPriceSymmetry(t *testing.T) {
	scale, _ := Scale(18)
	square := new(uint256.Int).Mul(scale, scale)
	reserves := [][2]string{
		{"1000000000000000000", "10000000000000000"},
		{"3", "7"},
		{"1100000000000000000", "9090909090909091"},
		{"123456789", "987654321987654321"},
	}
	for _, r := range reserves {
		x, y := dec(r[0]), dec(r[1])
		p1, err := Price(x, y, scale)
		if err != nil {
			t.Fatalf("price: %v", err)
		}
		p2, err := Price(y, x, scale)
		if err != nil {
			t.Fatalf("price: %v", err)
		}
		product := new(uint256.Int).Mul(p1, p2)
		if product.Gt(square) {
			t.Fatalf("%v: product exceeds scale^2", r)
		}
		// Each floor loses less than one unit: gap < p1 + p2 + 2.
		gap := new(uint256.Int).Sub(square, product)
		tolerance := new(uint256.Int).Add(p1, p2)
		tolerance.AddUint64(tolerance, 2)
		if gap.Gt(tolerance) {
			t.Fatalf("%v: gap %s exceeds tolerance %s", r, gap.Dec(), tolerance.Dec())
		}
	}
}

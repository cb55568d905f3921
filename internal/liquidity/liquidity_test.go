package liquidity

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"simpleswap/internal/pool"
	"simpleswap/internal/revert"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func dec(s string) *uint256.Int { return uint256.MustFromDecimal(s) }

func record(t *testing.T, a, b, s *uint256.Int) pool.Record {
	t.Helper()
	rec, err := pool.NewRecord(a, b, s)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return rec
}

func TestBootstrapDeposit(t *testing.T) {
	res, err := Deposit(pool.Record{}, dec("1000000000000000000"), dec("10000000000000000"), u(0), u(0))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if res.Shares.Dec() != "100000000000000000" {
		t.Fatalf("shares: got %s want 1e17", res.Shares.Dec())
	}
	if res.AmountA.Dec() != "1000000000000000000" || res.AmountB.Dec() != "10000000000000000" {
		t.Fatalf("amounts: got %s, %s", res.AmountA.Dec(), res.AmountB.Dec())
	}
}

func TestBootstrapDegenerate(t *testing.T) {
	cases := []struct {
		name string
		a, b uint64
	}{
		{"zero a", 0, 100},
		{"zero b", 100, 0},
		{"both zero", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Deposit(pool.Record{}, u(tc.a), u(tc.b), u(0), u(0))
			if !errors.Is(err, revert.ErrInsufficientInitialLiquidity) {
				t.Fatalf("got %v", err)
			}
		})
	}
}

func TestBootstrapOverflow(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	if _, err := Deposit(pool.Record{}, max, u(2), u(0), u(0)); !errors.Is(err, revert.ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestProportionalDeposit(t *testing.T) {
	rec := record(t, u(100), u(400), u(200))

	cases := []struct {
		name         string
		desA, desB   uint64
		minA, minB   uint64
		wantA, wantB uint64
		wantShares   uint64
		wantErr      error
	}{
		{"b optimal", 10, 100, 0, 0, 10, 40, 20, nil},
		{"a optimal", 50, 40, 0, 0, 10, 40, 20, nil},
		{"exact ratio", 25, 100, 25, 100, 25, 100, 50, nil},
		{"b below minimum", 10, 100, 0, 41, 0, 0, 0, revert.ErrInsufficientBAmount},
		{"a below minimum", 50, 40, 11, 0, 0, 0, 0, revert.ErrInsufficientAAmount},
		{"rounds to zero shares", 0, 3, 0, 0, 0, 0, 0, revert.ErrInsufficientLiquidity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Deposit(rec, u(tc.desA), u(tc.desB), u(tc.minA), u(tc.minB))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got %v want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("deposit: %v", err)
			}
			if res.AmountA.Uint64() != tc.wantA || res.AmountB.Uint64() != tc.wantB || res.Shares.Uint64() != tc.wantShares {
				t.Fatalf("got (%d, %d, %d) want (%d, %d, %d)",
					res.AmountA.Uint64(), res.AmountB.Uint64(), res.Shares.Uint64(),
					tc.wantA, tc.wantB, tc.wantShares)
			}
		})
	}
}

func TestShareProportionality(t *testing.T) {
	rec := record(t, dec("1000000000000000000"), dec("10000000000000000"), dec("100000000000000000"))
	deposits := []string{"1", "7", "333", "1000000", "123456789012345678", "999999999999999999"}

	for _, d := range deposits {
		amountA := dec(d)
		// Desire plenty of B so the deposit keeps amountA as given.
		res, err := Deposit(rec, amountA, dec("1000000000000000000000"), u(0), u(0))
		if err != nil {
			if errors.Is(err, revert.ErrInsufficientLiquidity) {
				continue
			}
			t.Fatalf("deposit %s: %v", d, err)
		}
		// Never more than either side justifies.
		if overMinted(res.Shares, res.AmountA, &rec.ReserveA, &rec.TotalShares) ||
			overMinted(res.Shares, res.AmountB, &rec.ReserveB, &rec.TotalShares) {
			t.Fatalf("deposit %s: minted more shares than contributed", d)
		}
		// One more share would exceed the binding side.
		next := new(uint256.Int).AddUint64(res.Shares, 1)
		if !overMinted(next, res.AmountA, &rec.ReserveA, &rec.TotalShares) &&
			!overMinted(next, res.AmountB, &rec.ReserveB, &rec.TotalShares) {
			t.Fatalf("deposit %s: shares short by more than one unit", d)
		}
	}
}

// overMinted reports shares/total > amount/reserve.
func overMinted(shares, amount, reserve, total *uint256.Int) bool {
	lhs := new(uint256.Int).Mul(shares, reserve)
	rhs := new(uint256.Int).Mul(amount, total)
	return lhs.Gt(rhs)
}

func TestWithdraw(t *testing.T) {
	rec := record(t, u(100), u(400), u(200))

	a, b, err := Withdraw(rec, u(50), u(25), u(100))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if a.Uint64() != 25 || b.Uint64() != 100 {
		t.Fatalf("got (%d, %d)", a.Uint64(), b.Uint64())
	}

	cases := []struct {
		name       string
		shares     uint64
		minA, minB uint64
		want       error
	}{
		{"zero shares", 0, 0, 0, revert.ErrInsufficientLiquidity},
		{"too many shares", 201, 0, 0, revert.ErrInsufficientLiquidity},
		{"a minimum", 50, 26, 0, revert.ErrInsufficientAAmount},
		{"b minimum", 50, 0, 101, revert.ErrInsufficientBAmount},
		{"both minimums", 50, 26, 101, revert.ErrInsufficientAAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := Withdraw(rec, u(tc.shares), u(tc.minA), u(tc.minB)); !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"1000000000000000000", "10000000000000000"},
		{"3", "7"},
		{"123456789", "987654321987654321"},
	}
	for _, p := range pairs {
		a, b := dec(p[0]), dec(p[1])
		res, err := Deposit(pool.Record{}, a, b, u(0), u(0))
		if err != nil {
			t.Fatalf("deposit %v: %v", p, err)
		}
		rec, err := pool.ApplyDeposit(pool.Record{}, res.AmountA, res.AmountB, res.Shares)
		if err != nil {
			t.Fatalf("apply deposit: %v", err)
		}

		outA, outB, err := Withdraw(rec, res.Shares, u(0), u(0))
		if err != nil {
			t.Fatalf("withdraw %v: %v", p, err)
		}
		if !outA.Eq(a) || !outB.Eq(b) {
			t.Fatalf("round trip %v: got (%s, %s)", p, outA.Dec(), outB.Dec())
		}
		rec, err = pool.ApplyWithdraw(rec, outA, outB, res.Shares)
		if err != nil {
			t.Fatalf("apply withdraw: %v", err)
		}
		if rec != (pool.Record{}) {
			t.Fatalf("pool not drained: %s", rec)
		}
	}
}

func TestQuote(t *testing.T) {
	got, err := Quote(u(10), u(100), u(400))
	if err != nil || got.Uint64() != 40 {
		t.Fatalf("quote: got %v, %v", got, err)
	}
	if _, err := Quote(u(10), u(0), u(400)); !errors.Is(err, revert.ErrInsufficientLiquidity) {
		t.Fatalf("expected insufficient liquidity, got %v", err)
	}
}

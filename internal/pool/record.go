package pool

import (
	"fmt"

	"github.com/holiman/uint256"

	"simpleswap/internal/fixedpoint"
	"simpleswap/internal/revert"
)

// Record is the reserve and share state of one canonical pair. ReserveA is
// held in the pair's A asset, ReserveB in its B asset.
type Record struct {
	ReserveA    uint256.Int
	ReserveB    uint256.Int
	TotalShares uint256.Int
}

// IsEmpty reports whether the pool holds no shares. An empty pool bootstraps
// on its next deposit regardless of whether it ever held liquidity.
func (r Record) IsEmpty() bool {
	return r.TotalShares.IsZero()
}

// Reserves returns copies of (reserveIn, reserveOut) for a swap direction.
func (r Record) Reserves(aToB bool) (*uint256.Int, *uint256.Int) {
	a := new(uint256.Int).Set(&r.ReserveA)
	b := new(uint256.Int).Set(&r.ReserveB)
	if aToB {
		return a, b
	}
	return b, a
}

// Validate checks that the reserves and share supply are all zero or all
// positive.
func (r Record) Validate() error {
	za, zb, zs := r.ReserveA.IsZero(), r.ReserveB.IsZero(), r.TotalShares.IsZero()
	if za == zb && zb == zs {
		return nil
	}
	return fmt.Errorf("pool invariant violated: reserveA=%s reserveB=%s totalShares=%s",
		r.ReserveA.Dec(), r.ReserveB.Dec(), r.TotalShares.Dec())
}

func (r Record) String() string {
	return fmt.Sprintf("{reserveA:%s reserveB:%s totalShares:%s}",
		r.ReserveA.Dec(), r.ReserveB.Dec(), r.TotalShares.Dec())
}

// ApplyDeposit returns rec with amountA, amountB and shares added.
func ApplyDeposit(rec Record, amountA, amountB, shares *uint256.Int) (Record, error) {
	ra, err := fixedpoint.Add(&rec.ReserveA, amountA)
	if err != nil {
		return Record{}, fmt.Errorf("reserveA: %w", err)
	}
	rb, err := fixedpoint.Add(&rec.ReserveB, amountB)
	if err != nil {
		return Record{}, fmt.Errorf("reserveB: %w", err)
	}
	ts, err := fixedpoint.Add(&rec.TotalShares, shares)
	if err != nil {
		return Record{}, fmt.Errorf("totalShares: %w", err)
	}
	return build(ra, rb, ts)
}

// ApplyWithdraw returns rec with amountA, amountB and shares removed.
func ApplyWithdraw(rec Record, amountA, amountB, shares *uint256.Int) (Record, error) {
	if shares.Gt(&rec.TotalShares) {
		return Record{}, revert.ErrInsufficientLiquidity
	}
	ra, err := fixedpoint.Sub(&rec.ReserveA, amountA)
	if err != nil {
		return Record{}, fmt.Errorf("reserveA: %w", err)
	}
	rb, err := fixedpoint.Sub(&rec.ReserveB, amountB)
	if err != nil {
		return Record{}, fmt.Errorf("reserveB: %w", err)
	}
	ts, err := fixedpoint.Sub(&rec.TotalShares, shares)
	if err != nil {
		return Record{}, fmt.Errorf("totalShares: %w", err)
	}
	return build(ra, rb, ts)
}

// ApplySwap returns rec with amountIn credited to the input reserve and
// amountOut debited from the output reserve. aToB selects the direction.
func ApplySwap(rec Record, aToB bool, amountIn, amountOut *uint256.Int) (Record, error) {
	rIn, rOut := rec.Reserves(aToB)
	if amountOut.Cmp(rOut) >= 0 {
		return Record{}, revert.ErrInsufficientLiquidity
	}
	newIn, err := fixedpoint.Add(rIn, amountIn)
	if err != nil {
		return Record{}, fmt.Errorf("reserveIn: %w", err)
	}
	newOut, err := fixedpoint.Sub(rOut, amountOut)
	if err != nil {
		return Record{}, fmt.Errorf("reserveOut: %w", err)
	}
	if aToB {
		return build(newIn, newOut, &rec.TotalShares)
	}
	return build(newOut, newIn, &rec.TotalShares)
}

func build(ra, rb, ts *uint256.Int) (Record, error) {
	var out Record
	out.ReserveA.Set(ra)
	out.ReserveB.Set(rb)
	out.TotalShares.Set(ts)
	if err := out.Validate(); err != nil {
		return Record{}, err
	}
	return out, nil
}

// NewRecord builds a record from three amounts. It is used by stores when
// decoding persisted state.
func NewRecord(reserveA, reserveB, totalShares *uint256.Int) (Record, error) {
	return build(reserveA, reserveB, totalShares)
}

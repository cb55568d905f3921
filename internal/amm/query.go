package amm

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"simpleswap/internal/pair"
	"simpleswap/internal/pricing"
)

// GetPrice returns how much quote one scale unit of base is worth at the
// current reserves.
func (e *Exchange) GetPrice(ctx context.Context, base, quote common.Address) (*uint256.Int, error) {
	defer e.view(ctx)()

	key, swapped, err := pair.Resolve(base, quote)
	if err != nil {
		return nil, err
	}
	rec, err := e.pools.LookupOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}
	reserveBase, reserveQuote := pair.Orient(swapped, &rec.ReserveA, &rec.ReserveB)
	return pricing.Price(reserveBase, reserveQuote, e.scale)
}

// GetAmountOut prices amountIn against the given reserves. It reads no
// pool state.
func (e *Exchange) GetAmountOut(amountIn, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	return pricing.AmountOut(amount(amountIn), amount(reserveIn), amount(reserveOut))
}

// Reserves returns the pool reserves in the order x, y. A pair that has
// never been funded reports zero for both.
func (e *Exchange) Reserves(ctx context.Context, x, y common.Address) (*uint256.Int, *uint256.Int, error) {
	defer e.view(ctx)()

	key, swapped, err := pair.Resolve(x, y)
	if err != nil {
		return nil, nil, err
	}
	rec, err := e.pools.LookupOrCreate(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	rx, ry := pair.Orient(swapped, &rec.ReserveA, &rec.ReserveB)
	return new(uint256.Int).Set(rx), new(uint256.Int).Set(ry), nil
}

// TotalShares returns the outstanding share supply of the (x, y) pool.
func (e *Exchange) TotalShares(ctx context.Context, x, y common.Address) (*uint256.Int, error) {
	defer e.view(ctx)()

	key, _, err := pair.Resolve(x, y)
	if err != nil {
		return nil, err
	}
	rec, err := e.pools.LookupOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Set(&rec.TotalShares), nil
}

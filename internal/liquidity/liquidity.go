// Package liquidity computes the shares minted for a deposit and the amounts
// released for a redemption. All divisions floor, so rounding always stays
// in the pool.
package liquidity

import (
	"github.com/holiman/uint256"

	"simpleswap/internal/fixedpoint"
	"simpleswap/internal/pool"
	"simpleswap/internal/revert"
)

// DepositResult is the outcome of a deposit computation.
type DepositResult struct {
	AmountA *uint256.Int
	AmountB *uint256.Int
	Shares  *uint256.Int
}

// Deposit computes the amounts taken and the shares minted for a deposit of
// up to (desiredA, desiredB) into rec.
//
// An empty pool takes both amounts as given and mints isqrt(a*b) shares.
// Otherwise the deposit is fitted to the current reserve ratio and shares
// are minted in proportion to the smaller contribution.
func Deposit(rec pool.Record, desiredA, desiredB, minA, minB *uint256.Int) (DepositResult, error) {
	if rec.IsEmpty() {
		return bootstrap(desiredA, desiredB, minA, minB)
	}

	amountA, amountB, err := optimal(rec, desiredA, desiredB, minA, minB)
	if err != nil {
		return DepositResult{}, err
	}

	byA, err := fixedpoint.MulDiv(amountA, &rec.TotalShares, &rec.ReserveA)
	if err != nil {
		return DepositResult{}, err
	}
	byB, err := fixedpoint.MulDiv(amountB, &rec.TotalShares, &rec.ReserveB)
	if err != nil {
		return DepositResult{}, err
	}
	shares := fixedpoint.Min(byA, byB)
	if shares.IsZero() {
		return DepositResult{}, revert.ErrInsufficientLiquidity
	}
	return DepositResult{AmountA: amountA, AmountB: amountB, Shares: shares}, nil
}

func bootstrap(amountA, amountB, minA, minB *uint256.Int) (DepositResult, error) {
	if amountA.Lt(minA) {
		return DepositResult{}, revert.ErrInsufficientAAmount
	}
	if amountB.Lt(minB) {
		return DepositResult{}, revert.ErrInsufficientBAmount
	}
	product, err := fixedpoint.Mul(amountA, amountB)
	if err != nil {
		return DepositResult{}, err
	}
	shares := fixedpoint.Sqrt(product)
	if shares.IsZero() {
		return DepositResult{}, revert.ErrInsufficientInitialLiquidity
	}
	return DepositResult{
		AmountA: new(uint256.Int).Set(amountA),
		AmountB: new(uint256.Int).Set(amountB),
		Shares:  shares,
	}, nil
}

// optimal fits (desiredA, desiredB) to the pool ratio, keeping one side at
// its desired amount and lowering the other.
func optimal(rec pool.Record, desiredA, desiredB, minA, minB *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	optB, err := Quote(desiredA, &rec.ReserveA, &rec.ReserveB)
	if err != nil {
		return nil, nil, err
	}
	if !optB.Gt(desiredB) {
		if optB.Lt(minB) {
			return nil, nil, revert.ErrInsufficientBAmount
		}
		return new(uint256.Int).Set(desiredA), optB, nil
	}

	optA, err := Quote(desiredB, &rec.ReserveB, &rec.ReserveA)
	if err != nil {
		return nil, nil, err
	}
	// optA <= desiredA holds whenever optB > desiredB, up to flooring.
	if optA.Gt(desiredA) {
		optA.Set(desiredA)
	}
	if optA.Lt(minA) {
		return nil, nil, revert.ErrInsufficientAAmount
	}
	return optA, new(uint256.Int).Set(desiredB), nil
}

// Quote returns the amount of the other asset equal in value to amount at
// the reserve ratio: floor(amount * reserveOther / reserveSame).
func Quote(amount, reserveSame, reserveOther *uint256.Int) (*uint256.Int, error) {
	if reserveSame.IsZero() || reserveOther.IsZero() {
		return nil, revert.ErrInsufficientLiquidity
	}
	return fixedpoint.MulDiv(amount, reserveOther, reserveSame)
}

// Withdraw computes the amounts released for burning shares of rec.
func Withdraw(rec pool.Record, shares, minA, minB *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if shares.IsZero() || shares.Gt(&rec.TotalShares) {
		return nil, nil, revert.ErrInsufficientLiquidity
	}
	amountA, err := fixedpoint.MulDiv(shares, &rec.ReserveA, &rec.TotalShares)
	if err != nil {
		return nil, nil, err
	}
	amountB, err := fixedpoint.MulDiv(shares, &rec.ReserveB, &rec.TotalShares)
	if err != nil {
		return nil, nil, err
	}
	if amountA.Lt(minA) {
		return nil, nil, revert.ErrInsufficientAAmount
	}
	if amountB.Lt(minB) {
		return nil, nil, revert.ErrInsufficientBAmount
	}
	return amountA, amountB, nil
}

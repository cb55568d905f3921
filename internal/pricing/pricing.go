// Package pricing implements the constant-product swap rule and spot price
// quotes. No trading fee is deducted.
package pricing

import (
	"github.com/holiman/uint256"

	"simpleswap/internal/fixedpoint"
	"simpleswap/internal/pool"
	"simpleswap/internal/revert"
)

// AmountOut returns floor(reserveOut * amountIn / (reserveIn + amountIn)).
func AmountOut(amountIn, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, revert.ErrInsufficientLiquidity
	}
	if amountIn.IsZero() {
		return nil, revert.ErrInsufficientInputAmount
	}
	denominator, err := fixedpoint.Add(reserveIn, amountIn)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDiv(reserveOut, amountIn, denominator)
}

// SwapResult is a priced swap and the record it leaves behind.
type SwapResult struct {
	AmountOut *uint256.Int
	Next      pool.Record
}

// Swap prices amountIn against rec in the given direction and returns the
// post-swap record. It fails when the output is zero or below amountOutMin.
func Swap(rec pool.Record, aToB bool, amountIn, amountOutMin *uint256.Int) (SwapResult, error) {
	reserveIn, reserveOut := rec.Reserves(aToB)
	out, err := AmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return SwapResult{}, err
	}
	if out.IsZero() || out.Lt(amountOutMin) {
		return SwapResult{}, revert.ErrInsufficientOutputAmount
	}
	next, err := pool.ApplySwap(rec, aToB, amountIn, out)
	if err != nil {
		return SwapResult{}, err
	}
	return SwapResult{AmountOut: out, Next: next}, nil
}

// Price returns reserveQuote * scale / reserveBase: the amount of the quote
// asset one scale unit of the base asset is worth.
func Price(reserveBase, reserveQuote, scale *uint256.Int) (*uint256.Int, error) {
	if reserveBase.IsZero() || reserveQuote.IsZero() {
		return nil, revert.ErrInsufficientLiquidity
	}
	return fixedpoint.MulDiv(reserveQuote, scale, reserveBase)
}

// Scale returns the fixed-point unit for the given number of decimals.
func Scale(decimals uint8) (*uint256.Int, error) {
	return fixedpoint.Pow10(decimals)
}

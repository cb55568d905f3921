// Package fixedpoint provides the integer arithmetic shared by the pool
// components. All values are 256-bit unsigned integers, every division
// floors, and any result that would leave the 256-bit range is reported as
// revert.ErrOverflow instead of wrapping.
//
// Functions never modify their arguments and always return fresh values.
package fixedpoint

import (
	"github.com/holiman/uint256"

	"simpleswap/internal/revert"
)

// Zero returns a new zero value.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// Add returns a + b.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, revert.ErrOverflow
	}
	return z, nil
}

// Sub returns a - b. Underflow is reported as revert.ErrOverflow.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, revert.ErrOverflow
	}
	return z, nil
}

// Mul returns a * b.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, revert.ErrOverflow
	}
	return z, nil
}

// MulDiv returns floor(a * b / c). The product is formed at 512 bits so it is
// never truncated before the division; only a quotient that does not fit in
// 256 bits, or c == 0, is an error.
func MulDiv(a, b, c *uint256.Int) (*uint256.Int, error) {
	if c.IsZero() {
		return nil, revert.ErrOverflow
	}
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, c)
	if overflow {
		return nil, revert.ErrOverflow
	}
	return z, nil
}

// Min returns a copy of the smaller of a and b.
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}

// Sqrt returns the largest r with r*r <= x, found by Babylonian iteration.
func Sqrt(x *uint256.Int) *uint256.Int {
	three := uint256.NewInt(3)
	if x.Cmp(three) <= 0 {
		if x.IsZero() {
			return Zero()
		}
		return uint256.NewInt(1)
	}

	// x > 3 so x/2 + 1 < x and the sequence decreases monotonically to the root.
	two := uint256.NewInt(2)
	z := new(uint256.Int).Set(x)
	y := new(uint256.Int).Div(x, two)
	y.AddUint64(y, 1)
	for y.Lt(z) {
		z.Set(y)
		next := new(uint256.Int).Div(x, y)
		next.Add(next, y)
		y.Div(next, two)
	}
	return z
}

// Pow10 returns 10^exp.
func Pow10(exp uint8) (*uint256.Int, error) {
	ten := uint256.NewInt(10)
	z := uint256.NewInt(1)
	for i := uint8(0); i < exp; i++ {
		var err error
		if z, err = Mul(z, ten); err != nil {
			return nil, err
		}
	}
	return z, nil
}

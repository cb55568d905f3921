package amm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"simpleswap/internal/events"
	"simpleswap/internal/ledger"
	"simpleswap/internal/liquidity"
	"simpleswap/internal/pair"
	"simpleswap/internal/pool"
	"simpleswap/internal/revert"
)

// AddLiquidityRequest deposits up to the desired amounts of AssetX and
// AssetY. Nil amounts are zero.
type AddLiquidityRequest struct {
	AssetX         common.Address
	AssetY         common.Address
	AmountXDesired *uint256.Int
	AmountYDesired *uint256.Int
	AmountXMin     *uint256.Int
	AmountYMin     *uint256.Int
	To             common.Address
	Deadline       uint64
}

// AddLiquidityResult reports the amounts taken, in request order, and the
// shares minted to the recipient.
type AddLiquidityResult struct {
	AmountX *uint256.Int
	AmountY *uint256.Int
	Shares  *uint256.Int
}

// AddLiquidity pulls the deposit from caller and mints shares to req.To.
func (e *Exchange) AddLiquidity(ctx context.Context, caller common.Address, req AddLiquidityRequest) (AddLiquidityResult, error) {
	ctx, unlock, err := e.enter(ctx)
	if err != nil {
		e.reject("add_liquidity", err)
		return AddLiquidityResult{}, err
	}
	defer unlock()

	res, err := e.addLiquidity(ctx, caller, req)
	if err != nil {
		e.reject("add_liquidity", err)
		return AddLiquidityResult{}, err
	}
	return res, nil
}

func (e *Exchange) addLiquidity(ctx context.Context, caller common.Address, req AddLiquidityRequest) (AddLiquidityResult, error) {
	now, err := e.ensure(ctx, req.Deadline)
	if err != nil {
		return AddLiquidityResult{}, err
	}
	key, swapped, err := pair.Resolve(req.AssetX, req.AssetY)
	if err != nil {
		return AddLiquidityResult{}, err
	}
	desiredA, desiredB := pair.Orient(swapped, amount(req.AmountXDesired), amount(req.AmountYDesired))
	minA, minB := pair.Orient(swapped, amount(req.AmountXMin), amount(req.AmountYMin))

	rec, err := e.pools.LookupOrCreate(ctx, key)
	if err != nil {
		return AddLiquidityResult{}, err
	}
	dep, err := liquidity.Deposit(rec, desiredA, desiredB, minA, minB)
	if err != nil {
		if swapped {
			err = revert.Swap(err)
		}
		return AddLiquidityResult{}, err
	}
	next, err := pool.ApplyDeposit(rec, dep.AmountA, dep.AmountB, dep.Shares)
	if err != nil {
		return AddLiquidityResult{}, err
	}

	rb := &rollback{logger: e.logger}
	if err := e.pull(ctx, rb, key.A, caller, dep.AmountA); err != nil {
		rb.run(ctx)
		return AddLiquidityResult{}, err
	}
	if err := e.pull(ctx, rb, key.B, caller, dep.AmountB); err != nil {
		rb.run(ctx)
		return AddLiquidityResult{}, err
	}
	if err := e.pools.Commit(ctx, key, next); err != nil {
		rb.run(ctx)
		return AddLiquidityResult{}, err
	}
	rb.push(func(ctx context.Context) error { return e.pools.Commit(ctx, key, rec) })

	if err := e.shares.Mint(ctx, key, req.To, dep.Shares); err != nil {
		rb.run(ctx)
		return AddLiquidityResult{}, fmt.Errorf("%w: mint shares: %v", revert.ErrTransferFailed, err)
	}
	rb.push(func(ctx context.Context) error { return e.shares.Burn(ctx, key, req.To, dep.Shares) })

	amountX, amountY := pair.Orient(swapped, dep.AmountA, dep.AmountB)
	ev := events.LiquidityAdded{
		AssetA:    req.AssetX,
		AssetB:    req.AssetY,
		AmountA:   amountX,
		AmountB:   amountY,
		Liquidity: dep.Shares,
		To:        req.To,
	}
	if err := e.emit(ctx, ev, now); err != nil {
		rb.run(ctx)
		return AddLiquidityResult{}, err
	}

	e.logger.Info("liquidity added",
		zap.Stringer("pair", key),
		zap.String("amount_a", dep.AmountA.Dec()),
		zap.String("amount_b", dep.AmountB.Dec()),
		zap.String("shares", dep.Shares.Dec()),
		zap.String("to", req.To.Hex()),
	)
	return AddLiquidityResult{AmountX: amountX, AmountY: amountY, Shares: dep.Shares}, nil
}

// RemoveLiquidityRequest burns Shares of the (AssetX, AssetY) pool.
type RemoveLiquidityRequest struct {
	AssetX     common.Address
	AssetY     common.Address
	Shares     *uint256.Int
	AmountXMin *uint256.Int
	AmountYMin *uint256.Int
	To         common.Address
	Deadline   uint64
}

// RemoveLiquidityResult reports the amounts released, in request order.
type RemoveLiquidityResult struct {
	AmountX *uint256.Int
	AmountY *uint256.Int
}

// RemoveLiquidity burns caller's shares and sends the underlying to req.To.
// If the second asset cannot be delivered after the first was, the
// withdrawal stays committed and the result is returned alongside a
// TRANSFER_FAILED error naming the undelivered amount.
func (e *Exchange) RemoveLiquidity(ctx context.Context, caller common.Address, req RemoveLiquidityRequest) (RemoveLiquidityResult, error) {
	ctx, unlock, err := e.enter(ctx)
	if err != nil {
		e.reject("remove_liquidity", err)
		return RemoveLiquidityResult{}, err
	}
	defer unlock()

	res, err := e.removeLiquidity(ctx, caller, req)
	if err != nil {
		e.reject("remove_liquidity", err)
		return res, err
	}
	return res, nil
}

func (e *Exchange) removeLiquidity(ctx context.Context, caller common.Address, req RemoveLiquidityRequest) (RemoveLiquidityResult, error) {
	now, err := e.ensure(ctx, req.Deadline)
	if err != nil {
		return RemoveLiquidityResult{}, err
	}
	key, swapped, err := pair.Resolve(req.AssetX, req.AssetY)
	if err != nil {
		return RemoveLiquidityResult{}, err
	}
	minA, minB := pair.Orient(swapped, amount(req.AmountXMin), amount(req.AmountYMin))
	shares := amount(req.Shares)

	rec, err := e.pools.LookupOrCreate(ctx, key)
	if err != nil {
		return RemoveLiquidityResult{}, err
	}
	amountA, amountB, err := liquidity.Withdraw(rec, shares, minA, minB)
	if err != nil {
		if swapped {
			err = revert.Swap(err)
		}
		return RemoveLiquidityResult{}, err
	}
	next, err := pool.ApplyWithdraw(rec, amountA, amountB, shares)
	if err != nil {
		return RemoveLiquidityResult{}, err
	}

	rb := &rollback{logger: e.logger}
	if err := e.shares.Burn(ctx, key, caller, shares); err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return RemoveLiquidityResult{}, fmt.Errorf("%w: %v", revert.ErrInsufficientLiquidity, err)
		}
		return RemoveLiquidityResult{}, fmt.Errorf("%w: burn shares: %v", revert.ErrTransferFailed, err)
	}
	rb.push(func(ctx context.Context) error { return e.shares.Mint(ctx, key, caller, shares) })

	if err := e.pools.Commit(ctx, key, next); err != nil {
		rb.run(ctx)
		return RemoveLiquidityResult{}, err
	}
	rb.push(func(ctx context.Context) error { return e.pools.Commit(ctx, key, rec) })

	for _, out := range []struct {
		asset  common.Address
		amount *uint256.Int
	}{{key.A, amountA}, {key.B, amountB}} {
		if err := e.covers(ctx, out.asset, out.amount); err != nil {
			rb.run(ctx)
			return RemoveLiquidityResult{}, err
		}
	}

	amountX, amountY := pair.Orient(swapped, amountA, amountB)
	ev := events.LiquidityRemoved{
		AssetA:    req.AssetX,
		AssetB:    req.AssetY,
		AmountA:   amountX,
		AmountB:   amountY,
		Liquidity: shares,
		To:        req.To,
	}
	if err := e.emit(ctx, ev, now); err != nil {
		rb.run(ctx)
		return RemoveLiquidityResult{}, err
	}
	if err := e.send(ctx, key.A, req.To, amountA); err != nil {
		rb.run(ctx)
		e.orphaned(ev, err)
		return RemoveLiquidityResult{}, err
	}
	// The first asset has left custody, so the withdrawal stays committed
	// and the second amount is owed to the recipient.
	if err := e.send(ctx, key.B, req.To, amountB); err != nil {
		e.logger.Error("partial withdrawal delivered",
			zap.Stringer("pair", key),
			zap.String("sent_a", amountA.Dec()),
			zap.String("undelivered_b", amountB.Dec()),
			zap.String("to", req.To.Hex()),
			zap.Error(err),
		)
		return RemoveLiquidityResult{AmountX: amountX, AmountY: amountY},
			fmt.Errorf("%w: undelivered %s %s", err, amountB.Dec(), key.B.Hex())
	}

	e.logger.Info("liquidity removed",
		zap.Stringer("pair", key),
		zap.String("amount_a", amountA.Dec()),
		zap.String("amount_b", amountB.Dec()),
		zap.String("shares", shares.Dec()),
		zap.String("to", req.To.Hex()),
	)
	return RemoveLiquidityResult{AmountX: amountX, AmountY: amountY}, nil
}

package amm

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"simpleswap/internal/events"
	"simpleswap/internal/pair"
	"simpleswap/internal/pricing"
	"simpleswap/internal/revert"
)

// SwapRequest sells exactly AmountIn of Path[0] for at least AmountOutMin of
// Path[1]. Only single-hop paths are accepted.
type SwapRequest struct {
	AmountIn     *uint256.Int
	AmountOutMin *uint256.Int
	Path         []common.Address
	To           common.Address
	Deadline     uint64
}

// SwapExactIn pulls the input from caller and sends the output to req.To.
func (e *Exchange) SwapExactIn(ctx context.Context, caller common.Address, req SwapRequest) (*uint256.Int, error) {
	ctx, unlock, err := e.enter(ctx)
	if err != nil {
		e.reject("swap", err)
		return nil, err
	}
	defer unlock()

	out, err := e.swapExactIn(ctx, caller, req)
	if err != nil {
		e.reject("swap", err)
		return nil, err
	}
	return out, nil
}

func (e *Exchange) swapExactIn(ctx context.Context, caller common.Address, req SwapRequest) (*uint256.Int, error) {
	now, err := e.ensure(ctx, req.Deadline)
	if err != nil {
		return nil, err
	}
	if len(req.Path) != 2 {
		return nil, revert.ErrInvalidPath
	}
	assetIn, assetOut := req.Path[0], req.Path[1]
	key, swapped, err := pair.Resolve(assetIn, assetOut)
	if err != nil {
		return nil, err
	}
	aToB := !swapped
	amountIn := amount(req.AmountIn)

	rec, err := e.pools.LookupOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}
	res, err := pricing.Swap(rec, aToB, amountIn, amount(req.AmountOutMin))
	if err != nil {
		return nil, err
	}

	rb := &rollback{logger: e.logger}
	if err := e.pull(ctx, rb, assetIn, caller, amountIn); err != nil {
		rb.run(ctx)
		return nil, err
	}
	if err := e.pools.Commit(ctx, key, res.Next); err != nil {
		rb.run(ctx)
		return nil, err
	}
	rb.push(func(ctx context.Context) error { return e.pools.Commit(ctx, key, rec) })
	if err := e.covers(ctx, assetOut, res.AmountOut); err != nil {
		rb.run(ctx)
		return nil, err
	}

	ev := events.Swapped{
		AssetIn:   assetIn,
		AssetOut:  assetOut,
		AmountIn:  amountIn,
		AmountOut: res.AmountOut,
		To:        req.To,
	}
	if err := e.emit(ctx, ev, now); err != nil {
		rb.run(ctx)
		return nil, err
	}
	if err := e.send(ctx, assetOut, req.To, res.AmountOut); err != nil {
		rb.run(ctx)
		e.orphaned(ev, err)
		return nil, err
	}

	e.logger.Info("swapped",
		zap.Stringer("pair", key),
		zap.String("asset_in", assetIn.Hex()),
		zap.String("amount_in", amountIn.Dec()),
		zap.String("amount_out", res.AmountOut.Dec()),
		zap.String("to", req.To.Hex()),
	)
	return res.AmountOut, nil
}

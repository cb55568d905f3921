// Package replay drives an exchange from a JSONL log of caller operations
// and records the outcome of each one.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"simpleswap/internal/amm"
	"simpleswap/internal/ledger"
	"simpleswap/internal/model"
	"simpleswap/internal/revert"
	"simpleswap/internal/storage"
)

// ResultWriter receives one result per replayed line.
type ResultWriter interface {
	Write(value interface{}) error
}

// Summary counts replayed lines by outcome.
type Summary struct {
	Total  int
	OK     int
	Failed int
}

// Runner applies operations to an exchange whose assets live in memory.
type Runner struct {
	exchange *amm.Exchange
	assets   *ledger.MemoryAssets
	clock    *amm.ManualClock
	logger   *zap.Logger
}

// NewRunner builds a Runner. clock may be nil when the exchange reads time
// from elsewhere, in which case operation timestamps are ignored.
func NewRunner(exchange *amm.Exchange, assets *ledger.MemoryAssets, clock *amm.ManualClock, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		exchange: exchange,
		assets:   assets,
		clock:    clock,
		logger:   logger,
	}
}

// Run replays every line of the JSONL file at path and writes a result per
// line to out. Rejected operations are recorded and the replay continues;
// failures outside the revert taxonomy stop it.
func (r *Runner) Run(ctx context.Context, path string, out ResultWriter) (Summary, error) {
	if r.exchange == nil {
		return Summary{}, fmt.Errorf("exchange is nil")
	}
	if out == nil {
		return Summary{}, fmt.Errorf("result writer is nil")
	}

	var summary Summary
	err := storage.ScanJSONL(path, func(line int, raw []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Total++

		var op model.Operation
		var res model.OperationResult
		if err := json.Unmarshal(raw, &op); err != nil {
			res = failure(op, fmt.Errorf("%w: %v", ErrBadOperation, err))
		} else {
			res = r.Apply(ctx, op)
		}
		res.Line = line

		if res.OK {
			summary.OK++
		} else {
			summary.Failed++
		}
		if err := out.Write(res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		if res.Code == revert.CodeInternal {
			return fmt.Errorf("line %d: %s", line, res.Error)
		}
		return nil
	})

	r.logger.Info("replay complete",
		zap.Int("total", summary.Total),
		zap.Int("ok", summary.OK),
		zap.Int("failed", summary.Failed),
	)
	return summary, err
}

// Apply executes a single operation. Line is left for the caller to set.
func (r *Runner) Apply(ctx context.Context, op model.Operation) model.OperationResult {
	caller, err := ParseAddress("caller", op.Caller)
	if err != nil {
		return failure(op, err)
	}
	if op.Timestamp != 0 {
		if r.clock != nil {
			r.clock.Set(op.Timestamp)
		} else {
			r.logger.Debug("operation timestamp ignored", zap.String("op", op.Op), zap.Uint64("timestamp", op.Timestamp))
		}
	}
	to := caller
	if op.Recipient != "" {
		if to, err = ParseAddress("recipient", op.Recipient); err != nil {
			return failure(op, err)
		}
	}
	deadline := op.Deadline
	if deadline == 0 {
		deadline = math.MaxUint64
	}

	var res model.OperationResult
	switch op.Op {
	case model.OpApprove:
		res, err = r.approve(caller, op)
	case model.OpAddLiquidity:
		res, err = r.addLiquidity(ctx, caller, to, deadline, op)
	case model.OpRemoveLiquidity:
		res, err = r.removeLiquidity(ctx, caller, to, deadline, op)
	case model.OpSwap:
		res, err = r.swap(ctx, caller, to, deadline, op)
	default:
		err = fmt.Errorf("%w: unknown op %q", ErrBadOperation, op.Op)
	}
	if err != nil {
		return failure(op, err)
	}
	res.Op = op.Op
	res.OK = true
	return res
}

func (r *Runner) approve(caller common.Address, op model.Operation) (model.OperationResult, error) {
	if r.assets == nil {
		return model.OperationResult{}, fmt.Errorf("%w: approvals need an in-memory asset ledger", ErrBadOperation)
	}
	asset, err := ParseAddress("asset", op.Asset)
	if err != nil {
		return model.OperationResult{}, err
	}
	amount, err := ParseAmount("amount", op.Amount)
	if err != nil {
		return model.OperationResult{}, err
	}
	r.assets.Approve(asset, caller, r.exchange.Address(), amount)
	return model.OperationResult{}, nil
}

func (r *Runner) addLiquidity(ctx context.Context, caller, to common.Address, deadline uint64, op model.Operation) (model.OperationResult, error) {
	x, y, err := parsePair(op)
	if err != nil {
		return model.OperationResult{}, err
	}
	amounts, err := parseAmounts(map[string]string{
		"amount_x_desired": op.AmountXDesired,
		"amount_y_desired": op.AmountYDesired,
		"amount_x_min":     op.AmountXMin,
		"amount_y_min":     op.AmountYMin,
	})
	if err != nil {
		return model.OperationResult{}, err
	}

	out, err := r.exchange.AddLiquidity(ctx, caller, amm.AddLiquidityRequest{
		AssetX:         x,
		AssetY:         y,
		AmountXDesired: amounts["amount_x_desired"],
		AmountYDesired: amounts["amount_y_desired"],
		AmountXMin:     amounts["amount_x_min"],
		AmountYMin:     amounts["amount_y_min"],
		To:             to,
		Deadline:       deadline,
	})
	if err != nil {
		return model.OperationResult{}, err
	}
	return model.OperationResult{
		AmountX: out.AmountX.Dec(),
		AmountY: out.AmountY.Dec(),
		Shares:  out.Shares.Dec(),
	}, nil
}

func (r *Runner) removeLiquidity(ctx context.Context, caller, to common.Address, deadline uint64, op model.Operation) (model.OperationResult, error) {
	x, y, err := parsePair(op)
	if err != nil {
		return model.OperationResult{}, err
	}
	amounts, err := parseAmounts(map[string]string{
		"shares":       op.Shares,
		"amount_x_min": op.AmountXMin,
		"amount_y_min": op.AmountYMin,
	})
	if err != nil {
		return model.OperationResult{}, err
	}

	out, err := r.exchange.RemoveLiquidity(ctx, caller, amm.RemoveLiquidityRequest{
		AssetX:     x,
		AssetY:     y,
		Shares:     amounts["shares"],
		AmountXMin: amounts["amount_x_min"],
		AmountYMin: amounts["amount_y_min"],
		To:         to,
		Deadline:   deadline,
	})
	if err != nil {
		return model.OperationResult{}, err
	}
	return model.OperationResult{
		AmountX: out.AmountX.Dec(),
		AmountY: out.AmountY.Dec(),
	}, nil
}

func (r *Runner) swap(ctx context.Context, caller, to common.Address, deadline uint64, op model.Operation) (model.OperationResult, error) {
	path, err := ParsePath(op.Path)
	if err != nil {
		return model.OperationResult{}, err
	}
	amounts, err := parseAmounts(map[string]string{
		"amount_in":      op.AmountIn,
		"amount_out_min": op.AmountOutMin,
	})
	if err != nil {
		return model.OperationResult{}, err
	}

	out, err := r.exchange.SwapExactIn(ctx, caller, amm.SwapRequest{
		AmountIn:     amounts["amount_in"],
		AmountOutMin: amounts["amount_out_min"],
		Path:         path,
		To:           to,
		Deadline:     deadline,
	})
	if err != nil {
		return model.OperationResult{}, err
	}
	return model.OperationResult{AmountOut: out.Dec()}, nil
}

func parsePair(op model.Operation) (common.Address, common.Address, error) {
	x, err := ParseAddress("asset_x", op.AssetX)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	y, err := ParseAddress("asset_y", op.AssetY)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return x, y, nil
}

func parseAmounts(fields map[string]string) (map[string]*uint256.Int, error) {
	out := make(map[string]*uint256.Int, len(fields))
	for field, raw := range fields {
		v, err := ParseAmount(field, raw)
		if err != nil {
			return nil, err
		}
		out[field] = v
	}
	return out, nil
}

func failure(op model.Operation, err error) model.OperationResult {
	code := revert.Code(err)
	if errors.Is(err, ErrBadOperation) {
		code = ErrBadOperation.Error()
	}
	return model.OperationResult{
		Op:    op.Op,
		OK:    false,
		Code:  code,
		Error: err.Error(),
	}
}

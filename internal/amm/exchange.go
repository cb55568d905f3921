// Package amm exposes the caller-facing exchange operations over a
// constant-product pool per asset pair.
//
// Each mutating call runs as one transaction: all checks and arithmetic
// happen against a read-only snapshot, assets owed to the pool are pulled
// before the pool record is committed, and assets owed to the caller leave
// only after the commit. A failure at any step restores the record and
// returns what was pulled.
package amm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"simpleswap/internal/events"
	"simpleswap/internal/ledger"
	"simpleswap/internal/model"
	"simpleswap/internal/pool"
	"simpleswap/internal/pricing"
	"simpleswap/internal/revert"
	"simpleswap/internal/storage"
)

// Config configures an Exchange.
type Config struct {
	// Address is the account that custodies pooled assets.
	Address common.Address
	ChainID uint64
	// ScaleDecimals sets the fixed-point unit used for price quotes.
	ScaleDecimals uint8
	// Sequence is the sequence number of the first emitted log.
	Sequence uint64
}

// Deps are the collaborators an Exchange settles against. Clock defaults
// to SystemClock and Sink to storage.Discard. Transfer callbacks raised by
// Assets that call back into the Exchange must use the context they receive.
type Deps struct {
	Pools  pool.Store
	Assets ledger.AssetLedger
	Shares ledger.ShareLedger
	Clock  Clock
	Sink   storage.Storage
}

// Exchange executes pool operations one at a time.
type Exchange struct {
	mu sync.Mutex

	address common.Address
	chainID uint64
	scale   *uint256.Int

	pools  *pool.Ledger
	assets ledger.AssetLedger
	shares ledger.ShareLedger
	clock  Clock
	sink   storage.Storage
	logger *zap.Logger

	sequence uint64
}

// New builds an Exchange.
func New(cfg Config, deps Deps, logger *zap.Logger) (*Exchange, error) {
	if cfg.Address == (common.Address{}) {
		return nil, fmt.Errorf("exchange address is required")
	}
	if deps.Pools == nil {
		return nil, fmt.Errorf("pool store is required")
	}
	if deps.Assets == nil {
		return nil, fmt.Errorf("asset ledger is required")
	}
	if deps.Shares == nil {
		return nil, fmt.Errorf("share ledger is required")
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock
	}
	if deps.Sink == nil {
		deps.Sink = storage.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	scale, err := pricing.Scale(cfg.ScaleDecimals)
	if err != nil {
		return nil, fmt.Errorf("scale decimals %d: %w", cfg.ScaleDecimals, err)
	}

	return &Exchange{
		address:  cfg.Address,
		chainID:  cfg.ChainID,
		scale:    scale,
		pools:    pool.NewLedger(deps.Pools),
		assets:   deps.Assets,
		shares:   deps.Shares,
		clock:    deps.Clock,
		sink:     deps.Sink,
		logger:   logger,
		sequence: cfg.Sequence,
	}, nil
}

// Address returns the custody account callers approve as spender.
func (e *Exchange) Address() common.Address {
	return e.address
}

type lockKey struct{}

// enter serializes a mutating call. A call made on a context already inside
// this exchange, such as from a transfer callback, is refused.
func (e *Exchange) enter(ctx context.Context) (context.Context, func(), error) {
	if ctx.Value(lockKey{}) == e {
		return nil, nil, revert.ErrLocked
	}
	e.mu.Lock()
	return context.WithValue(ctx, lockKey{}, e), e.mu.Unlock, nil
}

// view serializes a read. Reads from inside a running call skip the lock
// and observe the state that call has committed so far. The running call is
// recognized by its context only, so a callback must reuse the context it
// was handed.
func (e *Exchange) view(ctx context.Context) func() {
	if ctx.Value(lockKey{}) == e {
		return func() {}
	}
	e.mu.Lock()
	return e.mu.Unlock
}

// ensure fails with revert.ErrExpired once the transaction time is past
// deadline.
func (e *Exchange) ensure(ctx context.Context, deadline uint64) (uint64, error) {
	now, err := e.clock.Now(ctx)
	if err != nil {
		return 0, fmt.Errorf("read clock: %w", err)
	}
	if now > deadline {
		return 0, revert.ErrExpired
	}
	return now, nil
}

// rollback collects compensations for effects already applied.
type rollback struct {
	steps  []func(context.Context) error
	logger *zap.Logger
}

func (r *rollback) push(step func(context.Context) error) {
	r.steps = append(r.steps, step)
}

// run applies the compensations newest first. It keeps going past failures
// so every reversible effect is reversed.
func (r *rollback) run(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := len(r.steps) - 1; i >= 0; i-- {
		if err := r.steps[i](ctx); err != nil {
			r.logger.Error("rollback step failed", zap.Int("step", i), zap.Error(err))
		}
	}
	r.steps = nil
}

// pull moves amount of asset from owner into custody using the allowance
// owner granted the exchange, and verifies the custody balance grew by the
// full amount.
func (e *Exchange) pull(ctx context.Context, rb *rollback, asset, owner common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	before, err := e.assets.BalanceOf(ctx, asset, e.address)
	if err != nil {
		return fmt.Errorf("balance of %s: %w", asset.Hex(), err)
	}
	if err := e.assets.TransferFrom(ctx, asset, e.address, owner, e.address, amount); err != nil {
		return fmt.Errorf("%w: pull %s: %v", revert.ErrTransferFailed, asset.Hex(), err)
	}
	after, err := e.assets.BalanceOf(ctx, asset, e.address)
	if err != nil {
		return fmt.Errorf("balance of %s: %w", asset.Hex(), err)
	}

	received := new(uint256.Int)
	if after.Gt(before) {
		received.Sub(after, before)
	}
	if received.Lt(amount) {
		if !received.IsZero() {
			if err := e.assets.Transfer(ctx, asset, e.address, owner, received); err != nil {
				e.logger.Error("refund short transfer failed",
					zap.String("asset", asset.Hex()),
					zap.String("owner", owner.Hex()),
					zap.String("amount", received.Dec()),
					zap.Error(err),
				)
			}
		}
		return fmt.Errorf("%w: pull %s: received %s of %s",
			revert.ErrTransferFailed, asset.Hex(), received.Dec(), amount.Dec())
	}

	refund := new(uint256.Int).Set(amount)
	rb.push(func(ctx context.Context) error {
		return e.assets.Transfer(ctx, asset, e.address, owner, refund)
	})
	return nil
}

// send moves amount of asset out of custody to recipient.
func (e *Exchange) send(ctx context.Context, asset, to common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	if err := e.assets.Transfer(ctx, asset, e.address, to, amount); err != nil {
		return fmt.Errorf("%w: send %s: %v", revert.ErrTransferFailed, asset.Hex(), err)
	}
	return nil
}

// covers checks custody holds at least amount of asset, so a send that
// follows a committed log is not refused for want of funds.
func (e *Exchange) covers(ctx context.Context, asset common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	held, err := e.assets.BalanceOf(ctx, asset, e.address)
	if err != nil {
		return fmt.Errorf("balance of %s: %w", asset.Hex(), err)
	}
	if held.Lt(amount) {
		return fmt.Errorf("%w: custody holds %s of %s %s",
			revert.ErrTransferFailed, held.Dec(), amount.Dec(), asset.Hex())
	}
	return nil
}

// emit encodes ev and hands it to the sink. The sequence only advances on
// success.
func (e *Exchange) emit(ctx context.Context, ev events.Event, timestamp uint64) error {
	rec, err := events.Encode(ev, e.address, e.chainID, e.sequence, timestamp)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.EventName(), err)
	}
	rec.EmittedAt = time.Now().UTC().Format(time.RFC3339Nano)
	if err := e.sink.PutLogBatch(ctx, []model.LogRecord{rec}); err != nil {
		return fmt.Errorf("emit %s: %w", ev.EventName(), err)
	}
	e.sequence++
	return nil
}

// orphaned reports a log that reached the sink for a call that was then
// rolled back.
func (e *Exchange) orphaned(ev events.Event, err error) {
	e.logger.Error("emitted log has no committed transition",
		zap.String("event", ev.EventName()),
		zap.Uint64("sequence", e.sequence-1),
		zap.Error(err),
	)
}

func (e *Exchange) reject(op string, err error) {
	e.logger.Debug("operation rejected",
		zap.String("op", op),
		zap.String("code", revert.Code(err)),
		zap.Error(err),
	)
}

func amount(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

// Package ledger describes the external balance books the exchange settles
// against: one for the pooled assets and one for the claim shares of each
// pair. In-memory implementations back tests and offline replay.
package ledger

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"simpleswap/internal/pair"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// AssetLedger moves fungible assets between holders. TransferFrom spends an
// allowance the owner granted to spender beforehand.
type AssetLedger interface {
	BalanceOf(ctx context.Context, asset, holder common.Address) (*uint256.Int, error)
	Transfer(ctx context.Context, asset, from, to common.Address, amount *uint256.Int) error
	TransferFrom(ctx context.Context, asset, spender, from, to common.Address, amount *uint256.Int) error
}

// ShareLedger tracks claim-share balances per pair.
type ShareLedger interface {
	Mint(ctx context.Context, key pair.Key, to common.Address, amount *uint256.Int) error
	Burn(ctx context.Context, key pair.Key, from common.Address, amount *uint256.Int) error
	BalanceOf(ctx context.Context, key pair.Key, holder common.Address) (*uint256.Int, error)
}

// TransferHook observes a completed asset transfer. It runs after the
// balances have moved and before the transfer call returns, the way a token
// receive callback would.
//
// A hook that calls back into the exchange must pass ctx, or a context
// derived from it. A call made on an unrelated context waits for the
// running operation and never returns.
type TransferHook func(ctx context.Context, asset, from, to common.Address, amount *uint256.Int)

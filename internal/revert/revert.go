// Package revert defines the failure reasons reported by pool operations.
//
// Every reason is a sentinel error whose message is a stable code. Callers
// match with errors.Is and report the code with Code.
package revert

import "errors"

var (
	ErrExpired                      = errors.New("EXPIRED")
	ErrIdenticalAssets              = errors.New("IDENTICAL_ADDRESSES")
	ErrZeroAsset                    = errors.New("ZERO_ADDRESS")
	ErrPoolNotFound                 = errors.New("POOL_NOT_FOUND")
	ErrInsufficientLiquidity        = errors.New("INSUFFICIENT_LIQUIDITY")
	ErrInsufficientInputAmount      = errors.New("INSUFFICIENT_INPUT_AMOUNT")
	ErrInsufficientOutputAmount     = errors.New("INSUFFICIENT_OUTPUT_AMOUNT")
	ErrInsufficientAAmount          = errors.New("INSUFFICIENT_A_AMOUNT")
	ErrInsufficientBAmount          = errors.New("INSUFFICIENT_B_AMOUNT")
	ErrInsufficientInitialLiquidity = errors.New("INSUFFICIENT_INITIAL_LIQUIDITY")
	ErrOverflow                     = errors.New("OVERFLOW")
	ErrInvalidPath                  = errors.New("INVALID_PATH")
	ErrLocked                       = errors.New("LOCKED")
	ErrTransferFailed               = errors.New("TRANSFER_FAILED")
)

// CodeInternal is reported for errors outside the taxonomy (storage, RPC).
const CodeInternal = "INTERNAL"

var all = []error{
	ErrExpired,
	ErrIdenticalAssets,
	ErrZeroAsset,
	ErrPoolNotFound,
	ErrInsufficientLiquidity,
	ErrInsufficientInputAmount,
	ErrInsufficientOutputAmount,
	ErrInsufficientAAmount,
	ErrInsufficientBAmount,
	ErrInsufficientInitialLiquidity,
	ErrOverflow,
	ErrInvalidPath,
	ErrLocked,
	ErrTransferFailed,
}

// Code returns the reason code carried by err, "" for nil and CodeInternal
// when err does not wrap a known reason.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, reason := range all {
		if errors.Is(err, reason) {
			return reason.Error()
		}
	}
	return CodeInternal
}

// Swap exchanges the A/B flavoured slippage reasons. It is used when the
// caller's asset order is the reverse of canonical storage order.
func Swap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInsufficientAAmount):
		return ErrInsufficientBAmount
	case errors.Is(err, ErrInsufficientBAmount):
		return ErrInsufficientAAmount
	default:
		return err
	}
}

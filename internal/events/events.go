// Package events defines the events the exchange emits and their log
// encoding.
package events

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"simpleswap/internal/model"
)

const (
	NameLiquidityAdded   = "LiquidityAdded"
	NameLiquidityRemoved = "LiquidityRemoved"
	NameSwapped          = "Swapped"
)

// Event is a typed exchange event.
type Event interface {
	EventName() string
	// indexed returns the topic arguments after topic0, in ABI order.
	indexed() []common.Address
	// values returns the non-indexed arguments in ABI order.
	values() []*uint256.Int
}

// LiquidityAdded reports a deposit in the caller's asset order.
type LiquidityAdded struct {
	AssetA    common.Address
	AssetB    common.Address
	AmountA   *uint256.Int
	AmountB   *uint256.Int
	Liquidity *uint256.Int
	To        common.Address
}

func (e LiquidityAdded) EventName() string { return NameLiquidityAdded }

func (e LiquidityAdded) indexed() []common.Address {
	return []common.Address{e.AssetA, e.AssetB, e.To}
}

func (e LiquidityAdded) values() []*uint256.Int {
	return []*uint256.Int{e.AmountA, e.AmountB, e.Liquidity}
}

// LiquidityRemoved reports a redemption in the caller's asset order.
type LiquidityRemoved struct {
	AssetA    common.Address
	AssetB    common.Address
	AmountA   *uint256.Int
	AmountB   *uint256.Int
	Liquidity *uint256.Int
	To        common.Address
}

func (e LiquidityRemoved) EventName() string { return NameLiquidityRemoved }

func (e LiquidityRemoved) indexed() []common.Address {
	return []common.Address{e.AssetA, e.AssetB, e.To}
}

func (e LiquidityRemoved) values() []*uint256.Int {
	return []*uint256.Int{e.AmountA, e.AmountB, e.Liquidity}
}

// Swapped reports an exact-input swap.
type Swapped struct {
	AssetIn   common.Address
	AssetOut  common.Address
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
	To        common.Address
}

func (e Swapped) EventName() string { return NameSwapped }

func (e Swapped) indexed() []common.Address {
	return []common.Address{e.AssetIn, e.AssetOut, e.To}
}

func (e Swapped) values() []*uint256.Int {
	return []*uint256.Int{e.AmountIn, e.AmountOut}
}

// Encode renders ev as a log emitted by address. EmittedAt is left for the
// caller to stamp.
func Encode(ev Event, address common.Address, chainID, sequence, timestamp uint64) (model.LogRecord, error) {
	exchange, err := ExchangeABI()
	if err != nil {
		return model.LogRecord{}, err
	}
	event, ok := exchange.Events[ev.EventName()]
	if !ok {
		return model.LogRecord{}, fmt.Errorf("unknown event: %s", ev.EventName())
	}

	topics := []string{event.ID.Hex()}
	for _, addr := range ev.indexed() {
		topics = append(topics, common.BytesToHash(addr.Bytes()).Hex())
	}

	vals := ev.values()
	args := make([]interface{}, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			args = append(args, new(big.Int))
			continue
		}
		args = append(args, v.ToBig())
	}
	data, err := event.Inputs.NonIndexed().Pack(args...)
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("pack %s: %w", event.Name, err)
	}

	return model.LogRecord{
		ChainID:   chainID,
		Sequence:  sequence,
		Address:   address.Hex(),
		Topics:    topics,
		Data:      hexutil.Encode(data),
		Timestamp: timestamp,
	}, nil
}

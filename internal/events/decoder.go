package events

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"simpleswap/internal/model"
)

// Decoder turns exchange logs back into typed events.
type Decoder struct {
	exchangeABI abi.ABI
	topicToName map[string]string
}

// NewDecoder builds a decoder for the exchange events.
func NewDecoder() (*Decoder, error) {
	exchange, err := ExchangeABI()
	if err != nil {
		return nil, err
	}

	topicToName := make(map[string]string, len(exchange.Events))
	for _, name := range []string{NameLiquidityAdded, NameLiquidityRemoved, NameSwapped} {
		topicToName[strings.ToLower(exchange.Events[name].ID.Hex())] = name
	}

	return &Decoder{
		exchangeABI: exchange,
		topicToName: topicToName,
	}, nil
}

// CanDecode checks if the topic0 is supported.
func (d *Decoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.topicToName[strings.ToLower(topic0)]
	return ok
}

// Decode converts a LogRecord into a TypedEvent.
func (d *Decoder) Decode(log model.LogRecord) (*model.TypedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	name, ok := d.topicToName[strings.ToLower(log.Topics[0])]
	if !ok {
		return nil, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}
	if !common.IsHexAddress(log.Address) {
		return nil, fmt.Errorf("invalid exchange address: %s", log.Address)
	}

	var (
		decoded interface{}
		err     error
	)
	switch name {
	case NameLiquidityAdded:
		var data model.LiquidityAddedData
		data, err = d.decodeLiquidity(name, log)
		decoded = data
	case NameLiquidityRemoved:
		var data model.LiquidityAddedData
		data, err = d.decodeLiquidity(name, log)
		decoded = model.LiquidityRemovedData(data)
	case NameSwapped:
		decoded, err = d.decodeSwapped(log)
	default:
		return nil, fmt.Errorf("unsupported event name: %s", name)
	}
	if err != nil {
		return nil, err
	}

	return &model.TypedEvent{
		ChainID:   log.ChainID,
		Sequence:  log.Sequence,
		Address:   log.Address,
		EventName: name,
		Timestamp: log.Timestamp,
		Decoded:   decoded,
		Raw:       &model.RawLogRef{Topic0: log.Topics[0], Data: log.Data},
	}, nil
}

// decodeLiquidity handles both liquidity events, which share a layout.
func (d *Decoder) decodeLiquidity(name string, log model.LogRecord) (model.LiquidityAddedData, error) {
	event := d.exchangeABI.Events[name]
	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return model.LiquidityAddedData{}, err
	}

	var indexed struct {
		AssetA common.Address
		AssetB common.Address
		To     common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
		return model.LiquidityAddedData{}, fmt.Errorf("parse topics: %w", err)
	}

	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return model.LiquidityAddedData{}, err
	}
	if len(values) != 3 {
		return model.LiquidityAddedData{}, fmt.Errorf("unexpected %s values: %d", name, len(values))
	}
	amounts, err := asBigInts(values)
	if err != nil {
		return model.LiquidityAddedData{}, err
	}

	return model.LiquidityAddedData{
		AssetA:    indexed.AssetA.Hex(),
		AssetB:    indexed.AssetB.Hex(),
		AmountA:   amounts[0].String(),
		AmountB:   amounts[1].String(),
		Liquidity: amounts[2].String(),
		To:        indexed.To.Hex(),
	}, nil
}

func (d *Decoder) decodeSwapped(log model.LogRecord) (model.SwappedData, error) {
	event := d.exchangeABI.Events[NameSwapped]
	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return model.SwappedData{}, err
	}

	var indexed struct {
		AssetIn  common.Address
		AssetOut common.Address
		To       common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
		return model.SwappedData{}, fmt.Errorf("parse topics: %w", err)
	}

	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return model.SwappedData{}, err
	}
	if len(values) != 2 {
		return model.SwappedData{}, fmt.Errorf("unexpected swapped values: %d", len(values))
	}
	amounts, err := asBigInts(values)
	if err != nil {
		return model.SwappedData{}, err
	}

	return model.SwappedData{
		AssetIn:   indexed.AssetIn.Hex(),
		AssetOut:  indexed.AssetOut.Hex(),
		AmountIn:  amounts[0].String(),
		AmountOut: amounts[1].String(),
		To:        indexed.To.Hex(),
	}, nil
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	out := make([]common.Hash, 0, indexedCount)
	for _, topic := range topics[1:] {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, dataHex string) ([]interface{}, error) {
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return values, nil
}

func asBigInts(values []interface{}) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(values))
	for i, v := range values {
		b, ok := v.(*big.Int)
		if !ok {
			return nil, fmt.Errorf("value %d: unexpected type %T", i, v)
		}
		out = append(out, b)
	}
	return out, nil
}

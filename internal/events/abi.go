package events

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const exchangeABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "assetA", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "assetB", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amountA", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amountB", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "liquidity", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"}
    ],
    "name": "LiquidityAdded",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "assetA", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "assetB", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amountA", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amountB", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "liquidity", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"}
    ],
    "name": "LiquidityRemoved",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "assetIn", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "assetOut", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amountIn", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amountOut", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"}
    ],
    "name": "Swapped",
    "type": "event"
  }
]`

var (
	exchangeABI     abi.ABI
	exchangeABIOnce sync.Once
	exchangeABIErr  error
)

// ExchangeABI returns the parsed exchange event ABI.
func ExchangeABI() (abi.ABI, error) {
	exchangeABIOnce.Do(func() {
		exchangeABI, exchangeABIErr = abi.JSON(strings.NewReader(exchangeABIJSON))
	})
	return exchangeABI, exchangeABIErr
}

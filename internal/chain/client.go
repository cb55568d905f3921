package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return NewClientFromRPC(rpcClient), nil
}

// NewClientFromRPC wraps an already dialled RPC client.
func NewClientFromRPC(rpcClient *rpc.Client) *Client {
	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

type blockHead struct {
	Timestamp *hexutil.Uint64 `json:"timestamp"`
}

// HeadTimestamp returns the timestamp of the latest block.
func (c *Client) HeadTimestamp(ctx context.Context) (uint64, error) {
	var head *blockHead
	if err := c.rpcClient.CallContext(ctx, &head, "eth_getBlockByNumber", "latest", false); err != nil {
		return 0, err
	}
	if head == nil {
		return 0, fmt.Errorf("latest block not found")
	}
	if head.Timestamp == nil {
		return 0, fmt.Errorf("latest block has no timestamp")
	}
	return uint64(*head.Timestamp), nil
}

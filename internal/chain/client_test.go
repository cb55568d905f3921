package chain

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

type fakeEth struct {
	mu         sync.Mutex
	head       uint64
	timestamps map[uint64]uint64
	failures   int
	calls      int
}

func (f *fakeEth) ChainId(ctx context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(big.NewInt(31337)), nil
}

func (f *fakeEth) GetBlockByNumber(ctx context.Context, tag string, full bool) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("upstream unavailable")
	}
	number := f.head
	if tag != "latest" {
		n, err := hexutil.DecodeUint64(tag)
		if err != nil {
			return nil, err
		}
		number = n
	}
	ts, ok := f.timestamps[number]
	if !ok {
		return nil, nil
	}
	return map[string]interface{}{
		"number":    hexutil.Uint64(number),
		"timestamp": hexutil.Uint64(ts),
	}, nil
}

func newInprocClient(t *testing.T, fe *fakeEth) *Client {
	t.Helper()
	srv := gethrpc.NewServer()
	if err := srv.RegisterName("eth", fe); err != nil {
		t.Fatalf("register rpc service: %v", err)
	}
	c := NewClientFromRPC(gethrpc.DialInProc(srv))
	t.Cleanup(func() {
		c.Close()
		srv.Stop()
	})
	return c
}

func TestHeadTimestamp(t *testing.T) {
	fe := &fakeEth{head: 7, timestamps: map[uint64]uint64{7: 1700000000}}
	c := newInprocClient(t, fe)

	ts, err := c.HeadTimestamp(context.Background())
	if err != nil {
		t.Fatalf("head timestamp: %v", err)
	}
	if ts != 1700000000 {
		t.Fatalf("head timestamp: got %d", ts)
	}

	if fe.calls != 1 {
		t.Fatalf("calls: got %d want 1", fe.calls)
	}
}

func TestHeadTimestampMissingBlock(t *testing.T) {
	c := newInprocClient(t, &fakeEth{head: 99, timestamps: map[uint64]uint64{}})
	if _, err := c.HeadTimestamp(context.Background()); err == nil {
		t.Fatalf("expected error for missing head block")
	}
}

func TestChainID(t *testing.T) {
	c := newInprocClient(t, &fakeEth{})
	id, err := c.GetChainID(context.Background())
	if err != nil {
		t.Fatalf("chain id: %v", err)
	}
	if id.Uint64() != 31337 {
		t.Fatalf("chain id: got %s", id)
	}
}

func TestClockRetries(t *testing.T) {
	fe := &fakeEth{head: 1, timestamps: map[uint64]uint64{1: 42}, failures: 2}
	clock := NewClock(newInprocClient(t, fe), 3, time.Millisecond, zap.NewNop())

	ts, err := clock.Now(context.Background())
	if err != nil {
		t.Fatalf("now: %v", err)
	}
	if ts != 42 || fe.calls != 3 {
		t.Fatalf("got ts=%d after %d calls", ts, fe.calls)
	}
}

func TestClockGivesUp(t *testing.T) {
	fe := &fakeEth{head: 1, timestamps: map[uint64]uint64{1: 42}, failures: 10}
	clock := NewClock(newInprocClient(t, fe), 1, time.Millisecond, nil)

	if _, err := clock.Now(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if fe.calls != 2 {
		t.Fatalf("calls: got %d want 2", fe.calls)
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := WithRetry(ctx, 5, time.Hour, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts: got %d", attempts)
	}
}

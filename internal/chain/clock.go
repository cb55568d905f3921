package chain

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Clock reports the head block timestamp as the transaction time.
type Clock struct {
	client     *Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func NewClock(client *Client, maxRetries int, backoff time.Duration, logger *zap.Logger) *Clock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Clock{
		client:     client,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
	}
}

func (c *Clock) Now(ctx context.Context) (uint64, error) {
	var ts uint64
	attempt := 0
	err := WithRetry(ctx, c.maxRetries, c.backoff, func(ctx context.Context) error {
		attempt++
		v, err := c.client.HeadTimestamp(ctx)
		if err != nil {
			c.logger.Warn("head timestamp failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		ts = v
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("head timestamp: %w", err)
	}
	return ts, nil
}

package txerr

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxRetries      = 3
	defaultInitialInterval = 200 * time.Millisecond
	defaultMaxInterval     = 2 * time.Second
)

type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      DefaultMaxRetries,
		InitialInterval: defaultInitialInterval,
		MaxInterval:     defaultMaxInterval,
	}
}

// Retry runs op, retrying with exponential backoff while it fails with a KindNetwork error.
// Any other error stops immediately.
func Retry(ctx context.Context, cfg RetryConfig, op func(ctx context.Context) error) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = cfg.InitialInterval
	expBackoff.MaxInterval = cfg.MaxInterval
	expBackoff.MaxElapsedTime = 0

	operation := func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if KindOf(err) != KindNetwork {
			return backoff.Permanent(err)
		}

		return err
	}

	//nolint:gosec // MaxRetries is small and non-negative
	b := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(cfg.MaxRetries)), ctx)

	return backoff.Retry(operation, b)
}

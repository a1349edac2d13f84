package store

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/neel2751/lomashwood-product-service/internal/domain"
)

// withTransientRetry retries a read a few times with exponential backoff.
// Used around candidate-selection queries so a blip does not fail a whole
// job run. Non-retryable errors short-circuit.
func withTransientRetry[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(100*time.Millisecond),
			backoff.WithMaxInterval(2*time.Second),
		), 3),
		ctx,
	)

	var result T
	operation := func() error {
		var err error
		result, err = fn(ctx)
		if err != nil && !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(operation, policy)
	return result, err
}

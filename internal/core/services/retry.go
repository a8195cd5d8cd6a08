package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/srgjo27/ticket_marketplace/internal/platform/metrics"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 20 * time.Millisecond
)

// retryPolicy reruns a whole unit of work when storage reports a
// serialization conflict. Every other error is returned as is.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{maxAttempts: defaultMaxAttempts, baseDelay: defaultRetryDelay}
}

func (p retryPolicy) run(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	attempts := max(p.maxAttempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil || !errors.Is(err, domain.ErrAllocationContention) {
			return err
		}

		if attempt == attempts {
			break
		}

		metrics.TrackContentionRetry(operation)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff(attempt)):
		}
	}

	return err
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.baseDelay <= 0 {
		return 0
	}

	delay := p.baseDelay * time.Duration(1<<(attempt-1))
	return delay + rand.N(p.baseDelay)
}

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dgallion1/docchunk/internal/chunkstore"
)

const MaxRetries = 3

var (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// IsRetryable checks if a chunk store error is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *chunkstore.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	// Transport errors.
	return true
}

func newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialBackoff
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, MaxRetries), ctx)
}

// withRetry runs fn until it succeeds, fails permanently or runs out of
// attempts.
func withRetry(ctx context.Context, log *slog.Logger, op string, fn func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("retryable chunk store error", "op", op, "attempt", attempt, "wait", wait, "error", err)
	}
	return backoff.RetryNotify(operation, newBackOff(ctx), notify)
}

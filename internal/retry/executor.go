package retry

import (
	"context"
	"time"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

// Executor orchestrates retry attempts with backoff and error classification.
//
// Thread Safety:
// The Executor itself is safe for concurrent use when calling Execute().
// WithOnRetry() returns a NEW instance with the callback configured; the
// original Executor remains unchanged.
type Executor struct {
	classifier asdb.ErrorClassifier
	strategy   asdb.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor with the given configuration.
// Panics if classifier or strategy is nil.
func NewExecutor(
	classifier asdb.ErrorClassifier,
	strategy asdb.BackoffStrategy,
) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
	}
}

// WithOnRetry returns a new Executor that calls callback before each retry.
// attempt is zero-indexed.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation once, then retries it while it fails transiently and
// the strategy allows. It returns nil on success, the first fatal error, the
// last transient error once retries are exhausted, or the context error if ctx
// ends while waiting.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	lastErr := operation(ctx)
	if lastErr == nil || !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	maxRetries := e.strategy.MaxAttempts()
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		lastErr = operation(ctx)
		if lastErr == nil || !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

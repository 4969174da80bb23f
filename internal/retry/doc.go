// Package retry provides bounded retry with exponential backoff for external
// tool invocations that fail for transient reasons.
//
// The taxonomy cache builder is the only caller: a refresh that timed out or
// exited with EX_TEMPFAIL may be attempted again a configured number of times
// before the batch is aborted. Per-item imports are never retried within a
// batch; a failed item is retried by the next batch instead.
//
// # Example Usage
//
//	classifier := retry.NewProcessErrorClassifier()
//	strategy := retry.NewExponentialBackoff(2)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return builder.Build(ctx, req)
//	})
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. Use WithOnRetry() to create
// independent configurations per goroutine.
package retry

package retry

import (
	"context"
	"time"

	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// Executor runs an operation, retrying transient failures with backoff.
// Safe for concurrent use; WithOnRetry returns a new instance.
type Executor struct {
	classifier metdbload.ErrorClassifier
	strategy   metdbload.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a retry executor. Panics if classifier or strategy is nil.
func NewExecutor(classifier metdbload.ErrorClassifier, strategy metdbload.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// WithOnRetry returns a copy of the executor that calls callback before each retry.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation until it succeeds, fails fatally, or retries run out.
// Returns the error of the last attempt.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	lastErr := operation(ctx)
	maxAttempts := e.strategy.MaxAttempts()

	for attempt := 0; lastErr != nil && e.classifier.IsTransient(lastErr) && (maxAttempts < 0 || attempt < maxAttempts); attempt++ {
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
	}
	return lastErr
}

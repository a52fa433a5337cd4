package metdbload

import "time"

// ErrorClassifier determines whether an error is transient (retryable) or fatal.
type ErrorClassifier interface {
	IsTransient(err error) bool
}

// BackoffStrategy calculates the delay before the next retry attempt.
type BackoffStrategy interface {
	// NextDelay returns the wait before retry number attempt (zero-indexed).
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of retries (0 = none, -1 = unlimited).
	MaxAttempts() int
}

// Package retry retries connection attempts with exponential backoff and
// classifies database errors.
//
// Connecting is the only step metdbload retries. Once a load job has begun its
// transaction, a failure rolls the job back; the classifier is then used only
// to report whether the failure was infrastructure or bad input.
//
//	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return ping(ctx)
//	})
package retry

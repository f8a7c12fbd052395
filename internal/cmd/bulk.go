package cmd

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of concurrent workers
const DefaultConcurrency = 4

// BulkResult represents the outcome of a single bulk operation
type BulkResult[T any] struct {
	Key     string
	Success bool
	Error   error
	Data    T
}

// runBulkOperation executes operations concurrently with bounded parallelism.
// Results come back in the order of keys; keys skipped after cancellation
// carry the context error.
func runBulkOperation[T any](
	ctx context.Context,
	keys []string,
	concurrency int64,
	operation func(ctx context.Context, key string) (T, error),
) []BulkResult[T] {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	sem := semaphore.NewWeighted(concurrency)
	results := make([]BulkResult[T], len(keys))

	g, ctx := errgroup.WithContext(ctx)

	for i, key := range keys {
		results[i].Key = key

		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i].Error = err
				return nil
			}
			defer sem.Release(1)

			if err := ctx.Err(); err != nil {
				results[i].Error = err
				return nil
			}

			data, err := operation(ctx, key)
			if err != nil {
				results[i].Error = err
				return nil // don't fail the group on individual errors
			}
			results[i].Success = true
			results[i].Data = data
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// countResults returns success and failure counts from bulk results
func countResults[T any](results []BulkResult[T]) (success, failure int) {
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failure++
		}
	}
	return
}

package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// runBatches partitions items into consecutive slices of at most batchSize,
// runs every item of a slice concurrently on the pool, waits for the whole
// slice, then invokes checkpoint before starting the next slice. Item
// failures are the work function's concern and never abort the batch; a
// crash therefore loses at most one unflushed batch.
func runBatches[T any](ctx context.Context, pool *ants.Pool, items []T, batchSize int, work func(ctx context.Context, item T), checkpoint func() error) error {
	if batchSize < 1 {
		batchSize = 1
	}

	for start := 0; start < len(items); start += batchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := min(start+batchSize, len(items))

		var wg sync.WaitGroup
		var submitErr error
		for _, item := range items[start:end] {
			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()
				work(ctx, item)
			})
			if err != nil {
				wg.Done()
				submitErr = fmt.Errorf("submit work item: %w", err)
				break
			}
		}
		wg.Wait()
		if submitErr != nil {
			return submitErr
		}

		if err := checkpoint(); err != nil {
			return fmt.Errorf("checkpoint batch: %w", err)
		}
	}

	return nil
}

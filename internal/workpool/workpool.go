package workpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultSize returns the pool size used when none is configured: the number
// of logical CPUs of the host.
func DefaultSize() int {
	return runtime.NumCPU()
}

// Task is one unit of work. It receives the run context and its position in
// the submission order.
type Task[T any] func(ctx context.Context, i int) (T, error)

// Run executes n tasks with at most size running at once. A size below 1
// uses DefaultSize.
func Run[T any](ctx context.Context, size, n int, task Task[T]) ([]T, error) {
	if size < 1 {
		size = DefaultSize()
	}

	results := make([]T, n)
	if n == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(size)

	for i := range n {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			v, err := task(ctx, i)
			if err != nil {
				return err
			}
			// Each goroutine writes only its own slot.
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

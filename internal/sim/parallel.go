package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// minChunk is the smallest number of bodies handed to one worker.
const minChunk = 16

// parallelFor runs fn over contiguous chunks of [0, n) using at most workers
// goroutines. Chunks that have not started when ctx is cancelled are skipped
// and the context error is returned.
func parallelFor(ctx context.Context, n, workers int, fn func(start, end int)) error {
	if workers <= 1 || n <= minChunk {
		fn(0, n)
		return nil
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < n; start += chunkSize {
		start := start
		end := start + chunkSize
		if end > n {
			end = n
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(start, end)
			return nil
		})
	}

	return g.Wait()
}

package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Parallel2 runs both fetches concurrently. The first failure cancels the
// other and is returned.
func Parallel2[A, B any](
	ctx context.Context,
	fa func(context.Context) (A, error),
	fb func(context.Context) (B, error),
) (A, B, error) {
	var (
		a A
		b B
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		a, err = fa(gctx)

		return err
	})

	g.Go(func() error {
		var err error
		b, err = fb(gctx)

		return err
	})

	if err := g.Wait(); err != nil {
		var (
			zeroA A
			zeroB B
		)

		return zeroA, zeroB, fmt.Errorf("parallel fetch: %w", err)
	}

	return a, b, nil
}

// Task is a named unit of best-effort work.
type Task struct {
	Name string
	Run  func(context.Context) error
}

// BestEffort runs every task concurrently and waits for all of them. Failures
// do not cancel the others; they are returned keyed by task name.
func BestEffort(ctx context.Context, tasks ...Task) map[string]error {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed = map[string]error{}
	)

	for _, t := range tasks {
		wg.Go(func() {
			if err := t.Run(ctx); err != nil {
				mu.Lock()
				failed[t.Name] = err
				mu.Unlock()
			}
		})
	}

	wg.Wait()

	return failed
}

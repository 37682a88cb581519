// Package concurrent holds small fan-out helpers built on errgroup.
package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every item, at most limit at a time. A limit of
// zero or less means no limit. The context passed to action is cancelled
// when the first action fails; ForEach returns that first error.
func ForEach[T any](ctx context.Context, items []T, limit int, action func(context.Context, T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, item := range items {
		g.Go(func() error {
			return action(ctx, item)
		})
	}
	return g.Wait()
}

// ParallelMap applies mapFn to each element with up to workers goroutines,
// preserving order.
func ParallelMap[T any, R any](items []T, workers int, mapFn func(T) R) []R {
	out := make([]R, len(items))
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for idx, val := range items {
		g.Go(func() error {
			out[idx] = mapFn(val)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// internal/app/system/fanout/fanout.go
//
// Package fanout runs one lookup per item concurrently and joins on all of
// them. Every call is bounded by a timeout; a zero timeout leaves only the
// parent context's deadline in force.
package fanout

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Gather calls fn for every item concurrently and returns the results in
// input order. The first error cancels the remaining calls and is returned.
func Gather[T, R any](ctx context.Context, timeout time.Duration, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	ctx, cancel := bound(ctx, timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	out := make([]R, len(items))
	for i, item := range items {
		g.Go(func() error {
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Any calls fn for every item concurrently and reports whether any call
// returned true. The first true cancels the remaining calls. Once a hit is
// found, errors from other calls no longer matter; otherwise the first error
// is returned.
func Any[T any](ctx context.Context, timeout time.Duration, items []T, fn func(context.Context, T) (bool, error)) (bool, error) {
	ctx, cancel := bound(ctx, timeout)
	defer cancel()

	var (
		g     errgroup.Group
		found atomic.Bool
	)
	for _, item := range items {
		g.Go(func() error {
			ok, err := fn(ctx, item)
			if err != nil {
				return err
			}
			if ok {
				found.Store(true)
				cancel()
			}
			return nil
		})
	}
	err := g.Wait()
	if found.Load() {
		return true, nil
	}
	return false, err
}

func bound(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

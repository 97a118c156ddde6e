// Package workerpool provides bounded parallel execution helpers for
// the pipeline's fan-out stages.
package workerpool

import (
	"context"
	"sync"
)

// Pool bounds the number of tasks running concurrently.
type Pool struct {
	sem chan struct{}
}

// New creates a pool allowing up to limit concurrent tasks. A limit
// below 1 is treated as 1.
func New(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{sem: make(chan struct{}, limit)}
}

// Cap returns the concurrency limit.
func (p *Pool) Cap() int { return cap(p.sem) }

// Map applies fn to every item concurrently, bounded by the pool limit,
// and returns results in input order. It waits for all items to settle:
// there is no fail-fast, each result carries its own outcome. If the
// context is cancelled, items not yet started receive ctx.Err() without
// invoking fn, while already-running items complete normally.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	wg.Add(len(items))

	for i := range items {
		go func(idx int) {
			defer wg.Done()
			select {
			case p.sem <- struct{}{}:
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			}
			defer func() { <-p.sem }()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = fn(ctx, items[idx])
		}(i)
	}

	wg.Wait()
	return results, errs
}

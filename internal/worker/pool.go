// Package worker runs bounded concurrent jobs and paces per-host requests.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work producing one result. Jobs observe ctx themselves.
type Job[R any] func(ctx context.Context) R

// Pool runs jobs on a fixed number of workers
type Pool[R any] struct {
	workers int
}

// NewPool creates a pool with the given number of workers (minimum 1)
func NewPool[R any](workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}
	return &Pool[R]{workers: workers}
}

// Run executes every job and returns the results in submission order,
// regardless of completion order.
func (p *Pool[R]) Run(ctx context.Context, jobs []Job[R]) []R {
	results := make([]R, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	queue := make(chan int)
	var wg sync.WaitGroup

	workers := min(p.workers, len(jobs))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				results[idx] = jobs[idx](ctx)
			}
		}()
	}

	for idx := range jobs {
		queue <- idx
	}
	close(queue)
	wg.Wait()

	return results
}

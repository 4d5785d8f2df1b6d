package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	if p := NewPool[int](5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool[int](0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool[int](-1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_PreservesSubmissionOrder(t *testing.T) {
	jobs := make([]Job[int], 10)
	for i := range jobs {
		n := i
		jobs[i] = func(ctx context.Context) int {
			// Later jobs finish first
			time.Sleep(time.Duration(10-n) * time.Millisecond)
			return n * n
		}
	}

	results := NewPool[int](4).Run(context.Background(), jobs)

	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	for i, r := range results {
		if r != i*i {
			t.Errorf("result %d = %d, expected %d", i, r, i*i)
		}
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	var running, peak int32
	jobs := make([]Job[struct{}], 12)
	for i := range jobs {
		jobs[i] = func(ctx context.Context) struct{} {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return struct{}{}
		}
	}

	NewPool[struct{}](3).Run(context.Background(), jobs)

	if peak > 3 {
		t.Errorf("expected at most 3 concurrent jobs, saw %d", peak)
	}
}

func TestPool_Empty(t *testing.T) {
	results := NewPool[string](2).Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestPool_JobsSeeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job[error]{
		func(ctx context.Context) error { return ctx.Err() },
		func(ctx context.Context) error { return ctx.Err() },
	}

	for i, err := range NewPool[error](2).Run(ctx, jobs) {
		if err == nil {
			t.Errorf("job %d: expected cancellation error", i)
		}
	}
}

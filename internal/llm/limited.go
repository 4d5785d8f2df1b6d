package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// LimitedProvider paces calls to the wrapped provider
type LimitedProvider struct {
	Provider
	limiter *rate.Limiter
}

// NewLimitedProvider wraps p with a requests-per-minute limiter. A non-positive rate returns p unchanged.
func NewLimitedProvider(p Provider, requestsPerMinute int) Provider {
	if requestsPerMinute <= 0 {
		return p
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &LimitedProvider{
		Provider: p,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Complete waits for limiter clearance before delegating
func (l *LimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{
			Provider: l.Name(),
			Kind:     KindTimeout,
			Err:      fmt.Errorf("rate limiter: %w", err),
		}
	}
	return l.Provider.Complete(ctx, req)
}

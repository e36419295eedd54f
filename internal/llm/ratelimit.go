package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

type rateLimited struct {
	next    Oracle
	limiter *rate.Limiter
}

// RateLimited spaces calls to next at requestsPerMinute with a burst of one.
// A non-positive rate returns next unchanged.
func RateLimited(next Oracle, requestsPerMinute int) Oracle {
	if requestsPerMinute <= 0 {
		return next
	}
	every := time.Minute / time.Duration(requestsPerMinute)
	return &rateLimited{next: next, limiter: rate.NewLimiter(rate.Every(every), 1)}
}

func (r *rateLimited) Complete(ctx context.Context, req Request) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrUnavailable, err)
	}
	return r.next.Complete(ctx, req)
}

func (r *rateLimited) Name() string { return r.next.Name() }

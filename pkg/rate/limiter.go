package rate

import (
	"context"

	"go.uber.org/ratelimit"
)

// Limiter paces a workload to a fixed number of operations per second. It
// wraps a leaky-bucket limiter and additionally exposes a context-bound
// channel form usable in select loops.
type Limiter struct {
	cancel context.CancelFunc
	ch     chan struct{}
	l      ratelimit.Limiter
	limit  int
}

func NewLimiter(gCtx context.Context, limit int) *Limiter {
	ctx, cancel := context.WithCancel(gCtx)
	limiter := &Limiter{
		cancel: cancel,
		limit:  limit,
		ch:     make(chan struct{}),
		l:      ratelimit.New(limit),
	}
	go limiter.provider(ctx)
	return limiter
}

func (l *Limiter) provider(ctx context.Context) {
	defer close(l.ch)
	for {
		l.l.Take()
		select {
		case <-ctx.Done():
			return
		case l.ch <- struct{}{}:
		}
	}
}

// Take blocks until the next permitted slot.
func (l *Limiter) Take() {
	l.l.Take()
}

func (l *Limiter) Limit() int {
	return l.limit
}

// Chan yields one token per permitted slot; closed when the limiter stops.
func (l *Limiter) Chan() <-chan struct{} {
	return l.ch
}

func (l *Limiter) Stop() {
	l.cancel()
}

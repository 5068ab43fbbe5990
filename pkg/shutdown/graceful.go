package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrTimeout = errors.New("graceful shutdown timed out")

// Gracefuller is what long-lived components see: they register with Add and
// report completion with Done.
type Gracefuller interface {
	Add(delta int)
	Done()
}

// Graceful coordinates shutdown: it waits for an OS signal or context
// cancellation, then waits (bounded by the graceful timeout) for every
// registered component to drain.
type Graceful struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	timeout time.Duration
}

func NewGraceful(ctx context.Context, cancel context.CancelFunc) *Graceful {
	return &Graceful{ctx: ctx, cancel: cancel, timeout: time.Minute}
}

func (g *Graceful) SetGracefulTimeout(timeout time.Duration) {
	g.timeout = timeout
}

func (g *Graceful) Add(delta int) {
	g.wg.Add(delta)
}

func (g *Graceful) Done() {
	g.wg.Done()
}

// ListenCancelAndAwait blocks until a termination signal arrives or the root
// context is cancelled, cancels the context for all components, and awaits
// their completion up to the graceful timeout.
func (g *Graceful) ListenCancelAndAwait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info().Msgf("[shutdown] received signal '%v', stopping", sig)
	case <-g.ctx.Done():
	}

	g.cancel()

	drained := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-time.After(g.timeout):
		return ErrTimeout
	}
}

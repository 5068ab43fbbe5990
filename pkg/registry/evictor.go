package registry

import (
	"context"

	"github.com/Borislavv/shared/pkg/config"
	"github.com/Borislavv/shared/pkg/utils"
	"github.com/rs/zerolog/log"
)

// evictor periodically sweeps the shards and drops resources that sat idle
// past the configured TTL with no lease or matching removal.
type evictor[T any] struct {
	ctx context.Context
	cfg *config.Registry
	reg *Registry[T]
}

func newEvictor[T any](ctx context.Context, cfg *config.Registry, reg *Registry[T]) *evictor[T] {
	return &evictor[T]{ctx: ctx, cfg: cfg, reg: reg}
}

func (e *evictor[T]) run() {
	go func() {
		t := utils.NewTicker(e.ctx, e.cfg.EvictInterval)
		for {
			select {
			case <-e.ctx.Done():
				return
			case <-t:
				evicted := 0
				for _, s := range e.reg.shards {
					evicted += s.evictIdle(e.cfg.IdleTTL)
				}
				if evicted > 0 {
					EvictedTotal.Add(int64(evicted))
					e.reg.meter.AddEvicted(evicted)
					log.Info().Msgf("[registry] evicted %d idle resources, %d remain", evicted, e.reg.Len())
				}
			}
		}
	}()
}

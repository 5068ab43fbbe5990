package app

import (
	"bytes"
	"context"
	"time"

	"github.com/Borislavv/shared/pkg/config"
	"github.com/Borislavv/shared/pkg/ctime"
	"github.com/Borislavv/shared/pkg/metrics"
	"github.com/Borislavv/shared/pkg/registry"
	"github.com/Borislavv/shared/pkg/shutdown"
	"github.com/rs/zerolog/log"
)

// App wires the resource registry to the synthetic workload that exercises
// it: leases checked out and returned under pacing, weak observers verifying
// liveness, churn forcing staged teardown.
type App struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cfg       *config.App
	meter     *metrics.Meter
	reg       *registry.Registry[Resource]
	stopClock func()
}

func New(ctx context.Context, cfg *config.App) *App {
	ctx, cancel := context.WithCancel(ctx)

	meter := metrics.New()

	return &App{
		ctx:       ctx,
		cancel:    cancel,
		cfg:       cfg,
		meter:     meter,
		stopClock: ctime.Start(time.Millisecond * 10),
		reg:       registry.New[Resource](ctx, &cfg.Registry, meter),
	}
}

// Registry exposes the underlying registry (used by tests).
func (a *App) Registry() *registry.Registry[Resource] {
	return a.reg
}

// Start runs the workload until the root context is cancelled. The
// Gracefuller sees Done when everything is drained.
func (a *App) Start(gc shutdown.Gracefuller) {
	defer func() {
		a.stop()
		gc.Done()
	}()

	log.Info().Msg("[app] starting")

	if a.cfg.Workload.Enabled {
		w := newWorkload(a.ctx, a.cfg, a.reg)
		w.run()
		log.Info().Msgf("[app] workload started: %d resources, %d clients, %d ops/s",
			a.cfg.Workload.Resources, a.cfg.Workload.Clients, a.cfg.Workload.RatePerSec)
	} else {
		log.Info().Msg("[app] workload disabled, registry idle")
	}

	a.runStatsLogger()

	<-a.ctx.Done()
}

// runStatsLogger periodically reports registry and ownership counters.
func (a *App) runStatsLogger() {
	go func() {
		t := time.NewTicker(5 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-t.C:
				log.Info().Msgf(
					"[app] resources=%d acquireHits=%d acquireMisses=%d evicted=%d",
					a.reg.Len(),
					registry.AcquireHits.Load(),
					registry.AcquireMisses.Load(),
					registry.EvictedTotal.Load(),
				)
				if e := log.Debug(); e.Enabled() {
					var buf bytes.Buffer
					a.meter.WritePrometheus(&buf)
					e.Msgf("[app] metrics:\n%s", buf.String())
				}
			}
		}
	}()
}

func (a *App) stop() {
	log.Info().Msg("[app] stopping")
	a.cancel()
	a.reg.Clear()
	a.stopClock()
	log.Info().Msg("[app] stopped")
}

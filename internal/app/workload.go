package app

import (
	"context"
	"math/rand"
	"strconv"

	"github.com/Borislavv/shared/pkg/config"
	"github.com/Borislavv/shared/pkg/ctime"
	"github.com/Borislavv/shared/pkg/rate"
	"github.com/Borislavv/shared/pkg/registry"
	"github.com/Borislavv/shared/pkg/shared"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog/log"
)

// Resource is the synthetic leased object: a fake connection-like value with
// a payload to give the allocator something to reclaim.
type Resource struct {
	Name     string
	Addr     string
	Payload  []byte
	OpenedAt int64
	Closed   bool
}

func closeResource(r *Resource) {
	r.Closed = true
}

// workload drives the registry the way real consumers would: clients lease
// and return resources under pacing, watchers hold weak observers across
// churn, and a churner periodically replaces resources so observers see
// objects die and come back.
type workload struct {
	ctx   context.Context
	cfg   *config.App
	reg   *registry.Registry[Resource]
	names []string
}

func newWorkload(ctx context.Context, cfg *config.App, reg *registry.Registry[Resource]) *workload {
	return &workload{ctx: ctx, cfg: cfg, reg: reg}
}

func (w *workload) run() {
	w.open()

	for i := 0; i < w.cfg.Workload.Clients; i++ {
		go w.runClient(i)
	}
	go w.runWatcher()
	go w.runChurner()
}

// open fills the registry, alternating the two allocation strategies.
func (w *workload) open() {
	w.names = make([]string, w.cfg.Workload.Resources)
	for i := range w.names {
		w.names[i] = gofakeit.AppName() + "-" + strconv.Itoa(i)
		w.reg.Put(w.names[i], w.newResource(w.names[i], i))
	}
}

func (w *workload) newResource(name string, i int) *shared.Ptr[Resource] {
	res := Resource{
		Name:     name,
		Addr:     gofakeit.IPv4Address() + ":" + strconv.Itoa(gofakeit.Number(1024, 65535)),
		Payload:  []byte(gofakeit.LetterN(uint(w.cfg.Workload.PayloadBytes))),
		OpenedAt: ctime.UnixNano(),
	}
	if i%2 == 0 {
		return shared.Adopt(&res, closeResource)
	}
	return shared.MakeWith(res, closeResource)
}

// runClient leases a random resource per permitted slot, touches it and
// returns it.
func (w *workload) runClient(id int) {
	limiter := rate.NewLimiter(w.ctx, w.cfg.Workload.RatePerSec)
	defer limiter.Stop()

	rnd := rand.New(rand.NewSource(int64(id) + 1))
	for {
		select {
		case <-w.ctx.Done():
			return
		case _, ok := <-limiter.Chan():
			if !ok {
				return
			}
			name := w.names[rnd.Intn(len(w.names))]
			lease, found := w.reg.Acquire(name)
			if !found {
				continue
			}
			_ = len(lease.Value().Payload)
			lease.Release()
		}
	}
}

// runWatcher keeps weak observers over random resources and logs when one it
// watched has died under it.
func (w *workload) runWatcher() {
	limiter := rate.NewLimiter(w.ctx, 100)
	defer limiter.Stop()

	rnd := rand.New(rand.NewSource(0xCAFE))
	for {
		select {
		case <-w.ctx.Done():
			return
		case _, ok := <-limiter.Chan():
			if !ok {
				return
			}
		}

		name := w.names[rnd.Intn(len(w.names))]
		obs, found := w.reg.Watch(name)
		if !found {
			continue
		}
		if lease, ok := obs.TryAcquire(); ok {
			lease.Release()
		} else {
			log.Debug().Msgf("[workload] observed dead resource '%s'", name)
		}
		obs.Release()
	}
}

// runChurner replaces a random resource once per second, so observers and
// lease holders exercise teardown while the object is still referenced.
func (w *workload) runChurner() {
	limiter := rate.NewLimiter(w.ctx, 1)
	defer limiter.Stop()

	rnd := rand.New(rand.NewSource(0xBEEF))
	for {
		select {
		case <-w.ctx.Done():
			return
		case _, ok := <-limiter.Chan():
			if !ok {
				return
			}
			i := rnd.Intn(len(w.names))
			w.reg.Put(w.names[i], w.newResource(w.names[i], i))
		}
	}
}

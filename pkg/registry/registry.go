// Package registry is a sharded, keyed store of counted-ownership handles
// (pkg/shared). The registry holds one strong handle per resource; callers
// check out leases (extra strong handles) or observers (weak handles), and a
// background evictor drops resources that sat idle with no lease out.
//
// Every counter transition of a registry-owned block happens under the
// owning shard's lock, which is what makes the non-atomic handles safe to
// share between goroutines here.
//
// Touch stamps come from pkg/ctime: start the coarse clock before relying on
// the idle evictor.
package registry

import (
	"context"
	"sync/atomic"

	"github.com/Borislavv/shared/pkg/config"
	"github.com/Borislavv/shared/pkg/metrics"
	"github.com/Borislavv/shared/pkg/shared"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/xxh3"
)

var (
	AcquireHits   = &atomic.Int64{}
	AcquireMisses = &atomic.Int64{}
	EvictedTotal  = &atomic.Int64{}
)

type Registry[T any] struct {
	ctx    context.Context
	cfg    *config.Registry
	meter  *metrics.Meter
	shards []*shard[T]
	mask   uint64
}

// New builds the registry and, when an idle TTL is configured, launches the
// evictor. meter may be nil. cfg.Shards must be a power of two of at least 1,
// which config's defaulting guarantees.
func New[T any](ctx context.Context, cfg *config.Registry, meter *metrics.Meter) *Registry[T] {
	n := cfg.Shards

	r := &Registry[T]{
		ctx:    ctx,
		cfg:    cfg,
		meter:  meter,
		shards: make([]*shard[T], n),
		mask:   n - 1,
	}
	for i := range r.shards {
		r.shards[i] = newShard[T](uint64(i), cfg.PerShard)
	}

	meter.RegisterResourceGauge(func() float64 { return float64(r.Len()) })

	if cfg.IdleTTL > 0 {
		newEvictor(ctx, cfg, r).run()
	}

	return r
}

func keyOf(name string) uint64 {
	return xxh3.HashString(name)
}

func (r *Registry[T]) shardOf(key uint64) *shard[T] {
	return r.shards[key&r.mask]
}

// Put registers the resource under name, transferring the handle's ownership
// unit to the registry: the caller must not release p afterwards. An existing
// resource under the same name is released and replaced.
func (r *Registry[T]) Put(name string, p *shared.Ptr[T]) {
	key := keyOf(name)
	if r.shardOf(key).put(key, name, p) {
		log.Debug().Msgf("[registry] replaced resource '%s'", name)
	}
	r.meter.IncOpened()
}

// Acquire checks out a lease on the named resource. The caller releases it.
func (r *Registry[T]) Acquire(name string) (*Lease[T], bool) {
	key := keyOf(name)
	l, found := r.shardOf(key).acquire(key, name)
	if !found {
		AcquireMisses.Add(1)
		r.meter.IncAcquireMiss()
		return nil, false
	}
	AcquireHits.Add(1)
	r.meter.IncAcquireHit()
	return l, true
}

// Watch returns a weak observer of the named resource; it does not keep the
// resource alive and survives its removal.
func (r *Registry[T]) Watch(name string) (*Observer[T], bool) {
	key := keyOf(name)
	return r.shardOf(key).watch(key, name)
}

// Remove drops the registry's ownership of the named resource. The object is
// destroyed right away when no lease is out, otherwise with the last lease
// release.
func (r *Registry[T]) Remove(name string) bool {
	key := keyOf(name)
	if !r.shardOf(key).remove(key, name) {
		return false
	}
	r.meter.IncRemoved()
	log.Debug().Msgf("[registry] removed resource '%s'", name)
	return true
}

// Len returns the number of registered resources.
func (r *Registry[T]) Len() int {
	total := 0
	for _, s := range r.shards {
		total += s.len()
	}
	return total
}

// Clear drops every registered resource.
func (r *Registry[T]) Clear() {
	dropped := 0
	for _, s := range r.shards {
		dropped += s.clear()
	}
	if dropped > 0 {
		log.Info().Msgf("[registry] cleared %d resources", dropped)
	}
}

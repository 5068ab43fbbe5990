package registry

import "github.com/Borislavv/shared/pkg/shared"

// Lease is a checked-out strong handle. It is exclusively the caller's: the
// registry never touches it again, and the caller must Release it exactly
// once. Leases are pooled per shard.
type Lease[T any] struct {
	ptr   *shared.Ptr[T]
	shard *shard[T]
}

// Value returns the leased resource. Valid until Release.
func (l *Lease[T]) Value() *T {
	return l.ptr.Get()
}

// UseCount returns the resource's current strong count (registry unit
// included), mostly useful in tests and stats.
func (l *Lease[T]) UseCount() uint64 {
	l.shard.RLock()
	defer l.shard.RUnlock()
	return l.ptr.UseCount()
}

// Release returns the ownership unit under the shard lock and puts the lease
// back into the pool. The lease must not be used afterwards.
func (l *Lease[T]) Release() {
	if l == nil || l.shard == nil {
		return
	}
	s := l.shard

	s.Lock()
	l.ptr.Release()
	s.Unlock()

	l.ptr, l.shard = nil, nil
	s.leases.Put(l)
}

// Observer is a weak, non-keeping view of a registry resource. It survives
// removal of the resource and reports (or upgrades) liveness.
type Observer[T any] struct {
	weak  *shared.Weak[T]
	shard *shard[T]
}

// TryAcquire upgrades the observation into a lease if the resource is still
// alive.
func (o *Observer[T]) TryAcquire() (*Lease[T], bool) {
	o.shard.Lock()
	clone := o.weak.Lock()
	o.shard.Unlock()

	if clone.IsNil() {
		return nil, false
	}
	l := o.shard.leases.Get().(*Lease[T])
	l.ptr, l.shard = clone, o.shard
	return l, true
}

// Expired reports whether the observed resource has been destroyed.
func (o *Observer[T]) Expired() bool {
	o.shard.RLock()
	defer o.shard.RUnlock()
	return o.weak.Expired()
}

// Release drops the observation. Must be called exactly once.
func (o *Observer[T]) Release() {
	o.shard.Lock()
	o.weak.Release()
	o.shard.Unlock()
}

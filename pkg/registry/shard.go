package registry

import (
	"sync"
	"time"

	"github.com/Borislavv/shared/pkg/ctime"
	"github.com/Borislavv/shared/pkg/shared"
)

// entry is the registry's own ownership unit for one resource, stamped on
// every touch for the idle evictor. The stored name disambiguates hash
// collisions.
type entry[T any] struct {
	name      string
	ptr       *shared.Ptr[T]
	touchedAt int64 // unix nano, coarse
}

// shard is a single partition of the registry. Its mutex serializes every
// counter transition of the blocks it owns: the handles themselves carry
// plain counters.
type shard[T any] struct {
	*sync.RWMutex
	items  map[uint64]*entry[T]
	id     uint64
	leases *sync.Pool
}

func newShard[T any](id uint64, preallocate int) *shard[T] {
	return &shard[T]{
		RWMutex: &sync.RWMutex{},
		items:   make(map[uint64]*entry[T], preallocate),
		id:      id,
		leases: &sync.Pool{
			New: func() interface{} {
				return new(Lease[T])
			},
		},
	}
}

// put adopts the caller's handle as the shard's ownership unit, replacing
// (and releasing) any previous holder of the key.
func (s *shard[T]) put(key uint64, name string, p *shared.Ptr[T]) (replaced bool) {
	s.Lock()
	defer s.Unlock()

	if old, found := s.items[key]; found {
		old.ptr.Release()
		replaced = true
	}
	s.items[key] = &entry[T]{name: name, ptr: p, touchedAt: ctime.UnixNano()}
	return replaced
}

// acquire clones the shard's handle for the caller and bumps the touch stamp.
// A key hit with a different name is a hash collision and counts as a miss.
func (s *shard[T]) acquire(key uint64, name string) (*Lease[T], bool) {
	s.Lock()
	e, found := s.items[key]
	if !found || e.name != name {
		s.Unlock()
		return nil, false
	}
	clone := e.ptr.Clone()
	e.touchedAt = ctime.UnixNano()
	s.Unlock()

	l := s.leases.Get().(*Lease[T])
	l.ptr, l.shard = clone, s
	return l, true
}

// watch hands out a weak observer of the resource without keeping it alive.
func (s *shard[T]) watch(key uint64, name string) (*Observer[T], bool) {
	s.Lock()
	defer s.Unlock()

	e, found := s.items[key]
	if !found || e.name != name {
		return nil, false
	}
	return &Observer[T]{weak: e.ptr.Weak(), shard: s}, true
}

// remove drops the shard's ownership unit. The object survives until the
// last outstanding lease is released.
func (s *shard[T]) remove(key uint64, name string) bool {
	s.Lock()
	defer s.Unlock()

	e, found := s.items[key]
	if !found || e.name != name {
		return false
	}
	delete(s.items, key)
	e.ptr.Release()
	return true
}

func (s *shard[T]) len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.items)
}

func (s *shard[T]) clear() (dropped int) {
	s.Lock()
	defer s.Unlock()

	for key, e := range s.items {
		e.ptr.Release()
		delete(s.items, key)
		dropped++
	}
	return dropped
}

// evictIdle drops entries untouched for ttl when the shard is their sole
// owner (use count 1 means no lease is out).
func (s *shard[T]) evictIdle(ttl time.Duration) (evicted int) {
	deadline := ctime.UnixNano() - ttl.Nanoseconds()

	s.Lock()
	defer s.Unlock()

	for key, e := range s.items {
		if e.touchedAt > deadline {
			continue
		}
		if e.ptr.UseCount() != 1 {
			continue
		}
		e.ptr.Release()
		delete(s.items, key)
		evicted++
	}
	return evicted
}

package shared

import "sync/atomic"

// Package-level allocation accounting. Tests use these to assert that objects
// are destroyed and blocks are dropped exactly once.
var (
	BlocksAllocated  = &atomic.Int64{}
	BlocksFreed      = &atomic.Int64{}
	ObjectsDestroyed = &atomic.Int64{}
)

// counts is the pair of ownership counters every control block carries.
// strong counts live strong handles. weak counts live weak handles PLUS one
// unit mirrored from every strong handle: both counters start at 1 and every
// strong transition moves weak in lockstep, so weak reaches zero only after
// all strong and all weak handles are gone.
//
// The counters are plain integers. Mutating one block from several goroutines
// at once is out of contract; serialize externally (pkg/registry does this
// with its per-shard locks).
type counts struct {
	strong uint64
	weak   uint64
}

func (c *counts) counters() *counts { return c }

// controlBlock is the bookkeeping record shared by every handle in one
// ownership group. The destroy operation is polymorphic over the storage
// strategy, selected at block creation and fixed for the block's lifetime.
// It runs exactly once, when the strong count reaches zero; the block itself
// is dropped when the weak count drains too.
type controlBlock interface {
	counters() *counts
	destroyObject()
}

// Deleter releases an adopted object. Nil means the object is simply dropped
// for the garbage collector to take once unreferenced.
type Deleter[T any] func(*T)

// pointerBlock owns a separately allocated object plus the deleter that
// releases it.
type pointerBlock[T any] struct {
	counts
	obj     *T
	deleter Deleter[T]
}

func newPointerBlock[T any](obj *T, deleter Deleter[T]) *pointerBlock[T] {
	BlocksAllocated.Add(1)
	return &pointerBlock[T]{counts: counts{strong: 1, weak: 1}, obj: obj, deleter: deleter}
}

func (b *pointerBlock[T]) destroyObject() {
	if b.deleter != nil {
		b.deleter(b.obj)
	}
	b.obj = nil
	ObjectsDestroyed.Add(1)
}

// valueBlock stores the object by value inside the block itself: one
// allocation holds both the counters and the storage. destroyObject runs the
// finalizer in place and zeroes the slot; the slot stays allocated (but dead)
// until the last weak handle drops the whole block.
type valueBlock[T any] struct {
	counts
	value     T
	finalizer func(*T)
}

func newValueBlock[T any](value T, finalizer func(*T)) *valueBlock[T] {
	BlocksAllocated.Add(1)
	return &valueBlock[T]{counts: counts{strong: 1, weak: 1}, value: value, finalizer: finalizer}
}

func (b *valueBlock[T]) destroyObject() {
	if b.finalizer != nil {
		b.finalizer(&b.value)
	}
	var zero T
	b.value = zero
	ObjectsDestroyed.Add(1)
}

// retain bumps both counters for a new strong handle.
func retain(ctrl controlBlock) {
	c := ctrl.counters()
	c.strong++
	c.weak++
}

// releaseStrong drops one strong ownership unit. The object dies with the
// last strong handle; the block dies once the weak count drains too. The
// object check must run before the block check: the post-decrement weak count
// still includes the mirrored strong contribution.
func releaseStrong(ctrl controlBlock) {
	c := ctrl.counters()
	if c.strong == 0 {
		panic("shared: strong count underflow (double release)")
	}
	c.strong--
	c.weak--
	if c.strong == 0 {
		ctrl.destroyObject()
	}
	if c.weak == 0 {
		BlocksFreed.Add(1)
	}
}

// releaseWeak drops one weak unit. Never touches the managed object.
func releaseWeak(ctrl controlBlock) {
	c := ctrl.counters()
	if c.weak == 0 {
		panic("shared: weak count underflow (double release)")
	}
	c.weak--
	if c.weak == 0 {
		BlocksFreed.Add(1)
	}
}

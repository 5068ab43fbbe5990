// Package shared implements counted-ownership handles over heap objects:
// a strong handle (Ptr) that keeps the object alive, and a weak observer
// (Weak) that can detect when the object is already gone. Reclamation is
// deterministic and synchronous: the object is destroyed the instant the last
// strong handle is released, regardless of outstanding weak observers.
//
// Handles must be released explicitly (Release or Reset). Counters are not
// atomic; one ownership group must not be mutated concurrently without
// external serialization.
package shared

// Ptr is a strong ownership handle. It carries the exposed object pointer and
// the control block separately, so an aliasing handle may expose a sub-object
// while the block still manages the whole parent.
//
// The zero value is an empty handle: Get returns nil, UseCount is 0, Release
// is a no-op.
type Ptr[T any] struct {
	obj  *T
	ctrl controlBlock
}

// Adopt takes ownership of an already allocated object, attaching a fresh
// control block with both counters at 1. The optional deleter runs when the
// last strong handle goes away. Adopting the same object twice through
// independent handles is a caller bug (double destroy at teardown).
// Adopt(nil) yields an empty handle and allocates nothing.
func Adopt[T any](obj *T, deleter ...Deleter[T]) *Ptr[T] {
	if obj == nil {
		return &Ptr[T]{}
	}
	var del Deleter[T]
	if len(deleter) > 0 {
		del = deleter[0]
	}
	return &Ptr[T]{obj: obj, ctrl: newPointerBlock(obj, del)}
}

// Clone shares ownership: the new handle observes the same block and bumps
// both counters as one unit. Cloning an empty handle yields an empty handle.
func (p *Ptr[T]) Clone() *Ptr[T] {
	if p == nil {
		return &Ptr[T]{}
	}
	if p.ctrl != nil {
		retain(p.ctrl)
	}
	return &Ptr[T]{obj: p.obj, ctrl: p.ctrl}
}

// Move transfers ownership into the returned handle without touching the
// counters; the receiver becomes empty.
func (p *Ptr[T]) Move() *Ptr[T] {
	out := &Ptr[T]{obj: p.obj, ctrl: p.ctrl}
	p.obj, p.ctrl = nil, nil
	return out
}

// Assign replaces the receiver's ownership with a share of other's.
// Self-assignment is a no-op. The new block is retained before the old one is
// released, so assigning two handles of the same group never drops the object.
func (p *Ptr[T]) Assign(other *Ptr[T]) {
	if p == other {
		return
	}
	if other != nil && other.ctrl != nil {
		retain(other.ctrl)
	}
	p.Release()
	if other != nil {
		p.obj, p.ctrl = other.obj, other.ctrl
	}
}

// Get returns the exposed object pointer, nil for an empty handle.
func (p *Ptr[T]) Get() *T {
	if p == nil {
		return nil
	}
	return p.obj
}

// IsNil reports whether the handle exposes no object.
func (p *Ptr[T]) IsNil() bool {
	return p == nil || p.obj == nil
}

// UseCount returns the current strong count, 0 for an empty handle.
func (p *Ptr[T]) UseCount() uint64 {
	if p == nil || p.ctrl == nil {
		return 0
	}
	return p.ctrl.counters().strong
}

// Release drops the receiver's ownership unit and empties the handle. If the
// strong count hits zero the managed object is destroyed; if the weak count
// then hits zero too, the block goes with it. Releasing an empty handle is a
// no-op, so released and moved-from handles are safe to release again.
func (p *Ptr[T]) Release() {
	if p == nil {
		return
	}
	if p.ctrl != nil {
		releaseStrong(p.ctrl)
	}
	p.obj, p.ctrl = nil, nil
}

// Reset is Release under the name callers of reset-style APIs expect.
func (p *Ptr[T]) Reset() {
	p.Release()
}

// ResetTo releases the current state and re-adopts obj with a fresh block,
// exactly as Adopt would.
func (p *Ptr[T]) ResetTo(obj *T, deleter ...Deleter[T]) {
	p.Release()
	if obj == nil {
		return
	}
	var del Deleter[T]
	if len(deleter) > 0 {
		del = deleter[0]
	}
	p.obj = obj
	p.ctrl = newPointerBlock(obj, del)
}

// Weak produces a non-owning observer of the same block, bumping only the
// weak count.
func (p *Ptr[T]) Weak() *Weak[T] {
	if p == nil || p.ctrl == nil {
		return &Weak[T]{}
	}
	p.ctrl.counters().weak++
	return &Weak[T]{obj: p.obj, ctrl: p.ctrl}
}

package shared

// Weak is a non-owning observer. It holds the same two pointers as Ptr but
// contributes only to the weak count: it never keeps the object alive and
// never dereferences it directly, only through Lock.
//
// The zero value observes nothing and never upgrades.
type Weak[T any] struct {
	obj  *T
	ctrl controlBlock
}

// Clone shares the observation, bumping the weak count only.
func (w *Weak[T]) Clone() *Weak[T] {
	if w == nil || w.ctrl == nil {
		return &Weak[T]{}
	}
	w.ctrl.counters().weak++
	return &Weak[T]{obj: w.obj, ctrl: w.ctrl}
}

// Assign re-targets the observer at the block owned by p, releasing the prior
// one first. Assigning a handle of the block already observed is a no-op.
func (w *Weak[T]) Assign(p *Ptr[T]) {
	if p != nil && w.ctrl != nil && w.ctrl == p.ctrl {
		return
	}
	w.Release()
	if p == nil || p.ctrl == nil {
		return
	}
	p.ctrl.counters().weak++
	w.obj, w.ctrl = p.obj, p.ctrl
}

// Lock upgrades to a strong handle if the object is still alive, bumping both
// counters. After the last strong handle is gone it returns an empty handle:
// a defined outcome, not an error.
func (w *Weak[T]) Lock() *Ptr[T] {
	if w == nil || w.ctrl == nil {
		return &Ptr[T]{}
	}
	c := w.ctrl.counters()
	if c.strong == 0 {
		return &Ptr[T]{}
	}
	c.strong++
	c.weak++
	return &Ptr[T]{obj: w.obj, ctrl: w.ctrl}
}

// Expired reports whether the observed object has already been destroyed.
func (w *Weak[T]) Expired() bool {
	return w.UseCount() == 0
}

// UseCount returns the observed block's strong count, 0 when observing
// nothing.
func (w *Weak[T]) UseCount() uint64 {
	if w == nil || w.ctrl == nil {
		return 0
	}
	return w.ctrl.counters().strong
}

// Release drops the observation and empties the observer. The block is freed
// once its weak count drains; the managed object is never touched here.
func (w *Weak[T]) Release() {
	if w == nil {
		return
	}
	if w.ctrl != nil {
		releaseWeak(w.ctrl)
	}
	w.obj, w.ctrl = nil, nil
}

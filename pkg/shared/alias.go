package shared

// Alias builds a handle that exposes obj while borrowing its lifetime from
// owner's control block: Get returns obj, but teardown still targets the
// object the block was created for. Typical use is handing out a field of a
// managed struct while keeping the whole struct alive.
//
// If owner is empty the result carries obj with no ownership at all
// (UseCount 0), mirroring the classic aliasing contract.
func Alias[T, U any](owner *Ptr[T], obj *U) *Ptr[U] {
	if owner == nil || owner.ctrl == nil {
		return &Ptr[U]{obj: obj}
	}
	retain(owner.ctrl)
	return &Ptr[U]{obj: obj, ctrl: owner.ctrl}
}

// As is the converting constructor: it derives a handle to a related type
// from p without re-allocating the block. cast receives p's object pointer
// and returns the pointer the new handle exposes, e.g. a promoted embedded
// struct or an interface box kept alongside the object. The two handles share
// one count.
func As[U, T any](p *Ptr[T], cast func(*T) *U) *Ptr[U] {
	if p == nil || p.ctrl == nil {
		return &Ptr[U]{}
	}
	return Alias(p, cast(p.obj))
}

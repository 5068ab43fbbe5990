package shared

// Make builds a handle over value using co-located storage: a single
// allocation holds the counters and the value itself, instead of the two
// allocations Adopt implies. The returned handle exposes the in-block slot.
func Make[T any](value T) *Ptr[T] {
	return MakeWith(value, nil)
}

// MakeWith is Make plus a finalizer run in place when the last strong handle
// is released. The slot outlives the finalizer while weak observers remain,
// but the value must not be accessed through them once destroyed (Lock
// already refuses to upgrade at that point).
func MakeWith[T any](value T, finalizer func(*T)) *Ptr[T] {
	b := newValueBlock(value, finalizer)
	return &Ptr[T]{obj: &b.value, ctrl: b}
}

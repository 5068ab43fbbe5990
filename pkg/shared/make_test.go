package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake_SingleBlockAllocation(t *testing.T) {
	allocated := BlocksAllocated.Load()

	p := Make(widget{id: 42, payload: []byte("x")})
	require.False(t, p.IsNil())
	assert.Equal(t, 42, p.Get().id)
	assert.EqualValues(t, 1, BlocksAllocated.Load()-allocated, "counters and storage share one block")

	p.Release()
}

func TestMakeWith_FinalizerRunsInPlace(t *testing.T) {
	finalized := 0
	var seen *widget

	p := MakeWith(widget{id: 7}, func(w *widget) {
		finalized++
		seen = w
	})
	slot := p.Get()
	q := p.Clone()

	p.Release()
	assert.Equal(t, 0, finalized)

	q.Release()
	assert.Equal(t, 1, finalized)
	assert.Same(t, slot, seen, "finalizer must run on the co-located slot itself")
}

func TestMake_SlotOutlivesObjectForWeakObservers(t *testing.T) {
	freed := BlocksFreed.Load()
	destroyed := ObjectsDestroyed.Load()

	p := MakeWith(widget{id: 1, payload: []byte("alive")}, nil)
	w := p.Weak()

	p.Release()
	assert.EqualValues(t, 1, ObjectsDestroyed.Load()-destroyed)
	assert.EqualValues(t, 0, BlocksFreed.Load()-freed, "block pinned by the observer")
	assert.True(t, w.Expired())

	w.Release()
	assert.EqualValues(t, 1, BlocksFreed.Load()-freed)
}

func TestMake_DestroyZeroesTheSlot(t *testing.T) {
	p := Make(widget{id: 9, payload: []byte("payload")})
	slot := p.Get()
	w := p.Weak()

	p.Release()

	// The slot is still allocated while the observer holds the block, but the
	// dead value must not retain inner references.
	assert.Zero(t, slot.id)
	assert.Nil(t, slot.payload)

	w.Release()
}

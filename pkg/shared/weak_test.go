package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeak_LockWhileAlive(t *testing.T) {
	p := Adopt(&widget{id: 3})
	w := p.Weak()

	locked := w.Lock()
	require.False(t, locked.IsNil())
	assert.Same(t, p.Get(), locked.Get())
	assert.EqualValues(t, 2, p.UseCount())

	locked.Release()
	assert.EqualValues(t, 1, p.UseCount())

	p.Release()
	w.Release()
}

func TestWeak_LockAfterDeath(t *testing.T) {
	destroyed := 0
	p := Adopt(&widget{id: 3}, func(w *widget) { destroyed++ })
	w := p.Weak()

	p.Release()
	assert.Equal(t, 1, destroyed)
	assert.True(t, w.Expired())

	locked := w.Lock()
	assert.True(t, locked.IsNil())
	assert.EqualValues(t, 0, locked.UseCount())

	w.Release()
}

func TestWeak_DoesNotKeepObjectAlive(t *testing.T) {
	destroyed := 0
	p := Adopt(&widget{id: 3}, func(w *widget) { destroyed++ })
	w1 := p.Weak()
	w2 := w1.Clone()
	w3 := w1.Clone()

	assert.EqualValues(t, 1, p.UseCount(), "weak handles must not affect the strong count")

	p.Release()
	assert.Equal(t, 1, destroyed, "object dies with the last strong handle, weak observers notwithstanding")

	w1.Release()
	w2.Release()
	w3.Release()
}

func TestWeak_AssignRetargets(t *testing.T) {
	a := Adopt(&widget{id: 1})
	b := Adopt(&widget{id: 2})

	var w Weak[widget]
	w.Assign(a)
	assert.EqualValues(t, 1, w.UseCount())

	w.Assign(b)
	locked := w.Lock()
	require.False(t, locked.IsNil())
	assert.Equal(t, 2, locked.Get().id)
	locked.Release()

	a.Release()
	assert.False(t, w.Expired())
	b.Release()
	assert.True(t, w.Expired())
	w.Release()
}

func TestWeak_AssignSameBlockIsNoop(t *testing.T) {
	p := Adopt(&widget{id: 1})
	w := p.Weak()

	w.Assign(p)
	w.Assign(p)

	p.Release()
	// A single release must fully detach the observer: extra weak units would
	// have pinned the block.
	freed := BlocksFreed.Load()
	w.Release()
	assert.EqualValues(t, 1, BlocksFreed.Load()-freed)
}

func TestWeak_StructCopyDoubleReleasePanics(t *testing.T) {
	p := Adopt(&widget{id: 1})
	w := p.Weak()

	v := *w // uncounted struct copy of the observer
	w.Release()
	p.Release()

	assert.PanicsWithValue(t, "shared: weak count underflow (double release)", func() {
		v.Release()
	})
}

func TestWeak_ZeroValue(t *testing.T) {
	var w Weak[widget]
	assert.True(t, w.Expired())
	assert.True(t, w.Lock().IsNil())
	w.Release() // no-op
}

// The staged teardown scenario: strong handles drain first, then weak.
func TestWeak_StagedTeardown(t *testing.T) {
	p1 := Make(widget{id: 42})
	p2 := p1.Clone()
	w := p1.Weak()

	p1.Reset()
	locked := w.Lock()
	assert.False(t, locked.IsNil(), "one strong handle left, lock must succeed")
	locked.Release()

	p2.Reset()
	assert.True(t, w.Lock().IsNil(), "all strong handles gone, lock must fail")

	w.Release()
}

package metrics

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/Borislavv/shared/pkg/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dump(m *Meter) string {
	var buf bytes.Buffer
	m.WritePrometheus(&buf)
	return buf.String()
}

func TestMeter_OwnershipGaugesTrackSharedCounters(t *testing.T) {
	m := New()

	type res struct{ payload []byte }
	p := shared.Make(res{payload: []byte("x")})
	w := p.Weak()

	out := dump(m)
	assert.Contains(t, out, fmt.Sprintf("%s %d", liveBlocksGaugeName,
		shared.BlocksAllocated.Load()-shared.BlocksFreed.Load()))
	assert.Contains(t, out, fmt.Sprintf("%s %d", allocatedGaugeName, shared.BlocksAllocated.Load()))
	assert.Contains(t, out, fmt.Sprintf("%s %d", destroyedGaugeName, shared.ObjectsDestroyed.Load()))

	destroyed := shared.ObjectsDestroyed.Load()
	freed := shared.BlocksFreed.Load()
	p.Release()
	w.Release()

	out = dump(m)
	assert.Contains(t, out, fmt.Sprintf("%s %d", destroyedGaugeName, destroyed+1))
	assert.Contains(t, out, fmt.Sprintf("%s %d", freedGaugeName, freed+1))
}

func TestMeter_InstancesAreIndependent(t *testing.T) {
	a, b := New(), New()

	a.IncOpened()
	a.IncOpened()
	b.IncAcquireMiss()

	outA, outB := dump(a), dump(b)
	assert.Contains(t, outA, openedCounterName+" 2")
	assert.NotContains(t, outB, openedCounterName)
	assert.Contains(t, outB, acquireMissesName+" 1")
	assert.NotContains(t, outA, acquireMissesName)
}

func TestMeter_ResourceGaugePerInstance(t *testing.T) {
	a, b := New(), New()
	a.RegisterResourceGauge(func() float64 { return 3 })
	b.RegisterResourceGauge(func() float64 { return 7 })

	require.Contains(t, dump(a), resourcesGaugeName+" 3")
	require.Contains(t, dump(b), resourcesGaugeName+" 7")
}

func TestMeter_NilIsNoop(t *testing.T) {
	var m *Meter
	m.IncOpened()
	m.AddEvicted(5)
	m.RegisterResourceGauge(func() float64 { return 1 })
	assert.Empty(t, dump(m))
}

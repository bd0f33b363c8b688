package gesture

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemap(t *testing.T) {
	cases := []struct {
		v, inMin, inMax, outMin, outMax, want float64
	}{
		{0.5, 0, 1, 0, 10, 5},
		{-1, 0, 1, 0, 10, 0},     // clamped low
		{2, 0, 1, 0, 10, 10},     // clamped high
		{0.25, 0, 1, 10, 0, 7.5}, // inverted output range
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("v=%v", c.v), func(t *testing.T) {
			assert.InDelta(t, c.want, Remap(c.v, c.inMin, c.inMax, c.outMin, c.outMax), 1e-9)
		})
	}
}

func TestMelodyDegreeEndpoints(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(MaxMelodyDegree, MelodyDegree(0.0))
	assert.Equal(0, MelodyDegree(1.0))
	assert.Equal(MaxChordDegree, ChordDegree(0.0))
	assert.Equal(0, ChordDegree(1.0))
}

func TestMelodyDegreeMonotone(t *testing.T) {
	// Inverted mapping: y1 < y2 implies degree(y1) >= degree(y2).
	prev := MelodyDegree(0)
	for i := 1; i <= 100; i++ {
		y := float64(i) / 100
		d := MelodyDegree(y)
		if d > prev {
			t.Fatalf("degree increased from %d to %d at y=%v", prev, d, y)
		}
		prev = d
	}
}

func TestEffectIntensityEndpoints(t *testing.T) {
	assert := assert.New(t)
	assert.InDelta(1.0, EffectIntensity(MinPinchDist), 1e-9)
	assert.InDelta(0.0, EffectIntensity(MaxPinchDist), 1e-9)
	// Clamped outside the configured sub-range.
	assert.InDelta(1.0, EffectIntensity(0), 1e-9)
	assert.InDelta(0.0, EffectIntensity(1), 1e-9)
}

func TestVolumeRange(t *testing.T) {
	assert := assert.New(t)
	assert.InDelta(MinVolumeDB, Volume(0), 1e-9)
	assert.InDelta(MaxVolumeDB, Volume(1), 1e-9)
}

func TestGateSuppressesSmallMoves(t *testing.T) {
	assert := assert.New(t)

	var g Gate
	assert.True(g.Changed(0.5))        // first value always accepted
	assert.False(g.Changed(0.5001))    // below threshold
	assert.True(g.Changed(0.6))        // real movement
	assert.False(g.Changed(0.6002))

	g.Reset()
	assert.True(g.Changed(0.6002))
}

func TestPinchDistance(t *testing.T) {
	h := Hand{
		Handedness: Right,
		Landmarks:  make([]Landmark, 21),
	}
	h.Landmarks[ThumbTipIndex] = Landmark{X: 0.1, Y: 0.2}
	h.Landmarks[IndexTipIndex] = Landmark{X: 0.1, Y: 0.3}
	assert.InDelta(t, 0.1, h.PinchDistance(), 1e-9)

	// Short landmark lists never panic.
	assert.Equal(t, 0.0, Hand{}.PinchDistance())
}

func TestVelocityAndDynamic(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(0.0, VelocityFromVolume(MinVolumeDB), 1e-9)
	assert.InDelta(1.0, VelocityFromVolume(MaxVolumeDB), 1e-9)

	cases := []struct {
		v    float64
		want Dynamic
	}{
		{0.0, Pianissimo},
		{0.25, Piano},
		{0.4, MezzoPiano},
		{0.6, MezzoForte},
		{0.7, Forte},
		{0.9, Fortissimo},
	}
	for _, c := range cases {
		assert.Equal(c.want, DynamicFor(c.v), "velocity %v", c.v)
	}
}

func TestArticulationFor(t *testing.T) {
	assert := assert.New(t)

	declared := []string{ArticulationSustain, ArticulationStaccato}

	// Tight pinch prefers the short articulation when declared.
	assert.Equal(ArticulationStaccato, ArticulationFor(declared, 0.03, 0))
	// Open hand prefers the connected one.
	assert.Equal(ArticulationSustain, ArticulationFor(declared, 0.3, 0))
	// Neither gesture zone: first declared wins.
	assert.Equal(ArticulationSustain, ArticulationFor(declared, 0.1, 0))
	// Unsupported request falls back to the first declared articulation.
	assert.Equal(ArticulationLegato, ArticulationFor([]string{ArticulationLegato}, 0.03, 0))
	// No declared articulations is fine.
	assert.Equal("", ArticulationFor(nil, 0.03, 0))
}

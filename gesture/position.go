package gesture

import "math"

// Mapping ranges. All position mappings are the same clamp-then-linear
// remap; only the ranges differ.
const (
	// Melody spans two octaves of a 7-note scale.
	MaxMelodyDegree = 14
	// Harmony walks one octave of diatonic chords.
	MaxChordDegree = 7

	// Pinch distances in normalized image space. A tight pinch maps to
	// full effect intensity, an open hand to none.
	MinPinchDist = 0.02
	MaxPinchDist = 0.25

	// Wrist distance from the reference point mapped onto the volume range.
	MinHandDist = 0.05
	MaxHandDist = 0.45

	MinVolumeDB = -30.0
	MaxVolumeDB = 5.0

	// Input movement below this does not retrigger a recomputation.
	changeThreshold = 0.004
)

// Remap clamps v into [inMin, inMax] and scales it linearly onto
// [outMin, outMax]. The output range may be inverted (outMin > outMax).
func Remap(v, inMin, inMax, outMin, outMax float64) float64 {
	if v < inMin {
		v = inMin
	}
	if v > inMax {
		v = inMax
	}
	t := (v - inMin) / (inMax - inMin)
	return outMin + t*(outMax-outMin)
}

// MelodyDegree maps normalized hand Y onto a melody scale degree. The
// mapping is inverted: a visually higher hand (smaller y) plays a higher
// degree. y=0 is the top degree, y=1 degree 0.
func MelodyDegree(y float64) int {
	return int(math.Round(Remap(y, 0, 1, MaxMelodyDegree, 0)))
}

// ChordDegree maps normalized hand Y onto a chord degree, inverted like
// MelodyDegree.
func ChordDegree(y float64) int {
	return int(math.Round(Remap(y, 0, 1, MaxChordDegree, 0)))
}

// Volume maps the wrist's distance from the reference point onto decibels
// in [MinVolumeDB, MaxVolumeDB].
func Volume(distance float64) float64 {
	return Remap(distance, MinHandDist, MaxHandDist, MinVolumeDB, MaxVolumeDB)
}

// EffectIntensity maps pinch distance onto [0,1]: MinPinchDist yields 1.0,
// MaxPinchDist yields 0.0.
func EffectIntensity(pinch float64) float64 {
	return Remap(pinch, MinPinchDist, MaxPinchDist, 1, 0)
}

// Gate suppresses redundant recomputation when an input barely moves.
// There is no smoothing or hysteresis beyond this minimum-change check.
type Gate struct {
	last float64
	seen bool
}

// Changed reports whether v moved by at least the change threshold since
// the last accepted value, and records it if so. The first value is always
// accepted.
func (g *Gate) Changed(v float64) bool {
	if g.seen && math.Abs(v-g.last) < changeThreshold {
		return false
	}
	g.last = v
	g.seen = true
	return true
}

// Reset clears the gate so the next value is always accepted.
func (g *Gate) Reset() {
	g.seen = false
}

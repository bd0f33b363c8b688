package theory

import (
	"github.com/ShaharFullStack/TheDemo/util"
)

// Total semitone movement at or below this keeps the root position voicing.
const voicingSmoothness = 12

// VoicingState remembers the last sounded triad as absolute semitone
// numbers. It persists across chord changes to drive voice leading and is
// reset whenever the scale or root changes.
type VoicingState struct {
	Pitches [3]int
	set     bool
}

// Set records the voicing that actually sounded.
func (v *VoicingState) Set(pitches [3]int) {
	v.Pitches = pitches
	v.set = true
}

// Reset clears the voicing memory.
func (v *VoicingState) Reset() {
	v.set = false
}

// Valid reports whether a previous voicing is recorded.
func (v *VoicingState) Valid() bool {
	return v.set
}

// movement sums the absolute pairwise semitone distance between two triads,
// compared positionally.
func movement(a, b [3]int) int {
	total := 0
	for i := range a {
		total += util.Abs(a[i] - b[i])
	}
	return total
}

// firstInversion moves the lowest note up an octave and rotates.
func firstInversion(t [3]int) [3]int {
	return [3]int{t[1], t[2], t[0] + 12}
}

// LeadVoicing chooses the voicing for a new triad given the previous
// voicing state. If the root position moves no more than the smoothness
// threshold, it wins outright; otherwise the first inversion competes and
// the candidate with less total movement is chosen. Pure: the caller
// commits the winner to the VoicingState.
func LeadVoicing(prev VoicingState, triad [3]int) [3]int {
	if !prev.set {
		return triad
	}

	rootMove := movement(prev.Pitches, triad)
	if rootMove <= voicingSmoothness {
		return triad
	}

	inv := firstInversion(triad)
	if movement(prev.Pitches, inv) < rootMove {
		return inv
	}
	return triad
}

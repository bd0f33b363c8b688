package theory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoteForDegreeCMajorScenario(t *testing.T) {
	assert := assert.New(t)

	n := NoteForDegree("C", "major", 0, 4)
	assert.Equal(PitchClass(0), n.PitchClass)
	assert.Equal(4, n.Octave)
	assert.Equal("C4", n.Name("C"))
	assert.Equal(uint8(60), n.MIDI())
}

func TestNoteForDegreeOctaveCarry(t *testing.T) {
	assert := assert.New(t)

	// Degree 7 of a 7-note scale is the root one octave up.
	n := NoteForDegree("C", "major", 7, 4)
	assert.Equal(PitchClass(0), n.PitchClass)
	assert.Equal(5, n.Octave)

	// Negative degrees wrap into lower octaves.
	n = NoteForDegree("C", "major", -1, 4)
	assert.Equal(PitchClass(11), n.PitchClass)
	assert.Equal(3, n.Octave)
}

func TestNoteForDegreeStaysInScale(t *testing.T) {
	for _, root := range RootNames() {
		for _, scaleName := range ScaleNames() {
			scale, ok := LookupScale(scaleName)
			if !ok {
				t.Fatalf("scale %q disappeared", scaleName)
			}
			rootPC, _ := ParsePitchClass(root)

			inScale := make(map[int]bool)
			for _, off := range scale {
				inScale[(int(rootPC)+off)%12] = true
			}

			name := fmt.Sprintf("%s %s", root, scaleName)
			t.Run(name, func(t *testing.T) {
				for degree := 0; degree <= 4*len(scale); degree++ {
					n := NoteForDegree(root, scaleName, degree, 4)
					if !inScale[int(n.PitchClass)] {
						t.Errorf("degree %d produced pitch class %d outside %s", degree, n.PitchClass, name)
					}
				}
			})
		}
	}
}

func TestNoteForDegreeFailsSoft(t *testing.T) {
	assert := assert.New(t)

	// Unknown scale falls back to the root note, never panics.
	n := NoteForDegree("C", "klingon", 3, 4)
	assert.Equal(PitchClass(0), n.PitchClass)
	assert.Equal(4, n.Octave)

	// Unknown root falls back to C.
	n = NoteForDegree("H", "major", 0, 4)
	assert.Equal(PitchClass(0), n.PitchClass)
}

func TestNoteForDegreeClampsOctave(t *testing.T) {
	assert := assert.New(t)

	n := NoteForDegree("C", "major", 100, 8)
	assert.LessOrEqual(n.Octave, MaxOctave)
	assert.LessOrEqual(int(n.MIDI()), 127)

	n = NoteForDegree("C", "major", -100, 2)
	assert.GreaterOrEqual(n.Octave, MinOctave)
}

func TestResolveSpelling(t *testing.T) {
	cases := []struct {
		pc   PitchClass
		key  string
		want string
	}{
		{1, "C", "C#"},
		{1, "F", "Db"},
		{3, "Eb", "Eb"},
		{3, "E", "D#"},
		{10, "Bb", "Bb"},
		{10, "G", "A#"},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("pc%d in %s", c.pc, c.key), func(t *testing.T) {
			assert.Equal(t, c.want, ResolveSpelling(c.pc, c.key))
		})
	}
}

func TestChordForDegreeCMajorScenario(t *testing.T) {
	assert := assert.New(t)

	c := ChordForDegree("C", "major", 0, 3, false)
	assert.Equal("major", c.Type)
	assert.Equal("C", c.Name)
	assert.Equal([]uint8{48, 52, 55}, c.MIDINotes()) // C3 E3 G3
}

func TestChordForDegreeQualities(t *testing.T) {
	// Diatonic triads of C major, in order.
	wantNames := []string{"C", "Dm", "Em", "F", "G", "Am", "Bdim"}
	for degree, want := range wantNames {
		t.Run(want, func(t *testing.T) {
			c := ChordForDegree("C", "major", degree, 3, false)
			assert.Equal(t, want, c.Name)
		})
	}
}

func TestChordForDegreeSevenths(t *testing.T) {
	assert := assert.New(t)

	c := ChordForDegree("C", "major", 0, 3, true)
	assert.Equal("major7", c.Type)
	assert.Equal([]uint8{48, 52, 55, 59}, c.MIDINotes())

	// The fifth degree of a major scale gets a dominant seventh.
	c = ChordForDegree("C", "major", 4, 3, true)
	assert.Equal("dominant7", c.Type)
	assert.Equal("G7", c.Name)
}

func TestChordForDegreeIsPure(t *testing.T) {
	a := ChordForDegree("F", "minor", 5, 3, true)
	b := ChordForDegree("F", "minor", 5, 3, true)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Name, b.Name)
}

func TestChordForDegreeFailsSoft(t *testing.T) {
	assert := assert.New(t)

	c := ChordForDegree("C", "klingon", 2, 3, false)
	assert.Len(c.Notes, 1) // root-only fallback
	assert.Equal(PitchClass(0), c.Root)
}

func TestChordForDegreeWrapsShortScales(t *testing.T) {
	// Pentatonic scales have 5 degrees; degree 6 must wrap, not panic.
	c := ChordForDegree("C", "majorPentatonic", 6, 3, false)
	assert.NotEmpty(t, c.Notes)
}

func TestLeadVoicingFirstChordKeepsRootPosition(t *testing.T) {
	var vs VoicingState
	triad := [3]int{48, 52, 55}
	assert.Equal(t, triad, LeadVoicing(vs, triad))
}

func TestLeadVoicingSmallMovementKeepsRootPosition(t *testing.T) {
	var vs VoicingState
	vs.Set([3]int{48, 52, 55}) // C major

	// D minor root position moves 6 semitones total: under the threshold.
	triad := [3]int{50, 53, 57}
	assert.Equal(t, triad, LeadVoicing(vs, triad))
}

func TestLeadVoicingPrefersCloserInversion(t *testing.T) {
	var vs VoicingState
	vs.Set([3]int{55, 59, 62}) // G major around G3

	// C major root position an octave down moves 21 semitones; its first
	// inversion (E G C) moves only 9.
	triad := [3]int{48, 52, 55}
	want := [3]int{52, 55, 60}
	assert.Equal(t, want, LeadVoicing(vs, triad))
}

func TestLeadVoicingAlwaysPicksSmallerMovement(t *testing.T) {
	// Property check over a spread of consecutive triads.
	prevTriads := [][3]int{
		{48, 52, 55}, {50, 53, 57}, {52, 55, 59}, {53, 57, 60},
		{55, 59, 62}, {57, 60, 64}, {59, 62, 65}, {60, 64, 67},
	}
	nextTriads := prevTriads

	for _, prev := range prevTriads {
		for _, next := range nextTriads {
			var vs VoicingState
			vs.Set(prev)

			chosen := LeadVoicing(vs, next)
			root := next
			inv := [3]int{next[1], next[2], next[0] + 12}

			chosenMove := movement(prev, chosen)
			rootMove := movement(prev, root)
			invMove := movement(prev, inv)

			if rootMove <= voicingSmoothness {
				assert.Equal(t, root, chosen)
			} else {
				assert.LessOrEqual(t, chosenMove, rootMove)
				assert.LessOrEqual(t, chosenMove, min(rootMove, invMove))
			}
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

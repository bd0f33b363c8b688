package theory

import (
	"fmt"

	"github.com/ShaharFullStack/TheDemo/util"
)

// PitchClass is a semitone offset from C in [0, 11].
type PitchClass int

// Accidental spelling sets. Which one applies depends on the key context:
// flat keys spell Eb, sharp keys spell D#.
var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
var flatNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// flatKeys holds the roots whose key signatures use flats.
var flatKeys = map[string]bool{
	"F": true, "Bb": true, "Eb": true, "Ab": true, "Db": true, "Gb": true, "Cb": true,
}

// pitchClassByName accepts both spelling sets for parsing.
var pitchClassByName = map[string]PitchClass{
	"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3,
	"E": 4, "F": 5, "F#": 6, "Gb": 6, "G": 7, "G#": 8,
	"Ab": 8, "A": 9, "A#": 10, "Bb": 10, "B": 11,
}

// ParsePitchClass resolves a note name like "C#" or "Eb" to a pitch class.
func ParsePitchClass(name string) (PitchClass, bool) {
	pc, ok := pitchClassByName[name]
	return pc, ok
}

// ResolveSpelling returns the display name for a pitch class in the given
// key context. Flat keys pick the flat set, everything else the sharp set.
func ResolveSpelling(pc PitchClass, keyContext string) string {
	i := util.Mod(int(pc), 12)
	if flatKeys[keyContext] {
		return flatNames[i]
	}
	return sharpNames[i]
}

// Note is an immutable (pitch class, octave) pair. It is computed on demand
// from a scale position and never mutated.
type Note struct {
	PitchClass PitchClass
	Octave     int
}

// MIDI returns the MIDI note number, clamped to [0, 127].
// C4 = 60, so the formula is (octave+1)*12 + pitch class.
func (n Note) MIDI() uint8 {
	v := (n.Octave+1)*12 + int(n.PitchClass)
	return uint8(util.Clamp(v, 0, 127))
}

// Name returns the display name spelled for the given key, e.g. "C4".
func (n Note) Name(keyContext string) string {
	return fmt.Sprintf("%s%d", ResolveSpelling(n.PitchClass, keyContext), n.Octave)
}

// NoteFromMIDI converts a MIDI note number back to (pitch class, octave).
func NoteFromMIDI(m uint8) Note {
	return Note{
		PitchClass: PitchClass(int(m) % 12),
		Octave:     int(m)/12 - 1,
	}
}

// Octave bounds for any computed note. Values outside are clamped, never
// treated as an error.
const (
	MinOctave = 1
	MaxOctave = 9
)

// ClampOctave limits an octave to the supported range.
func ClampOctave(oct int) int {
	return util.Clamp(oct, MinOctave, MaxOctave)
}

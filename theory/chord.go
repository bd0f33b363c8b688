package theory

import (
	"github.com/ShaharFullStack/TheDemo/debug"
	"github.com/ShaharFullStack/TheDemo/util"
)

// chordIntervals maps a chord type to its semitone offsets from the chord
// root. Intervals are sorted ascending and always start at 0.
var chordIntervals = map[string][]int{
	"major":      {0, 4, 7},
	"minor":      {0, 3, 7},
	"diminished": {0, 3, 6},
	"augmented":  {0, 4, 8},
	"sus2":       {0, 2, 7},
	"sus4":       {0, 5, 7},
	"major7":     {0, 4, 7, 11},
	"minor7":     {0, 3, 7, 10},
	"dominant7":  {0, 4, 7, 10},
	"halfDim7":   {0, 3, 6, 10},
	"dim7":       {0, 3, 6, 9},
}

// chordSuffixes maps a chord type to its display suffix.
var chordSuffixes = map[string]string{
	"major":      "",
	"minor":      "m",
	"diminished": "dim",
	"augmented":  "aug",
	"sus2":       "sus2",
	"sus4":       "sus4",
	"major7":     "maj7",
	"minor7":     "m7",
	"dominant7":  "7",
	"halfDim7":   "m7b5",
	"dim7":       "dim7",
}

// chordQualities is the diatonic triad quality per scale degree, one entry
// per degree of the scale. Degrees wrap if the scale is shorter than the
// requested index.
var chordQualities = map[string][]string{
	"major":         {"major", "minor", "minor", "major", "major", "minor", "diminished"},
	"minor":         {"minor", "diminished", "major", "minor", "minor", "major", "major"},
	"harmonicMinor": {"minor", "diminished", "augmented", "minor", "major", "major", "diminished"},
	"dorian":        {"minor", "minor", "major", "major", "minor", "diminished", "major"},
	"mixolydian":    {"major", "minor", "diminished", "major", "minor", "minor", "major"},
	// Pentatonic and blues harmony stays on simple triads.
	"majorPentatonic": {"major", "minor", "minor", "major", "minor"},
	"minorPentatonic": {"minor", "major", "minor", "minor", "major"},
	"blues":           {"minor", "major", "minor", "diminished", "minor", "major"},
}

// seventhQualities maps a triad quality to its diatonic seventh chord. The
// dominant case is handled per scale degree below.
var seventhQualities = map[string]string{
	"major":      "major7",
	"minor":      "minor7",
	"diminished": "halfDim7",
	"augmented":  "major7",
}

// ChordDef is an abstract chord: a root pitch class, a type key, and the
// interval stack that realizes it.
type ChordDef struct {
	Root      PitchClass
	Type      string
	Intervals []int
}

// Chord is a sounding chord instance resolved to concrete notes.
type Chord struct {
	Root   PitchClass
	Type   string
	Notes  []Note
	Name   string
	Degree int
}

// Equal reports whether two chords sound the same notes.
func (c Chord) Equal(o Chord) bool {
	if len(c.Notes) != len(o.Notes) {
		return false
	}
	for i := range c.Notes {
		if c.Notes[i] != o.Notes[i] {
			return false
		}
	}
	return true
}

// MIDINotes returns the chord's notes as MIDI numbers.
func (c Chord) MIDINotes() []uint8 {
	out := make([]uint8, len(c.Notes))
	for i, n := range c.Notes {
		out[i] = n.MIDI()
	}
	return out
}

// qualityForDegree looks up the diatonic quality for a scale degree,
// upgrading to the seventh chord when requested. The fifth degree of a
// seven-note scale gets a dominant seventh.
func qualityForDegree(scaleName string, degree int, useSeventh bool) string {
	qualities, ok := chordQualities[scaleName]
	if !ok {
		debug.Log("theory", "no chord table for scale %q, using major", scaleName)
		return "major"
	}
	idx := util.Mod(degree, len(qualities))
	quality := qualities[idx]
	if !useSeventh {
		return quality
	}
	if idx == 4 && quality == "major" && len(qualities) == 7 {
		return "dominant7"
	}
	if seventh, ok := seventhQualities[quality]; ok {
		return seventh
	}
	return quality
}

// ChordForDegree builds the diatonic chord on a scale degree. The chord root
// comes from the scale, the quality from the per-scale progression table,
// and the intervals from the chord-type table. Computed octaves are clamped
// into [1, 9] and MIDI numbers into [0, 127] before display names resolve.
// Unknown inputs degrade to a root-only chord rather than failing.
func ChordForDegree(root, scaleName string, degree, baseOctave int, useSeventh bool) Chord {
	rootPC, ok := ParsePitchClass(root)
	if !ok {
		debug.Log("theory", "unknown root %q, falling back to C", root)
		rootPC = 0
		root = "C"
	}

	scale, ok := scales[scaleName]
	if !ok {
		debug.Log("theory", "unknown scale %q, root-only chord", scaleName)
		n := Note{PitchClass: rootPC, Octave: ClampOctave(baseOctave)}
		return Chord{
			Root:   rootPC,
			Type:   "major",
			Notes:  []Note{n},
			Name:   ResolveSpelling(rootPC, root),
			Degree: degree,
		}
	}

	idx := util.Mod(degree, len(scale))
	octShift := util.FloorDiv(degree, len(scale))

	semis := int(rootPC) + scale[idx]
	chordRoot := PitchClass(semis % 12)
	oct := ClampOctave(baseOctave + octShift + semis/12)

	quality := qualityForDegree(scaleName, degree, useSeventh)
	intervals, ok := chordIntervals[quality]
	if !ok {
		debug.Log("theory", "unknown chord type %q, root-only chord", quality)
		intervals = []int{0}
	}

	midiBase := (oct+1)*12 + int(chordRoot)
	notes := make([]Note, 0, len(intervals))
	for _, interval := range intervals {
		m := util.Clamp(midiBase+interval, 0, 127)
		notes = append(notes, NoteFromMIDI(uint8(m)))
	}

	return Chord{
		Root:   chordRoot,
		Type:   quality,
		Notes:  notes,
		Name:   ResolveSpelling(chordRoot, root) + chordSuffixes[quality],
		Degree: degree,
	}
}

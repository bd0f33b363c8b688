package theory

import (
	"sort"

	"github.com/ShaharFullStack/TheDemo/debug"
	"github.com/ShaharFullStack/TheDemo/util"
)

// Scale is an ordered set of semitone offsets from the root. Offsets are in
// [0, 11], strictly increasing, and always start at 0.
type Scale []int

// scales is an open set keyed by name. Adding a scale here is enough to make
// it playable; chord qualities come from chordQualities (with a derived
// fallback for scales that have no entry).
var scales = map[string]Scale{
	"major":           {0, 2, 4, 5, 7, 9, 11},
	"minor":           {0, 2, 3, 5, 7, 8, 10},
	"harmonicMinor":   {0, 2, 3, 5, 7, 8, 11},
	"dorian":          {0, 2, 3, 5, 7, 9, 10},
	"mixolydian":      {0, 2, 4, 5, 7, 9, 10},
	"majorPentatonic": {0, 2, 4, 7, 9},
	"minorPentatonic": {0, 3, 5, 7, 10},
	"blues":           {0, 3, 5, 6, 7, 10},
}

// LookupScale returns the named scale, if known.
func LookupScale(name string) (Scale, bool) {
	s, ok := scales[name]
	return s, ok
}

// ScaleNames returns the known scale names sorted alphabetically.
func ScaleNames() []string {
	names := util.Keys(scales)
	sort.Strings(names)
	return names
}

// RootNames returns the 12 recognized root note names (sharp spellings).
func RootNames() []string {
	return sharpNames[:]
}

// NoteForDegree maps an unbounded scale degree to a concrete note.
// degree mod |scale| selects the in-scale offset; floor(degree/|scale|)
// contributes an octave offset. Unknown scale or root names fall back to a
// safe default instead of failing: the player must never lose sound to a
// lookup miss.
func NoteForDegree(root, scaleName string, degree, baseOctave int) Note {
	rootPC, ok := ParsePitchClass(root)
	if !ok {
		debug.Log("theory", "unknown root %q, falling back to C", root)
		rootPC = 0
	}

	scale, ok := scales[scaleName]
	if !ok {
		debug.Log("theory", "unknown scale %q, falling back to root note", scaleName)
		return Note{PitchClass: rootPC, Octave: ClampOctave(baseOctave)}
	}

	idx := util.Mod(degree, len(scale))
	octShift := util.FloorDiv(degree, len(scale))

	semis := int(rootPC) + scale[idx]
	oct := ClampOctave(baseOctave + octShift + semis/12)
	return Note{PitchClass: PitchClass(semis % 12), Octave: oct}
}

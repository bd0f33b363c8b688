package session

import (
	"github.com/ShaharFullStack/TheDemo/theory"
	"github.com/ShaharFullStack/TheDemo/util"
	"github.com/ShaharFullStack/TheDemo/voice"
)

// Melody octave bounds. The harmony voice plays one octave below.
const (
	MinMelodyOctave = 2
	MaxMelodyOctave = 6
)

// Settings is the player-facing configuration of a session: what key to
// play in and through which instrument. It is owned by the Manager; there
// is no package-level state.
type Settings struct {
	Root         string
	Scale        string
	Octave       int
	PresetKey    string
	UseSeventh   bool
	VoiceLeading bool
}

// DefaultSettings returns a playable starting point.
func DefaultSettings() Settings {
	return Settings{
		Root:         "C",
		Scale:        "major",
		Octave:       4,
		PresetKey:    voice.DefaultPresetKey,
		VoiceLeading: true,
	}
}

// Normalize clamps and repairs a settings value so a bad config file can
// not produce an unplayable session.
func (s Settings) Normalize() Settings {
	if _, ok := theory.ParsePitchClass(s.Root); !ok {
		s.Root = "C"
	}
	if _, ok := theory.LookupScale(s.Scale); !ok {
		s.Scale = "major"
	}
	s.Octave = util.Clamp(s.Octave, MinMelodyOctave, MaxMelodyOctave)
	s.PresetKey = voice.LookupPreset(s.PresetKey).Key
	return s
}

// chordOctave is where harmony sounds relative to the melody octave.
func (s Settings) chordOctave() int {
	return theory.ClampOctave(s.Octave - 1)
}

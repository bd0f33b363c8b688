package voice

import (
	"sort"

	"github.com/ShaharFullStack/TheDemo/gesture"
	"github.com/ShaharFullStack/TheDemo/util"
)

// Backend identifies how a preset produces sound.
type Backend string

const (
	BackendSynthetic Backend = "synthetic"
	BackendSampled   Backend = "sampled"
	BackendMIDI      Backend = "midi"
)

// Envelope holds ADSR times in seconds and the sustain level in [0,1].
type Envelope struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// Preset describes an instrument: timbre parameters, envelope, backend kind
// and the articulations the instrument declares. Swapping preset always
// rebuilds the voice; a live voice is never reconfigured in place.
type Preset struct {
	Key           string
	Name          string
	Backend       Backend
	Wave          string // synthetic: sine, triangle, sawtooth, square
	Envelope      Envelope
	Articulations []string

	// Sampled backend
	SampleFile string
	BaseNote   uint8 // MIDI note the sample was recorded at

	// MIDI backend
	Program uint8 // General MIDI program number
}

// presets is the built-in instrument set.
var presets = map[string]Preset{
	"synthPad": {
		Key:           "synthPad",
		Name:          "Synth Pad",
		Backend:       BackendSynthetic,
		Wave:          "sine",
		Envelope:      Envelope{Attack: 0.12, Decay: 0.25, Sustain: 0.8, Release: 0.6},
		Articulations: []string{gesture.ArticulationSustain, gesture.ArticulationLegato},
	},
	"synthLead": {
		Key:           "synthLead",
		Name:          "Synth Lead",
		Backend:       BackendSynthetic,
		Wave:          "sawtooth",
		Envelope:      Envelope{Attack: 0.01, Decay: 0.1, Sustain: 0.7, Release: 0.2},
		Articulations: []string{gesture.ArticulationLegato, gesture.ArticulationStaccato},
	},
	"softSquare": {
		Key:           "softSquare",
		Name:          "Soft Square",
		Backend:       BackendSynthetic,
		Wave:          "square",
		Envelope:      Envelope{Attack: 0.05, Decay: 0.15, Sustain: 0.6, Release: 0.3},
		Articulations: []string{gesture.ArticulationSustain, gesture.ArticulationStaccato},
	},
	"sampledPiano": {
		Key:           "sampledPiano",
		Name:          "Piano",
		Backend:       BackendSampled,
		Envelope:      Envelope{Release: 0.25},
		SampleFile:    "piano_c4.wav",
		BaseNote:      60,
		Articulations: []string{gesture.ArticulationStaccato, gesture.ArticulationSustain},
	},
	"sampledGuitar": {
		Key:           "sampledGuitar",
		Name:          "Guitar",
		Backend:       BackendSampled,
		Envelope:      Envelope{Release: 0.15},
		SampleFile:    "guitar_e3.wav",
		BaseNote:      52,
		Articulations: []string{gesture.ArticulationPluck, gesture.ArticulationSustain},
	},
	"gmPiano": {
		Key:           "gmPiano",
		Name:          "GM Piano",
		Backend:       BackendMIDI,
		Program:       0,
		Articulations: []string{gesture.ArticulationStaccato, gesture.ArticulationSustain},
	},
	"gmStrings": {
		Key:           "gmStrings",
		Name:          "GM Strings",
		Backend:       BackendMIDI,
		Program:       48,
		Articulations: []string{gesture.ArticulationLegato, gesture.ArticulationSustain},
	},
}

// DefaultPresetKey is used when the configured preset is unknown.
const DefaultPresetKey = "synthPad"

// LookupPreset resolves a preset key, falling back to the default so a bad
// config value never kills the session.
func LookupPreset(key string) Preset {
	if p, ok := presets[key]; ok {
		return p
	}
	return presets[DefaultPresetKey]
}

// PresetKeys returns all preset keys sorted alphabetically.
func PresetKeys() []string {
	keys := util.Keys(presets)
	sort.Strings(keys)
	return keys
}

package voice

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShaharFullStack/TheDemo/util"
)

// Voice is the capability the lifecycle manager plays through. A voice owns
// whatever backend resources it needs (a MIDI port channel, PCM players,
// sample buffers) and is rebuilt, never mutated, on preset change.
//
// Articulation is advisory metadata: backends that cannot honor it must
// still trigger the notes.
type Voice interface {
	ID() string
	Attack(notes []uint8, velocity float64, articulation string) error
	Release(notes []uint8, after time.Duration) error
	ReleaseAll() error
	SetVolume(db float64) error
	SetEffect(name string, value float64, ramp time.Duration) error

	// Active returns how many notes the backend still considers sounding.
	// The manager uses it to verify silence after a release.
	Active() int

	Close() error
}

// Options carries backend wiring that is not part of the preset.
type Options struct {
	MIDIPort    string // MIDI output port name ("" = first available)
	MIDIChannel uint8  // 0-15
	SampleDir   string // directory holding wav samples for sampled presets
}

// New builds a voice for the preset's backend kind.
func New(preset Preset, opts Options) (Voice, error) {
	switch preset.Backend {
	case BackendSynthetic:
		return NewSynthVoice(preset)
	case BackendSampled:
		return NewSampledVoice(preset, opts.SampleDir)
	case BackendMIDI:
		return NewMIDIVoice(preset, opts.MIDIPort, opts.MIDIChannel)
	default:
		return nil, fmt.Errorf("unknown voice backend %q", preset.Backend)
	}
}

// newVoiceID returns a fresh voice instance ID. Rebuilds get a new ID so
// stale deferred callbacks can tell they outlived their voice.
func newVoiceID() string {
	return uuid.NewString()
}

// midiVelocity converts a [0,1] velocity to a MIDI velocity byte, keeping
// at least 1 so an attack is never silently dropped.
func midiVelocity(v float64) uint8 {
	return uint8(util.Clamp(int(v*127), 1, 127))
}

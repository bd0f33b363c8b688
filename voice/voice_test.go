package voice

import (
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestLookupPresetFallsBack(t *testing.T) {
	assert := assert.New(t)

	p := LookupPreset("synthLead")
	assert.Equal("synthLead", p.Key)
	assert.Equal(BackendSynthetic, p.Backend)

	// Unknown keys never fail, they fall back to the default preset.
	p = LookupPreset("doesNotExist")
	assert.Equal(DefaultPresetKey, p.Key)
}

func TestPresetsDeclareArticulations(t *testing.T) {
	for _, key := range PresetKeys() {
		p := LookupPreset(key)
		assert.NotEmpty(t, p.Articulations, "preset %s has no articulations", key)
	}
}

func TestMIDIVelocity(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint8(1), midiVelocity(0))    // never a silent attack
	assert.Equal(uint8(127), midiVelocity(1))
	assert.Equal(uint8(127), midiVelocity(2))  // clamped
	assert.Equal(uint8(63), midiVelocity(0.5))
}

func TestMIDIDeferredReleasePrunesTimer(t *testing.T) {
	v := &MIDIVoice{
		id:      "test",
		send:    func(gomidi.Message) error { return nil },
		active:  map[uint8]bool{60: true},
		pending: make(map[uint64]*time.Timer),
	}

	assert.NoError(t, v.Release([]uint8{60}, time.Millisecond))
	v.mu.Lock()
	assert.Len(t, v.pending, 1)
	v.mu.Unlock()

	// a fired timer removes itself, so long-lived voices do not pile
	// up dead entries
	assert.Eventually(t, func() bool {
		v.mu.Lock()
		defer v.mu.Unlock()
		return len(v.pending) == 0
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, v.Active())
}

func TestNoteFrequency(t *testing.T) {
	assert := assert.New(t)
	assert.InDelta(440.0, noteFrequency(69), 1e-9)  // A4
	assert.InDelta(261.63, noteFrequency(60), 0.01) // C4
	assert.InDelta(880.0, noteFrequency(81), 1e-9)  // octave doubles
}

func TestDBToGain(t *testing.T) {
	assert := assert.New(t)
	assert.InDelta(1.0, dbToGain(0), 1e-9)
	assert.InDelta(0.5, dbToGain(-6.0206), 1e-4)
	assert.InDelta(2.0, dbToGain(6.0206), 1e-4)
}

func TestOscillateBounds(t *testing.T) {
	for _, wave := range []string{"sine", "triangle", "sawtooth", "square"} {
		for i := 0; i < 100; i++ {
			phase := float64(i) / 100
			s := oscillate(wave, phase)
			if s < -1 || s > 1 {
				t.Fatalf("%s sample %v out of range at phase %v", wave, s, phase)
			}
		}
	}
}

func TestShapeEnvelope(t *testing.T) {
	assert := assert.New(t)

	env := Envelope{Attack: 0.1, Decay: 0.2, Sustain: 0.8, Release: 0.5}

	short := shapeEnvelope(env, "staccato")
	assert.LessOrEqual(short.Attack, 0.005)
	assert.LessOrEqual(short.Release, 0.08)

	connected := shapeEnvelope(env, "legato")
	assert.GreaterOrEqual(connected.Attack, 0.04)

	// Unknown articulation leaves the envelope alone.
	assert.Equal(env, shapeEnvelope(env, "spiccato"))
}

func TestMonoFloats(t *testing.T) {
	assert := assert.New(t)

	// Stereo 16-bit buffer downmixes and normalizes.
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: 44100},
		Data:   []int{16384, 16384, -32768, -32768},
	}
	out := monoFloats(buf, 16)
	assert.Len(out, 2)
	assert.InDelta(0.5, out[0], 1e-4)
	assert.InDelta(-1.0, out[1], 1e-4)
}

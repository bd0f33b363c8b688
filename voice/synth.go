package voice

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/oto"

	"github.com/ShaharFullStack/TheDemo/debug"
)

// PCM output format shared by the synthetic and sampled backends.
const (
	sampleRate  = 44100
	numChannels = 2
	bitDepth    = 2 // bytes per sample
	bufferSize  = 4096
	blockFrames = 256
)

// The process may hold only one oto context; both PCM backends share it.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func pcmContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		otoCtx, otoErr = oto.NewContext(sampleRate, numChannels, bitDepth, bufferSize)
	})
	return otoCtx, otoErr
}

// noteFrequency converts a MIDI note number to Hz (A4 = 440).
func noteFrequency(m uint8) float64 {
	return 440 * math.Pow(2, (float64(m)-69)/12)
}

// dbToGain converts decibels to a linear gain factor.
func dbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// oscillate returns one waveform sample for a phase in [0,1).
func oscillate(wave string, phase float64) float64 {
	switch wave {
	case "triangle":
		return 4*math.Abs(phase-0.5) - 1
	case "sawtooth":
		return 2*phase - 1
	case "square":
		if phase < 0.5 {
			return 1
		}
		return -1
	default: // sine
		return math.Sin(2 * math.Pi * phase)
	}
}

// synthNote is one sounding oscillator.
type synthNote struct {
	release chan struct{}
	done    chan struct{}
	once    sync.Once
}

func (n *synthNote) startRelease() {
	n.once.Do(func() { close(n.release) })
}

// SynthVoice renders notes as waveform oscillators with an ADSR envelope,
// streamed to the shared PCM context. Each note runs its own render
// goroutine; release is a channel close, so overlapping attack/release
// sequencing never blocks the frame loop.
type SynthVoice struct {
	id     string
	preset Preset
	ctx    *oto.Context

	mu      sync.Mutex
	gain    float64
	effects map[string]float64
	notes   map[uint8]*synthNote
	closed  bool
}

func NewSynthVoice(preset Preset) (*SynthVoice, error) {
	ctx, err := pcmContext()
	if err != nil {
		return nil, fmt.Errorf("audio context: %w", err)
	}
	return &SynthVoice{
		id:      newVoiceID(),
		preset:  preset,
		ctx:     ctx,
		gain:    1,
		effects: make(map[string]float64),
		notes:   make(map[uint8]*synthNote),
	}, nil
}

func (v *SynthVoice) ID() string { return v.id }

func (v *SynthVoice) Attack(notes []uint8, velocity float64, articulation string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("voice %s is closed", v.id)
	}

	env := v.preset.Envelope
	if articulation != "" {
		env = shapeEnvelope(env, articulation)
	}

	for _, m := range notes {
		if old, ok := v.notes[m]; ok {
			old.startRelease()
		}
		n := &synthNote{
			release: make(chan struct{}),
			done:    make(chan struct{}),
		}
		v.notes[m] = n
		go v.render(n, m, velocity, env)
	}
	return nil
}

// shapeEnvelope adjusts the preset envelope for an articulation tag.
func shapeEnvelope(env Envelope, articulation string) Envelope {
	switch articulation {
	case "staccato", "pluck":
		env.Attack = math.Min(env.Attack, 0.005)
		env.Release = math.Min(env.Release, 0.08)
	case "legato", "sustain":
		env.Attack = math.Max(env.Attack, 0.04)
	}
	return env
}

// render streams one note until its release ramp finishes.
func (v *SynthVoice) render(n *synthNote, m uint8, velocity float64, env Envelope) {
	defer close(n.done)

	player := v.ctx.NewPlayer()
	defer player.Close()

	freq := noteFrequency(m)
	amp := velocity
	phase := 0.0
	level := 0.0
	elapsed := 0.0
	releasing := false
	releaseFrom := 0.0
	releaseAt := 0.0

	buf := make([]byte, blockFrames*numChannels*bitDepth)
	dt := 1.0 / sampleRate

	for {
		select {
		case <-n.release:
			if !releasing {
				releasing = true
				releaseFrom = level
				releaseAt = elapsed
			}
		default:
		}

		v.mu.Lock()
		gain := v.gain
		tone := 1.0
		if b, ok := v.effects["brightness"]; ok {
			tone = 0.5 + 0.5*b
		}
		v.mu.Unlock()

		for f := 0; f < blockFrames; f++ {
			switch {
			case releasing:
				if env.Release <= 0 {
					level = 0
				} else {
					level = releaseFrom * (1 - (elapsed-releaseAt)/env.Release)
				}
				if level < 0 {
					level = 0
				}
			case elapsed < env.Attack:
				level = elapsed / env.Attack
			case elapsed < env.Attack+env.Decay:
				t := (elapsed - env.Attack) / env.Decay
				level = 1 - t*(1-env.Sustain)
			default:
				level = env.Sustain
			}

			s := oscillate(v.preset.Wave, phase) * level * amp * gain * tone * 0.5
			sample := int16(s * math.MaxInt16)
			for c := 0; c < numChannels; c++ {
				binary.LittleEndian.PutUint16(buf[(f*numChannels+c)*bitDepth:], uint16(sample))
			}

			phase += freq * dt
			if phase >= 1 {
				phase -= 1
			}
			elapsed += dt
		}

		if _, err := player.Write(buf); err != nil {
			debug.Log("voice", "pcm write failed for note %d: %v", m, err)
			v.forget(m, n)
			return
		}
		if releasing && level <= 0 {
			v.forget(m, n)
			return
		}
	}
}

// forget removes a finished note from the active set, unless a retrigger
// already replaced it.
func (v *SynthVoice) forget(m uint8, n *synthNote) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if cur, ok := v.notes[m]; ok && cur == n {
		delete(v.notes, m)
	}
}

func (v *SynthVoice) Release(notes []uint8, after time.Duration) error {
	if after <= 0 {
		v.releaseNow(notes)
		return nil
	}
	time.AfterFunc(after, func() { v.releaseNow(notes) })
	return nil
}

func (v *SynthVoice) releaseNow(notes []uint8) {
	v.mu.Lock()
	defer v.mu.Unlock()
	// Notes stay in the active set until their release tail finishes, so
	// Active reflects what is still audible.
	for _, m := range notes {
		if n, ok := v.notes[m]; ok {
			n.startRelease()
		}
	}
}

func (v *SynthVoice) ReleaseAll() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, n := range v.notes {
		n.startRelease()
	}
	return nil
}

func (v *SynthVoice) SetVolume(db float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gain = dbToGain(db)
	return nil
}

func (v *SynthVoice) SetEffect(name string, value float64, ramp time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	// Only brightness is audible in the synthetic backend; other values
	// are kept so a rebuild can restore them.
	v.effects[name] = value
	return nil
}

func (v *SynthVoice) Active() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.notes)
}

func (v *SynthVoice) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	notes := v.notes
	v.notes = make(map[uint8]*synthNote)
	v.mu.Unlock()

	for _, n := range notes {
		n.startRelease()
	}
	return nil
}

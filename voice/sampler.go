package voice

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/oto"

	"github.com/ShaharFullStack/TheDemo/debug"
)

// SampledVoice plays a recorded wav sample, pitch-shifted from the preset's
// base note by resampling. One sample per preset; the octave spread of the
// playing range comes entirely from the resample ratio.
type SampledVoice struct {
	id     string
	preset Preset
	ctx    *oto.Context

	sample     []float64 // mono, normalized to [-1,1]
	sampleRate int

	mu      sync.Mutex
	gain    float64
	effects map[string]float64
	notes   map[uint8]*synthNote
	closed  bool
}

// NewSampledVoice loads the preset's sample from sampleDir.
func NewSampledVoice(preset Preset, sampleDir string) (*SampledVoice, error) {
	ctx, err := pcmContext()
	if err != nil {
		return nil, fmt.Errorf("audio context: %w", err)
	}

	data, rate, err := loadSample(filepath.Join(sampleDir, preset.SampleFile))
	if err != nil {
		return nil, err
	}

	return &SampledVoice{
		id:         newVoiceID(),
		preset:     preset,
		ctx:        ctx,
		sample:     data,
		sampleRate: rate,
		gain:       1,
		effects:    make(map[string]float64),
		notes:      make(map[uint8]*synthNote),
	}, nil
}

// loadSample decodes a wav file to normalized mono float samples.
func loadSample(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open sample: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode sample %s: %w", path, err)
	}
	return monoFloats(buf, int(decoder.BitDepth)), buf.Format.SampleRate, nil
}

// monoFloats downmixes an integer PCM buffer to normalized mono.
func monoFloats(buf *audio.IntBuffer, bitDepth int) []float64 {
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	scale := float64(int(1) << (bitDepth - 1))
	frames := len(buf.Data) / channels

	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		out[i] = sum / float64(channels) / scale
	}
	return out
}

func (v *SampledVoice) ID() string { return v.id }

func (v *SampledVoice) Attack(notes []uint8, velocity float64, articulation string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("voice %s is closed", v.id)
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
		go v.render(n, m, velocity)
	}
	return nil
}

// render streams the pitch-shifted sample for one note.
func (v *SampledVoice) render(n *synthNote, m uint8, velocity float64) {
	defer close(n.done)

	player := v.ctx.NewPlayer()
	defer player.Close()

	// Playback step: semitone ratio from the base note, corrected for the
	// file's own sample rate.
	step := noteFrequency(m) / noteFrequency(v.preset.BaseNote)
	step *= float64(v.sampleRate) / float64(sampleRate)

	pos := 0.0
	releasing := false
	fade := 1.0
	releaseStep := 0.0
	if v.preset.Envelope.Release > 0 {
		releaseStep = 1.0 / (v.preset.Envelope.Release * sampleRate)
	}

	buf := make([]byte, blockFrames*numChannels*bitDepth)

	for {
		select {
		case <-n.release:
			releasing = true
		default:
		}

		v.mu.Lock()
		gain := v.gain
		v.mu.Unlock()

		for f := 0; f < blockFrames; f++ {
			idx := int(pos)
			if idx >= len(v.sample) {
				// One-shot sample ran out.
				v.forget(m, n)
				return
			}

			if releasing {
				if releaseStep == 0 {
					fade = 0
				} else {
					fade -= releaseStep
				}
				if fade <= 0 {
					v.forget(m, n)
					return
				}
			}

			s := v.sample[idx] * velocity * fade * gain
			sample := int16(s * math.MaxInt16)
			for c := 0; c < numChannels; c++ {
				binary.LittleEndian.PutUint16(buf[(f*numChannels+c)*bitDepth:], uint16(sample))
			}
			pos += step
		}

		if _, err := player.Write(buf); err != nil {
			debug.Log("voice", "pcm write failed for note %d: %v", m, err)
			v.forget(m, n)
			return
		}
	}
}

// forget removes a finished note from the active set, unless a retrigger
// already replaced it.
func (v *SampledVoice) forget(m uint8, n *synthNote) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if cur, ok := v.notes[m]; ok && cur == n {
		delete(v.notes, m)
	}
}

func (v *SampledVoice) Release(notes []uint8, after time.Duration) error {
	if after <= 0 {
		v.releaseNow(notes)
		return nil
	}
	time.AfterFunc(after, func() { v.releaseNow(notes) })
	return nil
}

func (v *SampledVoice) releaseNow(notes []uint8) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, m := range notes {
		if n, ok := v.notes[m]; ok {
			n.startRelease()
		}
	}
}

func (v *SampledVoice) ReleaseAll() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, n := range v.notes {
		n.startRelease()
	}
	return nil
}

func (v *SampledVoice) SetVolume(db float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gain = dbToGain(db)
	return nil
}

func (v *SampledVoice) SetEffect(name string, value float64, ramp time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.effects[name] = value
	return nil
}

func (v *SampledVoice) Active() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.notes)
}

func (v *SampledVoice) Close() error {
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

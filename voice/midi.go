package voice

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/ShaharFullStack/TheDemo/debug"
	"github.com/ShaharFullStack/TheDemo/gesture"
	"github.com/ShaharFullStack/TheDemo/util"
)

// effectCC maps effect parameter names onto MIDI continuous controllers.
var effectCC = map[string]uint8{
	"reverb":     91,
	"chorus":     93,
	"brightness": 74,
	"modulation": 1,
}

// MIDIVoice plays through an external MIDI output port. Attack and release
// become NoteOn/NoteOff, volume becomes CC7, effects become their mapped
// controllers. MIDI has no parameter ramps, so ramp durations are ignored.
type MIDIVoice struct {
	id      string
	preset  Preset
	channel uint8
	send    func(gomidi.Message) error

	mu         sync.Mutex
	active     map[uint8]bool
	pending    map[uint64]*time.Timer
	pendingSeq uint64
	closed     bool
}

// NewMIDIVoice opens the named output port ("" picks the first one) and
// sends the preset's program change.
func NewMIDIVoice(preset Preset, portName string, channel uint8) (*MIDIVoice, error) {
	send, err := openSender(portName)
	if err != nil {
		return nil, err
	}

	v := &MIDIVoice{
		id:      newVoiceID(),
		preset:  preset,
		channel: channel,
		send:    send,
		active:  make(map[uint8]bool),
		pending: make(map[uint64]*time.Timer),
	}
	if err := send(gomidi.ProgramChange(channel, preset.Program)); err != nil {
		debug.Log("voice", "program change failed: %v", err)
	}
	return v, nil
}

// openSender finds the named output port and returns a sender for it.
func openSender(portName string) (func(gomidi.Message) error, error) {
	ports := gomidi.GetOutPorts()
	if len(ports) == 0 {
		return nil, fmt.Errorf("no MIDI output ports available")
	}
	for _, port := range ports {
		if portName == "" || port.String() == portName {
			return gomidi.SendTo(port)
		}
	}
	return nil, fmt.Errorf("MIDI output port %q not found", portName)
}

func (v *MIDIVoice) ID() string { return v.id }

func (v *MIDIVoice) Attack(notes []uint8, velocity float64, articulation string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("voice %s is closed", v.id)
	}

	vel := midiVelocity(velocity)
	if articulation == gesture.ArticulationStaccato || articulation == gesture.ArticulationPluck {
		// Short articulations get a velocity bump; GM has no keyswitches.
		vel = uint8(util.Clamp(int(vel)+12, 1, 127))
	}

	var firstErr error
	for _, n := range notes {
		if err := v.send(gomidi.NoteOn(v.channel, n, vel)); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		v.active[n] = true
	}
	return firstErr
}

func (v *MIDIVoice) Release(notes []uint8, after time.Duration) error {
	if after <= 0 {
		v.releaseNow(notes)
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.pendingSeq++
	id := v.pendingSeq
	v.pending[id] = time.AfterFunc(after, func() {
		v.releaseNow(notes)
		v.mu.Lock()
		delete(v.pending, id)
		v.mu.Unlock()
	})
	return nil
}

func (v *MIDIVoice) releaseNow(notes []uint8) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	for _, n := range notes {
		if err := v.send(gomidi.NoteOff(v.channel, n)); err != nil {
			debug.Log("voice", "note off %d failed: %v", n, err)
		}
		delete(v.active, n)
	}
}

func (v *MIDIVoice) ReleaseAll() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	for n := range v.active {
		if err := v.send(gomidi.NoteOff(v.channel, n)); err != nil {
			debug.Log("voice", "note off %d failed: %v", n, err)
		}
	}
	v.active = make(map[uint8]bool)
	return nil
}

// SetVolume maps decibels in [-30, 5] onto CC7.
func (v *MIDIVoice) SetVolume(db float64) error {
	cc := uint8(gesture.Remap(db, gesture.MinVolumeDB, gesture.MaxVolumeDB, 0, 127))
	return v.send(gomidi.ControlChange(v.channel, 7, cc))
}

func (v *MIDIVoice) SetEffect(name string, value float64, ramp time.Duration) error {
	cc, ok := effectCC[name]
	if !ok {
		return fmt.Errorf("unknown effect %q", name)
	}
	val := uint8(util.Clamp(int(value*127), 0, 127))
	return v.send(gomidi.ControlChange(v.channel, cc, val))
}

func (v *MIDIVoice) Active() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.active)
}

func (v *MIDIVoice) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	timers := make([]*time.Timer, 0, len(v.pending))
	for _, t := range v.pending {
		timers = append(timers, t)
	}
	v.pending = nil
	notes := make([]uint8, 0, len(v.active))
	for n := range v.active {
		notes = append(notes, n)
	}
	v.active = make(map[uint8]bool)
	v.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	for _, n := range notes {
		if err := v.send(gomidi.NoteOff(v.channel, n)); err != nil {
			debug.Log("voice", "note off %d on close failed: %v", n, err)
		}
	}
	return nil
}

package session

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShaharFullStack/TheDemo/gesture"
	"github.com/ShaharFullStack/TheDemo/voice"
)

// fakeVoice records every call so tests can assert on the exact
// sequence the manager issued. Calls are recorded even when err is
// set, mirroring a backend that fails mid-operation.
type fakeVoice struct {
	mu         sync.Mutex
	attacks    [][]uint8
	releases   [][]uint8
	releaseAll int
	closed     bool
	active     int
	volume     float64
	effects    map[string]float64
	err        error
}

func (f *fakeVoice) ID() string { return "fake" }

func (f *fakeVoice) Attack(notes []uint8, velocity float64, articulation string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attacks = append(f.attacks, append([]uint8(nil), notes...))
	return f.err
}

func (f *fakeVoice) Release(notes []uint8, after time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases = append(f.releases, append([]uint8(nil), notes...))
	return f.err
}

func (f *fakeVoice) ReleaseAll() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releaseAll++
	return f.err
}

func (f *fakeVoice) SetVolume(db float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = db
	return f.err
}

func (f *fakeVoice) SetEffect(name string, value float64, ramp time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.effects == nil {
		f.effects = map[string]float64{}
	}
	f.effects[name] = value
	return f.err
}

func (f *fakeVoice) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeVoice) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.err
}

type schedCall struct {
	after time.Duration
	fn    func()
}

// harness wires a Manager to fake voices, a manual scheduler, and a
// manual clock so frame gating and deferred rebuilds are deterministic.
type harness struct {
	m      *Manager
	voices []*fakeVoice
	sched  []schedCall
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{now: time.Unix(1000, 0)}
	h.m = NewManager(DefaultSettings(), voice.Options{})
	h.m.newVoice = func(voice.Preset, voice.Options) (voice.Voice, error) {
		fv := &fakeVoice{}
		h.voices = append(h.voices, fv)
		return fv, nil
	}
	h.m.schedule = func(d time.Duration, fn func()) *time.Timer {
		h.sched = append(h.sched, schedCall{after: d, fn: fn})
		return time.NewTimer(time.Hour)
	}
	h.m.now = func() time.Time { return h.now }
	h.m.throttleMelody = func(func()) {}
	h.m.throttleHarmony = func(func()) {}
	require.NoError(t, h.m.Start())
	require.Len(t, h.voices, 2)
	return h
}

func (h *harness) melody() *fakeVoice  { return h.voices[0] }
func (h *harness) harmony() *fakeVoice { return h.voices[1] }

// frame advances the clock past the frame gate and feeds the hands in.
func (h *harness) frame(hands ...gesture.Hand) {
	h.now = h.now.Add(20 * time.Millisecond)
	h.m.ProcessFrame(gesture.Frame{Hands: hands})
}

func (h *harness) runTimers() {
	pending := h.sched
	h.sched = nil
	for _, c := range pending {
		c.fn()
	}
}

func handAt(hd gesture.Handedness, x, y, pinch float64) gesture.Hand {
	lms := make([]gesture.Landmark, gesture.IndexTipIndex+1)
	for i := range lms {
		lms[i] = gesture.Landmark{X: x, Y: y}
	}
	lms[gesture.IndexTipIndex] = gesture.Landmark{X: x + pinch, Y: y}
	return gesture.Hand{Handedness: hd, Landmarks: lms}
}

func TestMelodyAttackOnce(t *testing.T) {
	h := newHarness(t)

	h.frame(handAt(gesture.Right, 0.5, 0.5, 0.1))
	require.Len(t, h.melody().attacks, 1)
	assert.Len(t, h.melody().attacks[0], 1)

	// the same position again must not re-trigger
	h.frame(handAt(gesture.Right, 0.5, 0.5, 0.1))
	h.frame(handAt(gesture.Right, 0.5, 0.501, 0.1))
	assert.Len(t, h.melody().attacks, 1)

	snap := h.m.Snapshot()
	assert.True(t, snap.Melody.Playing)
	assert.NotEmpty(t, snap.Melody.Label)
	assert.False(t, snap.Harmony.Playing)
}

func TestMelodyCrossfadeOnPitchChange(t *testing.T) {
	h := newHarness(t)

	h.frame(handAt(gesture.Right, 0.5, 0.2, 0.1))
	require.Len(t, h.melody().attacks, 1)
	first := h.melody().attacks[0]

	h.frame(handAt(gesture.Right, 0.5, 0.8, 0.1))
	require.Len(t, h.melody().attacks, 2)
	require.Len(t, h.melody().releases, 1)
	assert.Equal(t, first, h.melody().releases[0])
	assert.NotEqual(t, first, h.melody().attacks[1])
}

func TestChordChangeHoldsCommonTones(t *testing.T) {
	h := newHarness(t)

	// degree 0 in C major, harmony an octave below the melody: C [48 52 55]
	h.frame(handAt(gesture.Left, 0.5, 1.0, 0.1))
	require.Len(t, h.harmony().attacks, 1)
	assert.Equal(t, []uint8{48, 52, 55}, h.harmony().attacks[0])

	// degree 2 is Em [52 55 59]: E and G carry over and must keep
	// sounding, so only C is released and only B attacked
	h.frame(handAt(gesture.Left, 0.5, 0.714, 0.1))
	require.Len(t, h.harmony().attacks, 2)
	assert.Equal(t, []uint8{59}, h.harmony().attacks[1])
	require.Len(t, h.harmony().releases, 1)
	assert.Equal(t, []uint8{48}, h.harmony().releases[0])

	// the sounding set still reports the whole chord
	assert.Equal(t, []uint8{52, 55, 59}, h.m.Snapshot().Harmony.MIDI)
}

func TestSplitCrossfade(t *testing.T) {
	gone, fresh := splitCrossfade([]uint8{48, 52, 55}, []uint8{52, 55, 59})
	assert.Equal(t, []uint8{48}, gone)
	assert.Equal(t, []uint8{59}, fresh)

	gone, fresh = splitCrossfade([]uint8{60}, []uint8{62})
	assert.Equal(t, []uint8{60}, gone)
	assert.Equal(t, []uint8{62}, fresh)

	gone, fresh = splitCrossfade([]uint8{60, 64}, []uint8{60, 64})
	assert.Empty(t, gone)
	assert.Empty(t, fresh)
}

func TestFrameGateDropsFastFrames(t *testing.T) {
	h := newHarness(t)

	h.frame(handAt(gesture.Right, 0.5, 0.2, 0.1))
	// only 5ms later, under the gate
	h.now = h.now.Add(5 * time.Millisecond)
	h.m.ProcessFrame(gesture.Frame{Hands: []gesture.Hand{handAt(gesture.Right, 0.5, 0.8, 0.1)}})

	assert.Len(t, h.melody().attacks, 1)
	assert.Empty(t, h.melody().releases)
}

func TestHandLeaveReleasesAndGuardsSilence(t *testing.T) {
	h := newHarness(t)

	h.frame(handAt(gesture.Right, 0.5, 0.5, 0.1))
	h.frame()
	assert.Equal(t, 1, h.melody().releaseAll)
	assert.False(t, h.m.Snapshot().Melody.Playing)

	require.Len(t, h.sched, 1)
	assert.Equal(t, silenceGrace, h.sched[0].after)

	// still ringing past the grace period: voice is rebuilt
	h.melody().active = 1
	old := h.melody()
	h.runTimers()
	assert.True(t, old.closed)
	require.Len(t, h.voices, 3)
}

func TestSilenceCheckNoopWhenQuiet(t *testing.T) {
	h := newHarness(t)

	h.frame(handAt(gesture.Right, 0.5, 0.5, 0.1))
	h.frame()
	require.Len(t, h.sched, 1)

	h.runTimers()
	assert.False(t, h.melody().closed)
	assert.Len(t, h.voices, 2)
}

func TestSilenceCheckSkipsReattackedHand(t *testing.T) {
	h := newHarness(t)

	h.frame(handAt(gesture.Right, 0.5, 0.5, 0.1))
	h.frame()
	require.Len(t, h.sched, 1)

	// the hand comes back before the grace callback takes the lock,
	// simulating a timer that fired just as Stop was called
	h.frame(handAt(gesture.Right, 0.5, 0.5, 0.1))
	require.Len(t, h.melody().attacks, 2)

	h.melody().active = 1
	h.runTimers()
	assert.False(t, h.melody().closed)
	assert.Len(t, h.voices, 2)
	assert.True(t, h.m.Snapshot().Melody.Playing)
}

func TestHarmonyPlaysVoicedChord(t *testing.T) {
	h := newHarness(t)

	h.frame(handAt(gesture.Left, 0.5, 0.5, 0.1))
	require.Len(t, h.harmony().attacks, 1)
	assert.Len(t, h.harmony().attacks[0], 3)
	assert.Empty(t, h.melody().attacks)

	snap := h.m.Snapshot()
	assert.True(t, snap.Harmony.Playing)
	assert.NotEmpty(t, snap.Harmony.Label)
}

func TestSeventhToggleAddsNote(t *testing.T) {
	h := newHarness(t)
	h.m.ToggleSeventh()

	h.frame(handAt(gesture.Left, 0.5, 0.5, 0.1))
	require.Len(t, h.harmony().attacks, 1)
	assert.Len(t, h.harmony().attacks[0], 4)
}

func TestPresetSwitchRebuildsBothVoices(t *testing.T) {
	h := newHarness(t)

	h.frame(handAt(gesture.Right, 0.5, 0.5, 0.1))
	require.Len(t, h.melody().attacks, 1)

	h.m.SetPreset("synthLead")
	assert.Equal(t, "synthLead", h.m.Snapshot().Preset)
	// sounding note was released before the rebuild
	assert.Len(t, h.melody().releases, 1)
	assert.False(t, h.m.Snapshot().Melody.Playing)

	require.Len(t, h.sched, 1)
	assert.Equal(t, rebuildDelay, h.sched[0].after)
	oldMelody, oldHarmony := h.melody(), h.harmony()
	h.runTimers()
	assert.True(t, oldMelody.closed)
	assert.True(t, oldHarmony.closed)
	require.Len(t, h.voices, 4)

	// next frame re-attacks through the fresh voice
	h.frame(handAt(gesture.Right, 0.5, 0.5, 0.1))
	assert.Len(t, h.voices[2].attacks, 1)
}

func TestRapidPresetSwitchCancelsStaleRebuild(t *testing.T) {
	h := newHarness(t)

	h.m.SetPreset("synthLead")
	require.Len(t, h.sched, 1)
	stale := h.sched[0]
	h.sched = nil

	h.m.SetPreset("softSquare")
	require.Len(t, h.sched, 1)

	// the superseded rebuild must do nothing
	stale.fn()
	assert.Len(t, h.voices, 2)

	h.runTimers()
	assert.Len(t, h.voices, 4)
	assert.Equal(t, "softSquare", h.m.Snapshot().Preset)
}

func TestSamePresetIsNoop(t *testing.T) {
	h := newHarness(t)
	h.m.SetPreset(h.m.Snapshot().Preset)
	assert.Empty(t, h.sched)
	assert.Len(t, h.voices, 2)
}

func TestBackendErrorsDoNotWedgeState(t *testing.T) {
	h := newHarness(t)
	h.melody().err = errors.New("device gone")

	h.frame(handAt(gesture.Right, 0.5, 0.2, 0.1))
	assert.True(t, h.m.Snapshot().Melody.Playing)

	h.frame(handAt(gesture.Right, 0.5, 0.8, 0.1))
	assert.Len(t, h.melody().attacks, 2)

	h.frame()
	assert.False(t, h.m.Snapshot().Melody.Playing)
}

func TestVolumeFollowsHandDistance(t *testing.T) {
	h := newHarness(t)

	h.frame(
		handAt(gesture.Right, 0.3, 0.5, 0.1),
		handAt(gesture.Left, 0.6, 0.5, 0.1),
	)
	want := gesture.Volume(math.Hypot(0.3, 0))
	assert.InDelta(t, want, h.melody().volume, 1e-9)
	assert.InDelta(t, want, h.harmony().volume, 1e-9)
	snap := h.m.Snapshot()
	assert.InDelta(t, want, snap.VolumeDB, 1e-9)
	assert.NotEmpty(t, snap.Dynamic)
}

func TestEffectThrottledToPinch(t *testing.T) {
	h := newHarness(t)
	var pending func()
	h.m.throttleMelody = func(f func()) { pending = f }

	h.frame(handAt(gesture.Right, 0.5, 0.5, 0.05))
	require.NotNil(t, pending)
	pending()

	got, ok := h.melody().effects[melodyEffect]
	require.True(t, ok)
	assert.InDelta(t, gesture.EffectIntensity(0.05), got, 1e-9)
}

func TestDisableSilencesEverything(t *testing.T) {
	h := newHarness(t)

	h.frame(handAt(gesture.Right, 0.5, 0.5, 0.1))
	h.m.SetEnabled(false)
	assert.Equal(t, 1, h.melody().releaseAll)

	snap := h.m.Snapshot()
	assert.False(t, snap.Enabled)
	assert.False(t, snap.Melody.Playing)

	// frames while disabled do nothing
	h.frame(handAt(gesture.Right, 0.5, 0.2, 0.1))
	assert.Len(t, h.melody().attacks, 1)
}

func TestScaleChangeMigratesOnNextFrame(t *testing.T) {
	h := newHarness(t)

	h.frame(handAt(gesture.Right, 0.5, 0.37, 0.1))
	require.Len(t, h.melody().attacks, 1)

	h.m.SetScale("minorPentatonic")
	assert.Equal(t, "minorPentatonic", h.m.Snapshot().Scale)

	// the same hand position now lands on a different pitch
	h.frame(handAt(gesture.Right, 0.5, 0.37, 0.1))
	if len(h.melody().attacks) == 2 {
		assert.NotEqual(t, h.melody().attacks[0], h.melody().attacks[1])
	}
}

func TestOctaveShiftClamped(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 10; i++ {
		h.m.ShiftOctave(1)
	}
	assert.Equal(t, MaxMelodyOctave, h.m.Snapshot().Octave)
	for i := 0; i < 10; i++ {
		h.m.ShiftOctave(-1)
	}
	assert.Equal(t, MinMelodyOctave, h.m.Snapshot().Octave)
}

func TestCloseIsIdempotent(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.m.Close())
	require.NoError(t, h.m.Close())
	assert.True(t, h.melody().closed)
	assert.True(t, h.harmony().closed)

	// frames after close are ignored
	h.frame(handAt(gesture.Right, 0.5, 0.5, 0.1))
	assert.Empty(t, h.melody().attacks)
}

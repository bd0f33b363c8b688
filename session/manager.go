package session

import (
	"math"
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/ShaharFullStack/TheDemo/debug"
	"github.com/ShaharFullStack/TheDemo/gesture"
	"github.com/ShaharFullStack/TheDemo/theory"
	"github.com/ShaharFullStack/TheDemo/util"
	"github.com/ShaharFullStack/TheDemo/voice"
)

const (
	// frameInterval drops tracker frames arriving faster than ~60 fps.
	frameInterval = 16 * time.Millisecond
	// crossfadeDelay is how far in the future the outgoing note is
	// released when the hand slides to a new pitch. The new note starts
	// immediately, so the two overlap briefly instead of gapping.
	crossfadeDelay = 30 * time.Millisecond
	// silenceGrace is how long a released voice may keep ringing after
	// its hand left before the voice is torn down and rebuilt.
	silenceGrace = 100 * time.Millisecond
	// rebuildDelay lets releases land before a preset switch rebuilds
	// the voices.
	rebuildDelay = 50 * time.Millisecond
	// effectThrottle batches pinch wiggle into one effect update.
	effectThrottle = 80 * time.Millisecond
	effectRamp     = 40 * time.Millisecond

	melodyRole  = "melody"
	harmonyRole = "harmony"

	melodyEffect  = "brightness"
	harmonyEffect = "reverb"

	defaultVolumeDB = -6.0
)

// handState tracks one hand's voice through its idle/sounding lifecycle.
type handState struct {
	role    string
	playing bool
	label   string
	midi    []uint8
	note    theory.Note
	chord   theory.Chord
	effect  float64
	changed time.Time

	posGate   gesture.Gate
	pinchGate gesture.Gate

	lastWrist  gesture.Landmark
	lastSeen   time.Time
	hasWrist   bool
	silenceTmr *time.Timer
}

// speed estimates wrist travel in normalized units per second, used to
// pick an articulation. Returns 0 until two sightings exist.
func (st *handState) speed(w gesture.Landmark, now time.Time) float64 {
	if !st.hasWrist {
		return 0
	}
	dt := now.Sub(st.lastSeen).Seconds()
	if dt <= 0 {
		return 0
	}
	dx := w.X - st.lastWrist.X
	dy := w.Y - st.lastWrist.Y
	return math.Hypot(dx, dy) / dt
}

func (st *handState) reset() {
	st.playing = false
	st.midi = nil
	st.posGate.Reset()
	st.pinchGate.Reset()
	if st.silenceTmr != nil {
		st.silenceTmr.Stop()
		st.silenceTmr = nil
	}
}

// Manager owns the whole session: settings, both voices, and the state
// machine that turns tracker frames into attacks and releases. All voice
// calls are failure tolerant; a backend error is logged and the state
// machine advances as if it succeeded, so one bad device can not wedge
// the session.
type Manager struct {
	mu       sync.Mutex
	settings Settings
	preset   voice.Preset
	opts     voice.Options

	newVoice func(voice.Preset, voice.Options) (voice.Voice, error)
	schedule func(time.Duration, func()) *time.Timer
	now      func() time.Time

	melody  voice.Voice
	harmony voice.Voice
	voicing theory.VoicingState

	right handState
	left  handState

	volumeDB float64
	volGate  gesture.Gate

	throttleMelody  func(func())
	throttleHarmony func(func())

	enabled    bool
	closed     bool
	generation uint64
	frames     uint64
	lastFrame  time.Time

	// UpdateChan gets a non-blocking tick whenever visible state may
	// have changed. The TUI selects on it.
	UpdateChan chan struct{}
}

// NewManager builds a silent manager. Call Start to open the voices.
func NewManager(settings Settings, opts voice.Options) *Manager {
	s := settings.Normalize()
	return &Manager{
		settings:        s,
		preset:          voice.LookupPreset(s.PresetKey),
		opts:            opts,
		newVoice:        voice.New,
		schedule:        time.AfterFunc,
		now:             time.Now,
		right:           handState{role: melodyRole},
		left:            handState{role: harmonyRole},
		volumeDB:        defaultVolumeDB,
		throttleMelody:  debounce.New(effectThrottle),
		throttleHarmony: debounce.New(effectThrottle),
		UpdateChan:      make(chan struct{}, 1),
	}
}

// Start opens the melody and harmony voices and enables audio.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	var firstErr error
	for _, role := range []string{melodyRole, harmonyRole} {
		if err := m.rebuildVoiceLocked(role); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.enabled = m.melody != nil || m.harmony != nil
	return firstErr
}

// Close silences and tears down both voices. The manager is unusable
// afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.generation++
	m.right.reset()
	m.left.reset()
	for _, v := range []voice.Voice{m.melody, m.harmony} {
		if v == nil {
			continue
		}
		if err := v.Close(); err != nil {
			debug.Log("session", "close: %v", err)
		}
	}
	m.melody, m.harmony = nil, nil
	return nil
}

// ProcessFrame advances the session with one tracker frame. Frames
// arriving faster than the frame gate are dropped whole.
func (m *Manager) ProcessFrame(f gesture.Frame) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	now := m.now()
	if !m.lastFrame.IsZero() && now.Sub(m.lastFrame) < frameInterval {
		m.mu.Unlock()
		return
	}
	m.lastFrame = now
	m.frames++
	debug.LogEvery(300, "session", "frame %d, %d hands", m.frames, len(f.Hands))

	if !m.enabled {
		m.stopHandLocked(&m.right)
		m.stopHandLocked(&m.left)
		m.mu.Unlock()
		m.notify()
		return
	}

	m.updateVolumeLocked(f)
	m.updateMelodyLocked(f, now)
	m.updateHarmonyLocked(f, now)
	m.mu.Unlock()
	m.notify()
}

// updateVolumeLocked maps the distance between the two wrists to a
// shared volume. With one or zero hands the last volume holds.
func (m *Manager) updateVolumeLocked(f gesture.Frame) {
	rh, rok := f.HandFor(gesture.Right)
	lh, lok := f.HandFor(gesture.Left)
	if !rok || !lok {
		return
	}
	rw, lw := rh.Wrist(), lh.Wrist()
	dist := math.Hypot(rw.X-lw.X, rw.Y-lw.Y)
	if !m.volGate.Changed(dist) {
		return
	}
	m.volumeDB = gesture.Volume(dist)
	for _, v := range []voice.Voice{m.melody, m.harmony} {
		if v == nil {
			continue
		}
		if err := v.SetVolume(m.volumeDB); err != nil {
			debug.Log("session", "set volume: %v", err)
		}
	}
}

func (m *Manager) updateMelodyLocked(f gesture.Frame, now time.Time) {
	st := &m.right
	hand, ok := f.HandFor(gesture.Right)
	if !ok {
		m.stopHandLocked(st)
		return
	}
	w := hand.Wrist()
	speed := st.speed(w, now)
	st.lastWrist, st.lastSeen, st.hasWrist = w, now, true

	m.updateEffectLocked(st, hand)

	if st.playing && !st.posGate.Changed(w.Y) {
		return
	}
	degree := gesture.MelodyDegree(w.Y)
	note := theory.NoteForDegree(m.settings.Root, m.settings.Scale, degree, m.settings.Octave)
	if st.playing && note == st.note {
		return
	}
	notes := []uint8{note.MIDI()}
	fresh := notes
	if st.playing {
		var gone []uint8
		gone, fresh = splitCrossfade(st.midi, notes)
		if len(gone) > 0 {
			m.releaseLocked(melodyRole, gone, crossfadeDelay)
		}
	}
	st.note = note
	artic := gesture.ArticulationFor(m.preset.Articulations, hand.PinchDistance(), speed)
	m.attackLocked(st, notes, fresh, note.Name(m.settings.Root), artic, now)
}

func (m *Manager) updateHarmonyLocked(f gesture.Frame, now time.Time) {
	st := &m.left
	hand, ok := f.HandFor(gesture.Left)
	if !ok {
		m.stopHandLocked(st)
		return
	}
	w := hand.Wrist()
	speed := st.speed(w, now)
	st.lastWrist, st.lastSeen, st.hasWrist = w, now, true

	m.updateEffectLocked(st, hand)

	if st.playing && !st.posGate.Changed(w.Y) {
		return
	}
	degree := gesture.ChordDegree(w.Y)
	chord := theory.ChordForDegree(m.settings.Root, m.settings.Scale, degree,
		m.settings.chordOctave(), m.settings.UseSeventh)
	if st.playing && chord.Equal(st.chord) {
		return
	}
	notes := m.voiceChordLocked(chord)
	fresh := notes
	if st.playing {
		var gone []uint8
		gone, fresh = splitCrossfade(st.midi, notes)
		if len(gone) > 0 {
			m.releaseLocked(harmonyRole, gone, crossfadeDelay)
		}
	}
	st.chord = chord
	artic := gesture.ArticulationFor(m.preset.Articulations, hand.PinchDistance(), speed)
	m.attackLocked(st, notes, fresh, chord.Name, artic, now)
}

// splitCrossfade partitions a note transition. Tones in both the old and
// new sets keep sounding untouched; only the dropped tones are released
// and only the added tones are attacked. Adjacent diatonic chords share
// most of their notes, so cutting common tones would gut the crossfade.
func splitCrossfade(old, next []uint8) (gone, fresh []uint8) {
	keep := make(map[uint8]bool, len(next))
	for _, n := range next {
		keep[n] = true
	}
	for _, n := range old {
		if !keep[n] {
			gone = append(gone, n)
		}
	}
	prev := make(map[uint8]bool, len(old))
	for _, n := range old {
		prev[n] = true
	}
	for _, n := range next {
		if !prev[n] {
			fresh = append(fresh, n)
		}
	}
	return gone, fresh
}

// voiceChordLocked applies voice leading to the chord's triad, leaving
// any seventh riding on top untouched.
func (m *Manager) voiceChordLocked(c theory.Chord) []uint8 {
	raw := c.MIDINotes()
	if !m.settings.VoiceLeading || len(raw) < 3 {
		m.voicing.Reset()
		return raw
	}
	triad := [3]int{int(raw[0]), int(raw[1]), int(raw[2])}
	led := theory.LeadVoicing(m.voicing, triad)
	m.voicing.Set(led)
	out := make([]uint8, 0, len(raw))
	for _, p := range led {
		out = append(out, uint8(util.Clamp(p, 0, 127)))
	}
	out = append(out, raw[3:]...)
	return out
}

func (m *Manager) updateEffectLocked(st *handState, hand gesture.Hand) {
	pinch := hand.PinchDistance()
	if !st.pinchGate.Changed(pinch) {
		return
	}
	st.effect = gesture.EffectIntensity(pinch)
	role := st.role
	throttle := m.throttleMelody
	if role == harmonyRole {
		throttle = m.throttleHarmony
	}
	throttle(func() { m.applyEffect(role) })
}

// applyEffect runs on the debounce timer goroutine.
func (m *Manager) applyEffect(role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	v := m.voiceLocked(role)
	if v == nil {
		return
	}
	st, name := &m.right, melodyEffect
	if role == harmonyRole {
		st, name = &m.left, harmonyEffect
	}
	if err := v.SetEffect(name, st.effect, effectRamp); err != nil {
		debug.Log("session", "set effect %s: %v", name, err)
	}
}

// attackLocked records notes as the hand's sounding set and attacks the
// fresh subset. Held-over tones are already sounding and must not be
// retriggered.
func (m *Manager) attackLocked(st *handState, notes, fresh []uint8, label, articulation string, now time.Time) {
	if st.silenceTmr != nil {
		st.silenceTmr.Stop()
		st.silenceTmr = nil
	}
	st.playing = true
	st.label = label
	st.midi = notes
	st.changed = now
	if len(fresh) == 0 {
		return
	}
	v := m.voiceLocked(st.role)
	if v == nil {
		return
	}
	vel := gesture.VelocityFromVolume(m.volumeDB)
	if err := v.Attack(fresh, vel, articulation); err != nil {
		debug.Log("session", "attack %s %v: %v", st.role, fresh, err)
	}
}

func (m *Manager) releaseLocked(role string, notes []uint8, after time.Duration) {
	v := m.voiceLocked(role)
	if v == nil {
		return
	}
	if err := v.Release(notes, after); err != nil {
		debug.Log("session", "release %s %v: %v", role, notes, err)
	}
}

// stopHandLocked returns a hand to idle. A silence check fires after a
// grace period: a voice still ringing past it gets torn down and
// rebuilt so a stuck note can not drone forever.
func (m *Manager) stopHandLocked(st *handState) {
	st.hasWrist = false
	if !st.playing {
		return
	}
	role := st.role
	v := m.voiceLocked(role)
	if v != nil {
		if err := v.ReleaseAll(); err != nil {
			debug.Log("session", "release all %s: %v", role, err)
		}
	}
	st.reset()
	st.changed = m.now()
	gen := m.generation
	st.silenceTmr = m.schedule(silenceGrace, func() { m.forceSilence(role, gen) })
}

func (m *Manager) forceSilence(role string, gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.generation {
		return
	}
	st := &m.right
	if role == harmonyRole {
		st = &m.left
	}
	// The hand may have re-attacked between the timer firing and this
	// goroutine taking the lock. A sounding hand is not stuck.
	if st.playing {
		return
	}
	v := m.voiceLocked(role)
	if v == nil || v.Active() == 0 {
		return
	}
	debug.Log("session", "%s still has %d active notes after release, rebuilding", role, v.Active())
	if err := m.rebuildVoiceLocked(role); err != nil {
		debug.Log("session", "rebuild %s: %v", role, err)
	}
}

// rebuildVoiceLocked replaces one voice with a fresh instance of the
// current preset, carrying the session volume and effect over.
func (m *Manager) rebuildVoiceLocked(role string) error {
	old := m.voiceLocked(role)
	if old != nil {
		if err := old.Close(); err != nil {
			debug.Log("session", "close %s: %v", role, err)
		}
	}
	v, err := m.newVoice(m.preset, m.opts)
	if err != nil {
		debug.Log("session", "open %s voice (%s): %v", role, m.preset.Key, err)
		v = nil
	}
	st := &m.right
	if role == harmonyRole {
		st = &m.left
		m.harmony = v
	} else {
		m.melody = v
	}
	if v == nil {
		return err
	}
	if verr := v.SetVolume(m.volumeDB); verr != nil {
		debug.Log("session", "set volume: %v", verr)
	}
	if st.effect > 0 {
		name := melodyEffect
		if role == harmonyRole {
			name = harmonyEffect
		}
		if eerr := v.SetEffect(name, st.effect, 0); eerr != nil {
			debug.Log("session", "set effect: %v", eerr)
		}
	}
	return nil
}

func (m *Manager) voiceLocked(role string) voice.Voice {
	if role == harmonyRole {
		return m.harmony
	}
	return m.melody
}

// SetPreset switches both voices to a new instrument. Sounding notes
// are released first; the rebuild runs after a short window so the
// releases can land. A newer preset change cancels a pending rebuild.
func (m *Manager) SetPreset(key string) {
	m.mu.Lock()
	p := voice.LookupPreset(key)
	if p.Key == m.settings.PresetKey {
		m.mu.Unlock()
		return
	}
	debug.Log("session", "preset %s -> %s", m.settings.PresetKey, p.Key)
	m.settings.PresetKey = p.Key
	m.preset = p
	m.generation++
	gen := m.generation
	for _, st := range []*handState{&m.right, &m.left} {
		if st.playing {
			m.releaseLocked(st.role, st.midi, 0)
		}
		st.reset()
	}
	m.voicing.Reset()
	m.schedule(rebuildDelay, func() { m.finishPresetSwitch(gen) })
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) finishPresetSwitch(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.generation {
		return
	}
	for _, role := range []string{melodyRole, harmonyRole} {
		if err := m.rebuildVoiceLocked(role); err != nil {
			debug.Log("session", "rebuild %s: %v", role, err)
		}
	}
}

// NextPreset cycles to the following preset in key order.
func (m *Manager) NextPreset() {
	m.mu.Lock()
	keys := voice.PresetKeys()
	cur := m.settings.PresetKey
	m.mu.Unlock()
	for i, k := range keys {
		if k == cur {
			m.SetPreset(keys[(i+1)%len(keys)])
			return
		}
	}
	m.SetPreset(keys[0])
}

// SetRoot changes the key root. Sounding pitches migrate on the next
// hand movement; the voicing memory resets so the next chord is voiced
// fresh.
func (m *Manager) SetRoot(root string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := theory.ParsePitchClass(root); !ok {
		return
	}
	if root == m.settings.Root {
		return
	}
	m.settings.Root = root
	m.resetPitchTrackingLocked()
	m.notify()
}

// SetScale changes the scale, same migration rules as SetRoot.
func (m *Manager) SetScale(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := theory.LookupScale(name); !ok {
		return
	}
	if name == m.settings.Scale {
		return
	}
	m.settings.Scale = name
	m.resetPitchTrackingLocked()
	m.notify()
}

// ShiftOctave moves the melody octave by delta, clamped to the playable
// range.
func (m *Manager) ShiftOctave(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := util.Clamp(m.settings.Octave+delta, MinMelodyOctave, MaxMelodyOctave)
	if o == m.settings.Octave {
		return
	}
	m.settings.Octave = o
	m.resetPitchTrackingLocked()
	m.notify()
}

// ToggleSeventh switches between triads and seventh chords.
func (m *Manager) ToggleSeventh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.UseSeventh = !m.settings.UseSeventh
	m.left.posGate.Reset()
	m.notify()
}

// ToggleVoiceLeading switches chord voicing smoothing on or off.
func (m *Manager) ToggleVoiceLeading() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.VoiceLeading = !m.settings.VoiceLeading
	m.voicing.Reset()
	m.notify()
}

// SetEnabled gates audio output. Disabling releases everything.
func (m *Manager) SetEnabled(on bool) {
	m.mu.Lock()
	if on == m.enabled {
		m.mu.Unlock()
		return
	}
	m.enabled = on
	if !on {
		m.stopHandLocked(&m.right)
		m.stopHandLocked(&m.left)
	}
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) resetPitchTrackingLocked() {
	m.voicing.Reset()
	m.right.posGate.Reset()
	m.left.posGate.Reset()
}

// Settings returns a copy of the current settings.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Snapshot returns a copy of the externally visible state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Root:         m.settings.Root,
		Scale:        m.settings.Scale,
		Octave:       m.settings.Octave,
		Preset:       m.preset.Key,
		PresetName:   m.preset.Name,
		UseSeventh:   m.settings.UseSeventh,
		VoiceLeading: m.settings.VoiceLeading,
		Enabled:      m.enabled,
		VolumeDB:     m.volumeDB,
		Dynamic:      string(gesture.DynamicFor(gesture.VelocityFromVolume(m.volumeDB))),
		Melody:       m.right.snapshot(),
		Harmony:      m.left.snapshot(),
		Frames:       m.frames,
	}
}

func (st *handState) snapshot() HandSnapshot {
	return HandSnapshot{
		Present: st.hasWrist,
		Playing: st.playing,
		Label:   st.label,
		MIDI:    append([]uint8(nil), st.midi...),
		Effect:  st.effect,
		Changed: st.changed,
	}
}

func (m *Manager) notify() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

package session

import "time"

// HandSnapshot is the externally visible state of one hand's voice.
type HandSnapshot struct {
	Present bool      `json:"present"`
	Playing bool      `json:"playing"`
	Label   string    `json:"label,omitempty"`
	MIDI    []uint8   `json:"midi,omitempty"`
	Effect  float64   `json:"effect"`
	Changed time.Time `json:"changed,omitempty"`
}

// Snapshot is a read-only copy of session state for the TUI and the
// HTTP status endpoint. It never aliases Manager internals.
type Snapshot struct {
	Root         string       `json:"root"`
	Scale        string       `json:"scale"`
	Octave       int          `json:"octave"`
	Preset       string       `json:"preset"`
	PresetName   string       `json:"presetName"`
	UseSeventh   bool         `json:"useSeventh"`
	VoiceLeading bool         `json:"voiceLeading"`
	Enabled      bool         `json:"enabled"`
	VolumeDB     float64      `json:"volumeDb"`
	Dynamic      string       `json:"dynamic"`
	Melody       HandSnapshot `json:"melody"`
	Harmony      HandSnapshot `json:"harmony"`
	Frames       uint64       `json:"frames"`
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// MusicConfig stores the saved key settings.
type MusicConfig struct {
	Root         string `json:"root,omitempty"`
	Scale        string `json:"scale,omitempty"`
	Octave       int    `json:"octave,omitempty"`
	UseSeventh   bool   `json:"useSeventh,omitempty"`
	VoiceLeading bool   `json:"voiceLeading"`
}

// SoundConfig stores the saved instrument settings.
type SoundConfig struct {
	Preset      string `json:"preset,omitempty"`
	MIDIPort    string `json:"midiPort,omitempty"`
	MIDIChannel uint8  `json:"midiChannel,omitempty"`
	SampleDir   string `json:"sampleDir,omitempty"`
}

// TrackerConfig stores where landmark frames come from.
type TrackerConfig struct {
	ListenAddr string `json:"listenAddr,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Music   MusicConfig   `json:"music,omitempty"`
	Sound   SoundConfig   `json:"sound,omitempty"`
	Tracker TrackerConfig `json:"tracker,omitempty"`
	Debug   bool          `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Music: MusicConfig{
			Root:         "C",
			Scale:        "major",
			Octave:       4,
			VoiceLeading: true,
		},
		Sound: SoundConfig{
			Preset: "synthPad",
		},
		Tracker: TrackerConfig{
			ListenAddr: "127.0.0.1:8765",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "handsynth"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

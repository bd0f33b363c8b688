package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ShaharFullStack/TheDemo/config"
	"github.com/ShaharFullStack/TheDemo/debug"
	"github.com/ShaharFullStack/TheDemo/session"
	"github.com/ShaharFullStack/TheDemo/theme"
	"github.com/ShaharFullStack/TheDemo/tracker"
	"github.com/ShaharFullStack/TheDemo/tui"
	"github.com/ShaharFullStack/TheDemo/voice"
)

var (
	flagAddr     string
	flagPreset   string
	flagMIDIPort string
	flagNoTUI    bool
	flagDebug    bool
)

func init() {
	runCmd.Flags().StringVar(&flagAddr, "addr", "", "tracker listen address (default from config)")
	runCmd.Flags().StringVar(&flagPreset, "preset", "", "starting instrument preset")
	runCmd.Flags().StringVar(&flagMIDIPort, "midi-port", "", "MIDI output port for midi presets")
	runCmd.Flags().BoolVar(&flagNoTUI, "no-tui", false, "run headless, status via /snapshot only")
	runCmd.Flags().BoolVar(&flagDebug, "debug", false, "write a debug log to ~/.config/handsynth")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a session and listen for tracker frames",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagDebug || cfg.Debug {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		} else {
			defer debug.Disable()
		}
	}
	if flagAddr != "" {
		cfg.Tracker.ListenAddr = flagAddr
	}
	if flagPreset != "" {
		cfg.Sound.Preset = flagPreset
	}
	if flagMIDIPort != "" {
		cfg.Sound.MIDIPort = flagMIDIPort
	}

	settings := session.Settings{
		Root:         cfg.Music.Root,
		Scale:        cfg.Music.Scale,
		Octave:       cfg.Music.Octave,
		PresetKey:    cfg.Sound.Preset,
		UseSeventh:   cfg.Music.UseSeventh,
		VoiceLeading: cfg.Music.VoiceLeading,
	}
	opts := voice.Options{
		MIDIPort:    cfg.Sound.MIDIPort,
		MIDIChannel: cfg.Sound.MIDIChannel,
		SampleDir:   cfg.Sound.SampleDir,
	}

	manager := session.NewManager(settings, opts)
	if err := manager.Start(); err != nil {
		// keep going, the session runs with whichever voices opened
		fmt.Fprintf(os.Stderr, "voice: %v\n", err)
	}

	server := tracker.NewServer(cfg.Tracker.ListenAddr, manager)
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.ListenAndServe() }()

	if flagNoTUI {
		fmt.Printf("handsynth listening on %s (ctrl+c to quit)\n", cfg.Tracker.ListenAddr)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		select {
		case <-ctx.Done():
		case err := <-serverErr:
			if err != nil {
				return err
			}
		}
	} else {
		m := tui.NewModel(manager, theme.New())
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
	manager.Close()

	s := manager.Settings()
	cfg.Music = config.MusicConfig{
		Root:         s.Root,
		Scale:        s.Scale,
		Octave:       s.Octave,
		UseSeventh:   s.UseSeventh,
		VoiceLeading: s.VoiceLeading,
	}
	cfg.Sound.Preset = s.PresetKey
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "save config: %v\n", err)
	}
	return nil
}

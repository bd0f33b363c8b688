package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShaharFullStack/TheDemo/gesture"
	"github.com/ShaharFullStack/TheDemo/session"
	"github.com/ShaharFullStack/TheDemo/theme"
	"github.com/ShaharFullStack/TheDemo/theory"
	"github.com/ShaharFullStack/TheDemo/widgets"
)

type Model struct {
	Manager  *session.Manager
	Theme    *theme.Theme
	quitting bool
}

type UpdateMsg struct{}

func NewModel(manager *session.Manager, th *theme.Theme) Model {
	return Model{
		Manager: manager,
		Theme:   th,
	}
}

func ListenForUpdates(manager *session.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Manager)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Manager.Close()
			return m, tea.Quit

		case "m":
			snap := m.Manager.Snapshot()
			m.Manager.SetEnabled(!snap.Enabled)

		case "p":
			m.Manager.NextPreset()

		case "r":
			m.Manager.SetRoot(cycle(theory.RootNames(), m.Manager.Snapshot().Root))

		case "s":
			m.Manager.SetScale(cycle(theory.ScaleNames(), m.Manager.Snapshot().Scale))

		case "+", "=":
			m.Manager.ShiftOctave(1)

		case "-", "_":
			m.Manager.ShiftOctave(-1)

		case "7":
			m.Manager.ToggleSeventh()

		case "v":
			m.Manager.ToggleVoiceLeading()
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)
	}

	return m, nil
}

// keyHelp drives the help block rendered at the bottom of the view.
var keyHelp = []widgets.KeySection{
	{Keys: []widgets.KeyBinding{
		{Key: "r / s", Desc: "cycle root / scale"},
		{Key: "p", Desc: "next preset"},
		{Key: "+ / -", Desc: "melody octave"},
		{Key: "7", Desc: "toggle seventh chords"},
		{Key: "v", Desc: "toggle voice leading"},
		{Key: "m", Desc: "mute"},
		{Key: "q", Desc: "quit"},
	}},
}

// cycle returns the entry after cur, wrapping around.
func cycle(values []string, cur string) string {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	if len(values) == 0 {
		return cur
	}
	return values[0]
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Manager.Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	activeStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	state := activeStyle.Render("LIVE")
	if !snap.Enabled {
		state = warnStyle.Render("MUTED")
	}

	seventh := ""
	if snap.UseSeventh {
		seventh = " 7th"
	}
	header := headerStyle.Render(fmt.Sprintf("handsynth  %s %s  oct:%d%s  %s",
		snap.Root, snap.Scale, snap.Octave, seventh, snap.PresetName)) + "  " + state

	volNorm := gesture.Remap(snap.VolumeDB, gesture.MinVolumeDB, gesture.MaxVolumeDB, 0, 1)
	meter := widgets.RenderMeter(volNorm, 24, m.Theme.Symbols.MeterFull, m.Theme.Symbols.MeterEmpty)
	volume := dimStyle.Render("vol ") + meter +
		dimStyle.Render(fmt.Sprintf(" %+.1fdB %s", snap.VolumeDB, snap.Dynamic))

	help := dimStyle.Render(widgets.RenderKeyHelp(keyHelp))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.handLine("melody ", snap.Melody))
	out.WriteString("\n")
	out.WriteString(m.handLine("harmony", snap.Harmony))
	out.WriteString("\n\n")
	out.WriteString(volume)
	out.WriteString("\n\n")
	out.WriteString(help)
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(fmt.Sprintf("frames:%d", snap.Frames)))

	return out.String()
}

func (m Model) handLine(name string, h session.HandSnapshot) string {
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())

	marker := string(m.Theme.Symbols.HandMissing)
	if h.Present {
		marker = string(m.Theme.Symbols.HandPresent)
	}

	label := dimStyle.Render("-")
	if h.Playing {
		label = fgStyle.Render(fmt.Sprintf("%s %-8s", string(m.Theme.Symbols.Sounding), h.Label))
	} else if h.Label != "" {
		label = dimStyle.Render(fmt.Sprintf("%s %-8s", string(m.Theme.Symbols.Muted), h.Label))
	}

	colorFor := func(n uint8) [3]uint8 {
		return [3]uint8(m.Theme.Pitches.Index(int(n % 12)))
	}
	strip := widgets.RenderPitchStrip(h.MIDI, colorFor,
		m.Theme.Symbols.Sounding, m.Theme.Symbols.Muted)

	return fmt.Sprintf("%s %s  %s  %s", marker, dimStyle.Render(name), label, strip)
}

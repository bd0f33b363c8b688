package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Pitches *Palette
	Symbols Symbols
}

type Symbols struct {
	HandPresent rune // ● hand tracked
	HandMissing rune // ○ hand lost
	Sounding    rune // ♪ voice sounding
	Muted       rune // · voice idle
	MeterFull   rune // █ volume meter fill
	MeterEmpty  rune // ░ volume meter rest
}

func New() *Theme {
	return &Theme{
		Palette: DefaultPalette(),
		Pitches: PitchWheel(),
		Symbols: Symbols{
			HandPresent: '●',
			HandMissing: '○',
			Sounding:    '♪',
			Muted:       '·',
			MeterFull:   '█',
			MeterEmpty:  '░',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep violet
	RoleSurface = 0.1
	RoleMuted   = 0.25
	RoleFG      = 0.55
	RoleAccent  = 0.7
	RoleActive  = 0.8
	RoleWarning = 0.9
	RoleSuccess = 1.0 // amber
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// PitchColor returns the wheel color for a MIDI note's pitch class.
func (t *Theme) PitchColor(midi uint8) lipgloss.Color {
	return rgbToLipgloss(t.Pitches.Index(int(midi % 12)))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}

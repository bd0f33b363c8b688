package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderSwatch renders a single colored marker rune.
func RenderSwatch(color [3]uint8, r rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(string(r))
}

// RenderMeter renders a horizontal level meter. norm is 0-1.
func RenderMeter(norm float64, width int, full, empty rune) string {
	if width <= 0 {
		return ""
	}
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	filled := int(norm*float64(width) + 0.5)
	var out strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			out.WriteRune(full)
		} else {
			out.WriteRune(empty)
		}
	}
	return out.String()
}

// RenderPitchStrip renders one marker per pitch class, lighting the
// classes present in notes. colorFor maps a MIDI note to its display
// color.
func RenderPitchStrip(notes []uint8, colorFor func(uint8) [3]uint8, lit, dark rune) string {
	var active [12]bool
	var colors [12][3]uint8
	for _, n := range notes {
		pc := n % 12
		active[pc] = true
		colors[pc] = colorFor(n)
	}
	var out strings.Builder
	for pc := 0; pc < 12; pc++ {
		if pc > 0 {
			out.WriteString(" ")
		}
		if active[pc] {
			out.WriteString(RenderSwatch(colors[pc], lit))
		} else {
			out.WriteRune(dark)
		}
	}
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

package theme

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// Gradient builds an n-step palette by blending the stops in HCL space,
// which keeps perceived brightness even across the ramp.
func Gradient(name string, stops []RGB, n int) *Palette {
	if len(stops) == 0 || n < 2 {
		return &Palette{Name: name, Colors: stops}
	}
	cs := make([]colorful.Color, len(stops))
	for i, s := range stops {
		cs[i] = colorful.Color{
			R: float64(s[0]) / 255,
			G: float64(s[1]) / 255,
			B: float64(s[2]) / 255,
		}
	}
	p := &Palette{Name: name, Colors: make([]RGB, n)}
	for i := 0; i < n; i++ {
		pos := float64(i) / float64(n-1) * float64(len(cs)-1)
		j := int(pos)
		if j >= len(cs)-1 {
			p.Colors[i] = toRGB(cs[len(cs)-1])
			continue
		}
		p.Colors[i] = toRGB(cs[j].BlendHcl(cs[j+1], pos-float64(j)).Clamped())
	}
	return p
}

// DefaultPalette is the dark violet to amber ramp the TUI roles index
// into.
func DefaultPalette() *Palette {
	return Gradient("dusk", []RGB{
		{24, 10, 40},   // deep violet
		{96, 30, 110},  // purple
		{200, 60, 140}, // magenta
		{240, 120, 90}, // coral
		{250, 200, 80}, // amber
	}, 32)
}

// PitchWheel maps the twelve pitch classes around the hue circle, C at
// red, so related keys sit near each other visually.
func PitchWheel() *Palette {
	p := &Palette{Name: "pitch-wheel", Colors: make([]RGB, 12)}
	for pc := 0; pc < 12; pc++ {
		c := colorful.Hsv(float64(pc)*30, 0.65, 0.92)
		p.Colors[pc] = toRGB(c)
	}
	return p
}

func toRGB(c colorful.Color) RGB {
	r, g, b := c.RGB255()
	return RGB{r, g, b}
}

// Lookup returns interpolated color for normalized value 0-1
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	// Find the two colors to interpolate between
	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := p.Colors[i]
	c1 := p.Colors[i+1]

	return RGB{
		lerp(c0[0], c1[0], frac),
		lerp(c0[1], c1[1], frac),
		lerp(c0[2], c1[2], frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}

// Index returns color at specific index (no interpolation)
func (p *Palette) Index(i int) RGB {
	if i < 0 {
		return p.Colors[0]
	}
	if i >= len(p.Colors) {
		return p.Colors[len(p.Colors)-1]
	}
	return p.Colors[i]
}

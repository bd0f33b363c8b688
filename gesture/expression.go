package gesture

// Dynamic is a discrete loudness category derived from continuous velocity.
type Dynamic string

const (
	Pianissimo Dynamic = "pianissimo"
	Piano      Dynamic = "piano"
	MezzoPiano Dynamic = "mezzo-piano"
	MezzoForte Dynamic = "mezzo-forte"
	Forte      Dynamic = "forte"
	Fortissimo Dynamic = "fortissimo"
)

// dynamicThresholds are the ascending velocity cut points between the six
// dynamic levels.
var dynamicThresholds = []struct {
	below float64
	name  Dynamic
}{
	{0.2, Pianissimo},
	{0.35, Piano},
	{0.5, MezzoPiano},
	{0.65, MezzoForte},
	{0.8, Forte},
}

// VelocityFromVolume remaps a volume in decibels onto a [0,1] velocity.
func VelocityFromVolume(volumeDB float64) float64 {
	return Remap(volumeDB, MinVolumeDB, MaxVolumeDB, 0, 1)
}

// DynamicFor buckets a velocity into a dynamic level.
func DynamicFor(velocity float64) Dynamic {
	for _, t := range dynamicThresholds {
		if velocity < t.below {
			return t.name
		}
	}
	return Fortissimo
}

// Articulation tags understood by instrument backends. Purely advisory: an
// unsupported articulation never blocks note triggering.
const (
	ArticulationStaccato = "staccato"
	ArticulationPluck    = "pluck"
	ArticulationLegato   = "legato"
	ArticulationSustain  = "sustain"
)

// Pinch distances bounding articulation choice. Tighter than tightPinch
// asks for a short attack, wider than openHand for a connected one.
const (
	tightPinch = 0.06
	openHand   = 0.18
)

// ArticulationFor picks an articulation tag from pinch distance and hand
// speed, restricted to what the instrument declares. A tight pinch prefers
// a short or plucked articulation, an open hand legato or sustained; when
// neither is declared the instrument's first articulation wins.
func ArticulationFor(declared []string, pinch, speed float64) string {
	if len(declared) == 0 {
		return ""
	}

	supports := func(tags ...string) (string, bool) {
		for _, tag := range tags {
			for _, d := range declared {
				if d == tag {
					return tag, true
				}
			}
		}
		return "", false
	}

	// Fast hand movement reads as a short gesture too.
	if pinch <= tightPinch || speed > 1.5 {
		if tag, ok := supports(ArticulationStaccato, ArticulationPluck); ok {
			return tag
		}
	}
	if pinch >= openHand {
		if tag, ok := supports(ArticulationLegato, ArticulationSustain); ok {
			return tag
		}
	}
	return declared[0]
}

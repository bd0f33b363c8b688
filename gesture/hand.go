package gesture

import (
	"math"
	"strings"
)

// Handedness identifies which hand a frame record belongs to.
// Melody is played by the right hand, harmony by the left.
type Handedness string

const (
	Left  Handedness = "left"
	Right Handedness = "right"
)

// Landmark is a tracker coordinate in [0,1] normalized image space.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmark indices used by the core. The tracker delivers the full 21-point
// hand model; everything except wrist, thumb tip and index tip is ignored.
const (
	WristIndex    = 0
	ThumbTipIndex = 4
	IndexTipIndex = 8
)

// Hand is one tracked hand in a frame.
type Hand struct {
	Handedness Handedness `json:"handedness"`
	Landmarks  []Landmark `json:"landmarks"`
}

// Frame is everything the tracker saw in one camera frame: zero, one or two
// hands.
type Frame struct {
	Hands []Hand `json:"hands"`
}

// HandFor returns the hand with the given handedness, if present.
// Matching is case insensitive because trackers disagree on "left" vs
// "Left".
func (f Frame) HandFor(h Handedness) (Hand, bool) {
	for _, hand := range f.Hands {
		if strings.EqualFold(string(hand.Handedness), string(h)) {
			return hand, true
		}
	}
	return Hand{}, false
}

// Wrist returns the wrist landmark, the hand's position anchor.
func (h Hand) Wrist() Landmark {
	if len(h.Landmarks) <= WristIndex {
		return Landmark{}
	}
	return h.Landmarks[WristIndex]
}

// PinchDistance is the Euclidean distance between thumb tip and index tip
// in normalized space.
func (h Hand) PinchDistance() float64 {
	if len(h.Landmarks) <= IndexTipIndex {
		return 0
	}
	t := h.Landmarks[ThumbTipIndex]
	i := h.Landmarks[IndexTipIndex]
	dx := t.X - i.X
	dy := t.Y - i.Y
	dz := t.Z - i.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

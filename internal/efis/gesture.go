package efis

import "fmt"

// TouchScaleFactor converts a drag in pixels to degrees of rotation,
// calibrated to a 320 pixel reference dimension.
const TouchScaleFactor = float32(180.0 / 320.0)

// Phase is the phase of a pointer sample.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
	PhaseCancel
)

func (p Phase) String() string {
	switch p {
	case PhaseDown:
		return "down"
	case PhaseMove:
		return "move"
	case PhaseUp:
		return "up"
	case PhaseCancel:
		return "cancel"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Sample is one pointer event on the instrument surface.
type Sample struct {
	X, Y  float32
	Phase Phase
}

// Result is what the interpreter produced for one sample.
type Result struct {
	// ActionDown is set on a Down; Down holds the raw position.
	ActionDown bool
	Down       Point

	// Rotate is set on a Move while tracking; DX/DY are already scaled by
	// TouchScaleFactor.
	Rotate bool
	DX, DY float32
}

// Gesture turns pointer samples into rotation deltas. It is not safe for
// concurrent use; Display serializes access.
type Gesture struct {
	width, height int

	tracking bool
	ref      Point
	prevX    float32
	prevY    float32
}

// NewGesture returns an idle interpreter for a width x height surface.
func NewGesture(width, height int) *Gesture {
	return &Gesture{width: width, height: height}
}

// Resize updates the surface size used for the midline tests.
func (g *Gesture) Resize(width, height int) {
	g.width, g.height = width, height
}

// Tracking reports whether a pointer is down.
func (g *Gesture) Tracking() bool {
	return g.tracking
}

// Reference returns the point where the current gesture went down.
func (g *Gesture) Reference() (Point, bool) {
	return g.ref, g.tracking
}

// Handle advances the state machine by one sample. Every sample, in any
// phase, becomes the previous position for the next one.
func (g *Gesture) Handle(s Sample) Result {
	var r Result

	switch s.Phase {
	case PhaseDown:
		g.tracking = true
		g.ref = Point{X: s.X, Y: s.Y}
		r.ActionDown = true
		r.Down = g.ref

	case PhaseMove:
		if g.tracking {
			dx := s.X - g.prevX
			dy := s.Y - g.prevY

			// Below the horizontal midline the horizontal sense flips.
			if s.Y > float32(g.height/2) {
				dx = -dx
			}
			// Left of the vertical midline the vertical sense flips.
			if s.X < float32(g.width/2) {
				dy = -dy
			}

			r.Rotate = true
			r.DX = dx * TouchScaleFactor
			r.DY = dy * TouchScaleFactor
		}

	case PhaseUp, PhaseCancel:
		g.tracking = false
		g.ref = Point{}
	}

	g.prevX, g.prevY = s.X, s.Y
	return r
}

// Package layout places the PFD instruments on a surface and resolves
// touches against that placement.
package layout

import (
	"image"
	"sync"

	"efis-pfd/internal/efis"
)

const (
	TopBarHeight = 24
	margin       = 10

	asiWidth = 60
	altWidth = 70
	vsiWidth = 30

	waypointW = 170
	waypointH = 56

	minInstrument = 40
)

// Panel is the placement of every instrument for one surface size.
type Panel struct {
	Width, Height int

	TopBar   image.Rectangle
	AH       image.Rectangle
	ASI      image.Rectangle
	ALT      image.Rectangle
	VSI      image.Rectangle
	DI       image.Rectangle
	Waypoint image.Rectangle
	Messages image.Rectangle
}

// Compute lays out a width x height surface: tapes either side of a square
// attitude indicator, the direction indicator centred beneath it.
func Compute(width, height int) Panel {
	p := Panel{Width: width, Height: height}
	p.TopBar = image.Rect(0, 0, width, TopBarHeight)

	diR := height / 6
	if diR < minInstrument {
		diR = minInstrument
	}

	availW := width - 2*margin - asiWidth - altWidth - vsiWidth - 2*margin
	availH := height - TopBarHeight - 2*diR - 3*margin
	size := availW
	if availH < size {
		size = availH
	}
	if size < minInstrument {
		size = minInstrument
	}

	cx := width / 2
	top := TopBarHeight + margin
	p.AH = image.Rect(cx-size/2, top, cx-size/2+size, top+size)

	p.ASI = image.Rect(0, top, asiWidth, top+size)
	p.VSI = image.Rect(width-vsiWidth, top, width, top+size)
	p.ALT = image.Rect(p.VSI.Min.X-margin/2-altWidth, top, p.VSI.Min.X-margin/2, top+size)

	diCY := height - diR - margin
	p.DI = image.Rect(cx-diR, diCY-diR, cx+diR, diCY+diR)

	p.Waypoint = image.Rect(margin, height-waypointH-margin, margin+waypointW, height-margin)
	p.Messages = image.Rect(cx+diR+margin, p.DI.Min.Y, width-margin, height-margin)
	return p
}

// Instrument returns the area a red X covers for inst. The overall EFIS
// covers the whole surface.
func (p Panel) Instrument(inst efis.Instrument) image.Rectangle {
	switch inst {
	case efis.InstrumentAH:
		return p.AH
	case efis.InstrumentALT:
		return p.ALT.Union(p.VSI)
	case efis.InstrumentASI:
		return p.ASI
	case efis.InstrumentDI:
		return p.DI
	}
	return image.Rect(0, 0, p.Width, p.Height)
}

// Snapshotter is anything that can produce an instrument state snapshot.
type Snapshotter interface {
	Snapshot() efis.State
}

// WaypointPicker resolves the last action-down position against the
// waypoint box of the current panel.
type WaypointPicker struct {
	src Snapshotter

	mu    sync.RWMutex
	panel Panel
}

var _ efis.WaypointSelector = (*WaypointPicker)(nil)

func NewWaypointPicker(src Snapshotter, panel Panel) *WaypointPicker {
	return &WaypointPicker{src: src, panel: panel}
}

// SetPanel replaces the placement after a resize.
func (w *WaypointPicker) SetPanel(p Panel) {
	w.mu.Lock()
	w.panel = p
	w.mu.Unlock()
}

// SelectedWaypoint returns the active waypoint when the last action-down
// landed in the waypoint box, "" otherwise.
func (w *WaypointPicker) SelectedWaypoint() string {
	st := w.src.Snapshot()
	if !st.HasActionDown || st.Waypoint == "" {
		return ""
	}

	w.mu.RLock()
	box := w.panel.Waypoint
	w.mu.RUnlock()

	pt := image.Pt(int(st.ActionDown.X), int(st.ActionDown.Y))
	if !pt.In(box) {
		return ""
	}
	return st.Waypoint
}

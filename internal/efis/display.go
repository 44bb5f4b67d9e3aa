package efis

import "sync"

// Display is the instrument surface: the coordination point between the
// update feed, touch input and the render stage. Every setter forwards to
// the Renderer and then requests exactly one redraw, whether or not the
// value changed.
type Display struct {
	r   Renderer
	inv Invalidator

	mu      sync.Mutex // guards gesture, rot and sel
	gesture *Gesture
	rot     RotationConsumer
	sel     WaypointSelector
}

var _ Renderer = (*Display)(nil)

// NewDisplay wires a display for a width x height surface.
func NewDisplay(r Renderer, inv Invalidator, width, height int) *Display {
	return &Display{
		r:       r,
		inv:     inv,
		gesture: NewGesture(width, height),
	}
}

// SetRotationConsumer attaches the receiver of touch rotation deltas. A nil
// consumer detaches it; deltas are still computed.
func (d *Display) SetRotationConsumer(c RotationConsumer) {
	d.mu.Lock()
	d.rot = c
	d.mu.Unlock()
}

// SetWaypointSelector attaches the handle used by SelectedWaypoint.
func (d *Display) SetWaypointSelector(s WaypointSelector) {
	d.mu.Lock()
	d.sel = s
	d.mu.Unlock()
}

// SelectedWaypoint returns the waypoint picked on the surface, or "" when no
// selector is attached.
func (d *Display) SelectedWaypoint() string {
	d.mu.Lock()
	sel := d.sel
	d.mu.Unlock()
	if sel == nil {
		return ""
	}
	return sel.SelectedWaypoint()
}

// Resize tells the display about a new surface size.
func (d *Display) Resize(width, height int) {
	d.mu.Lock()
	d.gesture.Resize(width, height)
	d.mu.Unlock()
	d.inv.RequestRender()
}

// OnTouch is the touch entry point for the host toolkit. It always claims
// the event and always requests a redraw, so a finger on the glass keeps
// the display live even before any instrument value changes.
func (d *Display) OnTouch(x, y float32, phase Phase) bool {
	d.mu.Lock()
	res := d.gesture.Handle(Sample{X: x, Y: y, Phase: phase})
	rot := d.rot
	d.mu.Unlock()

	if res.ActionDown {
		d.r.SetActionDown(res.Down.X, res.Down.Y)
	}
	if res.Rotate && rot != nil {
		rot.Rotate(res.DX, res.DY)
	}

	d.inv.RequestRender()
	return true
}

func (d *Display) SetPitch(deg float32) {
	d.r.SetPitch(deg)
	d.inv.RequestRender()
}

func (d *Display) SetRoll(deg float32) {
	d.r.SetRoll(deg)
	d.inv.RequestRender()
}

// SetHeading sets the heading / course indicator.
func (d *Display) SetHeading(deg float32) {
	d.r.SetHeading(deg)
	d.inv.RequestRender()
}

// SetALT sets the altimeter.
func (d *Display) SetALT(value int) {
	d.r.SetALT(value)
	d.inv.RequestRender()
}

// SetIAS sets the airspeed indicator.
func (d *Display) SetIAS(value float32) {
	d.r.SetIAS(value)
	d.inv.RequestRender()
}

// SetVSI sets the vertical speed indicator.
func (d *Display) SetVSI(value int) {
	d.r.SetVSI(value)
	d.inv.RequestRender()
}

// SetFPV sets the flight path vector offsets.
func (d *Display) SetFPV(x, y float32) {
	d.r.SetFPV(x, y)
	d.inv.RequestRender()
}

func (d *Display) SetGForce(g float32) {
	d.r.SetGForce(g)
	d.inv.RequestRender()
}

func (d *Display) SetBatteryPct(pct float32) {
	d.r.SetBatteryPct(pct)
	d.inv.RequestRender()
}

func (d *Display) SetSlip(slip float32) {
	d.r.SetSlip(slip)
	d.inv.RequestRender()
}

func (d *Display) SetTurn(rate float32) {
	d.r.SetTurn(rate)
	d.inv.RequestRender()
}

func (d *Display) SetWPT(id string) {
	d.r.SetWPT(id)
	d.inv.RequestRender()
}

func (d *Display) SetDME(dme float32) {
	d.r.SetDME(dme)
	d.inv.RequestRender()
}

func (d *Display) SetRelBrg(brg float32) {
	d.r.SetRelBrg(brg)
	d.inv.RequestRender()
}

func (d *Display) SetMSG(line int, s string) {
	d.r.SetMSG(line, s)
	d.inv.RequestRender()
}

//
// Red X's
//

func (d *Display) SetServiceability(inst Instrument, s ServiceState) {
	d.r.SetServiceability(inst, s)
	d.inv.RequestRender()
}

// SetServiceable clears the fault overlay on inst.
func (d *Display) SetServiceable(inst Instrument) {
	d.SetServiceability(inst, Serviceable)
}

// SetUnserviceable puts the fault overlay on inst.
func (d *Display) SetUnserviceable(inst Instrument) {
	d.SetServiceability(inst, Unserviceable)
}

func (d *Display) SetLatLon(lat, lon float32) {
	d.r.SetLatLon(lat, lon)
	d.inv.RequestRender()
}

func (d *Display) SetDisplayFPV(on bool) {
	d.r.SetDisplayFPV(on)
	d.inv.RequestRender()
}

func (d *Display) SetDisplayAirport(on bool) {
	d.r.SetDisplayAirport(on)
	d.inv.RequestRender()
}

func (d *Display) SetCalibrate(active bool, msg string) {
	d.r.SetCalibrate(active, msg)
	d.inv.RequestRender()
}

func (d *Display) SetFlightDirector(active bool, pitch, roll float32) {
	d.r.SetFlightDirector(active, pitch, roll)
	d.inv.RequestRender()
}

func (d *Display) SetDemoMode(active bool, msg string) {
	d.r.SetDemoMode(active, msg)
	d.inv.RequestRender()
}

func (d *Display) SetPref(key PrefKey, on bool) {
	d.r.SetPref(key, on)
	d.inv.RequestRender()
}

func (d *Display) SetActionDown(x, y float32) {
	d.r.SetActionDown(x, y)
	d.inv.RequestRender()
}

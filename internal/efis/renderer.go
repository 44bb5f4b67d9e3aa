package efis

// Renderer is the parameter-setting contract of the drawing stage. Every
// method is a plain assignment: it never fails and never blocks on a frame.
// Store is the canonical implementation; Display implements it too by
// forwarding to a Renderer and requesting a redraw.
type Renderer interface {
	SetPitch(deg float32)
	SetRoll(deg float32)
	SetHeading(deg float32)
	SetALT(value int)
	SetIAS(value float32)
	SetVSI(value int)
	SetFPV(x, y float32)
	SetGForce(g float32)
	SetBatteryPct(pct float32)
	SetSlip(slip float32)
	SetTurn(rate float32)
	SetWPT(id string)
	SetDME(dme float32)
	SetRelBrg(brg float32)
	SetMSG(line int, s string)
	SetServiceability(inst Instrument, s ServiceState)
	SetLatLon(lat, lon float32)
	SetDisplayFPV(on bool)
	SetDisplayAirport(on bool)
	SetCalibrate(active bool, msg string)
	SetFlightDirector(active bool, pitch, roll float32)
	SetDemoMode(active bool, msg string)
	SetPref(key PrefKey, on bool)
	SetActionDown(x, y float32)
}

// Invalidator receives "a redraw is needed" requests.
type Invalidator interface {
	RequestRender()
}

// RotationConsumer receives scaled rotation deltas from touch drags.
type RotationConsumer interface {
	Rotate(dx, dy float32)
}

// WaypointSelector resolves the waypoint the pilot last touched. It is the
// only view of the drawing stage handed to code outside the display.
type WaypointSelector interface {
	SelectedWaypoint() string
}

package efis

import "sync"

// Store holds the current value of every instrument parameter. Each field
// group has its own lock so a writer never stalls an unrelated update, and
// paired fields (lat/lon, FPV, flight director) are never observed half
// written. There is no cross-group transaction.
type Store struct {
	attitude struct {
		sync.RWMutex
		pitch, roll float32
	}
	heading struct {
		sync.RWMutex
		deg float32
	}
	air struct {
		sync.RWMutex
		alt int
		ias float32
		vsi int
	}
	fpv struct {
		sync.RWMutex
		p Point
	}
	gforce struct {
		sync.RWMutex
		g float32
	}
	battery struct {
		sync.RWMutex
		pct float32
	}
	slip struct {
		sync.RWMutex
		ball float32
	}
	turn struct {
		sync.RWMutex
		rate float32
	}
	nav struct {
		sync.RWMutex
		wpt    string
		dme    float32
		relBrg float32
	}
	position struct {
		sync.RWMutex
		lat, lon float32
	}
	director struct {
		sync.RWMutex
		fd FlightDirector
	}
	modes struct {
		sync.RWMutex
		calibrating, demo          Mode
		displayFPV, displayAirport bool
	}
	messages struct {
		sync.RWMutex
		lines map[int]string
	}
	service struct {
		sync.RWMutex
		state [numInstruments]ServiceState
	}
	prefs struct {
		sync.RWMutex
		m map[PrefKey]bool
	}
	touch struct {
		sync.RWMutex
		p   Point
		set bool
	}
}

var _ Renderer = (*Store)(nil)

// NewStore returns a store with display defaults: every instrument
// serviceable, demo and calibrating off.
func NewStore() *Store {
	s := &Store{}
	s.messages.lines = make(map[int]string)
	s.prefs.m = make(map[PrefKey]bool)
	return s
}

func (s *Store) SetPitch(deg float32) {
	s.attitude.Lock()
	s.attitude.pitch = deg
	s.attitude.Unlock()
}

func (s *Store) SetRoll(deg float32) {
	s.attitude.Lock()
	s.attitude.roll = deg
	s.attitude.Unlock()
}

func (s *Store) SetHeading(deg float32) {
	s.heading.Lock()
	s.heading.deg = deg
	s.heading.Unlock()
}

func (s *Store) SetALT(value int) {
	s.air.Lock()
	s.air.alt = value
	s.air.Unlock()
}

func (s *Store) SetIAS(value float32) {
	s.air.Lock()
	s.air.ias = value
	s.air.Unlock()
}

func (s *Store) SetVSI(value int) {
	s.air.Lock()
	s.air.vsi = value
	s.air.Unlock()
}

func (s *Store) SetFPV(x, y float32) {
	s.fpv.Lock()
	s.fpv.p = Point{X: x, Y: y}
	s.fpv.Unlock()
}

func (s *Store) SetGForce(g float32) {
	s.gforce.Lock()
	s.gforce.g = g
	s.gforce.Unlock()
}

func (s *Store) SetBatteryPct(pct float32) {
	s.battery.Lock()
	s.battery.pct = pct
	s.battery.Unlock()
}

func (s *Store) SetSlip(slip float32) {
	s.slip.Lock()
	s.slip.ball = slip
	s.slip.Unlock()
}

func (s *Store) SetTurn(rate float32) {
	s.turn.Lock()
	s.turn.rate = rate
	s.turn.Unlock()
}

func (s *Store) SetWPT(id string) {
	s.nav.Lock()
	s.nav.wpt = id
	s.nav.Unlock()
}

func (s *Store) SetDME(dme float32) {
	s.nav.Lock()
	s.nav.dme = dme
	s.nav.Unlock()
}

// SetRelBrg sets the relative bearing to the active waypoint. The feed also
// uses this slot as a ground-speed proxy.
func (s *Store) SetRelBrg(brg float32) {
	s.nav.Lock()
	s.nav.relBrg = brg
	s.nav.Unlock()
}

// SetMSG writes one message line. Lines are sparse; an empty string is kept
// as an empty line rather than deleting the slot.
func (s *Store) SetMSG(line int, msg string) {
	s.messages.Lock()
	s.messages.lines[line] = msg
	s.messages.Unlock()
}

// SetServiceability moves inst to state st. Unknown instruments are
// ignored.
func (s *Store) SetServiceability(inst Instrument, st ServiceState) {
	if inst < 0 || inst >= numInstruments {
		return
	}
	s.service.Lock()
	s.service.state[inst] = st
	s.service.Unlock()
}

func (s *Store) SetLatLon(lat, lon float32) {
	s.position.Lock()
	s.position.lat, s.position.lon = lat, lon
	s.position.Unlock()
}

func (s *Store) SetDisplayFPV(on bool) {
	s.modes.Lock()
	s.modes.displayFPV = on
	s.modes.Unlock()
}

func (s *Store) SetDisplayAirport(on bool) {
	s.modes.Lock()
	s.modes.displayAirport = on
	s.modes.Unlock()
}

func (s *Store) SetCalibrate(active bool, msg string) {
	s.modes.Lock()
	s.modes.calibrating = Mode{Active: active, Message: msg}
	s.modes.Unlock()
}

func (s *Store) SetDemoMode(active bool, msg string) {
	s.modes.Lock()
	s.modes.demo = Mode{Active: active, Message: msg}
	s.modes.Unlock()
}

func (s *Store) SetFlightDirector(active bool, pitch, roll float32) {
	s.director.Lock()
	s.director.fd = FlightDirector{Active: active, Pitch: pitch, Roll: roll}
	s.director.Unlock()
}

func (s *Store) SetPref(key PrefKey, on bool) {
	s.prefs.Lock()
	s.prefs.m[key] = on
	s.prefs.Unlock()
}

// SetActionDown records where the last touch went down.
func (s *Store) SetActionDown(x, y float32) {
	s.touch.Lock()
	s.touch.p = Point{X: x, Y: y}
	s.touch.set = true
	s.touch.Unlock()
}

// Snapshot copies the current state. Each field group is read under its own
// lock, so a snapshot may mix groups from slightly different moments but
// never a half-written group.
func (s *Store) Snapshot() State {
	var st State

	s.attitude.RLock()
	st.Pitch, st.Roll = s.attitude.pitch, s.attitude.roll
	s.attitude.RUnlock()

	s.heading.RLock()
	st.Heading = s.heading.deg
	s.heading.RUnlock()

	s.air.RLock()
	st.Altitude, st.Airspeed, st.VerticalSpeed = s.air.alt, s.air.ias, s.air.vsi
	s.air.RUnlock()

	s.fpv.RLock()
	st.FPV = s.fpv.p
	s.fpv.RUnlock()

	s.gforce.RLock()
	st.GForce = s.gforce.g
	s.gforce.RUnlock()

	s.battery.RLock()
	st.Battery = s.battery.pct
	s.battery.RUnlock()

	s.slip.RLock()
	st.Slip = s.slip.ball
	s.slip.RUnlock()

	s.turn.RLock()
	st.TurnRate = s.turn.rate
	s.turn.RUnlock()

	s.nav.RLock()
	st.Waypoint, st.DME, st.RelBearing = s.nav.wpt, s.nav.dme, s.nav.relBrg
	s.nav.RUnlock()

	s.position.RLock()
	st.Lat, st.Lon = s.position.lat, s.position.lon
	s.position.RUnlock()

	s.director.RLock()
	st.Director = s.director.fd
	s.director.RUnlock()

	s.modes.RLock()
	st.Calibrating, st.Demo = s.modes.calibrating, s.modes.demo
	st.DisplayFPV, st.DisplayAirport = s.modes.displayFPV, s.modes.displayAirport
	s.modes.RUnlock()

	s.messages.RLock()
	st.Messages = make(map[int]string, len(s.messages.lines))
	for k, v := range s.messages.lines {
		st.Messages[k] = v
	}
	s.messages.RUnlock()

	s.service.RLock()
	st.Service = s.service.state
	s.service.RUnlock()

	s.prefs.RLock()
	st.Prefs = make(map[PrefKey]bool, len(s.prefs.m))
	for k, v := range s.prefs.m {
		st.Prefs[k] = v
	}
	s.prefs.RUnlock()

	s.touch.RLock()
	st.ActionDown, st.HasActionDown = s.touch.p, s.touch.set
	s.touch.RUnlock()

	return st
}

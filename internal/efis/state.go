package efis

import "fmt"

// Instrument names a sub-instrument that carries its own serviceability flag.
type Instrument int

const (
	InstrumentEFIS Instrument = iota // overall display
	InstrumentAH                     // artificial horizon
	InstrumentALT                    // altimeter
	InstrumentASI                    // airspeed indicator
	InstrumentDI                     // direction indicator

	numInstruments
)

// Instruments lists every sub-instrument in display order.
var Instruments = []Instrument{InstrumentEFIS, InstrumentAH, InstrumentALT, InstrumentASI, InstrumentDI}

var instrumentNames = [numInstruments]string{"efis", "ah", "alt", "asi", "di"}

func (i Instrument) String() string {
	if i < 0 || i >= numInstruments {
		return fmt.Sprintf("Instrument(%d)", int(i))
	}
	return instrumentNames[i]
}

// ParseInstrument maps a short name ("efis", "ah", "alt", "asi", "di") to
// an Instrument.
func ParseInstrument(s string) (Instrument, bool) {
	for i, n := range instrumentNames {
		if n == s {
			return Instrument(i), true
		}
	}
	return 0, false
}

// ServiceState is the fault-indication state of one sub-instrument. The
// zero value is Serviceable.
type ServiceState int

const (
	Serviceable ServiceState = iota
	Unserviceable
)

func (s ServiceState) String() string {
	if s == Unserviceable {
		return "unserviceable"
	}
	return "serviceable"
}

// PrefKey identifies a boolean user preference.
type PrefKey string

const (
	PrefInfoPage        PrefKey = "info_page"
	PrefFlightDirector  PrefKey = "flight_director"
	PrefRemoteIndicator PrefKey = "remote_indicator"
	PrefAltitudeFeet    PrefKey = "altitude_feet"
)

// PrefKeys lists the known preferences.
var PrefKeys = []PrefKey{PrefInfoPage, PrefFlightDirector, PrefRemoteIndicator, PrefAltitudeFeet}

// Point is a screen or offset position.
type Point struct {
	X, Y float32
}

// FlightDirector holds the command bars.
type FlightDirector struct {
	Active bool
	Pitch  float32
	Roll   float32
}

// Mode is a flag with an accompanying banner message.
type Mode struct {
	Active  bool
	Message string
}

// State is a point-in-time copy of every instrument parameter. It is what
// the render stage reads; it shares nothing with the store it came from.
type State struct {
	Pitch   float32
	Roll    float32
	Heading float32

	Altitude      int
	Airspeed      float32
	VerticalSpeed int

	FPV      Point
	Slip     float32
	TurnRate float32
	GForce   float32
	Battery  float32

	Waypoint    string
	DME         float32
	RelBearing  float32
	Lat, Lon    float32
	Director    FlightDirector
	Calibrating Mode
	Demo        Mode

	DisplayFPV     bool
	DisplayAirport bool

	Messages      map[int]string
	Service       [numInstruments]ServiceState
	Prefs         map[PrefKey]bool
	ActionDown    Point
	HasActionDown bool
}

// Serviceable reports whether inst reads Serviceable in this snapshot.
func (s State) Serviceable(inst Instrument) bool {
	if inst < 0 || inst >= numInstruments {
		return true
	}
	return s.Service[inst] == Serviceable
}

// Pref returns the value of a preference, false when unset.
func (s State) Pref(key PrefKey) bool {
	return s.Prefs[key]
}

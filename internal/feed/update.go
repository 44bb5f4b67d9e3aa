package feed

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"efis-pfd/internal/efis"
)

// Update type names carried in the "type" field of every feed message.
const (
	TypeAttitude       = "attitude"
	TypeHeading        = "heading"
	TypeAltitude       = "altitude"
	TypeAirspeed       = "airspeed"
	TypeVSI            = "vsi"
	TypeFPV            = "fpv"
	TypeGForce         = "gforce"
	TypeBattery        = "battery"
	TypeSlip           = "slip"
	TypeTurn           = "turn"
	TypeWaypoint       = "waypoint"
	TypePosition       = "position"
	TypeMessage        = "message"
	TypeServiceability = "serviceability"
	TypeFlightDirector = "flight_director"
	TypeCalibrating    = "calibrating"
	TypeDemo           = "demo"
	TypeDisplay        = "display"
	TypePref           = "pref"
)

var (
	ErrUnknownUpdate = errors.New("unknown update type")
	ErrMissingField  = errors.New("missing field")
	ErrBadField      = errors.New("bad field")
	ErrBadInstrument = errors.New("unknown instrument")
)

// fields reads typed values out of a Struct, remembering the first error so
// a decoder can pull every field and check once.
type fields struct {
	m   map[string]*structpb.Value
	err error
}

func (f *fields) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

func (f *fields) has(key string) bool {
	_, ok := f.m[key]
	return ok
}

func (f *fields) number(key string) float64 {
	v, ok := f.m[key]
	if !ok {
		f.fail(fmt.Errorf("%w: %s", ErrMissingField, key))
		return 0
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		f.fail(fmt.Errorf("%w: %s is not a number", ErrBadField, key))
		return 0
	}
	if math.IsNaN(n.NumberValue) || math.IsInf(n.NumberValue, 0) {
		f.fail(fmt.Errorf("%w: %s is not finite", ErrBadField, key))
		return 0
	}
	return n.NumberValue
}

func (f *fields) float(key string) float32 {
	return float32(f.number(key))
}

func (f *fields) int(key string) int {
	return int(math.Round(f.number(key)))
}

func (f *fields) str(key string) string {
	v, ok := f.m[key]
	if !ok {
		f.fail(fmt.Errorf("%w: %s", ErrMissingField, key))
		return ""
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		f.fail(fmt.Errorf("%w: %s is not a string", ErrBadField, key))
		return ""
	}
	return s.StringValue
}

func (f *fields) boolean(key string) bool {
	v, ok := f.m[key]
	if !ok {
		f.fail(fmt.Errorf("%w: %s", ErrMissingField, key))
		return false
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		f.fail(fmt.Errorf("%w: %s is not a bool", ErrBadField, key))
		return false
	}
	return b.BoolValue
}

// anyOf fails unless at least one of keys is present.
func (f *fields) anyOf(keys ...string) {
	for _, k := range keys {
		if f.has(k) {
			return
		}
	}
	f.fail(fmt.Errorf("%w: one of %v", ErrMissingField, keys))
}

// Apply decodes one feed message and calls the matching setters on r. It
// returns the update type. A malformed message calls no setters at all.
func Apply(r efis.Renderer, u *structpb.Struct) (string, error) {
	f := &fields{m: u.GetFields()}
	typ := f.str("type")
	if f.err != nil {
		return "", f.err
	}

	var calls []func()
	do := func(fn func()) { calls = append(calls, fn) }

	switch typ {
	case TypeAttitude:
		f.anyOf("pitch", "roll")
		if f.has("pitch") {
			p := f.float("pitch")
			do(func() { r.SetPitch(p) })
		}
		if f.has("roll") {
			rl := f.float("roll")
			do(func() { r.SetRoll(rl) })
		}

	case TypeHeading:
		h := f.float("heading")
		do(func() { r.SetHeading(h) })

	case TypeAltitude:
		alt := f.int("alt")
		do(func() { r.SetALT(alt) })

	case TypeAirspeed:
		ias := f.float("ias")
		do(func() { r.SetIAS(ias) })

	case TypeVSI:
		vs := f.int("vs")
		do(func() { r.SetVSI(vs) })

	case TypeFPV:
		x, y := f.float("x"), f.float("y")
		do(func() { r.SetFPV(x, y) })

	case TypeGForce:
		g := f.float("g")
		do(func() { r.SetGForce(g) })

	case TypeBattery:
		pct := f.float("pct")
		do(func() { r.SetBatteryPct(pct) })

	case TypeSlip:
		s := f.float("slip")
		do(func() { r.SetSlip(s) })

	case TypeTurn:
		rate := f.float("rate")
		do(func() { r.SetTurn(rate) })

	case TypeWaypoint:
		f.anyOf("id", "dme", "rel_bearing")
		if f.has("id") {
			id := f.str("id")
			do(func() { r.SetWPT(id) })
		}
		if f.has("dme") {
			dme := f.float("dme")
			do(func() { r.SetDME(dme) })
		}
		if f.has("rel_bearing") {
			brg := f.float("rel_bearing")
			do(func() { r.SetRelBrg(brg) })
		}

	case TypePosition:
		lat, lon := f.float("lat"), f.float("lon")
		do(func() { r.SetLatLon(lat, lon) })

	case TypeMessage:
		line, text := f.int("line"), f.str("text")
		do(func() { r.SetMSG(line, text) })

	case TypeServiceability:
		name, serviceable := f.str("instrument"), f.boolean("serviceable")
		inst, known := efis.ParseInstrument(name)
		if f.err == nil && !known {
			f.fail(fmt.Errorf("%w: %q", ErrBadInstrument, name))
		}
		st := efis.Serviceable
		if !serviceable {
			st = efis.Unserviceable
		}
		do(func() { r.SetServiceability(inst, st) })

	case TypeFlightDirector:
		active, p, rl := f.boolean("active"), f.float("pitch"), f.float("roll")
		do(func() { r.SetFlightDirector(active, p, rl) })

	case TypeCalibrating:
		active, text := f.boolean("active"), f.str("text")
		do(func() { r.SetCalibrate(active, text) })

	case TypeDemo:
		active, text := f.boolean("active"), f.str("text")
		do(func() { r.SetDemoMode(active, text) })

	case TypeDisplay:
		f.anyOf("fpv", "airport")
		if f.has("fpv") {
			on := f.boolean("fpv")
			do(func() { r.SetDisplayFPV(on) })
		}
		if f.has("airport") {
			on := f.boolean("airport")
			do(func() { r.SetDisplayAirport(on) })
		}

	case TypePref:
		key, on := f.str("key"), f.boolean("value")
		do(func() { r.SetPref(efis.PrefKey(key), on) })

	default:
		return typ, fmt.Errorf("%w: %q", ErrUnknownUpdate, typ)
	}

	if f.err != nil {
		return typ, fmt.Errorf("%s: %w", typ, f.err)
	}
	for _, fn := range calls {
		fn()
	}
	return typ, nil
}

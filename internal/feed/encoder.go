package feed

import (
	"google.golang.org/protobuf/types/known/structpb"

	"efis-pfd/internal/efis"
)

// Encoder turns setter calls into feed messages, one message per call. It
// lets anything written against efis.Renderer (the simulator, a sensor
// bridge) publish over the wire.
type Encoder struct {
	emit func(*structpb.Struct)
}

var _ efis.Renderer = (*Encoder)(nil)

func NewEncoder(emit func(*structpb.Struct)) *Encoder {
	return &Encoder{emit: emit}
}

func num(v float32) *structpb.Value { return structpb.NewNumberValue(float64(v)) }

func (e *Encoder) send(typ string, kv map[string]*structpb.Value) {
	kv["type"] = structpb.NewStringValue(typ)
	e.emit(&structpb.Struct{Fields: kv})
}

func (e *Encoder) SetPitch(deg float32) {
	e.send(TypeAttitude, map[string]*structpb.Value{"pitch": num(deg)})
}

func (e *Encoder) SetRoll(deg float32) {
	e.send(TypeAttitude, map[string]*structpb.Value{"roll": num(deg)})
}

func (e *Encoder) SetHeading(deg float32) {
	e.send(TypeHeading, map[string]*structpb.Value{"heading": num(deg)})
}

func (e *Encoder) SetALT(value int) {
	e.send(TypeAltitude, map[string]*structpb.Value{"alt": structpb.NewNumberValue(float64(value))})
}

func (e *Encoder) SetIAS(value float32) {
	e.send(TypeAirspeed, map[string]*structpb.Value{"ias": num(value)})
}

func (e *Encoder) SetVSI(value int) {
	e.send(TypeVSI, map[string]*structpb.Value{"vs": structpb.NewNumberValue(float64(value))})
}

func (e *Encoder) SetFPV(x, y float32) {
	e.send(TypeFPV, map[string]*structpb.Value{"x": num(x), "y": num(y)})
}

func (e *Encoder) SetGForce(g float32) {
	e.send(TypeGForce, map[string]*structpb.Value{"g": num(g)})
}

func (e *Encoder) SetBatteryPct(pct float32) {
	e.send(TypeBattery, map[string]*structpb.Value{"pct": num(pct)})
}

func (e *Encoder) SetSlip(slip float32) {
	e.send(TypeSlip, map[string]*structpb.Value{"slip": num(slip)})
}

func (e *Encoder) SetTurn(rate float32) {
	e.send(TypeTurn, map[string]*structpb.Value{"rate": num(rate)})
}

func (e *Encoder) SetWPT(id string) {
	e.send(TypeWaypoint, map[string]*structpb.Value{"id": structpb.NewStringValue(id)})
}

func (e *Encoder) SetDME(dme float32) {
	e.send(TypeWaypoint, map[string]*structpb.Value{"dme": num(dme)})
}

func (e *Encoder) SetRelBrg(brg float32) {
	e.send(TypeWaypoint, map[string]*structpb.Value{"rel_bearing": num(brg)})
}

func (e *Encoder) SetMSG(line int, s string) {
	e.send(TypeMessage, map[string]*structpb.Value{
		"line": structpb.NewNumberValue(float64(line)),
		"text": structpb.NewStringValue(s),
	})
}

func (e *Encoder) SetServiceability(inst efis.Instrument, s efis.ServiceState) {
	e.send(TypeServiceability, map[string]*structpb.Value{
		"instrument":  structpb.NewStringValue(inst.String()),
		"serviceable": structpb.NewBoolValue(s == efis.Serviceable),
	})
}

func (e *Encoder) SetLatLon(lat, lon float32) {
	e.send(TypePosition, map[string]*structpb.Value{"lat": num(lat), "lon": num(lon)})
}

func (e *Encoder) SetDisplayFPV(on bool) {
	e.send(TypeDisplay, map[string]*structpb.Value{"fpv": structpb.NewBoolValue(on)})
}

func (e *Encoder) SetDisplayAirport(on bool) {
	e.send(TypeDisplay, map[string]*structpb.Value{"airport": structpb.NewBoolValue(on)})
}

func (e *Encoder) SetCalibrate(active bool, msg string) {
	e.send(TypeCalibrating, map[string]*structpb.Value{
		"active": structpb.NewBoolValue(active),
		"text":   structpb.NewStringValue(msg),
	})
}

func (e *Encoder) SetFlightDirector(active bool, pitch, roll float32) {
	e.send(TypeFlightDirector, map[string]*structpb.Value{
		"active": structpb.NewBoolValue(active),
		"pitch":  num(pitch),
		"roll":   num(roll),
	})
}

func (e *Encoder) SetDemoMode(active bool, msg string) {
	e.send(TypeDemo, map[string]*structpb.Value{
		"active": structpb.NewBoolValue(active),
		"text":   structpb.NewStringValue(msg),
	})
}

func (e *Encoder) SetPref(key efis.PrefKey, on bool) {
	e.send(TypePref, map[string]*structpb.Value{
		"key":   structpb.NewStringValue(string(key)),
		"value": structpb.NewBoolValue(on),
	})
}

// SetActionDown is a no-op: touch positions are local to the surface that
// received them and are not published.
func (e *Encoder) SetActionDown(x, y float32) {}

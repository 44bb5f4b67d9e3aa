package feed

import (
	"context"
	"math"
	"time"

	"efis-pfd/internal/efis"
)

// SimConfig describes the synthetic flight.
type SimConfig struct {
	OriginLat float64
	OriginLon float64

	Waypoint    string
	WaypointLat float64
	WaypointLon float64

	TickHz float64

	// Calibrate is how long the "calibrating" banner stays up at start.
	Calibrate time.Duration
}

// Sim is a synthetic flight: slow S-turns, gentle pitch oscillation and a
// fixed waypoint to steer the flight director towards. It drives any
// efis.Renderer, so the same flight backs demo mode and the feed simulator.
type Sim struct {
	cfg SimConfig

	t        float64 // seconds since start
	lat, lon float64
	heading  float64 // degrees true
	alt      float64 // feet
	battery  float64
	calib    bool
}

func NewSim(cfg SimConfig) *Sim {
	if cfg.TickHz <= 0 {
		cfg.TickHz = 20
	}
	return &Sim{
		cfg:     cfg,
		lat:     cfg.OriginLat,
		lon:     cfg.OriginLon,
		alt:     3000,
		battery: 100,
	}
}

// Start puts the display into demo mode and writes the values that do not
// change during the flight.
func (s *Sim) Start(r efis.Renderer) {
	r.SetDemoMode(true, "DEMO")
	r.SetWPT(s.cfg.Waypoint)
	r.SetMSG(0, "SIMULATED FEED")
	for _, inst := range efis.Instruments {
		r.SetServiceability(inst, efis.Serviceable)
	}
	if s.cfg.Calibrate > 0 {
		s.calib = true
		r.SetCalibrate(true, "CALIBRATING")
	}
}

// Step advances the flight by dt and pushes every parameter to r.
func (s *Sim) Step(dt time.Duration, r efis.Renderer) {
	sec := dt.Seconds()
	s.t += sec

	const aoa = 2.0

	ias := 100 + 10*math.Sin(2*math.Pi*s.t/90)
	roll := 20 * math.Sin(2*math.Pi*s.t/60)
	pitch := aoa + 3*math.Sin(2*math.Pi*s.t/40)
	gamma := pitch - aoa
	slip := 0.3 * math.Sin(2*math.Pi*s.t/7)

	vs := ias * 101.27 * math.Sin(gamma*math.Pi/180) // ft/min
	s.alt = math.Max(0, s.alt+vs/60*sec)

	turn := 1091 * math.Tan(roll*math.Pi/180) / ias // deg/s
	s.heading = normalizeHeading(s.heading + turn*sec)

	// Dead reckon along the heading at ground speed = IAS (no wind).
	dist := ias * metersPerNM / 3600 * sec * math.Cos(gamma*math.Pi/180)
	hdgRad := s.heading * math.Pi / 180
	s.lat += dist * math.Cos(hdgRad) / earthRadiusM * 180 / math.Pi
	s.lon += dist * math.Sin(hdgRad) / (earthRadiusM * math.Cos(s.lat*math.Pi/180)) * 180 / math.Pi

	dme := distance(s.lat, s.lon, s.cfg.WaypointLat, s.cfg.WaypointLon) / metersPerNM
	rel := relative(bearing(s.lat, s.lon, s.cfg.WaypointLat, s.cfg.WaypointLon) - s.heading)

	s.battery = math.Max(0, s.battery-0.01*sec)

	r.SetPitch(float32(pitch))
	r.SetRoll(float32(roll))
	r.SetHeading(float32(s.heading))
	r.SetALT(int(math.Round(s.alt)))
	r.SetIAS(float32(ias))
	r.SetVSI(int(math.Round(vs)))
	r.SetFPV(float32(-slip*4), float32(-aoa))
	r.SetGForce(float32(1 / math.Cos(roll*math.Pi/180)))
	r.SetSlip(float32(slip))
	r.SetTurn(float32(turn))
	r.SetBatteryPct(float32(s.battery))
	r.SetLatLon(float32(s.lat), float32(s.lon))
	r.SetDME(float32(dme))
	r.SetRelBrg(float32(rel))
	r.SetFlightDirector(true, aoa, float32(math.Max(-25, math.Min(25, rel))))

	if s.calib && s.t >= s.cfg.Calibrate.Seconds() {
		s.calib = false
		r.SetCalibrate(false, "")
	}
}

// Run steps the flight at TickHz until ctx is done.
func (s *Sim) Run(ctx context.Context, r efis.Renderer) error {
	interval := time.Duration(float64(time.Second) / s.cfg.TickHz)
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Start(r)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Step(interval, r)
		}
	}
}

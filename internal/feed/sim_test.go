package feed

import (
	"context"
	"math"
	"testing"
	"time"

	"efis-pfd/internal/efis"
)

func testSimConfig() SimConfig {
	return SimConfig{
		OriginLat:   -22.9064,
		OriginLon:   -47.0616,
		Waypoint:    "SBKP",
		WaypointLat: -23.0074,
		WaypointLon: -47.1345,
		TickHz:      50,
		Calibrate:   time.Second,
	}
}

func TestSimStartAndStep(t *testing.T) {
	store := efis.NewStore()
	store.SetServiceability(efis.InstrumentALT, efis.Unserviceable)

	sim := NewSim(testSimConfig())
	sim.Start(store)

	st := store.Snapshot()
	if !st.Demo.Active || st.Demo.Message != "DEMO" {
		t.Errorf("demo mode not set: %+v", st.Demo)
	}
	if !st.Calibrating.Active {
		t.Errorf("expected calibrating banner at start")
	}
	if st.Waypoint != "SBKP" {
		t.Errorf("waypoint %q", st.Waypoint)
	}
	if !st.Serviceable(efis.InstrumentALT) {
		t.Errorf("start should clear red X's")
	}

	startDME := distance(-22.9064, -47.0616, -23.0074, -47.1345) / metersPerNM
	for i := 0; i < 100; i++ {
		sim.Step(20*time.Millisecond, store)
	}
	st = store.Snapshot()

	if st.Calibrating.Active {
		t.Errorf("calibrating banner should clear after 1s")
	}
	if st.Heading < 0 || st.Heading >= 360 {
		t.Errorf("heading %v out of range", st.Heading)
	}
	if st.Airspeed < 90 || st.Airspeed > 110 {
		t.Errorf("airspeed %v", st.Airspeed)
	}
	if st.Lat == -22.9064 && st.Lon == -47.0616 {
		t.Errorf("position did not move")
	}
	if math.Abs(float64(st.DME)-startDME) > 1 {
		t.Errorf("DME %v far from start distance %v after 2s", st.DME, startDME)
	}
	if st.RelBearing <= -180 || st.RelBearing > 180 {
		t.Errorf("relative bearing %v not folded", st.RelBearing)
	}
	if !st.Director.Active || st.Director.Roll < -25 || st.Director.Roll > 25 {
		t.Errorf("flight director %+v", st.Director)
	}
	if st.GForce < 1 {
		t.Errorf("g %v below 1 in a banked turn", st.GForce)
	}
	if st.Battery >= 100 || st.Battery < 99 {
		t.Errorf("battery %v", st.Battery)
	}
}

func TestSimRunStopsOnCancel(t *testing.T) {
	store := efis.NewStore()
	inv := &countingInvalidator{}
	display := efis.NewDisplay(store, inv, 400, 300)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := NewSim(testSimConfig()).Run(ctx, display); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.Snapshot().Airspeed == 0 {
		t.Errorf("no steps ran")
	}
	if inv.n.Load() == 0 {
		t.Errorf("sim updates did not request redraws")
	}
}

func TestSimRunHighTickRate(t *testing.T) {
	store := efis.NewStore()
	cfg := testSimConfig()
	cfg.TickHz = 1e10

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := NewSim(cfg).Run(ctx, store); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.Snapshot().Airspeed == 0 {
		t.Errorf("no steps ran")
	}
}

func TestGeo(t *testing.T) {
	if d := distance(0, 0, 0, 1); math.Abs(d-111195) > 50 {
		t.Errorf("1 degree of longitude at the equator = %v m", d)
	}
	tests := []struct {
		lat2, lon2, want float64
	}{
		{1, 0, 0},
		{0, 1, 90},
		{-1, 0, 180},
		{0, -1, 270},
	}
	for _, tt := range tests {
		if got := bearing(0, 0, tt.lat2, tt.lon2); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("bearing to (%v,%v) = %v, want %v", tt.lat2, tt.lon2, got, tt.want)
		}
	}
	if r := relative(350 - 10); r != -20 {
		t.Errorf("relative(340) = %v", r)
	}
	if r := relative(-190); r != 170 {
		t.Errorf("relative(-190) = %v", r)
	}
}

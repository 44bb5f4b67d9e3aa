package efis

import (
	"sync"
	"testing"
)

func TestStoreDefaults(t *testing.T) {
	st := NewStore().Snapshot()

	for _, inst := range Instruments {
		if !st.Serviceable(inst) {
			t.Errorf("%s: expected serviceable at start", inst)
		}
	}
	if st.Demo.Active || st.Calibrating.Active {
		t.Errorf("demo/calibrating should start off, got %+v / %+v", st.Demo, st.Calibrating)
	}
	if st.HasActionDown {
		t.Errorf("no touch yet, but HasActionDown is set")
	}
	if len(st.Messages) != 0 || len(st.Prefs) != 0 {
		t.Errorf("expected empty messages and prefs, got %v %v", st.Messages, st.Prefs)
	}
}

func TestStoreLastWriteWins(t *testing.T) {
	s := NewStore()

	s.SetPitch(3)
	s.SetPitch(-7.5)
	s.SetRoll(20)
	s.SetHeading(359)
	s.SetHeading(12)
	s.SetALT(1200)
	s.SetALT(-50) // no clamping at this layer
	s.SetIAS(88)
	s.SetVSI(500)
	s.SetVSI(-300)
	s.SetFPV(1, 2)
	s.SetFPV(3, 4)
	s.SetGForce(1.4)
	s.SetBatteryPct(77)
	s.SetSlip(-0.2)
	s.SetTurn(3)
	s.SetWPT("YSSY")
	s.SetWPT("")
	s.SetDME(12.5)
	s.SetRelBrg(-45)
	s.SetMSG(1, "first")
	s.SetMSG(1, "second")
	s.SetMSG(3, "")
	s.SetLatLon(-33.9, 151.2)
	s.SetLatLon(-34, 150)
	s.SetDisplayFPV(true)
	s.SetDisplayAirport(true)
	s.SetDisplayAirport(false)
	s.SetCalibrate(true, "CAL")
	s.SetDemoMode(true, "DEMO")
	s.SetFlightDirector(true, 5, -10)
	s.SetPref(PrefInfoPage, true)
	s.SetPref(PrefInfoPage, false)
	s.SetPref(PrefAltitudeFeet, true)
	s.SetActionDown(10, 20)

	st := s.Snapshot()

	checks := []struct {
		name      string
		got, want any
	}{
		{"pitch", st.Pitch, float32(-7.5)},
		{"roll", st.Roll, float32(20)},
		{"heading", st.Heading, float32(12)},
		{"alt", st.Altitude, -50},
		{"ias", st.Airspeed, float32(88)},
		{"vsi", st.VerticalSpeed, -300},
		{"fpv", st.FPV, Point{3, 4}},
		{"g", st.GForce, float32(1.4)},
		{"battery", st.Battery, float32(77)},
		{"slip", st.Slip, float32(-0.2)},
		{"turn", st.TurnRate, float32(3)},
		{"wpt", st.Waypoint, ""},
		{"dme", st.DME, float32(12.5)},
		{"relbrg", st.RelBearing, float32(-45)},
		{"msg1", st.Messages[1], "second"},
		{"lat", st.Lat, float32(-34)},
		{"lon", st.Lon, float32(150)},
		{"fpv display", st.DisplayFPV, true},
		{"apt display", st.DisplayAirport, false},
		{"cal", st.Calibrating, Mode{true, "CAL"}},
		{"demo", st.Demo, Mode{true, "DEMO"}},
		{"fd", st.Director, FlightDirector{true, 5, -10}},
		{"pref info", st.Pref(PrefInfoPage), false},
		{"pref feet", st.Pref(PrefAltitudeFeet), true},
		{"pref unset", st.Pref(PrefRemoteIndicator), false},
		{"action down", st.ActionDown, Point{10, 20}},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
	if msg, ok := st.Messages[3]; !ok || msg != "" {
		t.Errorf("empty message line should be kept, got %q %v", msg, ok)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s := NewStore()
	s.SetMSG(0, "a")
	s.SetPref(PrefInfoPage, true)

	st := s.Snapshot()
	st.Messages[0] = "mutated"
	st.Prefs[PrefInfoPage] = false

	again := s.Snapshot()
	if again.Messages[0] != "a" || !again.Pref(PrefInfoPage) {
		t.Errorf("snapshot mutation leaked into the store: %+v", again)
	}
}

func TestServiceabilityIndependent(t *testing.T) {
	s := NewStore()

	s.SetServiceability(InstrumentAH, Unserviceable)
	st := s.Snapshot()
	for _, inst := range Instruments {
		want := inst != InstrumentAH
		if st.Serviceable(inst) != want {
			t.Errorf("%s: serviceable=%v, want %v", inst, st.Serviceable(inst), want)
		}
	}

	// Oscillate; there is no terminal state.
	for i := 0; i < 5; i++ {
		s.SetServiceability(InstrumentALT, Unserviceable)
		s.SetServiceability(InstrumentALT, Serviceable)
	}
	s.SetServiceability(InstrumentEFIS, Unserviceable)
	st = s.Snapshot()
	if !st.Serviceable(InstrumentALT) || st.Serviceable(InstrumentEFIS) || st.Serviceable(InstrumentAH) {
		t.Errorf("unexpected service flags %v", st.Service)
	}

	// Out-of-range instruments are ignored.
	s.SetServiceability(Instrument(42), Unserviceable)
	if got := s.Snapshot().Service; got != st.Service {
		t.Errorf("bogus instrument changed flags: %v -> %v", st.Service, got)
	}
}

func TestParseInstrument(t *testing.T) {
	for _, inst := range Instruments {
		got, ok := ParseInstrument(inst.String())
		if !ok || got != inst {
			t.Errorf("ParseInstrument(%q) = %v, %v", inst.String(), got, ok)
		}
	}
	if _, ok := ParseInstrument("radar"); ok {
		t.Errorf("expected radar to be rejected")
	}
}

// Paired fields are always written together, so a concurrent reader must
// never see lat from one write and lon from another.
func TestStorePairedFieldsNeverTorn(t *testing.T) {
	s := NewStore()
	s.SetLatLon(0, 0)
	s.SetFlightDirector(false, 0, 0)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			v := float32(i)
			s.SetLatLon(v, -v)
			s.SetFlightDirector(i%2 == 0, v, -v)
			s.SetPitch(v) // unrelated group
		}
	}()

	for i := 0; i < 2000; i++ {
		st := s.Snapshot()
		if st.Lat != -st.Lon {
			t.Fatalf("torn lat/lon: %v %v", st.Lat, st.Lon)
		}
		if st.Director.Pitch != -st.Director.Roll {
			t.Fatalf("torn flight director: %+v", st.Director)
		}
	}
	close(stop)
	wg.Wait()
}

// Queries are made straight off the returned snapshot, which is not
// addressable.
func TestSnapshotQueries(t *testing.T) {
	s := NewStore()
	s.SetServiceability(InstrumentDI, Unserviceable)
	s.SetPref(PrefAltitudeFeet, true)

	if s.Snapshot().Serviceable(InstrumentDI) {
		t.Errorf("DI should read unserviceable")
	}
	if !s.Snapshot().Serviceable(InstrumentASI) {
		t.Errorf("ASI should read serviceable")
	}
	if !s.Snapshot().Pref(PrefAltitudeFeet) || s.Snapshot().Pref(PrefInfoPage) {
		t.Errorf("prefs %v", s.Snapshot().Prefs)
	}
}

// g-force, battery, slip and turn rate are written from separate goroutines
// and each keeps its own last value.
func TestStoreIndependentScalars(t *testing.T) {
	s := NewStore()
	const n = 500

	setters := []func(float32){s.SetGForce, s.SetBatteryPct, s.SetSlip, s.SetTurn}
	var wg sync.WaitGroup
	for k, set := range setters {
		wg.Add(1)
		go func(base float32, set func(float32)) {
			defer wg.Done()
			for i := 1; i <= n; i++ {
				set(base + float32(i))
			}
		}(float32(k*1000), set)
	}
	wg.Wait()

	st := s.Snapshot()
	cases := []struct {
		name      string
		got, want float32
	}{
		{"g", st.GForce, n},
		{"battery", st.Battery, 1000 + n},
		{"slip", st.Slip, 2000 + n},
		{"turn", st.TurnRate, 3000 + n},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

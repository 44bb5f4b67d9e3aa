package feed

import (
	"context"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"efis-pfd/internal/efis"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type countingInvalidator struct{ n atomic.Int64 }

func (c *countingInvalidator) RequestRender() { c.n.Add(1) }

// startHub serves a Hub over an in-memory listener.
func startHub(t *testing.T) (*Hub, *grpc.Server, *bufconn.Listener) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	hub := NewHub(quietLogger())
	srv := grpc.NewServer()
	Register(srv, hub)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)
	return hub, srv, lis
}

func dialer(lis *bufconn.Listener) grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClientStreamsIntoDisplay(t *testing.T) {
	hub, _, lis := startHub(t)

	// Published before anyone subscribes; must arrive via replay.
	enc := NewEncoder(hub.Publish)
	enc.SetHeading(123)
	enc.SetWPT("SBKP")

	store := efis.NewStore()
	inv := &countingInvalidator{}
	display := efis.NewDisplay(store, inv, 400, 300)

	client := NewClient("passthrough:///bufnet", display, quietLogger(), 10*time.Millisecond, dialer(lis))
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	waitFor(t, "replayed heading", func() bool { return store.Snapshot().Heading == 123 })
	if store.Snapshot().Waypoint != "SBKP" {
		t.Errorf("replayed waypoint missing")
	}
	waitFor(t, "live client", client.Live)
	if !store.Snapshot().Serviceable(efis.InstrumentEFIS) {
		t.Errorf("EFIS should be serviceable while updates arrive")
	}

	waitFor(t, "subscriber", func() bool { return hub.Subscribers() == 1 })
	enc.SetLatLon(-22.9, -47.1)
	enc.SetServiceability(efis.InstrumentAH, efis.Unserviceable)
	waitFor(t, "live position", func() bool {
		st := store.Snapshot()
		return st.Lat == -22.9 && st.Lon == -47.1 && !st.Serviceable(efis.InstrumentAH)
	})

	// A malformed update is dropped without killing the stream.
	hub.Publish(&structpb.Struct{Fields: map[string]*structpb.Value{
		"type": structpb.NewStringValue("bogus"),
	}})
	enc.SetPitch(7)
	waitFor(t, "pitch after bad update", func() bool { return store.Snapshot().Pitch == 7 })

	if inv.n.Load() == 0 {
		t.Errorf("feed updates did not request redraws")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestClientFlagsEFISWhileDisconnected(t *testing.T) {
	hub, srv, lis := startHub(t)
	enc := NewEncoder(hub.Publish)
	enc.SetALT(1000)

	store := efis.NewStore()
	client := NewClient("passthrough:///bufnet", store, quietLogger(), 10*time.Millisecond, dialer(lis))
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	waitFor(t, "first update", func() bool { return store.Snapshot().Altitude == 1000 })
	waitFor(t, "live", client.Live)

	srv.Stop()
	waitFor(t, "EFIS red X", func() bool {
		return !store.Snapshot().Serviceable(efis.InstrumentEFIS)
	})
	if client.Live() {
		t.Errorf("client still live after server stop")
	}
}

func TestHubSlots(t *testing.T) {
	hub := NewHub(quietLogger())
	enc := NewEncoder(hub.Publish)

	enc.SetPitch(1)
	enc.SetRoll(2)
	enc.SetPitch(3)
	enc.SetMSG(0, "a")
	enc.SetMSG(1, "b")
	enc.SetServiceability(efis.InstrumentAH, efis.Unserviceable)
	enc.SetServiceability(efis.InstrumentAH, efis.Serviceable)

	_, replay := hub.attach()
	// attitude/pitch, attitude/roll, message/0, message/1, serviceability/ah
	if len(replay) != 5 {
		t.Fatalf("replay has %d entries, want 5", len(replay))
	}

	store := efis.NewStore()
	for _, u := range replay {
		if _, err := Apply(store, u); err != nil {
			t.Fatalf("replay entry rejected: %v", err)
		}
	}
	st := store.Snapshot()
	if st.Pitch != 3 || st.Roll != 2 || st.Messages[0] != "a" || st.Messages[1] != "b" || !st.Serviceable(efis.InstrumentAH) {
		t.Errorf("replay state %+v", st)
	}
}

// A full attitude and a single-field attitude share the pitch; the replay
// must end on whichever was published last.
func TestHubReplaysMostRecentLast(t *testing.T) {
	hub := NewHub(quietLogger())
	enc := NewEncoder(hub.Publish)
	full := func(pitch, roll float64) *structpb.Struct {
		u, err := structpb.NewStruct(map[string]interface{}{"type": TypeAttitude, "pitch": pitch, "roll": roll})
		if err != nil {
			t.Fatal(err)
		}
		return u
	}

	hub.Publish(full(1, 1))
	enc.SetPitch(2)
	hub.Publish(full(9, 9))

	_, replay := hub.attach()
	store := efis.NewStore()
	for _, u := range replay {
		if _, err := Apply(store, u); err != nil {
			t.Fatalf("replay entry rejected: %v", err)
		}
	}
	if st := store.Snapshot(); st.Pitch != 9 || st.Roll != 9 {
		t.Errorf("replayed attitude %v/%v, want 9/9", st.Pitch, st.Roll)
	}

	enc.SetPitch(4)
	_, replay = hub.attach()
	store = efis.NewStore()
	for _, u := range replay {
		if _, err := Apply(store, u); err != nil {
			t.Fatalf("replay entry rejected: %v", err)
		}
	}
	if st := store.Snapshot(); st.Pitch != 4 || st.Roll != 9 {
		t.Errorf("replayed attitude %v/%v, want 4/9", st.Pitch, st.Roll)
	}
}

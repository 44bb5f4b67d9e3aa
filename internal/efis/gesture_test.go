package efis

import "testing"

func TestGestureQuadrants(t *testing.T) {
	// 400x300 surface: midlines at x=200, y=150.
	tests := []struct {
		name           string
		down, move     Point
		wantDX, wantDY float32
	}{
		{"upper right", Point{200, 100}, Point{210, 90}, 10, -10},
		{"lower left", Point{50, 200}, Point{60, 190}, -10, 10},
		{"upper left", Point{50, 100}, Point{60, 90}, 10, 10},
		{"lower right", Point{300, 200}, Point{310, 190}, -10, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGesture(400, 300)
			g.Handle(Sample{X: tt.down.X, Y: tt.down.Y, Phase: PhaseDown})
			r := g.Handle(Sample{X: tt.move.X, Y: tt.move.Y, Phase: PhaseMove})

			if !r.Rotate {
				t.Fatalf("move while tracking did not rotate")
			}
			if r.DX != tt.wantDX*TouchScaleFactor || r.DY != tt.wantDY*TouchScaleFactor {
				t.Errorf("got (%v, %v), want (%v, %v) scaled", r.DX, r.DY, tt.wantDX, tt.wantDY)
			}
		})
	}
}

func TestGesturePhases(t *testing.T) {
	g := NewGesture(400, 300)
	if g.Tracking() {
		t.Fatalf("new gesture should be idle")
	}

	r := g.Handle(Sample{X: 10, Y: 20, Phase: PhaseDown})
	if !r.ActionDown || r.Down != (Point{10, 20}) || r.Rotate {
		t.Errorf("down: %+v", r)
	}
	if ref, ok := g.Reference(); !ok || ref != (Point{10, 20}) {
		t.Errorf("reference %v %v", ref, ok)
	}

	for i := 0; i < 3; i++ {
		r = g.Handle(Sample{X: 10 + float32(i), Y: 20, Phase: PhaseMove})
		if !g.Tracking() || r.ActionDown {
			t.Errorf("move %d: %+v", i, r)
		}
	}

	r = g.Handle(Sample{X: 12, Y: 20, Phase: PhaseUp})
	if g.Tracking() || r.Rotate || r.ActionDown {
		t.Errorf("up: %+v tracking=%v", r, g.Tracking())
	}
	if _, ok := g.Reference(); ok {
		t.Errorf("reference should be cleared after up")
	}

	g.Handle(Sample{X: 1, Y: 1, Phase: PhaseDown})
	g.Handle(Sample{X: 1, Y: 1, Phase: PhaseCancel})
	if g.Tracking() {
		t.Errorf("cancel should return to idle")
	}
}

func TestGestureMoveWhileIdle(t *testing.T) {
	g := NewGesture(400, 300)

	r := g.Handle(Sample{X: 300, Y: 50, Phase: PhaseMove})
	if r.Rotate || r.ActionDown {
		t.Errorf("idle move emitted %+v", r)
	}

	// The idle move still became the previous position: the first tracked
	// move is measured from the Down, which overwrites it.
	g.Handle(Sample{X: 305, Y: 55, Phase: PhaseDown})
	r = g.Handle(Sample{X: 315, Y: 45, Phase: PhaseMove})
	if r.DX != 10*TouchScaleFactor || r.DY != -10*TouchScaleFactor {
		t.Errorf("got (%v, %v)", r.DX, r.DY)
	}
}

func TestGestureDeltaIsFromPreviousSample(t *testing.T) {
	g := NewGesture(400, 300)
	g.Handle(Sample{X: 250, Y: 50, Phase: PhaseDown})
	g.Handle(Sample{X: 260, Y: 50, Phase: PhaseMove})
	r := g.Handle(Sample{X: 262, Y: 50, Phase: PhaseMove})
	if r.DX != 2*TouchScaleFactor || r.DY != 0 {
		t.Errorf("got (%v, %v), want delta from last move", r.DX, r.DY)
	}
}

func TestGestureResize(t *testing.T) {
	g := NewGesture(400, 300)
	g.Resize(1000, 1000)
	g.Handle(Sample{X: 300, Y: 200, Phase: PhaseDown})
	r := g.Handle(Sample{X: 310, Y: 190, Phase: PhaseMove})
	// Now left of x=500 and above y=500: only dy flips.
	if r.DX != 10*TouchScaleFactor || r.DY != 10*TouchScaleFactor {
		t.Errorf("got (%v, %v)", r.DX, r.DY)
	}
}

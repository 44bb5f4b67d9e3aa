package layout

import (
	"image"
	"testing"

	"efis-pfd/internal/efis"
)

func TestComputeFitsSurface(t *testing.T) {
	sizes := []image.Point{{1024, 600}, {800, 480}, {480, 320}, {1920, 1080}}
	for _, sz := range sizes {
		p := Compute(sz.X, sz.Y)
		screen := image.Rect(0, 0, sz.X, sz.Y)

		for _, inst := range efis.Instruments {
			r := p.Instrument(inst)
			if r.Empty() || !r.In(screen) {
				t.Errorf("%v: %v area %v outside %v", sz, inst, r, screen)
			}
		}
		if p.AH.Dx() != p.AH.Dy() {
			t.Errorf("%v: attitude indicator not square: %v", sz, p.AH)
		}
		if p.AH.Overlaps(p.ASI) || p.AH.Overlaps(p.ALT) || p.ALT.Overlaps(p.VSI) {
			t.Errorf("%v: instruments overlap: ah %v asi %v alt %v vsi %v", sz, p.AH, p.ASI, p.ALT, p.VSI)
		}
		if p.AH.Overlaps(p.DI) {
			t.Errorf("%v: ah %v overlaps di %v", sz, p.AH, p.DI)
		}
		if p.Instrument(efis.InstrumentEFIS) != screen {
			t.Errorf("%v: EFIS area %v", sz, p.Instrument(efis.InstrumentEFIS))
		}
	}
}

type fixedState efis.State

func (f *fixedState) Snapshot() efis.State { return efis.State(*f) }

func TestWaypointPicker(t *testing.T) {
	panel := Compute(1024, 600)
	inBox := panel.Waypoint.Min.Add(image.Pt(5, 5))

	tests := []struct {
		name string
		st   efis.State
		want string
	}{
		{"no touch", efis.State{Waypoint: "SBKP"}, ""},
		{"touch in box", efis.State{Waypoint: "SBKP", HasActionDown: true,
			ActionDown: efis.Point{X: float32(inBox.X), Y: float32(inBox.Y)}}, "SBKP"},
		{"touch elsewhere", efis.State{Waypoint: "SBKP", HasActionDown: true,
			ActionDown: efis.Point{X: 512, Y: 100}}, ""},
		{"no waypoint", efis.State{HasActionDown: true,
			ActionDown: efis.Point{X: float32(inBox.X), Y: float32(inBox.Y)}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := fixedState(tt.st)
			p := NewWaypointPicker(&src, panel)
			if got := p.SelectedWaypoint(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWaypointPickerThroughDisplay(t *testing.T) {
	store := efis.NewStore()
	panel := Compute(800, 480)
	d := efis.NewDisplay(store, efis.NewRedraw(), 800, 480)
	picker := NewWaypointPicker(store, panel)
	d.SetWaypointSelector(picker)

	d.SetWPT("YSSY")
	box := panel.Waypoint
	d.OnTouch(float32(box.Min.X+1), float32(box.Min.Y+1), efis.PhaseDown)
	d.OnTouch(float32(box.Min.X+1), float32(box.Min.Y+1), efis.PhaseUp)
	if got := d.SelectedWaypoint(); got != "YSSY" {
		t.Errorf("selected %q", got)
	}

	// After a resize the old box position no longer selects.
	picker.SetPanel(Compute(1920, 1080))
	if got := d.SelectedWaypoint(); got != "" {
		t.Errorf("selected %q after resize", got)
	}
}

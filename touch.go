package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"efis-pfd/internal/efis"
)

// TouchButton represents an on-screen touch button
type TouchButton struct {
	X, Y, W, H int
	Label      string
	Active     bool // Toggle state
	Visible    bool
	OnPress    func()
}

// TouchControls manages the preference buttons along the right edge
type TouchControls struct {
	buttons  []*TouchButton
	screenW  int
	screenH  int
	btnColor color.RGBA
	actColor color.RGBA
	txtColor color.RGBA
}

// NewTouchControls creates touch control manager
func NewTouchControls() *TouchControls {
	return &TouchControls{
		buttons:  make([]*TouchButton, 0),
		btnColor: color.RGBA{60, 60, 60, 200},
		actColor: color.RGBA{0, 150, 0, 200},
		txtColor: color.RGBA{255, 255, 255, 255},
	}
}

// AddButton adds a touch button
func (tc *TouchControls) AddButton(w, h int, label string, onPress func()) *TouchButton {
	btn := &TouchButton{
		W:       w,
		H:       h,
		Label:   label,
		Visible: true,
		OnPress: onPress,
	}
	tc.buttons = append(tc.buttons, btn)
	return btn
}

// HandlePress fires the button under (x, y), if any, and reports whether a
// button took the press
func (tc *TouchControls) HandlePress(x, y int) bool {
	for _, btn := range tc.buttons {
		if !btn.Visible {
			continue
		}
		if x >= btn.X && x <= btn.X+btn.W && y >= btn.Y && y <= btn.Y+btn.H {
			if btn.OnPress != nil {
				btn.OnPress()
			}
			return true
		}
	}
	return false
}

// Draw renders all touch buttons
func (tc *TouchControls) Draw(screen *ebiten.Image) {
	for _, btn := range tc.buttons {
		if !btn.Visible {
			continue
		}

		bgColor := tc.btnColor
		if btn.Active {
			bgColor = tc.actColor
		}
		vector.DrawFilledRect(screen, float32(btn.X), float32(btn.Y), float32(btn.W), float32(btn.H), bgColor, true)
		vector.StrokeRect(screen, float32(btn.X), float32(btn.Y), float32(btn.W), float32(btn.H), 2, tc.txtColor, true)

		labelX := btn.X + btn.W/2 - len(btn.Label)*3
		labelY := btn.Y + btn.H/2 - 8
		ebitenutil.DebugPrintAt(screen, btn.Label, labelX, labelY)
	}
}

// UpdateLayout stacks the buttons in the bottom-right corner
func (tc *TouchControls) UpdateLayout(screenW, screenH int) {
	if tc.screenW == screenW && tc.screenH == screenH {
		return
	}
	tc.screenW = screenW
	tc.screenH = screenH

	margin := 5
	y := screenH
	for i := len(tc.buttons) - 1; i >= 0; i-- {
		btn := tc.buttons[i]
		y -= btn.H + margin
		btn.X = screenW - btn.W - margin
		btn.Y = y
	}
}

// SetupDefaultButtons creates the preference toggles
func (tc *TouchControls) SetupDefaultButtons(app *App) {
	tc.AddButton(50, 36, "FPV", app.ToggleFPV)
	tc.AddButton(50, 36, "APT", app.ToggleAirport)
	tc.AddButton(50, 36, "FD", func() { app.TogglePref(efis.PrefFlightDirector) })
	tc.AddButton(50, 36, "INFO", func() { app.TogglePref(efis.PrefInfoPage) })
	tc.AddButton(50, 36, "FT", func() { app.TogglePref(efis.PrefAltitudeFeet) })
}

// UpdateButtonStates mirrors the toggles' current values
func (tc *TouchControls) UpdateButtonStates(st efis.State) {
	for _, btn := range tc.buttons {
		switch btn.Label {
		case "FPV":
			btn.Active = st.DisplayFPV
		case "APT":
			btn.Active = st.DisplayAirport
		case "FD":
			btn.Active = st.Pref(efis.PrefFlightDirector)
		case "INFO":
			btn.Active = st.Pref(efis.PrefInfoPage)
		case "FT":
			btn.Active = st.Pref(efis.PrefAltitudeFeet)
		}
	}
}

package main

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"efis-pfd/internal/efis"
	"efis-pfd/internal/layout"
	"efis-pfd/internal/monitor"
)

// App is the ebiten game: it samples the pointer into the display and
// paints a frame only when the redraw flag has been raised.
type App struct {
	ctx     context.Context
	log     logrus.FieldLogger
	store   *efis.Store
	display *efis.Display
	redraw  *efis.Redraw
	pfd     *PFD
	picker  *layout.WaypointPicker

	touchControls  *TouchControls
	gpioController *GPIOController

	title         string
	width         int
	height        int
	fullscreen    bool
	showTouchBtns bool

	// Pointer tracking: one touch id or the left mouse button
	touching   bool
	touchID    ebiten.TouchID
	mouseDown  bool
	lastX      int
	lastY      int
	buttonHeld bool // press landed on a touch button
}

// NewApp creates the application around an existing store and display
func NewApp(ctx context.Context, log logrus.FieldLogger, store *efis.Store, display *efis.Display, redraw *efis.Redraw, title string, width, height int) *App {
	panel := layout.Compute(width, height)
	app := &App{
		ctx:            ctx,
		log:            log,
		store:          store,
		display:        display,
		redraw:         redraw,
		pfd:            NewPFD(width, height),
		picker:         layout.NewWaypointPicker(store, panel),
		touchControls:  NewTouchControls(),
		gpioController: NewGPIOController(log),
		title:          title,
		width:          width,
		height:         height,
	}
	display.SetWaypointSelector(app.picker)
	app.touchControls.SetupDefaultButtons(app)
	app.touchControls.UpdateLayout(width, height)
	app.gpioController.SetupDefaultButtons(app)
	return app
}

// Run opens the window and blocks in the game loop
func (a *App) Run() error {
	ebiten.SetWindowSize(a.width, a.height)
	ebiten.SetWindowTitle(a.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetScreenClearedEveryFrame(false)

	if a.fullscreen {
		ebiten.SetFullscreen(true)
	}

	// First frame
	a.redraw.RequestRender()

	return ebiten.RunGame(a)
}

// ToggleFPV flips the flight path vector display
func (a *App) ToggleFPV() {
	a.display.SetDisplayFPV(!a.store.Snapshot().DisplayFPV)
}

// ToggleAirport flips the airport symbol on the direction indicator
func (a *App) ToggleAirport() {
	a.display.SetDisplayAirport(!a.store.Snapshot().DisplayAirport)
}

// TogglePref flips a boolean preference
func (a *App) TogglePref(key efis.PrefKey) {
	on := !a.store.Snapshot().Pref(key)
	a.display.SetPref(key, on)
	a.log.WithField("pref", key).Debugf("Preference set to %v", on)
}

// Update handles input
func (a *App) Update() error {
	select {
	case <-a.ctx.Done():
		return ebiten.Termination
	default:
	}

	if a.handleKeyboard() {
		return ebiten.Termination
	}
	a.handleTouch()
	a.handleMouse()
	return nil
}

// Draw paints a frame when one has been requested. The screen is not
// cleared between frames, so skipping keeps the previous picture.
func (a *App) Draw(screen *ebiten.Image) {
	if !a.redraw.Consume() {
		return
	}

	st := a.store.Snapshot()
	a.pfd.Draw(screen, st, a.display.SelectedWaypoint() != "")
	if a.showTouchBtns {
		a.touchControls.UpdateButtonStates(st)
		a.touchControls.Draw(screen)
	}
	monitor.FramesDrawn.Inc()
}

// Layout follows the window size and re-lays the instruments on change
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != a.width || outsideHeight != a.height {
		a.width, a.height = outsideWidth, outsideHeight
		panel := layout.Compute(a.width, a.height)
		a.pfd.SetPanel(panel)
		a.picker.SetPanel(panel)
		a.touchControls.UpdateLayout(a.width, a.height)
		a.display.Resize(a.width, a.height)
	}
	return outsideWidth, outsideHeight
}

// handleKeyboard reports whether the user asked to quit
func (a *App) handleKeyboard() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		a.ToggleFPV()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		a.ToggleAirport()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		a.TogglePref(efis.PrefFlightDirector)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		a.TogglePref(efis.PrefInfoPage)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyU) {
		a.TogglePref(efis.PrefAltitudeFeet)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.TogglePref(efis.PrefRemoteIndicator)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		a.showTouchBtns = !a.showTouchBtns
		a.touchControls.UpdateLayout(a.width, a.height)
		a.redraw.RequestRender()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	return inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ)
}

// handleTouch follows the first finger down until it lifts
func (a *App) handleTouch() {
	if !a.touching {
		ids := inpututil.AppendJustPressedTouchIDs(nil)
		if len(ids) == 0 || a.mouseDown {
			return
		}
		a.touching = true
		a.touchID = ids[0]
		x, y := ebiten.TouchPosition(a.touchID)
		a.press(x, y)
		return
	}

	if inpututil.IsTouchJustReleased(a.touchID) {
		a.touching = false
		a.release()
		return
	}
	x, y := ebiten.TouchPosition(a.touchID)
	a.move(x, y)
}

func (a *App) handleMouse() {
	if a.touching {
		return
	}
	if !a.mouseDown {
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			a.mouseDown = true
			x, y := ebiten.CursorPosition()
			a.press(x, y)
		}
		return
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		a.mouseDown = false
		a.release()
		return
	}
	x, y := ebiten.CursorPosition()
	a.move(x, y)
}

func (a *App) press(x, y int) {
	a.lastX, a.lastY = x, y
	if a.showTouchBtns && a.touchControls.HandlePress(x, y) {
		a.buttonHeld = true
		return
	}
	a.deliver(x, y, efis.PhaseDown)
}

func (a *App) move(x, y int) {
	if a.buttonHeld || (x == a.lastX && y == a.lastY) {
		return
	}
	a.lastX, a.lastY = x, y
	a.deliver(x, y, efis.PhaseMove)
}

func (a *App) release() {
	if a.buttonHeld {
		a.buttonHeld = false
		return
	}
	a.deliver(a.lastX, a.lastY, efis.PhaseUp)
}

func (a *App) deliver(x, y int, phase efis.Phase) {
	monitor.TouchEvents.WithLabelValues(phase.String()).Inc()
	a.display.OnTouch(float32(x), float32(y), phase)
}

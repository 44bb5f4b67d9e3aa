package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"efis-pfd/internal/efis"
	"efis-pfd/internal/layout"
)

const feetToMeters = 0.3048

// PFD paints a state snapshot onto the screen
type PFD struct {
	panel layout.Panel

	// Colors
	skyColor     color.RGBA
	groundColor  color.RGBA
	lineColor    color.RGBA
	textColor    color.RGBA
	warningColor color.RGBA
	accentColor  color.RGBA
	bgColor      color.RGBA
	fdColor      color.RGBA
	screenColor  color.RGBA
}

// NewPFD creates a renderer for a width x height screen
func NewPFD(width, height int) *PFD {
	return &PFD{
		panel:        layout.Compute(width, height),
		skyColor:     color.RGBA{70, 130, 180, 255},  // Steel blue
		groundColor:  color.RGBA{139, 90, 43, 255},   // Brown
		lineColor:    color.RGBA{255, 255, 255, 255}, // White
		textColor:    color.RGBA{0, 255, 0, 255},     // Green
		warningColor: color.RGBA{255, 50, 50, 255},   // Red
		accentColor:  color.RGBA{255, 200, 0, 255},   // Yellow/Gold
		bgColor:      color.RGBA{0, 0, 0, 180},       // Transparent black
		fdColor:      color.RGBA{255, 0, 255, 255},   // Magenta
		screenColor:  color.RGBA{20, 20, 25, 255},
	}
}

// SetPanel switches to a new instrument placement
func (p *PFD) SetPanel(panel layout.Panel) {
	p.panel = panel
}

// Draw renders every instrument, then a red X over each unserviceable one
func (p *PFD) Draw(screen *ebiten.Image, st efis.State, waypointSelected bool) {
	screen.Fill(p.screenColor)

	p.drawTopBar(screen, st)
	p.drawAttitude(screen, p.panel.AH, st)
	p.drawSpeedTape(screen, p.panel.ASI, st.Airspeed)
	p.drawAltitudeTape(screen, p.panel.ALT, st.Altitude, st.Pref(efis.PrefAltitudeFeet))
	p.drawVSI(screen, p.panel.VSI, st.VerticalSpeed)
	p.drawDI(screen, p.panel.DI, st)
	p.drawWaypoint(screen, p.panel.Waypoint, st, waypointSelected)
	p.drawMessages(screen, p.panel.Messages, st.Messages)

	if st.Calibrating.Active {
		p.drawBanner(screen, st.Calibrating.Message, p.panel.AH.Min.Y+p.panel.AH.Dy()/3, p.accentColor)
	}

	for _, inst := range efis.Instruments {
		if !st.Serviceable(inst) {
			p.drawRedX(screen, p.panel.Instrument(inst))
		}
	}
}

// drawTopBar renders the status line across the top
func (p *PFD) drawTopBar(screen *ebiten.Image, st efis.State) {
	r := p.panel.TopBar
	vector.DrawFilledRect(screen, 0, 0, float32(r.Dx()), float32(r.Dy()), p.bgColor, true)

	y := 5

	battStr := fmt.Sprintf("BAT %3.0f%%", st.Battery)
	if st.Battery < 20 {
		p.drawTextWithBg(screen, battStr, 10, y, p.warningColor)
	} else {
		ebitenutil.DebugPrintAt(screen, battStr, 10, y)
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("G %.1f", st.GForce), 100, y)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TRN %+.1f°/s", st.TurnRate), 160, y)

	if st.Pref(efis.PrefInfoPage) {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.5f, %.5f", st.Lat, st.Lon), 280, y)
	}
	if st.Pref(efis.PrefRemoteIndicator) {
		p.drawTextWithBg(screen, "RMT", r.Dx()-160, y, color.RGBA{0, 90, 160, 255})
	}
	if st.Demo.Active {
		p.drawTextWithBg(screen, st.Demo.Message, r.Dx()-100, y, p.fdColor)
	}
}

// drawTextWithBg draws text with a colored background
func (p *PFD) drawTextWithBg(screen *ebiten.Image, text string, x, y int, bgColor color.RGBA) {
	w := len(text)*6 + 4
	vector.DrawFilledRect(screen, float32(x-2), float32(y-1), float32(w), 16, bgColor, true)
	ebitenutil.DebugPrintAt(screen, text, x, y)
}

// drawAttitude renders the artificial horizon with FPV, flight director
// and slip indicator, clipped to its square
func (p *PFD) drawAttitude(screen *ebiten.Image, r image.Rectangle, st efis.State) {
	clip := screen.SubImage(r).(*ebiten.Image)

	cx := float32(r.Min.X + r.Dx()/2)
	cy := float32(r.Min.Y + r.Dy()/2)
	size := float32(r.Dx())

	pitchScale := size / 40 // 40 degrees visible
	horizonOffset := st.Pitch * pitchScale
	rollRad := float64(-st.Roll) * math.Pi / 180

	// Oversized so the corners stay filled at any bank
	ext := size
	sky := []float32{
		cx - ext, cy - 2*ext,
		cx + ext, cy - 2*ext,
		cx + ext, cy + horizonOffset,
		cx - ext, cy + horizonOffset,
	}
	p.drawRotatedQuad(clip, cx, cy, sky, rollRad, p.skyColor)
	ground := []float32{
		cx - ext, cy + horizonOffset,
		cx + ext, cy + horizonOffset,
		cx + ext, cy + 2*ext,
		cx - ext, cy + 2*ext,
	}
	p.drawRotatedQuad(clip, cx, cy, ground, rollRad, p.groundColor)

	x1, y1 := rotatePoint(cx-ext, cy+horizonOffset, cx, cy, rollRad)
	x2, y2 := rotatePoint(cx+ext, cy+horizonOffset, cx, cy, rollRad)
	vector.StrokeLine(clip, x1, y1, x2, y2, 2, p.lineColor, true)

	// Pitch ladder every 5 degrees
	for deg := -30; deg <= 30; deg += 5 {
		if deg == 0 {
			continue
		}
		offset := horizonOffset - float32(deg)*pitchScale
		lineLen := size / 4
		if deg%10 != 0 {
			lineLen = size / 8
		}
		lx1, ly1 := rotatePoint(cx-lineLen/2, cy+offset, cx, cy, rollRad)
		lx2, ly2 := rotatePoint(cx+lineLen/2, cy+offset, cx, cy, rollRad)
		vector.StrokeLine(clip, lx1, ly1, lx2, ly2, 1, p.lineColor, true)
		if deg%10 == 0 {
			ebitenutil.DebugPrintAt(clip, fmt.Sprintf("%d", deg), int(lx2)+4, int(ly2)-8)
		}
	}

	if st.DisplayFPV {
		fx := cx + st.FPV.X*pitchScale
		fy := cy - st.FPV.Y*pitchScale
		vector.StrokeCircle(clip, fx, fy, 7, 2, p.textColor, true)
		vector.StrokeLine(clip, fx-18, fy, fx-7, fy, 2, p.textColor, true)
		vector.StrokeLine(clip, fx+7, fy, fx+18, fy, 2, p.textColor, true)
		vector.StrokeLine(clip, fx, fy-7, fx, fy-14, 2, p.textColor, true)
	}

	if st.Director.Active && st.Pref(efis.PrefFlightDirector) {
		bar := size / 3
		fy := cy - (st.Director.Pitch-st.Pitch)*pitchScale
		fx := cx + (st.Director.Roll-st.Roll)*pitchScale/2
		vector.StrokeLine(clip, cx-bar/2, fy, cx+bar/2, fy, 3, p.fdColor, true)
		vector.StrokeLine(clip, fx, cy-bar/2, fx, cy+bar/2, 3, p.fdColor, true)
	}

	// Aircraft reference symbol
	wing := size / 6
	vector.StrokeLine(clip, cx-wing-15, cy, cx-15, cy, 3, p.accentColor, true)
	vector.StrokeLine(clip, cx+15, cy, cx+wing+15, cy, 3, p.accentColor, true)
	vector.DrawFilledCircle(clip, cx, cy, 4, p.accentColor, true)

	p.drawRollIndicator(clip, cx, cy, size/2, st.Roll)

	// Slip ball
	ballY := float32(r.Max.Y) - 14
	vector.StrokeRect(clip, cx-40, ballY-8, 80, 16, 1, p.lineColor, true)
	vector.StrokeLine(clip, cx-9, ballY-8, cx-9, ballY+8, 1, p.lineColor, true)
	vector.StrokeLine(clip, cx+9, ballY-8, cx+9, ballY+8, 1, p.lineColor, true)
	ballX := cx + clampf(st.Slip, -1, 1)*32
	vector.DrawFilledCircle(clip, ballX, ballY, 6, p.lineColor, true)

	vector.StrokeRect(screen, float32(r.Min.X), float32(r.Min.Y), size, float32(r.Dy()), 2, p.lineColor, true)
}

// drawRollIndicator draws the roll scale arc at the top of the horizon
func (p *PFD) drawRollIndicator(screen *ebiten.Image, cx, cy, radius float32, roll float32) {
	angles := []int{-60, -45, -30, -20, -10, 0, 10, 20, 30, 45, 60}

	for _, ang := range angles {
		rad := float64(ang-90) * math.Pi / 180
		innerR := radius - 12
		outerR := radius - 2
		if ang%30 == 0 {
			innerR = radius - 18
		}

		x1 := cx + innerR*float32(math.Cos(rad))
		y1 := cy + innerR*float32(math.Sin(rad))
		x2 := cx + outerR*float32(math.Cos(rad))
		y2 := cy + outerR*float32(math.Sin(rad))
		vector.StrokeLine(screen, x1, y1, x2, y2, 1, p.lineColor, true)
	}

	rollRad := float64(-roll-90) * math.Pi / 180
	pointerR := radius - 22
	px := cx + pointerR*float32(math.Cos(rollRad))
	py := cy + pointerR*float32(math.Sin(rollRad))
	vector.DrawFilledCircle(screen, px, py, 5, p.accentColor, true)
}

// drawSpeedTape renders the airspeed tape in knots
func (p *PFD) drawSpeedTape(screen *ebiten.Image, r image.Rectangle, speed float32) {
	x, width := r.Min.X, r.Dx()
	y, height := r.Min.Y+r.Dy()/2, r.Dy()
	vector.DrawFilledRect(screen, float32(x), float32(r.Min.Y), float32(width), float32(height), p.bgColor, true)

	scale := float32(height) / 60 // 60 kt visible

	minSpeed := int(speed) - 30
	maxSpeed := int(speed) + 30
	for spd := (minSpeed / 5) * 5; spd <= maxSpeed; spd += 5 {
		if spd < 0 {
			continue
		}
		ly := float32(y) + (speed-float32(spd))*scale
		if ly < float32(r.Min.Y) || ly > float32(r.Max.Y) {
			continue
		}
		tickLen := float32(8)
		if spd%10 == 0 {
			tickLen = 15
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", spd), x+4, int(ly)-8)
		}
		vector.StrokeLine(screen, float32(x+width)-tickLen, ly, float32(x+width), ly, 1, p.lineColor, true)
	}

	p.drawReadout(screen, x, y, width, fmt.Sprintf("%.0f", speed))
	vector.StrokeRect(screen, float32(x), float32(r.Min.Y), float32(width), float32(height), 1, p.lineColor, true)
	ebitenutil.DebugPrintAt(screen, "KT", x+5, r.Max.Y+4)
}

// drawAltitudeTape renders the altitude tape in feet or metres
func (p *PFD) drawAltitudeTape(screen *ebiten.Image, r image.Rectangle, altFt int, feet bool) {
	altitude := float32(altFt)
	unit := "FT"
	if !feet {
		altitude *= feetToMeters
		unit = "M"
	}

	x, width := r.Min.X, r.Dx()
	y, height := r.Min.Y+r.Dy()/2, r.Dy()
	vector.DrawFilledRect(screen, float32(x), float32(r.Min.Y), float32(width), float32(height), p.bgColor, true)

	scale := float32(height) / 600 // 600 units visible

	minAlt := int(altitude) - 300
	maxAlt := int(altitude) + 300
	for alt := (minAlt / 50) * 50; alt <= maxAlt; alt += 50 {
		ly := float32(y) + (altitude-float32(alt))*scale
		if ly < float32(r.Min.Y) || ly > float32(r.Max.Y) {
			continue
		}
		tickLen := float32(8)
		if alt%100 == 0 {
			tickLen = 15
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", alt), x+18, int(ly)-8)
		}
		vector.StrokeLine(screen, float32(x), ly, float32(x)+tickLen, ly, 1, p.lineColor, true)
	}

	p.drawReadout(screen, x, y, width, fmt.Sprintf("%.0f", altitude))
	vector.StrokeRect(screen, float32(x), float32(r.Min.Y), float32(width), float32(height), 1, p.lineColor, true)
	ebitenutil.DebugPrintAt(screen, unit, x+5, r.Max.Y+4)
}

// drawReadout draws the boxed current value across a tape
func (p *PFD) drawReadout(screen *ebiten.Image, x, y, width int, text string) {
	boxH := float32(20)
	vector.DrawFilledRect(screen, float32(x), float32(y)-boxH/2, float32(width), boxH, color.RGBA{0, 0, 0, 255}, true)
	vector.StrokeRect(screen, float32(x), float32(y)-boxH/2, float32(width), boxH, 2, p.accentColor, true)
	ebitenutil.DebugPrintAt(screen, text, x+5, y-8)
}

// drawVSI renders the vertical speed indicator in ft/min
func (p *PFD) drawVSI(screen *ebiten.Image, r image.Rectangle, vs int) {
	x, width := r.Min.X, r.Dx()
	y, height := r.Min.Y+r.Dy()/2, r.Dy()
	vector.DrawFilledRect(screen, float32(x), float32(r.Min.Y), float32(width), float32(height), p.bgColor, true)

	const maxVS = 2000
	scale := float32(height/2) / maxVS

	vector.StrokeLine(screen, float32(x), float32(y), float32(x+width), float32(y), 1, p.lineColor, true)
	for v := -maxVS; v <= maxVS; v += 500 {
		ly := float32(y) - float32(v)*scale
		tickLen := float32(5)
		if v%1000 == 0 {
			tickLen = 10
		}
		vector.StrokeLine(screen, float32(x+width)-tickLen, ly, float32(x+width), ly, 1, p.lineColor, true)
	}

	pointerY := float32(y) - clampf(float32(vs), -maxVS, maxVS)*scale
	pointerColor := p.textColor
	if vs < -1000 {
		pointerColor = p.warningColor
	}
	vector.DrawFilledRect(screen, float32(x), pointerY-3, float32(width-5), 6, pointerColor, true)

	vector.StrokeRect(screen, float32(x), float32(r.Min.Y), float32(width), float32(height), 1, p.lineColor, true)
	ebitenutil.DebugPrintAt(screen, "VS", x+2, r.Min.Y-16)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%+d", vs), x-20, r.Max.Y+4)
}

// drawDI renders the direction indicator with turn rate, waypoint bearing
// and airport symbol
func (p *PFD) drawDI(screen *ebiten.Image, r image.Rectangle, st efis.State) {
	cx := float32(r.Min.X + r.Dx()/2)
	cy := float32(r.Min.Y + r.Dy()/2)
	radius := float32(r.Dx() / 2)
	heading := st.Heading

	vector.DrawFilledCircle(screen, cx, cy, radius+2, p.bgColor, true)

	for deg := 0; deg < 360; deg += 10 {
		rad := float64(float32(deg)-heading-90) * math.Pi / 180
		innerR := radius - 10
		outerR := radius - 2
		if deg%30 == 0 {
			innerR = radius - 16
		}
		cos, sin := float32(math.Cos(rad)), float32(math.Sin(rad))
		vector.StrokeLine(screen, cx+innerR*cos, cy+innerR*sin, cx+outerR*cos, cy+outerR*sin, 1, p.lineColor, true)

		if deg%30 == 0 {
			label := fmt.Sprintf("%d", deg/10)
			switch deg {
			case 0:
				label = "N"
			case 90:
				label = "E"
			case 180:
				label = "S"
			case 270:
				label = "W"
			}
			labelR := radius - 28
			ebitenutil.DebugPrintAt(screen, label, int(cx+labelR*cos)-4, int(cy+labelR*sin)-8)
		}
	}

	// Standard-rate marks at +/-3 deg/s mapped to 18 deg of arc
	for _, mark := range []float32{-18, 18} {
		rad := float64(mark-90) * math.Pi / 180
		vector.DrawFilledCircle(screen, cx+(radius+6)*float32(math.Cos(rad)), cy+(radius+6)*float32(math.Sin(rad)), 2, p.lineColor, true)
	}
	trnRad := float64(clampf(st.TurnRate*6, -45, 45)-90) * math.Pi / 180
	vector.StrokeLine(screen, cx+radius*float32(math.Cos(trnRad)), cy+radius*float32(math.Sin(trnRad)),
		cx+(radius+10)*float32(math.Cos(trnRad)), cy+(radius+10)*float32(math.Sin(trnRad)), 3, p.textColor, true)

	if st.Waypoint != "" {
		brgRad := float64(st.RelBearing-90) * math.Pi / 180
		cos, sin := float32(math.Cos(brgRad)), float32(math.Sin(brgRad))
		vector.StrokeLine(screen, cx-(radius-20)*cos, cy-(radius-20)*sin, cx+(radius-20)*cos, cy+(radius-20)*sin, 2, p.fdColor, true)
		vector.DrawFilledCircle(screen, cx+(radius-20)*cos, cy+(radius-20)*sin, 4, p.fdColor, true)

		if st.DisplayAirport {
			ax := cx + (radius-40)*cos
			ay := cy + (radius-40)*sin
			vector.StrokeCircle(screen, ax, ay, 6, 2, p.accentColor, true)
			ebitenutil.DebugPrintAt(screen, st.Waypoint, int(ax)+8, int(ay)-8)
		}
	}

	// Lubber line and aircraft
	vector.DrawFilledRect(screen, cx-2, cy-radius+2, 4, 14, p.accentColor, true)
	vector.DrawFilledCircle(screen, cx, cy, 3, p.accentColor, true)
	vector.StrokeCircle(screen, cx, cy, radius, 2, p.lineColor, true)

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%03.0f", heading), int(cx)-10, r.Min.Y-18)
}

// drawWaypoint renders the active waypoint box; it is also the touch target
// for waypoint selection
func (p *PFD) drawWaypoint(screen *ebiten.Image, r image.Rectangle, st efis.State, selected bool) {
	x, y := float32(r.Min.X), float32(r.Min.Y)
	vector.DrawFilledRect(screen, x, y, float32(r.Dx()), float32(r.Dy()), p.bgColor, true)

	border := p.lineColor
	if selected {
		border = p.fdColor
	}
	vector.StrokeRect(screen, x, y, float32(r.Dx()), float32(r.Dy()), 2, border, true)

	if st.Waypoint == "" {
		ebitenutil.DebugPrintAt(screen, "WPT ----", r.Min.X+6, r.Min.Y+4)
		return
	}
	ebitenutil.DebugPrintAt(screen, "WPT "+st.Waypoint, r.Min.X+6, r.Min.Y+4)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("DME %.1f NM", st.DME), r.Min.X+6, r.Min.Y+20)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("BRG %+04.0f", st.RelBearing), r.Min.X+6, r.Min.Y+36)
}

// drawMessages lists message lines in line order
func (p *PFD) drawMessages(screen *ebiten.Image, r image.Rectangle, msgs map[int]string) {
	lines := make([]int, 0, len(msgs))
	for line := range msgs {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	y := r.Min.Y
	for _, line := range lines {
		if y+16 > r.Max.Y {
			break
		}
		if msgs[line] != "" {
			p.drawTextWithBg(screen, msgs[line], r.Min.X, y, p.bgColor)
		}
		y += 16
	}
}

// drawBanner centres a highlighted message across the screen
func (p *PFD) drawBanner(screen *ebiten.Image, text string, y int, bg color.RGBA) {
	w := len(text)*6 + 20
	x := p.panel.Width/2 - w/2
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), 22, bg, true)
	ebitenutil.DebugPrintAt(screen, text, x+10, y+3)
}

// drawRedX marks an instrument area as unserviceable
func (p *PFD) drawRedX(screen *ebiten.Image, r image.Rectangle) {
	x0, y0 := float32(r.Min.X), float32(r.Min.Y)
	x1, y1 := float32(r.Max.X), float32(r.Max.Y)
	vector.StrokeLine(screen, x0, y0, x1, y1, 4, p.warningColor, true)
	vector.StrokeLine(screen, x0, y1, x1, y0, 4, p.warningColor, true)
	vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 2, p.warningColor, true)
}

// Helper functions

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func rotatePoint(px, py, cx, cy float32, angle float64) (float32, float32) {
	cos := float32(math.Cos(angle))
	sin := float32(math.Sin(angle))

	px -= cx
	py -= cy

	return px*cos - py*sin + cx, px*sin + py*cos + cy
}

func (p *PFD) drawRotatedQuad(dst *ebiten.Image, cx, cy float32, pts []float32, angle float64, c color.RGBA) {
	r, g, b, a := float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255

	vs := make([]ebiten.Vertex, 0, 4)
	for i := 0; i < len(pts); i += 2 {
		x, y := rotatePoint(pts[i], pts[i+1], cx, cy, angle)
		vs = append(vs, ebiten.Vertex{DstX: x, DstY: y, ColorR: r, ColorG: g, ColorB: b, ColorA: a})
	}
	is := []uint16{0, 1, 2, 0, 2, 3}

	dst.DrawTriangles(vs, is, whiteImage, nil)
}

var whiteImage = func() *ebiten.Image {
	img := ebiten.NewImage(1, 1)
	img.Fill(color.White)
	return img
}()

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"efis-pfd/internal/efis"
)

// GPIO button assignments (BCM numbering)
const (
	GPIO_BTN_FPV     = 17 // Pin 11
	GPIO_BTN_AIRPORT = 27 // Pin 13
	GPIO_BTN_FD      = 22 // Pin 15
	GPIO_BTN_INFO    = 23 // Pin 16
	GPIO_BTN_UNITS   = 24 // Pin 18
)

const gpioRoot = "/sys/class/gpio"

// GPIOButton represents a single GPIO button
type GPIOButton struct {
	pin        int
	name       string
	lastState  bool
	debounceMs int64
	lastChange int64
	onPress    func()
}

// GPIOController polls panel buttons wired to GPIO pins
type GPIOController struct {
	buttons []*GPIOButton
	root    string
	log     logrus.FieldLogger
}

// NewGPIOController creates a new GPIO controller
func NewGPIOController(log logrus.FieldLogger) *GPIOController {
	return &GPIOController{
		buttons: make([]*GPIOButton, 0),
		root:    gpioRoot,
		log:     log.WithField("component", "gpio"),
	}
}

// AddButton adds a GPIO button
func (g *GPIOController) AddButton(pin int, name string, onPress func()) {
	g.buttons = append(g.buttons, &GPIOButton{
		pin:        pin,
		name:       name,
		debounceMs: 50,
		onPress:    onPress,
	})
}

// SetupDefaultButtons maps the panel buttons to the same toggles as the
// on-screen buttons
func (g *GPIOController) SetupDefaultButtons(app *App) {
	g.AddButton(GPIO_BTN_FPV, "FPV", app.ToggleFPV)
	g.AddButton(GPIO_BTN_AIRPORT, "APT", app.ToggleAirport)
	g.AddButton(GPIO_BTN_FD, "FD", func() { app.TogglePref(efis.PrefFlightDirector) })
	g.AddButton(GPIO_BTN_INFO, "INFO", func() { app.TogglePref(efis.PrefInfoPage) })
	g.AddButton(GPIO_BTN_UNITS, "FT", func() { app.TogglePref(efis.PrefAltitudeFeet) })
}

// Run exports the pins and polls them until ctx is done. Without GPIO
// sysfs it logs and returns nil.
func (g *GPIOController) Run(ctx context.Context) error {
	if !g.IsAvailable() {
		g.log.Info("GPIO not available (not running on Pi?) - GPIO buttons disabled")
		return nil
	}

	for _, btn := range g.buttons {
		if err := g.exportPin(btn.pin); err != nil {
			g.log.WithField("pin", btn.pin).Warnf("Could not export GPIO: %v", err)
			continue
		}
		// Active-low buttons to ground; pull-ups come from the device tree
		if err := g.setDirection(btn.pin, "in"); err != nil {
			g.log.WithField("pin", btn.pin).Warnf("Could not set GPIO direction: %v", err)
		}
	}
	defer func() {
		for _, btn := range g.buttons {
			g.unexportPin(btn.pin)
		}
	}()

	g.log.WithField("buttons", len(g.buttons)).Info("GPIO controller started")

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			g.pollButtons(time.Now().UnixMilli())
		}
	}
}

func (g *GPIOController) pollButtons(now int64) {
	for _, btn := range g.buttons {
		value, err := g.readPin(btn.pin)
		if err != nil {
			continue
		}

		// Active low: pressed when value is 0
		pressed := value == 0

		if pressed != btn.lastState && now-btn.lastChange > btn.debounceMs {
			btn.lastState = pressed
			btn.lastChange = now

			// Trigger on press, not release
			if pressed && btn.onPress != nil {
				g.log.WithField("button", btn.name).Debug("GPIO button pressed")
				btn.onPress()
			}
		}
	}
}

// GPIO sysfs helpers

func (g *GPIOController) exportPin(pin int) error {
	pinPath := fmt.Sprintf("%s/gpio%d", g.root, pin)
	if _, err := os.Stat(pinPath); err == nil {
		return nil // Already exported
	}

	if err := os.WriteFile(g.root+"/export", []byte(fmt.Sprintf("%d", pin)), 0); err != nil {
		return fmt.Errorf("export gpio %d: %w", pin, err)
	}

	// Wait for sysfs to create the pin directory
	time.Sleep(100 * time.Millisecond)
	return nil
}

func (g *GPIOController) unexportPin(pin int) error {
	return os.WriteFile(g.root+"/unexport", []byte(fmt.Sprintf("%d", pin)), 0)
}

func (g *GPIOController) setDirection(pin int, direction string) error {
	path := fmt.Sprintf("%s/gpio%d/direction", g.root, pin)
	return os.WriteFile(path, []byte(direction), 0644)
}

func (g *GPIOController) readPin(pin int) (int, error) {
	path := fmt.Sprintf("%s/gpio%d/value", g.root, pin)
	f, err := os.Open(path)
	if err != nil {
		return -1, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		if scanner.Text() == "0" {
			return 0, nil
		}
		return 1, nil
	}
	return -1, fmt.Errorf("gpio %d: could not read pin value", pin)
}

// IsAvailable returns true if GPIO sysfs is present on this system
func (g *GPIOController) IsAvailable() bool {
	_, err := os.Stat(g.root)
	return err == nil
}

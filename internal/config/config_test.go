package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "efis.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfigValid(t *testing.T) {
	if err := GetDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadConfigOverDefaults(t *testing.T) {
	path := writeConfig(t, `
display:
  width: 800
feed:
  reconnect_delay: 500ms
  demo: true
  sim:
    waypoint: YSSY
prefs:
  info_page: true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Display.Width != 800 || cfg.Display.Height != 600 {
		t.Errorf("display %dx%d", cfg.Display.Width, cfg.Display.Height)
	}
	if cfg.Feed.ReconnectDelay != 500*time.Millisecond {
		t.Errorf("reconnect delay %v", cfg.Feed.ReconnectDelay)
	}
	if !cfg.Feed.Demo || cfg.Feed.Sim.Waypoint != "YSSY" || cfg.Feed.Sim.TickHz != 20 {
		t.Errorf("feed %+v", cfg.Feed)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level default lost: %q", cfg.Log.Level)
	}
	if !cfg.Prefs["info_page"] {
		t.Errorf("prefs %v", cfg.Prefs)
	}
}

func TestLoadConfigShippedFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "configs", "efis.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Monitor.Enabled || cfg.Feed.Sim.Calibrate != 3*time.Second {
		t.Errorf("unexpected shipped config %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
	if _, err := LoadConfig(writeConfig(t, "display: [")); err == nil {
		t.Errorf("expected parse error")
	}

	tests := []struct {
		name string
		body string
	}{
		{"zero width", "display:\n  width: 0\n"},
		{"no addr", "feed:\n  addr: \"\"\n"},
		{"zero delay", "feed:\n  reconnect_delay: 0s\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"file without path", "log:\n  output: file\n"},
		{"unknown pref", "prefs:\n  night_mode: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("got %v, want ErrInvalid", err)
			}
		})
	}
}

func TestDemoNeedsNoAddr(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "feed:\n  addr: \"\"\n  demo: true\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Feed.Addr != "" {
		t.Errorf("addr %q", cfg.Feed.Addr)
	}
}

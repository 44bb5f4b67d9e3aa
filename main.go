package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"efis-pfd/internal/config"
	"efis-pfd/internal/efis"
	"efis-pfd/internal/feed"
	"efis-pfd/internal/monitor"
)

var (
	Version   = "1.0.0"
	BuildTime = "unknown"
)

func main() {
	// Command line flags; set ones override the config file
	configFile := flag.String("config", "configs/efis.yaml", "Config file path")
	grpcAddr := flag.String("grpc", "", "Instrument feed gRPC address")
	demo := flag.Bool("demo", false, "Drive the display from the built-in simulated flight")
	fullscreen := flag.Bool("fullscreen", false, "Start in fullscreen mode")
	touchBtns := flag.Bool("touch", false, "Enable on-screen touch buttons")
	width := flag.Int("width", 0, "Window width")
	height := flag.Int("height", 0, "Window height")
	headless := flag.Bool("headless", false, "Run without a window, logging each frame")
	showVersion := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("EFIS PFD v%s (Build: %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		cfg = config.GetDefaultConfig()
		fmt.Fprintln(os.Stderr, "Using default config")
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "grpc":
			cfg.Feed.Addr = *grpcAddr
		case "demo":
			cfg.Feed.Demo = *demo
		case "fullscreen":
			cfg.Display.Fullscreen = *fullscreen
		case "touch":
			cfg.Display.TouchButtons = *touchBtns
		case "width":
			cfg.Display.Width = *width
		case "height":
			cfg.Display.Height = *height
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	log := setupLogger(cfg.Log)
	log.Infof("EFIS PFD v%s starting", Version)
	log.Infof("Config file: %s", *configFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := efis.NewStore()
	redraw := efis.NewRedraw()
	display := efis.NewDisplay(store, monitor.Invalidator{Next: redraw}, cfg.Display.Width, cfg.Display.Height)
	for key, on := range cfg.Prefs {
		display.SetPref(efis.PrefKey(key), on)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Feed.Demo {
		log.Info("Demo mode: simulated flight")
		sim := feed.NewSim(simConfig(cfg.Feed.Sim))
		g.Go(func() error { return sim.Run(gctx, display) })
	} else {
		log.Infof("Connecting to instrument feed at %s", cfg.Feed.Addr)
		client := feed.NewClient(cfg.Feed.Addr, display, log, cfg.Feed.ReconnectDelay)
		defer client.Close()
		g.Go(func() error { return client.Run(gctx) })
	}

	if cfg.Monitor.Enabled {
		g.Go(func() error { return monitor.Serve(gctx, cfg.Monitor.MetricsAddr, log) })
	}

	if *headless {
		g.Go(func() error {
			err := redraw.Run(gctx, func() { logFrame(log, store.Snapshot()) })
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		if err := g.Wait(); err != nil {
			log.Fatalf("Application error: %v", err)
		}
		log.Info("Shutting down")
		return
	}

	app := NewApp(gctx, log, store, display, redraw, cfg.Display.Title, cfg.Display.Width, cfg.Display.Height)
	app.fullscreen = cfg.Display.Fullscreen
	app.showTouchBtns = cfg.Display.TouchButtons
	if cfg.Display.GPIO {
		g.Go(func() error { return app.gpioController.Run(gctx) })
	}

	// ebiten owns the main goroutine
	runErr := app.Run()
	log.Info("Shutting down")
	stop()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("Background task error: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Application error: %v", runErr)
	}
}

func simConfig(c config.SimConfig) feed.SimConfig {
	return feed.SimConfig{
		OriginLat:   c.OriginLat,
		OriginLon:   c.OriginLon,
		Waypoint:    c.Waypoint,
		WaypointLat: c.WaypointLat,
		WaypointLon: c.WaypointLon,
		TickHz:      c.TickHz,
		Calibrate:   c.Calibrate,
	}
}

// logFrame stands in for painting when there is no window
func logFrame(log logrus.FieldLogger, st efis.State) {
	monitor.FramesDrawn.Inc()
	log.WithFields(logrus.Fields{
		"pitch":   st.Pitch,
		"roll":    st.Roll,
		"heading": st.Heading,
		"alt":     st.Altitude,
		"ias":     st.Airspeed,
		"vs":      st.VerticalSpeed,
		"wpt":     st.Waypoint,
		"efis":    st.Service[efis.InstrumentEFIS],
	}).Debug("Frame")
}

func setupLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	var out io.Writer = os.Stdout
	switch cfg.Output {
	case "stderr":
		out = os.Stderr
	case "file":
		out = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
	}
	log.SetOutput(out)

	return log
}

// Command feedsim serves the simulated flight as an instrument feed, for
// running the PFD against a network source without sensors.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"efis-pfd/internal/config"
	"efis-pfd/internal/efis"
	"efis-pfd/internal/feed"
	"efis-pfd/internal/monitor"
)

func main() {
	configFile := flag.String("config", "configs/efis.yaml", "Config file path (feed.sim and monitor sections)")
	listen := flag.String("listen", ":10000", "gRPC listen address")
	faultEvery := flag.Duration("faults", 0, "Cycle a red X through the instruments at this interval (0 disables)")
	debug := flag.Bool("debug", false, "Debug logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Warnf("Failed to load config: %v, using defaults", err)
		cfg = config.GetDefaultConfig()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listen %s: %v\n", *listen, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := feed.NewHub(log)
	srv := grpc.NewServer()
	feed.Register(srv, hub)

	enc := feed.NewEncoder(hub.Publish)
	sim := feed.NewSim(feed.SimConfig{
		OriginLat:   cfg.Feed.Sim.OriginLat,
		OriginLon:   cfg.Feed.Sim.OriginLon,
		Waypoint:    cfg.Feed.Sim.Waypoint,
		WaypointLat: cfg.Feed.Sim.WaypointLat,
		WaypointLon: cfg.Feed.Sim.WaypointLon,
		TickHz:      cfg.Feed.Sim.TickHz,
		Calibrate:   cfg.Feed.Sim.Calibrate,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", lis.Addr().String()).Infof("Serving %s", feed.ServiceName)
		return srv.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		srv.GracefulStop()
		return nil
	})
	g.Go(func() error { return sim.Run(gctx, enc) })
	if *faultEvery > 0 {
		g.Go(func() error { return cycleFaults(gctx, enc, *faultEvery, log) })
	}
	if cfg.Monitor.Enabled {
		g.Go(func() error { return monitor.Serve(gctx, cfg.Monitor.MetricsAddr, log) })
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("feedsim: %v", err)
	}
	log.Info("Shutting down")
}

// cycleFaults marks one sub-instrument unserviceable per interval, restoring
// the previous one, so every red X can be seen on the display.
func cycleFaults(ctx context.Context, r efis.Renderer, every time.Duration, log logrus.FieldLogger) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	insts := efis.Instruments[1:] // the overall EFIS flag belongs to the link
	i := -1
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if i >= 0 {
				r.SetServiceability(insts[i], efis.Serviceable)
			}
			i = (i + 1) % len(insts)
			r.SetServiceability(insts[i], efis.Unserviceable)
			log.WithField("instrument", insts[i]).Info("Injected fault")
		}
	}
}

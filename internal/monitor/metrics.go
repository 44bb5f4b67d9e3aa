package monitor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"efis-pfd/internal/efis"
)

var (
	// Render path
	RedrawRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "efis_redraw_requests_total",
		Help: "Redraw requests from setters and touch input",
	})

	FramesDrawn = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "efis_frames_drawn_total",
		Help: "Frames actually painted by the render stage",
	})

	TouchEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "efis_touch_events_total",
			Help: "Touch samples delivered to the display",
		},
		[]string{"phase"},
	)

	// Feed
	FeedUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "efis_feed_updates_total",
			Help: "Feed updates applied",
		},
		[]string{"type"},
	)

	FeedErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "efis_feed_errors_total",
		Help: "Malformed feed updates dropped",
	})

	FeedConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "efis_feed_connected",
		Help: "1 while feed updates are arriving",
	})
)

func init() {
	prometheus.MustRegister(
		RedrawRequests,
		FramesDrawn,
		TouchEvents,
		FeedUpdates,
		FeedErrors,
		FeedConnected,
	)
}

// Invalidator counts redraw requests on their way to the render stage.
type Invalidator struct {
	Next efis.Invalidator
}

func (i Invalidator) RequestRender() {
	RedrawRequests.Inc()
	i.Next.RequestRender()
}

// Handler serves /metrics and /health.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// Serve runs Handler on addr until ctx is done.
func Serve(ctx context.Context, addr string, log logrus.FieldLogger) error {
	srv := &http.Server{Addr: addr, Handler: Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("Metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

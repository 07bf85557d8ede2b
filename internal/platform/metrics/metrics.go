// internal/platform/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ctsubs/internal/platform/logx"
)

// Recorder agrupa las métricas Prometheus de las sesiones de búsqueda.
// All methods are safe on a nil *Recorder, so callers never need to check.
type Recorder struct {
	registry *prometheus.Registry

	sessionsTotal   *prometheus.CounterVec
	resultsTotal    *prometheus.CounterVec
	duplicatesTotal prometheus.Counter
	malformedTotal  prometheus.Counter
	activeSessions  prometheus.Gauge
	sessionDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder on its own registry (the default one is
// left untouched).
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctsubs_sessions_total",
			Help: "Search sessions by terminal state",
		},
		[]string{"outcome"},
	)
	r.resultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctsubs_results_total",
			Help: "Accepted results by source label",
		},
		[]string{"source"},
	)
	r.duplicatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ctsubs_duplicates_total",
		Help: "Results dropped because the subject was already seen",
	})
	r.malformedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ctsubs_malformed_records_total",
		Help: "Data payloads that could not be decoded",
	})
	r.activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ctsubs_active_sessions",
		Help: "Sessions currently in the active state",
	})
	r.sessionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ctsubs_session_duration_seconds",
			Help:    "Wall time from start to terminal state",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"outcome"},
	)

	r.registry.MustRegister(
		r.sessionsTotal,
		r.resultsTotal,
		r.duplicatesTotal,
		r.malformedTotal,
		r.activeSessions,
		r.sessionDuration,
	)
	return r
}

// Registry exposes the underlying registry (tests, extra collectors).
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) SessionStarted() {
	if r == nil {
		return
	}
	r.activeSessions.Inc()
}

// SessionEnded records the terminal state and the session duration.
func (r *Recorder) SessionEnded(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.activeSessions.Dec()
	r.sessionsTotal.WithLabelValues(outcome).Inc()
	r.sessionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (r *Recorder) ResultAccepted(source string) {
	if r == nil {
		return
	}
	r.resultsTotal.WithLabelValues(source).Inc()
}

func (r *Recorder) DuplicateDropped() {
	if r == nil {
		return
	}
	r.duplicatesTotal.Inc()
}

func (r *Recorder) MalformedRecord() {
	if r == nil {
		return
	}
	r.malformedTotal.Inc()
}

// Handler returns a chi router serving /metrics and /healthz.
func (r *Recorder) Handler() http.Handler {
	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if r != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}
	return router
}

// Serve exposes Handler on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string, logger logx.Logger) error {
	if logger == nil {
		logger = logx.Discard()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

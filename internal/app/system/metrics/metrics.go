// Package metrics owns the Prometheus registry for lifecycle transitions,
// uploads, sweeps and HTTP requests. All methods are safe on a nil
// *Metrics so callers and tests may omit it.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	uploadBytes     prometheus.Counter
	videoSeconds    prometheus.Histogram
	sweeps          *prometheus.CounterVec
	expired         prometheus.Counter
}

// New registers every collector on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bemyforce_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bemyforce_lifecycle_transitions_total",
		Help: "Content lifecycle transitions by entity and target state",
	}, []string{"entity", "to"})

	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bemyforce_asset_uploads_total",
		Help: "Asset uploads by type and outcome",
	}, []string{"asset_type", "outcome"})

	uploadBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bemyforce_asset_upload_bytes_total",
		Help: "Bytes stored for uploaded assets",
	})

	videoSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bemyforce_video_duration_seconds",
		Help:    "Probed duration of processed videos",
		Buckets: []float64{5, 10, 15, 30, 45, 60, 90, 120, 300},
	})

	sweeps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bemyforce_job_runs_total",
		Help: "Background job runs by job and outcome",
	}, []string{"job", "outcome"})

	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bemyforce_needs_expired_total",
		Help: "Needs moved to expired by the sweeper",
	})

	registry.MustRegister(requestDuration, transitions, uploads, uploadBytes, videoSeconds, sweeps, expired)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		transitions:     transitions,
		uploads:         uploads,
		uploadBytes:     uploadBytes,
		videoSeconds:    videoSeconds,
		sweeps:          sweeps,
		expired:         expired,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Transition records a lifecycle state change, e.g. ("need", "fulfilled").
func (m *Metrics) Transition(entity, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(entity, to).Inc()
}

// Upload records one stored asset or a failed upload.
func (m *Metrics) Upload(assetType string, ok bool, bytes int64) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.uploads.WithLabelValues(assetType, outcome).Inc()
	if ok && bytes > 0 {
		m.uploadBytes.Add(float64(bytes))
	}
}

// VideoDuration records the probed length of a processed video.
func (m *Metrics) VideoDuration(seconds int) {
	if m == nil {
		return
	}
	m.videoSeconds.Observe(float64(seconds))
}

// JobRun records one run of a background job.
func (m *Metrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.sweeps.WithLabelValues(job, outcome).Inc()
}

// Expired adds n to the expired-needs counter.
func (m *Metrics) Expired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.expired.Add(float64(n))
}

// Middleware records request durations labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}

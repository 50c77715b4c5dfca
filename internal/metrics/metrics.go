// Package metrics exposes Prometheus metrics for the admission pipeline.
//
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "webmatic"

// Metrics holds the collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	admissions      *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	sweptKeys       prometheus.Counter
	statsDropped    prometheus.Counter
}

// New creates and registers the collectors, plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		admissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ratelimit",
			Name:      "decisions_total",
			Help:      "Admission decisions by outcome",
		}, []string{"decision"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "validation",
			Name:      "rejections_total",
			Help:      "Rejected fields by form and field",
		}, []string{"form", "field"}),
		sweptKeys: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ratelimit",
			Name:      "swept_keys_total",
			Help:      "Idle client keys removed by the janitor",
		}),
		statsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ratelimit",
			Name:      "stats_dropped_total",
			Help:      "Decision events dropped because the stats queue was full",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveAdmission records a rate-limit decision.
func (m *Metrics) ObserveAdmission(allowed bool) {
	if m == nil {
		return
	}
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	m.admissions.WithLabelValues(decision).Inc()
}

// ObserveRejection records the fields that failed validation on form.
func (m *Metrics) ObserveRejection(form string, fields []string) {
	if m == nil {
		return
	}
	for _, f := range fields {
		m.rejections.WithLabelValues(form, f).Inc()
	}
}

// ObserveSweep records keys removed by one janitor pass.
func (m *Metrics) ObserveSweep(removed int) {
	if m == nil || removed <= 0 {
		return
	}
	m.sweptKeys.Add(float64(removed))
}

// ObserveStatsDrop records one dropped stats event.
func (m *Metrics) ObserveStatsDrop() {
	if m == nil {
		return
	}
	m.statsDropped.Inc()
}

// TrackKeys exports the number of client keys held by the limiter.
func (m *Metrics) TrackKeys(fn func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "ratelimit",
		Name:      "tracked_keys",
		Help:      "Client keys currently held by the limiter",
	}, func() float64 { return float64(fn()) }))
}

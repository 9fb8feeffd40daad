package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	reportsTotal      *prometheus.CounterVec
	recordsSaved      *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, so several instances can
// live side by side in tests.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		reportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sleep_reports_total",
			Help: "Reports built by kind and outcome (ok, no_data, insufficient_data).",
		}, []string{"kind", "status"}),
		recordsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sleep_records_saved_total",
			Help: "Sleep record submissions by result (saved, duplicate, invalid, error).",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.reportsTotal,
		m.recordsSaved,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records request counts and latency, labelled by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ReportBuilt(kind, status string) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) RecordSubmitted(result string) {
	if m == nil {
		return
	}
	m.recordsSaved.WithLabelValues(result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "tmf"
	subsystem = "server"
)

// Metrics owns a private registry so several servers can coexist in one
// process.
type Metrics struct {
	Registry *prometheus.Registry

	requests        *prometheus.CounterVec
	assembled       *prometheus.CounterVec
	assembleSeconds prometheus.Histogram
	containerBytes  prometheus.Histogram
	stored          prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "API requests. Broken down by operation and status code.",
			},
			[]string{"op", "code"},
		),
		assembled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "assemblies_total",
				Help:      "Assembly attempts. Broken down by result.",
			},
			[]string{"result"},
		),
		assembleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "assemble_duration_seconds",
			Help:      "Time spent assembling a source.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		containerBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "container_bytes",
			Help:      "Size of assembled containers.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 12),
		}),
		stored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "containers",
			Help:      "Containers currently held by the store.",
		}),
	}
	m.Registry.MustRegister(m.requests, m.assembled, m.assembleSeconds, m.containerBytes, m.stored)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

func (m *Metrics) request(op string, status int) {
	m.requests.WithLabelValues(op, strconv.Itoa(status)).Inc()
}

func (m *Metrics) assembly(result string, size int, d time.Duration) {
	m.assembled.WithLabelValues(result).Inc()
	if result == "ok" {
		m.assembleSeconds.Observe(d.Seconds())
		m.containerBytes.Observe(float64(size))
	}
}

func (m *Metrics) setStored(n int) {
	m.stored.Set(float64(n))
}

package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes scan activity for Prometheus scraping.
//
// Design decision: We use a dedicated registry rather than the global
// default so tests can create independent Metrics instances and the
// /metrics endpoint only exposes what we intentionally registered.
type Metrics struct {
	registry *prometheus.Registry

	// scansTotal counts finished scans by final status.
	scansTotal *prometheus.CounterVec

	// scanDurationSeconds tracks the scan duration distribution.
	scanDurationSeconds prometheus.Histogram

	// activeScans tracks scans currently running.
	activeScans prometheus.Gauge

	// findingsTotal counts findings by severity across all scans.
	findingsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the scan metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webscan_scans_total",
				Help: "Total number of finished scans by status",
			},
			[]string{"status"},
		),
		scanDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "webscan_scan_duration_seconds",
				Help:    "Scan duration distribution in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		activeScans: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "webscan_active_scans",
				Help: "Number of scans currently running",
			},
		),
		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webscan_findings_total",
				Help: "Total number of findings by severity",
			},
			[]string{"severity"},
		),
	}

	m.registry.MustRegister(
		m.scansTotal,
		m.scanDurationSeconds,
		m.activeScans,
		m.findingsTotal,
	)

	return m
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// ScanStarted records a scan entering the running state.
func (m *Metrics) ScanStarted() {
	m.activeScans.Inc()
}

// ScanFinished records a finished scan with its outcome.
func (m *Metrics) ScanFinished(status string, durationSeconds float64, severityCounts map[string]int) {
	m.activeScans.Dec()
	m.scansTotal.WithLabelValues(status).Inc()
	m.scanDurationSeconds.Observe(durationSeconds)
	for severity, count := range severityCounts {
		m.findingsTotal.WithLabelValues(severity).Add(float64(count))
	}
}

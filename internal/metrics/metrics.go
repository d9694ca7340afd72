// Package metrics holds the Prometheus instruments used across the service.
// All collectors are registered with the global registry, so serving
// promhttp.Handler() is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Verifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookiecheck_verifications_total",
			Help: "Completed verifications by status and error kind.",
		}, []string{"status", "kind"})

	VerificationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cookiecheck_verification_duration_seconds",
			Help:    "Wall time of a verification by producing strategy.",
			Buckets: []float64{0.05, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"source"})

	BrowserContextsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cookiecheck_browser_contexts_active",
			Help: "Browser contexts currently held by verification attempts.",
		})

	BrowserLaunches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cookiecheck_browser_launches_total",
			Help: "Cumulative number of headless engine launches.",
		})

	AuditDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cookiecheck_audit_dropped_total",
			Help: "Audit events dropped because the buffer was full.",
		})

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cookiecheck_cache_hits_total",
			Help: "Verifications answered from the outcome cache.",
		})
)

func init() {
	prometheus.MustRegister(
		Verifications,
		VerificationDuration,
		BrowserContextsActive,
		BrowserLaunches,
		AuditDropped,
		CacheHits,
	)
}

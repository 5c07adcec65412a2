// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "a2z_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "a2z_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Free-tier reset metrics
	FreeResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "a2z_free_resets_total",
			Help: "Free account resets by result",
		},
		[]string{"result"},
	)

	FreeResetListingsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "a2z_free_reset_listings_deleted_total",
			Help: "Listings removed by free account resets",
		},
	)

	FreeResetBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "a2z_free_reset_batch_duration_seconds",
			Help:    "Duration of free reset batch passes",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		},
	)

	FreeResetDueAccounts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "a2z_free_reset_due_accounts",
			Help: "Free accounts found due in the last batch pass",
		},
	)

	FreeResetRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "a2z_free_reset_runs_total",
			Help: "Batch runs by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)
)

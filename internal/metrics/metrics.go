// Package metrics holds the Prometheus collectors of the render service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codelines_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "codelines_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "route"},
	)

	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codelines_jobs_total",
			Help: "Render jobs by final status and output format",
		},
		[]string{"status", "format"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codelines_job_duration_seconds",
			Help:    "Time from a worker picking up a job to its completion",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"format"},
	)

	BlocksRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codelines_blocks_rendered_total",
			Help: "Code blocks rendered by batch jobs",
		},
	)

	BlockErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codelines_block_errors_total",
			Help: "Code blocks rejected, by pipeline phase",
		},
		[]string{"phase"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codelines_queue_depth",
			Help: "Jobs waiting for a worker",
		},
	)
)

// Package metrics exposes Prometheus instrumentation for the prediction API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request latency per method and route.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// PredictionsTotal counts scored predictions by input source and outcome.
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of churn predictions",
		},
		[]string{"source", "outcome"},
	)

	// UploadRowsTotal counts customer rows scored through bulk uploads.
	UploadRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "upload_rows_total",
			Help: "Total number of rows scored via file upload",
		},
	)

	// WordcloudRendersTotal counts rendered word-cloud images by mode.
	WordcloudRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordcloud_renders_total",
			Help: "Total number of word-cloud images rendered",
		},
		[]string{"mode"},
	)
)

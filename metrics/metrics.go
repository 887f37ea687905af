// Package metrics provides Prometheus metrics for the tool handlers:
//   - tool_requests_total: Counter with tool and outcome labels
//   - tool_stage_duration_seconds: Histogram with tool and stage labels
//   - vision_confidence: Histogram of parsed identification confidence
//   - image_payload_bytes: Histogram of decoded image sizes
//
// All metrics are registered with the Prometheus default registry during
// package initialization. The local development server exposes them at
// /metrics; in Lambda they remain process-local.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ToolRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_requests_total",
			Help: "Total tool invocations",
		},
		[]string{"tool", "outcome"},
	)

	ToolStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tool_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"tool", "stage"},
	)

	VisionConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vision_confidence",
			Help:    "Confidence of parsed medication identifications",
			Buckets: []float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		},
	)

	ImagePayloadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_payload_bytes",
			Help:    "Decoded size of incoming medication photos",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(ToolRequestsTotal)
	prometheus.MustRegister(ToolStageDuration)
	prometheus.MustRegister(VisionConfidence)
	prometheus.MustRegister(ImagePayloadBytes)
}

// ObserveOutcome increments the per-tool request counter.
func ObserveOutcome(tool string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	ToolRequestsTotal.WithLabelValues(tool, outcome).Inc()
}

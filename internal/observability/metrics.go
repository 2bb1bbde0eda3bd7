// Package observability holds the Prometheus metrics for entry submission and export.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Photo outcomes.
const (
	PhotoStored  = "stored"
	PhotoSkipped = "skipped"
)

var (
	entriesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "custodylog",
		Name:      "entries_created_total",
		Help:      "Daily entries saved.",
	})
	photosProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "custodylog",
		Name:      "photos_total",
		Help:      "Photos processed during entry submission, by outcome.",
	}, []string{"outcome"})
	exportsRendered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "custodylog",
		Name:      "exports_total",
		Help:      "Export documents rendered, by format.",
	}, []string{"format"})
	submitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "custodylog",
		Subsystem: "entries",
		Name:      "submit_duration_seconds",
		Help:      "Time to save an entry and process its photos.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(entriesCreated, photosProcessed, exportsRendered, submitDuration)
}

// RecordEntryCreated counts a saved entry and how long the submission took.
func RecordEntryCreated(elapsed time.Duration) {
	entriesCreated.Inc()
	submitDuration.Observe(elapsed.Seconds())
}

// RecordPhotos counts the stored and skipped photos of one submission.
func RecordPhotos(stored, skipped int) {
	if stored > 0 {
		photosProcessed.WithLabelValues(PhotoStored).Add(float64(stored))
	}
	if skipped > 0 {
		photosProcessed.WithLabelValues(PhotoSkipped).Add(float64(skipped))
	}
}

// RecordExport counts a rendered export.
func RecordExport(format string) {
	exportsRendered.WithLabelValues(format).Inc()
}

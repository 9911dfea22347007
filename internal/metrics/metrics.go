// Package metrics exposes pass and pipeline counters for prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ObjectsScanned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cachereport",
		Name:      "objects_scanned_total",
		Help:      "Metadata files discovered by the scanner",
	})

	ObjectsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cachereport",
		Name:      "objects_skipped_total",
		Help:      "Objects dropped before batching",
	}, []string{"reason"})

	ObjectsBad = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cachereport",
		Name:      "objects_bad_total",
		Help:      "Objects classified BAD by the validator",
	})

	ObjectsReported = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cachereport",
		Name:      "objects_reported_total",
		Help:      "Objects delivered to the catalog",
	})

	BatchesFlushed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cachereport",
		Name:      "batches_flushed_total",
		Help:      "Batch flushes that reached the transport",
	})

	TransportFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cachereport",
		Name:      "transport_failures_total",
		Help:      "Report deliveries that failed",
	})

	PassDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cachereport",
		Name:      "pass_duration_seconds",
		Help:      "Wall time of one scan pass",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
)

// Skip reasons used with ObjectsSkipped
const (
	ReasonUnusable     = "unusable"
	ReasonIncomplete   = "incomplete"
	ReasonUnregistered = "unregistered"
)

func init() {
	prometheus.MustRegister(
		ObjectsScanned,
		ObjectsSkipped,
		ObjectsBad,
		ObjectsReported,
		BatchesFlushed,
		TransportFailures,
		PassDuration,
	)

	ObjectsSkipped.WithLabelValues(ReasonUnusable)
	ObjectsSkipped.WithLabelValues(ReasonIncomplete)
	ObjectsSkipped.WithLabelValues(ReasonUnregistered)
}

// Handler returns the prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts a metrics listener on addr. It blocks, so callers run it in a
// goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// QueryMetrics holds all Prometheus metrics for dataset queries.
type QueryMetrics struct {
	KeysResolved      prometheus.Counter
	ObjectsDownloaded prometheus.Counter
	RecordsReturned   prometheus.Counter
	RecordsDropped    prometheus.Counter
	QueryDuration     prometheus.Histogram
}

// New initializes and registers the metrics on the given registerer.
func New(reg prometheus.Registerer) *QueryMetrics {
	factory := promauto.With(reg)
	return &QueryMetrics{
		KeysResolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shakefetch",
			Subsystem: "query",
			Name:      "keys_resolved_total",
			Help:      "Total number of candidate object keys resolved.",
		}),
		ObjectsDownloaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shakefetch",
			Subsystem: "query",
			Name:      "objects_downloaded_total",
			Help:      "Total number of record objects downloaded.",
		}),
		RecordsReturned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shakefetch",
			Subsystem: "query",
			Name:      "records_returned_total",
			Help:      "Total number of records returned after time filtering.",
		}),
		RecordsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shakefetch",
			Subsystem: "query",
			Name:      "records_dropped_total",
			Help:      "Total number of downloaded records outside the query range.",
		}),
		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shakefetch",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "End-to-end duration of record queries.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Handler serves the gatherer's metrics in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

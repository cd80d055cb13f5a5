package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan results.
const (
	ScanArrival   = "arrival"
	ScanDeparture = "departure"
	ScanRejected  = "rejected"
	ScanUnknown   = "unknown_qr"
	ScanError     = "error"
)

var (
	// ScansTotal counts QR scans by outcome.
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "scans_total",
		Help:      "QR scans processed, by result.",
	}, []string{"result"})

	// AbsencesMarked counts rows written by the end-of-day absence job.
	AbsencesMarked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "absences_marked_total",
		Help:      "Students marked absent by the scheduled job.",
	})

	// StudentsImported counts students inserted through roster imports.
	StudentsImported = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "students_imported_total",
		Help:      "Students inserted by spreadsheet import.",
	})

	// HTTPRequests counts handled requests.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "http_requests_total",
		Help:      "HTTP requests, by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "attendance",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// ObserveScan increments the scan counter for result.
func ObserveScan(result string) {
	ScansTotal.WithLabelValues(result).Inc()
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Bot metrics
var (
	// Updates handled by the conversation engine
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filesend",
			Subsystem: "bot",
			Name:      "updates_total",
			Help:      "Total number of handled telegram updates",
		},
		[]string{"kind", "status"},
	)

	UpdateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "filesend",
			Subsystem: "bot",
			Name:      "update_duration_seconds",
			Help:      "Update handling duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"kind"},
	)

	// Document deliveries
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filesend",
			Subsystem: "bot",
			Name:      "uploads_total",
			Help:      "Total document deliveries by type and outcome",
		},
		[]string{"file_type", "status"},
	)

	// Remote storage calls
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filesend",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Total remote storage calls",
		},
		[]string{"backend", "operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "filesend",
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Remote storage call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"backend", "operation"},
	)

	SimilarityDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "filesend",
			Subsystem: "similarity",
			Name:      "check_duration_seconds",
			Help:      "Similarity pass duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"timed_out"},
	)

	// Log channel sends
	RelaySendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filesend",
			Subsystem: "relay",
			Name:      "sends_total",
			Help:      "Total log channel notifications",
		},
		[]string{"event", "status"},
	)

	ScratchFilesSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "filesend",
			Subsystem: "scratch",
			Name:      "files_swept_total",
			Help:      "Stale scratch files removed by the sweeper",
		},
	)
)

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordUpdate records a handled update
func RecordUpdate(kind, status string, elapsed time.Duration) {
	UpdatesTotal.WithLabelValues(kind, status).Inc()
	UpdateDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// RecordUpload records a document delivery outcome
func RecordUpload(fileType, status string) {
	UploadsTotal.WithLabelValues(fileType, status).Inc()
}

// RecordStorageOperation records a backend call
func RecordStorageOperation(backend, operation, status string, elapsed time.Duration) {
	StorageOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	StorageOperationDuration.WithLabelValues(backend, operation).Observe(elapsed.Seconds())
}

// RecordSimilarity matches similarity.Observer
func RecordSimilarity(elapsed time.Duration, timedOut bool) {
	label := "false"
	if timedOut {
		label = "true"
	}
	SimilarityDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// RecordRelaySend records a log channel notification
func RecordRelaySend(event, status string) {
	RelaySendsTotal.WithLabelValues(event, status).Inc()
}

// RecordScratchSwept counts removed scratch files
func RecordScratchSwept(n int) {
	ScratchFilesSwept.Add(float64(n))
}

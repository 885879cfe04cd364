package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels for RecordOperation.
const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultNotFound = "not_found"
	ResultConflict = "conflict"
	ResultError    = "error"
)

var (
	activityOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smart_tracker",
		Subsystem: "activity",
		Name:      "operations_total",
		Help:      "Activity store operations by name and outcome.",
	}, []string{"operation", "result"})
	activitiesStored = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "smart_tracker",
		Name:      "activities_stored",
		Help:      "Number of activities currently held by the store.",
	})
)

func init() {
	prometheus.MustRegister(activityOperations, activitiesStored)
}

// RecordOperation counts one store operation outcome.
func RecordOperation(operation, result string) {
	activityOperations.WithLabelValues(operation, result).Inc()
}

// SetActivitiesStored updates the stored-activities gauge.
func SetActivitiesStored(n int) {
	activitiesStored.Set(float64(n))
}

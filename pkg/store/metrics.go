package store

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the Prometheus metrics for table operations. All tables in
// the process share one set, labeled by table name.
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	keysTotal         *prometheus.GaugeVec
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// sharedMetrics registers the metrics on the default registry exactly once.
func sharedMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			operationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "moodb_operations_total",
					Help: "Total number of table operations",
				},
				[]string{"table", "operation", "status"},
			),
			operationDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "moodb_operation_duration_seconds",
					Help:    "Table operation duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"table", "operation"},
			),
			keysTotal: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "moodb_keys_total",
					Help: "Number of records currently in the table",
				},
				[]string{"table"},
			),
		}
	})
	return metrics
}

// track records one finished operation. Meant to be deferred with a named
// error return:
//
//	defer t.metrics.track(t.name, "insert", time.Now(), &err)
func (m *Metrics) track(table, operation string, start time.Time, err *error) {
	status := statusSuccess
	if err != nil && *err != nil {
		status = statusError
	}
	m.operationsTotal.WithLabelValues(table, operation, status).Inc()
	m.operationDuration.WithLabelValues(table, operation).Observe(time.Since(start).Seconds())
}

// setKeys updates the record-count gauge for a table.
func (m *Metrics) setKeys(table string, n int) {
	m.keysTotal.WithLabelValues(table).Set(float64(n))
}

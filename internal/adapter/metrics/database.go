package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DatabaseMetrics holds Prometheus metrics for snippet storage queries.
type DatabaseMetrics struct {
	QueryDuration *prometheus.HistogramVec
	ErrorsTotal   *prometheus.CounterVec
}

// NewDatabaseMetrics creates and registers database metrics on the given registry.
func NewDatabaseMetrics(reg prometheus.Registerer) *DatabaseMetrics {
	m := &DatabaseMetrics{
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds, by driver and operation.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"driver", "operation"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Total number of failed database queries, by driver and operation.",
		}, []string{"driver", "operation"}),
	}

	reg.MustRegister(m.QueryDuration, m.ErrorsTotal)
	return m
}

// ObserveQuery records one query. Pass a nil error for successful queries.
func (m *DatabaseMetrics) ObserveQuery(driver, operation string, d time.Duration, err error) {
	m.QueryDuration.WithLabelValues(driver, operation).Observe(d.Seconds())
	if err != nil {
		m.ErrorsTotal.WithLabelValues(driver, operation).Inc()
	}
}

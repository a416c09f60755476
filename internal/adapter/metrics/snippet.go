package metrics

import "github.com/prometheus/client_golang/prometheus"

// SnippetMetrics counts snippet lifecycle events. It satisfies app.Metrics.
type SnippetMetrics struct {
	Created *prometheus.CounterVec
	Read    prometheus.Counter
	Burned  prometheus.Counter
	Expired prometheus.Counter
}

// NewSnippetMetrics creates and registers snippet metrics on the given registry.
func NewSnippetMetrics(reg prometheus.Registerer) *SnippetMetrics {
	m := &SnippetMetrics{
		Created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snippets",
			Name:      "created_total",
			Help:      "Total number of snippets created, by language.",
		}, []string{"language"}),
		Read: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snippets",
			Name:      "read_total",
			Help:      "Total number of snippets served.",
		}),
		Burned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snippets",
			Name:      "burned_total",
			Help:      "Total number of burn-after-read snippets deleted on read.",
		}),
		Expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snippets",
			Name:      "expired_total",
			Help:      "Total number of expired snippets deleted.",
		}),
	}

	reg.MustRegister(m.Created, m.Read, m.Burned, m.Expired)
	return m
}

func (m *SnippetMetrics) SnippetCreated(language string) {
	m.Created.WithLabelValues(language).Inc()
}

func (m *SnippetMetrics) SnippetRead() {
	m.Read.Inc()
}

func (m *SnippetMetrics) SnippetBurned() {
	m.Burned.Inc()
}

func (m *SnippetMetrics) SnippetsExpired(n int) {
	m.Expired.Add(float64(n))
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics holds Prometheus metrics for the snippet read cache.
type CacheMetrics struct {
	Hits          *prometheus.CounterVec
	Misses        *prometheus.CounterVec
	Invalidations prometheus.Counter
	Entries       prometheus.Gauge
}

// NewCacheMetrics creates and registers cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snippet_cache",
			Name:      "hits_total",
			Help:      "Total number of snippet cache hits, by layer.",
		}, []string{"layer"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snippet_cache",
			Name:      "misses_total",
			Help:      "Total number of snippet cache misses, by layer.",
		}, []string{"layer"}),
		Invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snippet_cache",
			Name:      "invalidations_total",
			Help:      "Total number of snippet cache invalidations.",
		}),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snippet_cache",
			Name:      "entries",
			Help:      "Number of snippets held in the in-memory cache.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Invalidations, m.Entries)
	return m
}

func (m *CacheMetrics) Hit(layer string) {
	m.Hits.WithLabelValues(layer).Inc()
}

func (m *CacheMetrics) Miss(layer string) {
	m.Misses.WithLabelValues(layer).Inc()
}

func (m *CacheMetrics) Invalidated() {
	m.Invalidations.Inc()
}

func (m *CacheMetrics) SetEntries(n int) {
	m.Entries.Set(float64(n))
}

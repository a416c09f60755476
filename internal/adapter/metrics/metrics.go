// Package metrics defines the Prometheus instruments binp exports.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pscheid92/binp/internal/platform/version"
)

const namespace = "binp"

// IsOperationalPath reports whether path is a probe or scrape endpoint.
// These are left out of request metrics, request logs and rate limiting.
func IsOperationalPath(path string) bool {
	return path == "/metrics" || strings.HasPrefix(path, "/health/")
}

// NewRegistry creates a registry with Go runtime, process and build info
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		newBuildInfo(version.Get()),
	)
	return reg
}

// newBuildInfo exports the running version as a constant 1 with labels.
func newBuildInfo(info version.Info) prometheus.Collector {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build information of the running binp server.",
		ConstLabels: prometheus.Labels{
			"version":    info.Version,
			"commit":     info.Commit,
			"go_version": info.GoVersion,
		},
	}, func() float64 { return 1 })
}

// Handler serves the registry. Collection errors are counted on the registry
// and do not fail the scrape.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry:      reg,
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Package metrics holds the Prometheus collectors of the API server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	CatalogQueries  *prometheus.CounterVec
	PreloadOutcomes *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CatalogQueries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "library3d_catalog_queries_total",
			Help: "Catalog queries by source and cache outcome",
		}, []string{"source", "cache"}),
		PreloadOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "library3d_preload_outcomes_total",
			Help: "Model preloads by outcome",
		}, []string{"outcome"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "library3d_http_requests_total",
			Help: "HTTP requests by method and status",
		}, []string{"method", "status"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

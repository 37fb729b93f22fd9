// Package observability exposes Prometheus metrics for the account service.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
)

// Metrics holds the service's custom collectors on a private registry.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
}

// NewMetrics creates a registry with Go/process collectors and the
// account_operations_total counter.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ops := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_operations_total",
			Help: "Total number of account lifecycle operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	reg.MustRegister(ops)

	return &Metrics{registry: reg, operations: ops}
}

// Observe counts one operation. outcome is OutcomeSuccess or a failure code.
// A nil receiver is a no-op so handlers can run without metrics.
func (m *Metrics) Observe(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

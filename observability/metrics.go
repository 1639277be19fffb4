// Package observability provides the Prometheus metrics backing for the
// host SDK.
package observability

import (
	"net/http"

	"github.com/lantern-dev/lanternhost/domain/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromMetrics implements ports.Metrics on a Prometheus registry.
type PromMetrics struct {
	registry *prometheus.Registry

	chainsActive       prometheus.Gauge
	chainsAdded        prometheus.Counter
	requestsSubmitted  prometheus.Counter
	responsesDelivered prometheus.Counter
	leasesOutstanding  prometheus.Gauge
}

var _ ports.Metrics = (*PromMetrics)(nil)

// NewPromMetrics builds the metric set on its own registry.
func NewPromMetrics() *PromMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PromMetrics{
		registry: registry,
		chainsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lanternhost_chains_active",
			Help: "Number of currently registered chains.",
		}),
		chainsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "lanternhost_chains_added_total",
			Help: "Total number of chains registered with the engine.",
		}),
		requestsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "lanternhost_requests_submitted_total",
			Help: "Total number of JSON-RPC requests submitted.",
		}),
		responsesDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "lanternhost_responses_delivered_total",
			Help: "Total number of JSON-RPC responses delivered to leases.",
		}),
		leasesOutstanding: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lanternhost_response_leases_outstanding",
			Help: "Number of response leases acquired but not yet released.",
		}),
	}
}

// Handler returns an HTTP handler exposing the metrics.
func (m *PromMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying Prometheus registry.
func (m *PromMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PromMetrics) ChainAdded() {
	m.chainsAdded.Inc()
	m.chainsActive.Inc()
}

func (m *PromMetrics) ChainRemoved() {
	m.chainsActive.Dec()
}

func (m *PromMetrics) RequestSubmitted() {
	m.requestsSubmitted.Inc()
}

func (m *PromMetrics) ResponseDelivered() {
	m.responsesDelivered.Inc()
}

func (m *PromMetrics) LeaseAcquired() {
	m.leasesOutstanding.Inc()
}

func (m *PromMetrics) LeaseReleased() {
	m.leasesOutstanding.Dec()
}

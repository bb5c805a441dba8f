// Package metrics exposes list service counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "linkedlist"

type Metrics struct {
	Constructs         prometheus.Counter
	Appends            prometheus.Counter
	AllocationFailures prometheus.Counter
	Nodes              prometheus.Gauge
	Lists              prometheus.Gauge

	registry *prometheus.Registry
}

// New registers the collectors on a private registry, so tests and
// multiple services in one process do not collide.
func New() *Metrics {
	m := &Metrics{
		Constructs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "constructs_total",
			Help:      "Lists constructed.",
		}),
		Appends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appends_total",
			Help:      "Values appended to lists.",
		}),
		AllocationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_failures_total",
			Help:      "Construct or Append calls refused by the node allocator.",
		}),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes currently held by all lists.",
		}),
		Lists: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lists",
			Help:      "Named lists currently held.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.Constructs,
		m.Appends,
		m.AllocationFailures,
		m.Nodes,
		m.Lists,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

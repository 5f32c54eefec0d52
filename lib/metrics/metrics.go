// Package metrics implements the Prometheus metrics of the educertify service. A nil *Metrics is valid and records
// nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OK  = "ok"
	Err = "err"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	actions     *prometheus.CounterVec
	views       *prometheus.CounterVec
	actionsBusy prometheus.Gauge
}

// New returns the service metrics under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Total number of submitted actions by entry function and outcome",
			},
			[]string{"function", "outcome"},
		),
		views: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "view_queries_total",
				Help:      "Total number of view function queries by outcome",
			},
			[]string{"outcome"},
		),
		actionsBusy: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "actions_in_flight",
				Help:      "Number of actions waiting for the wallet",
			},
		),
	}

	m.registry.MustRegister(m.actions, m.views, m.actionsBusy)

	return m
}

func outcome(ok bool) string {
	if ok {
		return OK
	}
	return Err
}

// Action counts the outcome of an action calling function.
func (m *Metrics) Action(function string, ok bool) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(function, outcome(ok)).Inc()
}

// View counts the outcome of a view query.
func (m *Metrics) View(ok bool) {
	if m == nil {
		return
	}
	m.views.WithLabelValues(outcome(ok)).Inc()
}

// Begin marks an action as in flight. The returned function ends it.
func (m *Metrics) Begin() func() {
	if m == nil {
		return func() {}
	}
	m.actionsBusy.Inc()
	return m.actionsBusy.Dec
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Package metrics exports engine activity as Prometheus metrics.
package metrics

import (
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/roach88/backlash/internal/engine"
	"github.com/roach88/backlash/internal/ir"
)

// Collector implements engine.Metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	dispatchTotal   *prometheus.CounterVec
	effectTotal     *prometheus.CounterVec
	effectsInFlight prometheus.Gauge
	subscribers     prometheus.Gauge
}

var _ engine.Metrics = (*Collector)(nil)

// NewCollector creates a collector. Namespace defaults to "backlash".
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "backlash"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Committed dispatches by action and whether the state changed",
		},
		[]string{"action", "changed"},
	)

	c.effectTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effect_total",
			Help:      "Finished effects by action and outcome (ok, error, panic, refused)",
		},
		[]string{"action", "outcome"},
	)

	c.effectsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "effects_in_flight",
		Help:      "Effects currently running",
	})

	c.subscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "subscribers",
		Help:      "Registered state observers",
	})

	c.registry.MustRegister(c.dispatchTotal, c.effectTotal, c.effectsInFlight, c.subscribers)
	return c
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// DispatchProcessed counts a committed dispatch.
func (c *Collector) DispatchProcessed(action string, changed bool) {
	c.dispatchTotal.WithLabelValues(action, strconv.FormatBool(changed)).Inc()
}

// EffectStarted marks an effect as running.
func (c *Collector) EffectStarted(string) {
	c.effectsInFlight.Inc()
}

// EffectFinished counts an effect outcome. Refused effects never started, so
// they leave the in-flight gauge alone.
func (c *Collector) EffectFinished(action string, outcome ir.EffectOutcome) {
	if outcome != ir.EffectRefused {
		c.effectsInFlight.Dec()
	}
	c.effectTotal.WithLabelValues(action, string(outcome)).Inc()
}

// SubscribersChanged records the observer count.
func (c *Collector) SubscribersChanged(n int) {
	c.subscribers.Set(float64(n))
}

// WriteText writes every metric in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

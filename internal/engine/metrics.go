package engine

import "github.com/roach88/backlash/internal/ir"

// Metrics receives engine counters. metrics.Collector is the Prometheus
// implementation.
type Metrics interface {
	DispatchProcessed(action string, changed bool)
	EffectStarted(action string)
	EffectFinished(action string, outcome ir.EffectOutcome)
	SubscribersChanged(n int)
}

type noopMetrics struct{}

func (noopMetrics) DispatchProcessed(string, bool) {}
func (noopMetrics) EffectStarted(string) {}
func (noopMetrics) EffectFinished(string, ir.EffectOutcome) {}
func (noopMetrics) SubscribersChanged(int) {}

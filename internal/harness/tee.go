package harness

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/backlash/internal/engine"
	"github.com/roach88/backlash/internal/ir"
)

// teeJournal writes every record to each journal in order and joins their
// errors.
type teeJournal []engine.Journal

func (t teeJournal) WriteSession(ctx context.Context, s ir.Session) error {
	var errs []error
	for _, j := range t {
		errs = append(errs, j.WriteSession(ctx, s))
	}
	return errors.Join(errs...)
}

func (t teeJournal) WriteDispatch(ctx context.Context, d ir.DispatchRecord) error {
	var errs []error
	for _, j := range t {
		errs = append(errs, j.WriteDispatch(ctx, d))
	}
	return errors.Join(errs...)
}

func (t teeJournal) WriteEffect(ctx context.Context, e ir.EffectRecord) error {
	var errs []error
	for _, j := range t {
		errs = append(errs, j.WriteEffect(ctx, e))
	}
	return errors.Join(errs...)
}

type teeMetrics []engine.Metrics

func (t teeMetrics) DispatchProcessed(action string, changed bool) {
	for _, m := range t {
		m.DispatchProcessed(action, changed)
	}
}

func (t teeMetrics) EffectStarted(action string) {
	for _, m := range t {
		m.EffectStarted(action)
	}
}

func (t teeMetrics) EffectFinished(action string, outcome ir.EffectOutcome) {
	for _, m := range t {
		m.EffectFinished(action, outcome)
	}
}

func (t teeMetrics) SubscribersChanged(n int) {
	for _, m := range t {
		m.SubscribersChanged(n)
	}
}

// stepLog records whether each dispatch changed the state. The engine reports
// dispatches under its commit lock, so entries are in seq order.
type stepLog struct {
	mu      sync.Mutex
	changed []bool
}

func (l *stepLog) DispatchProcessed(_ string, changed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changed = append(l.changed, changed)
}

func (l *stepLog) EffectStarted(string) {}
func (l *stepLog) EffectFinished(string, ir.EffectOutcome) {}
func (l *stepLog) SubscribersChanged(int) {}

func (l *stepLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.changed)
}

func (l *stepLog) at(i int) (bool, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.changed) {
		return false, false
	}
	return l.changed[i], true
}

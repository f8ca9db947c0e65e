package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/roach88/backlash/internal/app"
	"github.com/roach88/backlash/internal/engine"
	"github.com/roach88/backlash/internal/ir"
	"github.com/roach88/backlash/internal/testutil"
)

// DefaultTimeout bounds how long a scenario waits for effects.
const DefaultTimeout = 10 * time.Second

type options struct {
	journals   []engine.Journal
	metrics    []engine.Metrics
	engineOpts []engine.Option
	logger     *slog.Logger
	timeout    time.Duration
}

// Option configures Run.
type Option func(*options)

// WithJournal also records the run into j, e.g. a store.Store.
func WithJournal(j engine.Journal) Option {
	return func(o *options) {
		o.journals = append(o.journals, j)
	}
}

// WithMetrics also reports the run to m, e.g. a metrics.Collector.
func WithMetrics(m engine.Metrics) Option {
	return func(o *options) {
		o.metrics = append(o.metrics, m)
	}
}

// WithEngineOptions passes extra options to the engine. The harness keeps
// control of the journal, metrics, session and clock, and a scenario's own
// max_effect_depth wins over these.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// WithLogger sets the logger for the harness and the engine. Logs are
// discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTimeout bounds each wait for effects and the final shutdown.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Run executes a scenario against a fresh engine and returns the result.
//
// Execution flow:
//  1. Start the screen with scripted capabilities, a fixed session id, a
//     deterministic clock and an in-memory journal
//  2. Dispatch each flow step, wait for its effects and check its expect clause
//  3. Shut the engine down, flushing the journal
//  4. Build the trace and evaluate assertions
//
// An error is returned when the run itself breaks (unknown app, a step that
// does not decode, a timeout, ctx ending). Failed expectations are reported
// in the result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	mem := testutil.NewMemoryJournal()
	steps := &stepLog{}

	engineOpts := []engine.Option{
		engine.WithLogger(o.logger),
		// Effect failures are recorded in the journal and asserted from there.
		engine.WithErrorHandler(func(err error) {
			o.logger.Debug("effect failure", "scenario", scenario.Name, "error", err)
		}),
	}
	engineOpts = append(engineOpts, o.engineOpts...)
	if scenario.MaxEffectDepth > 0 {
		engineOpts = append(engineOpts, engine.WithMaxEffectDepth(scenario.MaxEffectDepth))
	}
	engineOpts = append(engineOpts,
		engine.WithJournal(append(teeJournal{mem}, o.journals...)),
		engine.WithMetrics(append(teeMetrics{steps}, o.metrics...)),
		engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
		engine.WithClock(testutil.NewDeterministicClock()),
	)

	runner, err := app.Start(scenario.App, app.Config{
		StaticImage: scenario.StaticImage,
		Picker:      scenario.picker(),
		Options:     engineOpts,
	})
	if err != nil {
		return nil, err
	}

	var notifications atomic.Int64
	unsubscribe := runner.Subscribe(func(_ ir.IRObject) {
		notifications.Add(1)
	})

	result := NewResult()
	result.Session = runner.Session()

	flowErr := execute(ctx, runner, scenario.Flow, steps, result, o)
	unsubscribe()

	shutdownCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	shutdownErr := runner.Shutdown(shutdownCtx)
	if flowErr != nil {
		return nil, flowErr
	}
	if shutdownErr != nil {
		return nil, shutdownErr
	}

	result.State = runner.Snapshot()
	result.Notifications = int(notifications.Load())
	result.Trace = buildTrace(mem)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	o.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"events", len(result.Trace),
	)
	return result, nil
}

// execute runs the flow. It waits for effects after every step, so the
// dispatch recorded right after a step's starting length is that step's own.
func execute(ctx context.Context, runner app.Runner, flow []FlowStep, steps *stepLog, result *Result, o options) error {
	for i, step := range flow {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}
		if step.Teardown {
			runner.Close()
			o.logger.Debug("teardown", "step", i)
			continue
		}

		args, err := step.args()
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}

		before := steps.len()
		accepted, err := runner.Dispatch(step.Dispatch, args)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}
		changed, _ := steps.at(before)
		if !accepted {
			changed = false
		}

		if err := waitTimeout(ctx, runner, o.timeout); err != nil {
			return fmt.Errorf("flow step %d (%s): %w", i, step.Dispatch, err)
		}

		o.logger.Debug("flow step completed",
			"step", i,
			"action", step.Dispatch,
			"accepted", accepted,
			"changed", changed,
		)

		if step.Expect == nil {
			continue
		}
		if want := step.Expect.Accepted; want != nil && *want != accepted {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected accepted=%t, got %t", i, step.Dispatch, *want, accepted))
		}
		if want := step.Expect.Changed; want != nil && *want != changed {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected changed=%t, got %t", i, step.Dispatch, *want, changed))
		}
	}
	return nil
}

func waitTimeout(ctx context.Context, runner app.Runner, d time.Duration) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Wait()
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("effects still running after %s", d)
	case <-ctx.Done():
		return fmt.Errorf("waiting for effects: %w", ctx.Err())
	}
}

// buildTrace orders the journal by seq. Dispatch ids are replaced by seqs so
// the trace does not depend on hashing.
func buildTrace(mem *testutil.MemoryJournal) []TraceEvent {
	dispatches := mem.Dispatches()
	seqOf := make(map[string]int64, len(dispatches))
	for _, d := range dispatches {
		seqOf[d.ID] = d.Seq
	}

	trace := make([]TraceEvent, 0, len(dispatches))
	for _, d := range dispatches {
		trace = append(trace, TraceEvent{
			Type:      EventDispatch,
			Seq:       d.Seq,
			Action:    d.Action,
			Args:      d.Args,
			Changed:   d.Changed,
			HasEffect: d.HasEffect,
			Depth:     d.Depth,
			ParentSeq: seqOf[d.ParentID],
		})
	}
	for _, e := range mem.Effects() {
		trace = append(trace, TraceEvent{
			Type:        EventEffect,
			Seq:         e.Seq,
			Action:      e.Action,
			DispatchSeq: seqOf[e.DispatchID],
			Outcome:     e.Outcome,
			Error:       e.Error,
		})
	}

	sort.SliceStable(trace, func(i, j int) bool {
		if trace[i].Seq != trace[j].Seq {
			return trace[i].Seq < trace[j].Seq
		}
		return trace[i].Type == EventDispatch && trace[j].Type != EventDispatch
	})
	return trace
}

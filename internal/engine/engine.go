package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/backlash/internal/ir"
)

type snapshot[S any] struct {
	state S
}

// Engine owns the state of one application instance.
//
// Thread-safety model:
//   - Dispatch: safe from any goroutine; transitions are serialized by the
//     commit lock and each one completes (commit + notification) before
//     Dispatch returns.
//   - Dispatch from inside a notification: queued, then committed in FIFO
//     order by the dispatch that is notifying, once its own notification
//     has finished. It returns true without waiting.
//   - State: lock-free, safe from observers and effects.
//   - Subscribe and the returned unsubscribe: safe from any goroutine,
//     including from inside a notification.
type Engine[S, I any] struct {
	update   Update[S, I]
	inj      I
	equal    func(a, b S) bool
	logger   *slog.Logger
	onError  ErrorHandler
	metrics  Metrics
	journal  *journalWriter
	clock    SeqClock
	maxDepth int64
	session  string

	mu      sync.Mutex // serializes update, commit and notification
	current atomic.Pointer[snapshot[S]]
	subs    registry[S]

	pendingMu sync.Mutex // guards notifying and pending
	notifying bool
	pending   []pendingDispatch

	closed  atomic.Bool
	ctx     context.Context // canceled by Close, handed to effects
	cancel  context.CancelFunc
	effects sync.WaitGroup
}

// New commits initial.State as the starting state, recorded as seq 1 under the
// synthetic action "@init", and schedules initial.Effect if present. It never
// blocks.
func New[S, I any](initial Command[S, I], update Update[S, I], inj I, opts ...Option) *Engine[S, I] {
	if update == nil {
		panic("engine: nil update function")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	equal := sameState[S]
	if o.equal != nil {
		eq, ok := o.equal.(func(a, b S) bool)
		if !ok {
			var zero S
			panic(fmt.Sprintf("engine: WithEqual takes %T, state is %T", o.equal, zero))
		}
		equal = eq
	}

	clock := o.clock
	if clock == nil {
		clock = NewClock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine[S, I]{
		update:   update,
		inj:      inj,
		equal:    equal,
		onError:  o.onError,
		metrics:  o.metrics,
		clock:    clock,
		maxDepth: o.maxDepth,
		session:  o.sessions.Generate(),
		ctx:      ctx,
		cancel:   cancel,
	}
	e.logger = o.logger.With("session", e.session)

	if o.journal != nil {
		e.journal = startJournalWriter(o.journal, e.logger)
		e.journal.enqueue(record{kind: recordSession, session: ir.Session{
			ID:            e.session,
			App:           o.app,
			EngineVersion: ir.EngineVersion,
			IRVersion:     ir.IRVersion,
		}})
	}

	e.current.Store(&snapshot[S]{state: initial.State})
	id, seq := e.record(ir.InitAction, ir.IRArray{}, true, initial.HasEffect(), origin{})
	e.metrics.DispatchProcessed(ir.InitAction, true)

	e.logger.Info("engine started", "app", o.app, "seq", seq, "has_effect", initial.HasEffect())

	if initial.Effect != nil {
		if err := e.schedule(initial.Effect, id, ir.InitAction, 1); err != nil {
			e.onError(err)
		}
	}
	return e
}

// Dispatch applies the update function to the current state and commits the
// result. Subscribers are notified before it returns when the state changed.
// An effect on the resulting command is started without blocking.
//
// Unknown actions panic with *UnknownActionError. After Close, Dispatch does
// nothing and returns false.
func (e *Engine[S, I]) Dispatch(a Action) bool {
	return e.dispatch(a, origin{})
}

func (e *Engine[S, I]) dispatch(a Action, from origin) bool {
	if a == nil {
		panic(Unknown(nil))
	}
	if e.closed.Load() {
		e.logger.Debug("dispatch after close ignored", "action", a.ActionName())
		return false
	}
	if e.deferDispatch(a, from) {
		e.logger.Debug("dispatch queued behind notification", "action", a.ActionName())
		return true
	}

	accepted, refused := e.commit(a, from)
	for _, err := range refused {
		e.onError(err)
	}
	return accepted
}

// pendingDispatch is a dispatch issued while subscribers were being notified.
type pendingDispatch struct {
	action Action
	from   origin
}

// deferDispatch queues a while a notification is running. The dispatch that
// is notifying holds the commit lock and drains the queue before releasing it.
func (e *Engine[S, I]) deferDispatch(a Action, from origin) bool {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()

	if !e.notifying {
		return false
	}
	e.pending = append(e.pending, pendingDispatch{action: a, from: from})
	return true
}

func (e *Engine[S, I]) nextPending() (pendingDispatch, bool) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()

	if len(e.pending) == 0 {
		return pendingDispatch{}, false
	}
	next := e.pending[0]
	e.pending[0] = pendingDispatch{}
	e.pending = e.pending[1:]
	return next, true
}

// dropPending discards dispatches left queued when a transition panicked.
func (e *Engine[S, I]) dropPending() {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()

	e.notifying = false
	e.pending = nil
}

func (e *Engine[S, I]) setNotifying(v bool) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.notifying = v
}

// commit runs one transition under the commit lock, then every transition
// its observers queued. Refused effects are returned so the error handler
// runs after the lock is released.
func (e *Engine[S, I]) commit(a Action, from origin) (bool, []error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.dropPending()

	if e.closed.Load() {
		return false, nil
	}

	var refused []error
	if err := e.apply(a, from); err != nil {
		refused = append(refused, err)
	}
	for {
		next, ok := e.nextPending()
		if !ok {
			break
		}
		if e.closed.Load() {
			e.logger.Debug("queued dispatch after close ignored", "action", next.action.ActionName())
			continue
		}
		if err := e.apply(next.action, next.from); err != nil {
			refused = append(refused, err)
		}
	}
	return true, refused
}

// apply updates, records and notifies for one action. Called with the commit
// lock held.
func (e *Engine[S, I]) apply(a Action, from origin) error {
	prev := e.current.Load().state
	cmd := e.update(prev, a)
	changed := !e.equal(prev, cmd.State)
	if changed {
		e.current.Store(&snapshot[S]{state: cmd.State})
	}

	name := a.ActionName()
	id, seq := e.record(name, a.ActionArgs(), changed, cmd.HasEffect(), from)
	e.metrics.DispatchProcessed(name, changed)

	e.logger.Debug("dispatch",
		"action", name,
		"seq", seq,
		"changed", changed,
		"has_effect", cmd.HasEffect(),
		"depth", from.depth,
	)

	if changed {
		e.notify(cmd.State)
	}

	if cmd.Effect == nil {
		return nil
	}
	return e.schedule(cmd.Effect, id, name, from.depth+1)
}

func (e *Engine[S, I]) notify(state S) {
	e.setNotifying(true)
	defer e.setNotifying(false)
	e.subs.notify(state)
}

// record stamps a dispatch with the next seq and hands it to the journal.
// Called with the commit lock held (or from New, before the engine escapes).
func (e *Engine[S, I]) record(action string, args ir.IRArray, changed, hasEffect bool, from origin) (string, int64) {
	seq := e.clock.Next()
	id, err := ir.DispatchID(e.session, seq, action, args)
	if err != nil {
		e.logger.Warn("dispatch id unavailable", "action", action, "seq", seq, "error", err)
	}

	if e.journal == nil {
		return id, seq
	}

	rec := ir.DispatchRecord{
		ID:        id,
		SessionID: e.session,
		Seq:       seq,
		Action:    action,
		Args:      args,
		Changed:   changed,
		HasEffect: hasEffect,
		ParentID:  from.parentID,
		Depth:     from.depth,
	}
	if snap, ok := any(e.current.Load().state).(ir.Snapshotter); ok {
		hash, err := ir.StateHash(snap.Snapshot())
		if err != nil {
			e.logger.Warn("state hash unavailable", "action", action, "seq", seq, "error", err)
		}
		rec.StateHash = hash
	}
	e.journal.enqueue(record{kind: recordDispatch, dispatch: rec})
	return id, seq
}

func (e *Engine[S, I]) recordEffect(dispatchID, action string, outcome ir.EffectOutcome, failure error) {
	if e.journal == nil {
		return
	}
	rec := ir.EffectRecord{
		DispatchID: dispatchID,
		SessionID:  e.session,
		Action:     action,
		Outcome:    outcome,
		Seq:        e.clock.Current(),
	}
	if failure != nil {
		rec.Error = failure.Error()
	}
	e.journal.enqueue(record{kind: recordEffect, effect: rec})
}

// schedule starts eff on its own goroutine, or refuses it when depth is past
// the limit.
func (e *Engine[S, I]) schedule(eff Effect[I], dispatchID, action string, depth int64) error {
	if depth > e.maxDepth {
		err := &EffectDepthError{Action: action, DispatchID: dispatchID, Depth: depth, Limit: e.maxDepth}
		e.recordEffect(dispatchID, action, ir.EffectRefused, err)
		e.metrics.EffectFinished(action, ir.EffectRefused)
		e.logger.Warn("effect refused", "action", action, "depth", depth, "limit", e.maxDepth)
		return err
	}

	e.effects.Add(1)
	e.metrics.EffectStarted(action)
	go e.runEffect(eff, dispatchID, action, depth)
	return nil
}

func (e *Engine[S, I]) runEffect(eff Effect[I], dispatchID, action string, depth int64) {
	defer e.effects.Done()

	d := Dispatcher{target: e, from: origin{parentID: dispatchID, depth: depth}}
	recovered, err := e.invoke(eff, d)

	outcome := ir.EffectOK
	var failure error
	switch {
	case recovered != nil:
		outcome = ir.EffectPanic
		failure = &EffectError{Action: action, DispatchID: dispatchID, Panic: recovered}
	case err != nil:
		outcome = ir.EffectError
		failure = &EffectError{Action: action, DispatchID: dispatchID, Err: err}
	}

	e.recordEffect(dispatchID, action, outcome, failure)
	e.metrics.EffectFinished(action, outcome)

	if failure == nil {
		return
	}
	if recovered == nil && e.closed.Load() && errors.Is(err, context.Canceled) {
		e.logger.Debug("effect stopped by close", "action", action, "error", err)
		return
	}
	e.logger.Error("effect failed", "action", action, "dispatch_id", dispatchID, "error", failure)
	e.onError(failure)
}

func (e *Engine[S, I]) invoke(eff Effect[I], d Dispatcher) (recovered any, err error) {
	defer func() {
		if r := recover(); r != nil {
			recovered = r
		}
	}()
	return nil, eff(e.ctx, d, e.inj)
}

// State returns the most recently committed state.
func (e *Engine[S, I]) State() S {
	return e.current.Load().state
}

// Subscribe registers fn for every state committed from now on. The returned
// function unsubscribes and is idempotent.
func (e *Engine[S, I]) Subscribe(fn func(S)) (unsubscribe func()) {
	if fn == nil {
		panic("engine: nil subscriber")
	}

	id, n := e.subs.add(fn)
	e.metrics.SubscribersChanged(n)

	var once sync.Once
	return func() {
		once.Do(func() {
			if removed, n := e.subs.remove(id); removed {
				e.metrics.SubscribersChanged(n)
			}
		})
	}
}

// Close tears the engine down: later dispatches are no-ops and the context
// handed to effects is canceled. Running effects are not interrupted; the
// journal writer stops once they finish. Close does not wait for either, use
// Shutdown for that.
func (e *Engine[S, I]) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.cancel()
	if e.journal != nil {
		go func() {
			e.effects.Wait()
			e.journal.close()
		}()
	}
	e.logger.Info("engine closed", "seq", e.clock.Current())
}

// Closed reports whether Close has been called.
func (e *Engine[S, I]) Closed() bool {
	return e.closed.Load()
}

// Wait blocks until no effect is running. Effects started by effects are
// waited for too.
func (e *Engine[S, I]) Wait() {
	e.effects.Wait()
}

// Shutdown closes the engine, waits for running effects and flushes the
// journal. It returns early with ctx's error if ctx ends first.
func (e *Engine[S, I]) Shutdown(ctx context.Context) error {
	e.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.effects.Wait()
		if e.journal != nil {
			e.journal.close()
			<-e.journal.done
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown: %w", ctx.Err())
	}
}

// Session returns the id of this engine lifetime.
func (e *Engine[S, I]) Session() string {
	return e.session
}

// Seq returns the sequence number of the latest dispatch.
func (e *Engine[S, I]) Seq() int64 {
	return e.clock.Current()
}

// Subscribers returns the number of registered observers.
func (e *Engine[S, I]) Subscribers() int {
	return e.subs.len()
}

// Package engine runs a command/update state machine.
//
// An application supplies an initial Command, a pure Update function over a
// closed set of Action types, and an injection container. The Engine owns the
// current state and turns every dispatched Action into a committed transition.
//
// Dispatch cycle:
//  1. Dispatch takes the commit lock and applies Update to the current state.
//  2. If the returned state differs from the current one it is stored and
//     every subscriber is notified, in registration order, before Dispatch
//     returns.
//  3. If the Command carries an Effect it is started on its own goroutine with
//     a Dispatcher and the injections. The effect may dispatch again, which
//     repeats the cycle.
//
// Transitions are synchronous and serialized. Effects are the only
// asynchronous part and never touch the state directly.
//
// Every dispatch is stamped with a logical sequence number from the engine
// Clock. Wall-clock time is never used for ordering. When a Journal is
// configured the engine hands it a DispatchRecord per dispatch and an
// EffectRecord per finished effect through a single-writer queue, so disk I/O
// never blocks Dispatch.
package engine

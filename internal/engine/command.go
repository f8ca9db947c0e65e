package engine

import (
	"context"

	"github.com/roach88/backlash/internal/ir"
)

// Action is one member of an application's closed action set. Each action
// name maps to exactly one Go type whose fields carry the argument tuple.
type Action interface {
	// ActionName is the stable name the action is dispatched and traced under.
	ActionName() string
	// ActionArgs renders the argument tuple. Its length is fixed per name.
	ActionArgs() ir.IRArray
}

// Effect is an asynchronous side effect. It runs on its own goroutine with a
// Dispatcher bound to the engine and the engine's injections, and may
// dispatch any number of times before returning.
//
// ctx is canceled when the engine closes.
type Effect[I any] func(ctx context.Context, d Dispatcher, inj I) error

// Command is what an update returns: the next state and an optional effect.
// A nil Effect means a pure transition.
type Command[S, I any] struct {
	State  S
	Effect Effect[I]
}

// Pure returns a command with no effect.
func Pure[S, I any](state S) Command[S, I] {
	return Command[S, I]{State: state}
}

// WithEffect returns a command that commits state and then runs effect.
func WithEffect[S, I any](state S, effect Effect[I]) Command[S, I] {
	return Command[S, I]{State: state, Effect: effect}
}

// HasEffect reports whether the command carries an effect.
func (c Command[S, I]) HasEffect() bool {
	return c.Effect != nil
}

package app

import (
	"github.com/roach88/backlash/internal/engine"
	"github.com/roach88/backlash/internal/ir"
)

// runner adapts a typed engine to Runner. The embedded engine supplies the
// lifecycle methods.
type runner[S ir.Snapshotter, I any] struct {
	*engine.Engine[S, I]
	name    string
	actions engine.ActionSet
}

func newRunner[S ir.Snapshotter, I any](name string, actions engine.ActionSet, eng *engine.Engine[S, I]) *runner[S, I] {
	return &runner[S, I]{Engine: eng, name: name, actions: actions}
}

func (r *runner[S, I]) App() string {
	return r.name
}

func (r *runner[S, I]) Actions() engine.ActionSet {
	return r.actions
}

func (r *runner[S, I]) Dispatch(name string, args ir.IRArray) (bool, error) {
	if args == nil {
		args = ir.IRArray{}
	}
	a, err := r.actions.Decode(name, args)
	if err != nil {
		return false, err
	}
	return r.Engine.Dispatch(a), nil
}

func (r *runner[S, I]) Snapshot() ir.IRObject {
	return r.State().Snapshot()
}

func (r *runner[S, I]) Subscribe(fn func(ir.IRObject)) func() {
	return r.Engine.Subscribe(func(s S) { fn(s.Snapshot()) })
}

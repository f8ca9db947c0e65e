package engine

import (
	"sort"
)

// Update is the pure transition function of an application. It must return
// an equivalent Command for the same (state, action) and return the same state
// value when nothing changes. Actions outside the set panic with
// *UnknownActionError.
type Update[S, I any] func(state S, action Action) Command[S, I]

// UpdateMap is the table form of an Update: one function per action name.
type UpdateMap[S, I any] map[string]Update[S, I]

// Update adapts the map into an Update function.
func (m UpdateMap[S, I]) Update() Update[S, I] {
	return func(state S, action Action) Command[S, I] {
		if action == nil {
			panic(Unknown(nil))
		}
		fn, ok := m[action.ActionName()]
		if !ok {
			panic(Unknown(action))
		}
		return fn(state, action)
	}
}

// Check verifies that the map covers set exactly: an entry for every action
// and no entry for anything else.
func (m UpdateMap[S, I]) Check(set ActionSet) error {
	var missing, extra []string
	for _, name := range set.Names() {
		if _, ok := m[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range m {
		if !set.Has(name) {
			extra = append(extra, name)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return &CoverageError{Missing: missing, Extra: extra}
}

// On lifts a handler for one concrete action type into an UpdateMap entry.
// Receiving any other type panics with *UnknownActionError.
func On[A Action, S, I any](fn func(state S, action A) Command[S, I]) Update[S, I] {
	return func(state S, action Action) Command[S, I] {
		a, ok := action.(A)
		if !ok {
			panic(Unknown(action))
		}
		return fn(state, a)
	}
}

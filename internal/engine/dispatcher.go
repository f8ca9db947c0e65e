package engine

// dispatchTarget is the side of an engine a Dispatcher talks to.
type dispatchTarget interface {
	dispatch(a Action, from origin) bool
}

// origin records which effect issued a dispatch.
type origin struct {
	parentID string
	depth    int64
}

// Dispatcher is the capability an effect uses to feed actions back into the
// engine that started it. It carries the provenance of that effect so the
// journal can link every dispatch to its cause.
//
// The zero Dispatcher is detached: Dispatch always returns false.
type Dispatcher struct {
	target dispatchTarget
	from   origin
}

// Dispatch sends a to the owning engine. It returns false once the engine is
// closed; the action is then dropped.
func (d Dispatcher) Dispatch(a Action) bool {
	if d.target == nil {
		return false
	}
	return d.target.dispatch(a, d.from)
}

// ParentID is the id of the dispatch whose effect owns this Dispatcher.
func (d Dispatcher) ParentID() string {
	return d.from.parentID
}

// Depth is the effect depth of the owner: 1 for effects scheduled by callers
// or by the initial command, n+1 for effects scheduled from depth n.
func (d Dispatcher) Depth() int64 {
	return d.from.depth
}

package harness

import "github.com/roach88/backlash/internal/ir"

// Trace event types.
const (
	EventDispatch = "dispatch"
	EventEffect   = "effect"
)

// TraceEvent is one journal record in a form that is stable across runs:
// content-addressed ids are replaced by the seq they point to.
type TraceEvent struct {
	Type   string `json:"type"` // "dispatch" or "effect"
	Seq    int64  `json:"seq"`
	Action string `json:"action"`

	// Dispatch fields.
	Args      ir.IRArray `json:"args,omitempty"`
	Changed   bool       `json:"changed,omitempty"`
	HasEffect bool       `json:"has_effect,omitempty"`
	Depth     int64      `json:"depth,omitempty"`
	ParentSeq int64      `json:"parent_seq,omitempty"` // dispatch whose effect issued this one

	// Effect fields.
	DispatchSeq int64            `json:"dispatch_seq,omitempty"`
	Outcome     ir.EffectOutcome `json:"outcome,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// IR renders the event for golden files.
func (e TraceEvent) IR() ir.IRObject {
	obj := ir.IRObject{
		"type":   ir.IRString(e.Type),
		"seq":    ir.IRInt(e.Seq),
		"action": ir.IRString(e.Action),
	}
	if e.Type == EventEffect {
		obj["dispatch_seq"] = ir.IRInt(e.DispatchSeq)
		obj["outcome"] = ir.IRString(e.Outcome)
		if e.Error != "" {
			obj["error"] = ir.IRString(e.Error)
		}
		return obj
	}

	args := e.Args
	if args == nil {
		args = ir.IRArray{}
	}
	obj["args"] = args
	obj["changed"] = ir.IRBool(e.Changed)
	obj["has_effect"] = ir.IRBool(e.HasEffect)
	if e.Depth > 0 {
		obj["depth"] = ir.IRInt(e.Depth)
		obj["parent_seq"] = ir.IRInt(e.ParentSeq)
	}
	return obj
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Session is the session id the engine ran under.
	Session string `json:"session"`

	// Trace holds dispatches and effects ordered by seq, each dispatch
	// before the effects recorded at its seq.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the snapshot of the final state.
	State ir.IRObject `json:"state"`

	// Notifications counts observer notifications.
	Notifications int `json:"notifications"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  ir.IRObject{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Dispatches returns the dispatch events of the trace.
func (r *Result) Dispatches() []TraceEvent {
	var out []TraceEvent
	for _, e := range r.Trace {
		if e.Type == EventDispatch {
			out = append(out, e)
		}
	}
	return out
}

package ir

// Snapshotter is implemented by application states that can describe
// themselves as an IRObject. The engine hashes snapshots for the journal and
// the harness evaluates path assertions against them.
type Snapshotter interface {
	Snapshot() IRObject
}

// InitAction is the synthetic action name under which the initial state is
// recorded (always seq 1 of a session).
const InitAction = "@init"

// Session identifies one engine lifetime.
type Session struct {
	ID            string `json:"id"`
	App           string `json:"app"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// DispatchRecord describes one processed dispatch. It never carries the state,
// only its hash.
type DispatchRecord struct {
	ID        string  `json:"id"`
	SessionID string  `json:"session_id"`
	Seq       int64   `json:"seq"`
	Action    string  `json:"action"`
	Args      IRArray `json:"args"`
	Changed   bool    `json:"changed"`
	HasEffect bool    `json:"has_effect"`
	ParentID  string  `json:"parent_id,omitempty"` // dispatch whose effect issued this one
	Depth     int64   `json:"depth"`               // effect depth of the issuer, 0 for callers
	StateHash string  `json:"state_hash,omitempty"`
}

// EffectOutcome classifies how a scheduled effect ended.
type EffectOutcome string

const (
	EffectOK      EffectOutcome = "ok"
	EffectError   EffectOutcome = "error"
	EffectPanic   EffectOutcome = "panic"
	EffectRefused EffectOutcome = "refused"
)

// ValidEffectOutcomes lists the outcomes the journal accepts.
var ValidEffectOutcomes = map[EffectOutcome]bool{
	EffectOK:      true,
	EffectError:   true,
	EffectPanic:   true,
	EffectRefused: true,
}

// EffectRecord describes the end of one effect. Seq is the session clock
// position when the effect finished; it does not advance the clock.
type EffectRecord struct {
	DispatchID string        `json:"dispatch_id"`
	SessionID  string        `json:"session_id"`
	Action     string        `json:"action"`
	Outcome    EffectOutcome `json:"outcome"`
	Error      string        `json:"error,omitempty"`
	Seq        int64         `json:"seq"`
}

package testutil

import (
	"context"
	"sync"

	"github.com/roach88/backlash/internal/ir"
)

// MemoryJournal is an in-memory engine journal. The harness uses it to build
// traces; tests use it to inspect what an engine recorded.
type MemoryJournal struct {
	mu         sync.Mutex
	sessions   []ir.Session
	dispatches []ir.DispatchRecord
	effects    []ir.EffectRecord

	// Err, when set, is returned from every write after recording it.
	Err error
}

// NewMemoryJournal creates an empty journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// WriteSession records s.
func (j *MemoryJournal) WriteSession(_ context.Context, s ir.Session) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sessions = append(j.sessions, s)
	return j.Err
}

// WriteDispatch records d.
func (j *MemoryJournal) WriteDispatch(_ context.Context, d ir.DispatchRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.dispatches = append(j.dispatches, d)
	return j.Err
}

// WriteEffect records e.
func (j *MemoryJournal) WriteEffect(_ context.Context, e ir.EffectRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.effects = append(j.effects, e)
	return j.Err
}

// Sessions returns the recorded sessions.
func (j *MemoryJournal) Sessions() []ir.Session {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]ir.Session(nil), j.sessions...)
}

// Dispatches returns the recorded dispatches in write order.
func (j *MemoryJournal) Dispatches() []ir.DispatchRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]ir.DispatchRecord(nil), j.dispatches...)
}

// Effects returns the recorded effects in write order.
func (j *MemoryJournal) Effects() []ir.EffectRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]ir.EffectRecord(nil), j.effects...)
}

// Actions returns the action name of every recorded dispatch.
func (j *MemoryJournal) Actions() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	names := make([]string, len(j.dispatches))
	for i, d := range j.dispatches {
		names[i] = d.Action
	}
	return names
}

package store

import (
	"context"
	"fmt"

	"github.com/roach88/backlash/internal/ir"
)

// WriteSession inserts a session row. Rewriting an existing id is a no-op.
func (s *Store) WriteSession(ctx context.Context, sess ir.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, app, engine_version, ir_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, sess.App, sess.EngineVersion, sess.IRVersion)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteDispatch inserts a dispatch row. Ids are content-addressed, so a
// duplicate write is silently ignored. The session must exist.
func (s *Store) WriteDispatch(ctx context.Context, d ir.DispatchRecord) error {
	argsJSON, err := marshalArgs(d.Args)
	if err != nil {
		return fmt.Errorf("write dispatch: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dispatches
		(id, session_id, seq, action, args, changed, has_effect, parent_id, depth, state_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		d.ID,
		d.SessionID,
		d.Seq,
		d.Action,
		argsJSON,
		d.Changed,
		d.HasEffect,
		d.ParentID,
		d.Depth,
		d.StateHash,
	)
	if err != nil {
		return fmt.Errorf("write dispatch: %w", err)
	}
	return nil
}

// WriteEffect inserts the outcome of the effect started by e.DispatchID. Each
// dispatch has at most one effect; a second write is ignored.
func (s *Store) WriteEffect(ctx context.Context, e ir.EffectRecord) error {
	if !ir.ValidEffectOutcomes[e.Outcome] {
		return fmt.Errorf("write effect: invalid outcome %q", e.Outcome)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO effects (dispatch_id, session_id, action, outcome, error, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, e.DispatchID, e.SessionID, e.Action, string(e.Outcome), e.Error, e.Seq)
	if err != nil {
		return fmt.Errorf("write effect: %w", err)
	}
	return nil
}

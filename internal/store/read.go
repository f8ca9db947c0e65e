package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/backlash/internal/ir"
)

const dispatchColumns = `id, session_id, seq, action, args, changed, has_effect, parent_id, depth, state_hash`

const effectColumns = `dispatch_id, session_id, action, outcome, error, seq`

// ReadSessions returns every session in the order they were written.
func (s *Store) ReadSessions(ctx context.Context) ([]ir.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, app, engine_version, ir_version
		FROM sessions
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []ir.Session{}
	for rows.Next() {
		var sess ir.Session
		if err := rows.Scan(&sess.ID, &sess.App, &sess.EngineVersion, &sess.IRVersion); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadSession retrieves one session. Returns an error wrapping sql.ErrNoRows
// if it does not exist.
func (s *Store) ReadSession(ctx context.Context, id string) (ir.Session, error) {
	var sess ir.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, app, engine_version, ir_version
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &sess.App, &sess.EngineVersion, &sess.IRVersion)
	if err != nil {
		return ir.Session{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return sess, nil
}

// ReadDispatches returns the dispatches of a session.
// Ordered by seq ASC, id ASC COLLATE BINARY. Never nil.
func (s *Store) ReadDispatches(ctx context.Context, sessionID string) ([]ir.DispatchRecord, error) {
	return s.queryDispatches(ctx, `
		SELECT `+dispatchColumns+`
		FROM dispatches
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
}

// ReadDispatch retrieves one dispatch by id. Returns an error wrapping
// sql.ErrNoRows if it does not exist.
func (s *Store) ReadDispatch(ctx context.Context, id string) (ir.DispatchRecord, error) {
	d, err := scanDispatch(s.db.QueryRowContext(ctx, `
		SELECT `+dispatchColumns+`
		FROM dispatches
		WHERE id = ?
	`, id))
	if err != nil {
		return ir.DispatchRecord{}, fmt.Errorf("read dispatch %s: %w", id, err)
	}
	return d, nil
}

// ReadChildren returns the dispatches issued by the effect of parentID.
func (s *Store) ReadChildren(ctx context.Context, parentID string) ([]ir.DispatchRecord, error) {
	return s.queryDispatches(ctx, `
		SELECT `+dispatchColumns+`
		FROM dispatches
		WHERE parent_id = ? AND parent_id != ''
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, parentID)
}

// ReadEffects returns the effect outcomes of a session.
// Ordered by seq ASC, dispatch_id ASC COLLATE BINARY. Never nil.
func (s *Store) ReadEffects(ctx context.Context, sessionID string) ([]ir.EffectRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+effectColumns+`
		FROM effects
		WHERE session_id = ?
		ORDER BY seq ASC, dispatch_id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query effects: %w", err)
	}
	defer rows.Close()

	effects := []ir.EffectRecord{}
	for rows.Next() {
		var (
			e       ir.EffectRecord
			outcome string
		)
		if err := rows.Scan(&e.DispatchID, &e.SessionID, &e.Action, &outcome, &e.Error, &e.Seq); err != nil {
			return nil, fmt.Errorf("scan effect: %w", err)
		}
		e.Outcome = ir.EffectOutcome(outcome)
		effects = append(effects, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate effects: %w", err)
	}
	return effects, nil
}

// LastSeq returns the highest seq recorded for a session, or 0.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM dispatches WHERE session_id = ?
	`, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

func (s *Store) queryDispatches(ctx context.Context, query string, args ...any) ([]ir.DispatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	dispatches := []ir.DispatchRecord{}
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, err
		}
		dispatches = append(dispatches, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatches: %w", err)
	}
	return dispatches, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDispatch(row scanner) (ir.DispatchRecord, error) {
	var (
		d        ir.DispatchRecord
		argsJSON string
	)
	err := row.Scan(
		&d.ID,
		&d.SessionID,
		&d.Seq,
		&d.Action,
		&argsJSON,
		&d.Changed,
		&d.HasEffect,
		&d.ParentID,
		&d.Depth,
		&d.StateHash,
	)
	if err != nil {
		return ir.DispatchRecord{}, fmt.Errorf("scan dispatch: %w", err)
	}

	d.Args, err = unmarshalArgs(argsJSON)
	if err != nil {
		return ir.DispatchRecord{}, fmt.Errorf("dispatch %s: %w", d.ID, err)
	}
	return d, nil
}

// Package store is the SQLite dispatch journal.
//
// Three append-only tables:
//   - sessions: one row per engine lifetime
//   - dispatches: every committed dispatch, keyed by its content-addressed id,
//     with canonical JSON args and the origin dispatch of effect-issued ones
//   - effects: the outcome of every effect (ok, error, panic, refused)
//
// Ordering uses the logical seq column, never wall time. Every list query ends
// in ORDER BY seq ASC, id COLLATE BINARY ASC so reads are identical across
// runs.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//
// The schema lives in migrations/ and is applied by golang-migrate on Open.
package store

// Package ir holds the value vocabulary shared by the engine, the journal and
// the harness: constrained JSON-like values, their canonical encoding, and the
// content hashes derived from it.
//
// ir imports nothing internal. Action arguments and state snapshots are
// expressed as IRValues so they can be traced, hashed and compared without
// knowing the application types behind them.
//
// Constraints:
//   - no floats anywhere; numbers are int64
//   - canonical encoding follows RFC 8785 (UTF-16 key order, NFC strings)
//   - ordering comes from logical sequence numbers, never wall-clock time
package ir

package engine

import (
	"sync"

	"github.com/roach88/backlash/internal/ir"
)

// recordKind distinguishes journal records.
type recordKind int

const (
	recordSession recordKind = iota + 1
	recordDispatch
	recordEffect
)

// record is one journal write waiting in the queue.
type record struct {
	kind     recordKind
	session  ir.Session
	dispatch ir.DispatchRecord
	effect   ir.EffectRecord
}

// recordQueue is the unbounded FIFO between the engine and its journal
// writer. Enqueue never blocks, so a slow journal cannot stall Dispatch.
//
// A buffered signal channel (size 1) coalesces wake-ups; closing it wakes the
// writer for the final drain.
type recordQueue struct {
	mu      sync.Mutex
	records []record
	closed  bool
	signal  chan struct{}
}

func newRecordQueue() *recordQueue {
	return &recordQueue{
		records: make([]record, 0, 64),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue appends r. Returns false once the queue is closed.
func (q *recordQueue) Enqueue(r record) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.records = append(q.records, r)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front record without blocking.
func (q *recordQueue) TryDequeue() (record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.records) == 0 {
		return record{}, false
	}
	r := q.records[0]
	q.records[0] = record{}
	if len(q.records) == 1 {
		q.records = q.records[:0]
	} else {
		q.records = q.records[1:]
	}
	return r, true
}

// Wait returns the wake-up channel. It is closed by Close.
func (q *recordQueue) Wait() <-chan struct{} {
	return q.signal
}

// Drained reports whether the queue is closed and empty.
func (q *recordQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.records) == 0
}

// Len returns the number of queued records.
func (q *recordQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}

// Close stops further enqueues and wakes the writer.
func (q *recordQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

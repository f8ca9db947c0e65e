package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/backlash/internal/ir"
)

// Journal receives a description of everything an engine does. It never sees
// state values, only their hashes. store.Store is the SQLite implementation.
type Journal interface {
	WriteSession(ctx context.Context, s ir.Session) error
	WriteDispatch(ctx context.Context, d ir.DispatchRecord) error
	WriteEffect(ctx context.Context, e ir.EffectRecord) error
}

// journalWriter is the single goroutine that drains the record queue into the
// journal in enqueue order.
type journalWriter struct {
	journal Journal
	queue   *recordQueue
	logger  *slog.Logger
	done    chan struct{}
}

func startJournalWriter(j Journal, logger *slog.Logger) *journalWriter {
	w := &journalWriter{
		journal: j,
		queue:   newRecordQueue(),
		logger:  logger,
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *journalWriter) run() {
	defer close(w.done)

	for {
		if r, ok := w.queue.TryDequeue(); ok {
			if err := w.write(r); err != nil {
				// Journal failures never affect state; log and continue.
				w.logger.Error("journal write failed", "kind", r.kind, "error", err)
			}
			continue
		}
		if w.queue.Drained() {
			return
		}
		<-w.queue.Wait()
	}
}

func (w *journalWriter) write(r record) error {
	ctx := context.Background()
	switch r.kind {
	case recordSession:
		return w.journal.WriteSession(ctx, r.session)
	case recordDispatch:
		return w.journal.WriteDispatch(ctx, r.dispatch)
	case recordEffect:
		return w.journal.WriteEffect(ctx, r.effect)
	default:
		return nil
	}
}

func (w *journalWriter) enqueue(r record) {
	if !w.queue.Enqueue(r) {
		w.logger.Debug("journal closed, record dropped", "kind", r.kind)
	}
}

// close stops intake; done is closed after the final drain.
func (w *journalWriter) close() {
	w.queue.Close()
}

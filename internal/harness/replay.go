package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/backlash/internal/app"
	"github.com/roach88/backlash/internal/engine"
	"github.com/roach88/backlash/internal/ir"
	"github.com/roach88/backlash/internal/services"
	"github.com/roach88/backlash/internal/testutil"
)

// Divergence is one difference between a recorded session and its replay.
type Divergence struct {
	Seq      int64  `json:"seq"`
	Field    string `json:"field"`
	Recorded string `json:"recorded"`
	Replayed string `json:"replayed"`
}

func (d Divergence) String() string {
	return fmt.Sprintf("seq %d: %s recorded %s, replayed %s", d.Seq, d.Field, d.Recorded, d.Replayed)
}

// ReplayResult reports whether a session replays to the same journal.
type ReplayResult struct {
	Session     string       `json:"session"`
	App         string       `json:"app"`
	Dispatches  int          `json:"dispatches"`
	Divergences []Divergence `json:"divergences"`
}

// Deterministic is true when no divergence was found.
func (r *ReplayResult) Deterministic() bool {
	return len(r.Divergences) == 0
}

// Replay re-executes a recorded session against a fresh engine and compares
// each dispatch's id, changed flag and state hash with the recording.
//
// Every recorded dispatch after @init is issued in seq order, including the
// ones an effect issued originally. Capabilities are unscripted during replay,
// so effects fail without dispatching and the recorded order is kept.
// staticImage must be the asset the session started with; the journal does
// not store it and a wrong value shows up as a divergence at seq 1.
func Replay(ctx context.Context, session ir.Session, recorded []ir.DispatchRecord, staticImage int64) (*ReplayResult, error) {
	mem := testutil.NewMemoryJournal()
	runner, err := app.Start(session.App, app.Config{
		StaticImage: staticImage,
		Picker:      services.NewScriptedPicker(),
		Options: []engine.Option{
			engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			engine.WithErrorHandler(func(error) {}),
			engine.WithJournal(mem),
			engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(session.ID)),
			engine.WithClock(testutil.NewDeterministicClock()),
		},
	})
	if err != nil {
		return nil, err
	}

	for _, rec := range recorded {
		if rec.Action == ir.InitAction {
			continue
		}
		if _, err := runner.Dispatch(rec.Action, rec.Args); err != nil {
			_ = runner.Shutdown(ctx)
			return nil, fmt.Errorf("replay seq %d: %w", rec.Seq, err)
		}
		runner.Wait()
	}
	if err := runner.Shutdown(ctx); err != nil {
		return nil, err
	}

	return &ReplayResult{
		Session:     session.ID,
		App:         session.App,
		Dispatches:  len(recorded),
		Divergences: compareDispatches(recorded, mem.Dispatches()),
	}, nil
}

func compareDispatches(recorded, replayed []ir.DispatchRecord) []Divergence {
	divergences := []Divergence{}
	for i := 0; i < max(len(recorded), len(replayed)); i++ {
		switch {
		case i >= len(replayed):
			divergences = append(divergences, Divergence{
				Seq: recorded[i].Seq, Field: "dispatch", Recorded: recorded[i].Action, Replayed: "missing",
			})
			continue
		case i >= len(recorded):
			divergences = append(divergences, Divergence{
				Seq: replayed[i].Seq, Field: "dispatch", Recorded: "missing", Replayed: replayed[i].Action,
			})
			continue
		}

		a, b := recorded[i], replayed[i]
		if a.ID != b.ID {
			divergences = append(divergences, Divergence{Seq: a.Seq, Field: "id", Recorded: a.ID, Replayed: b.ID})
		}
		if a.Changed != b.Changed {
			divergences = append(divergences, Divergence{
				Seq: a.Seq, Field: "changed", Recorded: fmt.Sprint(a.Changed), Replayed: fmt.Sprint(b.Changed),
			})
		}
		if a.StateHash != b.StateHash {
			divergences = append(divergences, Divergence{Seq: a.Seq, Field: "state_hash", Recorded: a.StateHash, Replayed: b.StateHash})
		}
	}
	return divergences
}

package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/backlash/internal/ir"
	"github.com/roach88/backlash/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // optional - defaults to the latest session
	Action   string // optional - filter to specific action
}

// TraceEvent represents a single event in the trace timeline.
type TraceEvent struct {
	Seq       int64      `json:"seq"`
	Type      string     `json:"type"` // "dispatch" or "effect"
	ID        string     `json:"id"`   // dispatch id; for effects, the dispatch that scheduled it
	Action    string     `json:"action"`
	Args      ir.IRArray `json:"args,omitempty"`
	Changed   bool       `json:"changed,omitempty"`
	HasEffect bool       `json:"has_effect,omitempty"`
	Depth     int64      `json:"depth,omitempty"`
	Outcome   string     `json:"outcome,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ProvenanceEdge records that the effect of one dispatch issued another.
type ProvenanceEdge struct {
	FromDispatch string `json:"from_dispatch"`
	FromAction   string `json:"from_action"`
	ToDispatch   string `json:"to_dispatch"`
	ToAction     string `json:"to_action"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session    ir.Session       `json:"session"`
	Timeline   []TraceEvent     `json:"timeline"`
	Provenance []ProvenanceEdge `json:"provenance"`
	Stats      TraceStats       `json:"stats"`
}

// TraceStats holds summary statistics for the session.
type TraceStats struct {
	Dispatches    int   `json:"dispatches"`
	Changed       int   `json:"changed"`
	Effects       int   `json:"effects"`
	FailedEffects int   `json:"failed_effects"`
	MaxDepth      int64 `json:"max_depth"`
	LastSeq       int64 `json:"last_seq"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journal of a session",
		Long: `Show the recorded journal of one session.

The output includes:
- Timeline: dispatches and effect outcomes in seq order
- Provenance: which dispatch's effect issued which dispatch
- Stats: summary statistics for the session

Examples:
  backlash trace --db ./journal.db
  backlash trace --db ./journal.db --session 0192...
  backlash trace --db ./journal.db --action updatePhoto --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default journal.path)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to trace (default: latest)")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter to specific action")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbPath, err := opts.journalPath(opts.Database)
	if err != nil {
		return err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	session, err := findSession(ctx, st, opts.Session)
	if err != nil {
		return err
	}
	if session == nil {
		if opts.Format == "json" {
			return formatter.Respond(TraceResult{Timeline: []TraceEvent{}, Provenance: []ProvenanceEdge{}}, nil)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
		return nil
	}

	dispatches, err := st.ReadDispatches(ctx, session.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read dispatches", err)
	}
	effects, err := st.ReadEffects(ctx, session.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read effects", err)
	}

	provenance, err := buildProvenance(ctx, st, dispatches)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build provenance", err)
	}

	result := TraceResult{
		Session:    *session,
		Timeline:   buildTimeline(dispatches, effects, opts.Action),
		Provenance: provenance,
		Stats:      buildStats(dispatches, effects),
	}

	if opts.Format == "json" {
		return formatter.Respond(result, nil)
	}
	outputTraceText(formatter, result, opts.Verbose)
	return nil
}

// findSession returns the requested session, or the latest one when id is
// empty. A nil session means the journal is empty.
func findSession(ctx context.Context, st *store.Store, id string) (*ir.Session, error) {
	if id != "" {
		s, err := st.ReadSession(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", id))
		}
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read session", err)
		}
		return &s, nil
	}

	sessions, err := st.ReadSessions(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to list sessions", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[len(sessions)-1], nil
}

// buildTimeline merges dispatches and effects by seq, each dispatch before
// the effects recorded at its seq. When actionFilter is set, only that
// action's dispatches and effects are kept.
func buildTimeline(dispatches []ir.DispatchRecord, effects []ir.EffectRecord, actionFilter string) []TraceEvent {
	timeline := []TraceEvent{}

	for _, d := range dispatches {
		if actionFilter != "" && d.Action != actionFilter {
			continue
		}
		timeline = append(timeline, TraceEvent{
			Seq:       d.Seq,
			Type:      "dispatch",
			ID:        d.ID,
			Action:    d.Action,
			Args:      d.Args,
			Changed:   d.Changed,
			HasEffect: d.HasEffect,
			Depth:     d.Depth,
		})
	}
	for _, e := range effects {
		if actionFilter != "" && e.Action != actionFilter {
			continue
		}
		timeline = append(timeline, TraceEvent{
			Seq:     e.Seq,
			Type:    "effect",
			ID:      e.DispatchID,
			Action:  e.Action,
			Outcome: string(e.Outcome),
			Error:   e.Error,
		})
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		if timeline[i].Seq != timeline[j].Seq {
			return timeline[i].Seq < timeline[j].Seq
		}
		return timeline[i].Type == "dispatch" && timeline[j].Type != "dispatch"
	})
	return timeline
}

// buildProvenance follows each dispatch that scheduled an effect to the
// dispatches that effect issued.
func buildProvenance(ctx context.Context, st *store.Store, dispatches []ir.DispatchRecord) ([]ProvenanceEdge, error) {
	edges := []ProvenanceEdge{}

	for _, d := range dispatches {
		if !d.HasEffect {
			continue
		}
		children, err := st.ReadChildren(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read children of %s: %w", d.ID, err)
		}
		for _, child := range children {
			edges = append(edges, ProvenanceEdge{
				FromDispatch: d.ID,
				FromAction:   d.Action,
				ToDispatch:   child.ID,
				ToAction:     child.Action,
			})
		}
	}

	return edges, nil
}

func buildStats(dispatches []ir.DispatchRecord, effects []ir.EffectRecord) TraceStats {
	stats := TraceStats{Dispatches: len(dispatches), Effects: len(effects)}
	for _, d := range dispatches {
		if d.Changed {
			stats.Changed++
		}
		stats.MaxDepth = max(stats.MaxDepth, d.Depth)
		stats.LastSeq = max(stats.LastSeq, d.Seq)
	}
	for _, e := range effects {
		if e.Outcome != ir.EffectOK {
			stats.FailedEffects++
		}
	}
	return stats
}

// outputTraceText outputs the trace result as text.
func outputTraceText(f *OutputFormatter, result TraceResult, verbose bool) {
	s := f.styles()
	w := f.Writer

	fmt.Fprintf(w, "Trace for Session: %s\n", result.Session.ID)
	fmt.Fprintf(w, "App: %s (engine %s, ir %s)\n", result.Session.App, result.Session.EngineVersion, result.Session.IRVersion)
	fmt.Fprintln(w)

	fmt.Fprintln(w, s.header.Render("=== Timeline ==="))
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, event := range result.Timeline {
		formatTimelineEvent(w, s, event, verbose)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, s.header.Render("=== Provenance ==="))
	if len(result.Provenance) == 0 {
		fmt.Fprintln(w, "  (no effect dispatches)")
	}
	for _, edge := range result.Provenance {
		fmt.Fprintf(w, "  %s %s -[effect]-> %s %s\n",
			edge.FromAction, s.dim.Render(truncateID(edge.FromDispatch)),
			edge.ToAction, s.dim.Render(truncateID(edge.ToDispatch)))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, s.header.Render("=== Stats ==="))
	fmt.Fprintf(w, "  Dispatches:     %d\n", result.Stats.Dispatches)
	fmt.Fprintf(w, "  Changed:        %d\n", result.Stats.Changed)
	fmt.Fprintf(w, "  Effects:        %d\n", result.Stats.Effects)
	fmt.Fprintf(w, "  Failed Effects: %d\n", result.Stats.FailedEffects)
	fmt.Fprintf(w, "  Max Depth:      %d\n", result.Stats.MaxDepth)
}

// formatTimelineEvent formats a single timeline event for text output.
func formatTimelineEvent(w io.Writer, s styles, event TraceEvent, verbose bool) {
	switch event.Type {
	case "dispatch":
		indent := ""
		for range event.Depth {
			indent += "  "
		}
		line := fmt.Sprintf("  [%d] %s%s %s", event.Seq, indent, s.action.Render(event.Action), formatArgs(event.Args))
		if event.Changed {
			line += " " + s.changed.Render("*")
		}
		fmt.Fprintln(w, line)
		if verbose {
			fmt.Fprintf(w, "       ID: %s\n", truncateID(event.ID))
		}

	case "effect":
		outcome := s.pass.Render(event.Outcome)
		if event.Outcome != string(ir.EffectOK) {
			outcome = s.fail.Render(event.Outcome)
		}
		fmt.Fprintf(w, "  [%d] effect of %s: %s\n", event.Seq, event.Action, outcome)
		if event.Error != "" {
			fmt.Fprintf(w, "       Error: %s\n", event.Error)
		}
	}
}

// formatArgs renders args as canonical JSON.
func formatArgs(args ir.IRArray) string {
	if args == nil {
		return "[]"
	}
	data, err := ir.MarshalCanonical(args)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

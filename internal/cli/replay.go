package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/backlash/internal/harness"
	"github.com/roach88/backlash/internal/ir"
	"github.com/roach88/backlash/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database    string
	Session     string // optional - specific session only
	StaticImage int64
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []*harness.ReplayResult `json:"sessions"`
	TotalSessions    int                     `json:"total_sessions"`
	AllDeterministic bool                    `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the journal and verify determinism",
		Long: `Replay recorded sessions against a fresh engine and verify determinism.

Every recorded dispatch is issued again in seq order. The dispatch id,
changed flag and state hash of each replayed dispatch must match the
recording. Capabilities are not scripted during replay, so effects fail
without dispatching.

Exit codes:
  0 - All sessions are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  backlash replay --db ./journal.db
  backlash replay --db ./journal.db --session 0192...
  backlash replay --db ./journal.db --static-image 3 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default journal.path)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")
	cmd.Flags().Int64Var(&opts.StaticImage, "static-image", 0, "bundled asset the sessions started with")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
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

	var sessions []ir.Session
	if opts.Session != "" {
		s, err := findSession(ctx, st, opts.Session)
		if err != nil {
			return err
		}
		sessions = []ir.Session{*s}
	} else {
		sessions, err = st.ReadSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	result := ReplayResult{
		Sessions:         make([]*harness.ReplayResult, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}

	if len(sessions) == 0 {
		if opts.Format == "json" {
			return formatter.Respond(result, nil)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in database.")
		return nil
	}

	for _, session := range sessions {
		recorded, err := st.ReadDispatches(ctx, session.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read session %s", session.ID), err)
		}

		opts.logger().Debug("replaying session", "session", session.ID, "app", session.App, "dispatches", len(recorded))

		replayed, err := harness.Replay(ctx, session, recorded, opts.StaticImage)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", session.ID), err)
		}

		result.Sessions = append(result.Sessions, replayed)
		if !replayed.Deterministic() {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result, opts.Verbose)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(f *OutputFormatter, result ReplayResult) error {
	if result.AllDeterministic {
		return f.Respond(result, nil)
	}

	if err := f.Respond(result, &CLIError{
		Code:    "E_DETERMINISM",
		Message: "determinism verification failed",
	}); err != nil {
		return err
	}
	return NewExitError(ExitFailure, "determinism verification failed")
}

// outputReplayText outputs the replay result as text.
func outputReplayText(f *OutputFormatter, result ReplayResult, verbose bool) error {
	s := f.styles()
	w := f.Writer

	fmt.Fprintln(w, s.header.Render("=== Replay Results ==="))
	fmt.Fprintln(w)

	for _, r := range result.Sessions {
		fmt.Fprintf(w, "%s %s (%s, %d dispatches)\n", s.mark(r.Deterministic()), truncateID(r.Session), r.App, r.Dispatches)
		for _, d := range r.Divergences {
			fmt.Fprintf(w, "    %s\n", d.String())
		}
		if verbose && r.Deterministic() {
			fmt.Fprintf(w, "    %s\n", s.dim.Render("ids, changed flags and state hashes match"))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total sessions: %d\n", result.TotalSessions)

	if !result.AllDeterministic {
		fmt.Fprintf(w, "%s Determinism verification failed\n", s.mark(false))
		return NewExitError(ExitFailure, "determinism verification failed")
	}

	fmt.Fprintf(w, "%s All sessions are deterministic\n", s.mark(true))
	return nil
}

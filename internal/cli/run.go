package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/backlash/internal/engine"
	"github.com/roach88/backlash/internal/harness"
	"github.com/roach88/backlash/internal/ir"
	"github.com/roach88/backlash/internal/metrics"
	"github.com/roach88/backlash/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Metrics  bool

	// Sessions allows overriding the session id generator (for testing).
	// If nil, defaults to UUIDv7Generator. A scenario's own session wins.
	Sessions engine.SessionGenerator
}

// RunResult is the outcome of one recorded run.
type RunResult struct {
	Scenario      string      `json:"scenario"`
	Session       string      `json:"session"`
	Pass          bool        `json:"pass"`
	Errors        []string    `json:"errors,omitempty"`
	Dispatches    int         `json:"dispatches"`
	Notifications int         `json:"notifications"`
	State         ir.IRObject `json:"state"`
	Metrics       string      `json:"metrics,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a scenario and record its journal",
		Long: `Run one scenario with the SQLite dispatch journal attached.

The database is created and migrated if needed. Each run is recorded as a
new session (unless the scenario fixes its session id) that trace and
replay can inspect later.

Examples:
  backlash run --db ./journal.db scenarios/take_photo.yaml
  backlash run --db ./journal.db scenarios/take_photo.yaml --metrics`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default journal.path)")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print Prometheus metrics for the run")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	logger := opts.logger()

	dbPath, err := opts.journalPath(opts.Database)
	if err != nil {
		return err
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	if scenario.Session == "" {
		sessions := opts.Sessions
		if sessions == nil {
			sessions = engine.UUIDv7Generator{}
		}
		scenario.Session = sessions.Generate()
	}

	logger.Info("opening database", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	runOpts := []harness.Option{
		harness.WithLogger(logger),
		harness.WithJournal(st),
		harness.WithEngineOptions(engine.WithMaxEffectDepth(opts.config().Engine.MaxEffectDepth)),
	}
	var collector *metrics.Collector
	if opts.Metrics {
		collector = metrics.NewCollector("")
		runOpts = append(runOpts, harness.WithMetrics(collector))
	}

	result, err := harness.Run(commandContext(cmd), scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitFailure, "scenario run failed", err)
	}

	out := RunResult{
		Scenario:      scenario.Name,
		Session:       result.Session,
		Pass:          result.Pass,
		Errors:        result.Errors,
		Dispatches:    len(result.Dispatches()),
		Notifications: result.Notifications,
		State:         result.State,
	}
	if collector != nil {
		var buf strings.Builder
		if err := collector.WriteText(&buf); err != nil {
			return WrapExitError(ExitCommandError, "failed to render metrics", err)
		}
		out.Metrics = buf.String()
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		var failure *CLIError
		if !out.Pass {
			failure = &CLIError{Code: "E_TEST_FAILED", Message: "scenario failed"}
		}
		if err := formatter.Respond(out, failure); err != nil {
			return err
		}
	} else if err := outputRunText(formatter, out); err != nil {
		return err
	}

	if !out.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", out.Scenario))
	}
	return nil
}

func outputRunText(f *OutputFormatter, r RunResult) error {
	s := f.styles()
	w := f.Writer

	state, err := ir.MarshalCanonical(r.State)
	if err != nil {
		return fmt.Errorf("render state: %w", err)
	}

	fmt.Fprintf(w, "%s %s\n", s.mark(r.Pass), r.Scenario)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	fmt.Fprintf(w, "Session:       %s\n", r.Session)
	fmt.Fprintf(w, "Dispatches:    %d\n", r.Dispatches)
	fmt.Fprintf(w, "Notifications: %d\n", r.Notifications)
	fmt.Fprintf(w, "Final state:   %s\n", state)

	if r.Metrics != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.header.Render("=== Metrics ==="))
		fmt.Fprint(w, r.Metrics)
	}
	return nil
}

// commandContext returns the context cobra was executed with, or Background
// when the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd == nil || cmd.Context() == nil {
		return context.Background()
	}
	return cmd.Context()
}

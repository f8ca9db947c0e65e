package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/backlash/internal/ir"
)

// Snapshot renders a run for golden comparison: the scenario name, the
// session, the trace, the final state and the notification count, all as
// canonical JSON.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make(ir.IRArray, len(result.Trace))
	for i, event := range result.Trace {
		trace[i] = event.IR()
	}

	state := result.State
	if state == nil {
		state = ir.IRObject{}
	}

	return ir.MarshalCanonical(ir.IRObject{
		"scenario":      ir.IRString(scenarioName),
		"session":       ir.IRString(result.Session),
		"trace":         trace,
		"final_state":   state,
		"notifications": ir.IRInt(result.Notifications),
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check Pass as well.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}

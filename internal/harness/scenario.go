package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/backlash/internal/app"
	"github.com/roach88/backlash/internal/engine"
	"github.com/roach88/backlash/internal/ir"
	"github.com/roach88/backlash/internal/services"
)

// Scenario defines a conformance test scenario: a screen, scripted
// capabilities, a flow of dispatches and assertions over the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// App is the registry name of the screen under test.
	App string `yaml:"app"`

	// StaticImage is the bundled asset the screen starts with.
	StaticImage int64 `yaml:"static_image,omitempty"`

	// Session is a fixed session id. Defaults to testutil.DefaultSession.
	Session string `yaml:"session,omitempty"`

	// MaxEffectDepth overrides the engine's effect depth limit when positive.
	MaxEffectDepth int64 `yaml:"max_effect_depth,omitempty"`

	// Capabilities scripts what the camera and the library answer, in order.
	Capabilities Capabilities `yaml:"capabilities,omitempty"`

	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// Capabilities holds the scripted answers per picker source.
type Capabilities struct {
	Camera  []CapabilityStep `yaml:"camera,omitempty"`
	Library []CapabilityStep `yaml:"library,omitempty"`
}

// CapabilityStep is one scripted answer. Exactly one field is set.
type CapabilityStep struct {
	URI      string `yaml:"uri,omitempty"`
	Canceled bool   `yaml:"canceled,omitempty"`
	Error    string `yaml:"error,omitempty"`
}

// FlowStep either dispatches an action by name or tears the engine down.
type FlowStep struct {
	Dispatch string `yaml:"dispatch,omitempty"`

	// Args is the positional argument tuple. Omit for actions without
	// arguments.
	Args []any `yaml:"args,omitempty"`

	// Expect checks the dispatch result. Nil means no check.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Teardown closes the engine. Later dispatches must not be accepted.
	Teardown bool `yaml:"teardown,omitempty"`
}

// ExpectClause checks one dispatch. Unset fields are not checked.
type ExpectClause struct {
	Accepted *bool `yaml:"accepted,omitempty"`
	Changed  *bool `yaml:"changed,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is used by trace_contains and trace_count.
	Action string `yaml:"action,omitempty"`

	// Actions is the expected order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Args are the exact expected arguments (trace_contains).
	Args []any `yaml:"args,omitempty"`

	// Count is used by trace_count, notification_count and effect_errors.
	Count int `yaml:"count,omitempty"`

	// Path is a gjson path into the final snapshot (final_state).
	Path string `yaml:"path,omitempty"`

	// Equals is the expected value at Path (final_state).
	Equals any `yaml:"equals,omitempty"`

	// Contains is a substring one effect error must contain (effect_errors).
	Contains string `yaml:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains     = "trace_contains"
	AssertTraceOrder        = "trace_order"
	AssertTraceCount        = "trace_count"
	AssertFinalState        = "final_state"
	AssertNotificationCount = "notification_count"
	AssertEffectErrors      = "effect_errors"
)

// LoadScenario reads, parses and validates a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario parses and validates a scenario document. filename is only
// used in error positions.
func ParseScenario(filename string, data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" for "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if err := ValidateSchema(filename, data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and decodes every dispatch against
// the screen's action set.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.App == "" {
		return fmt.Errorf("app is required")
	}
	actions, err := app.ActionsFor(s.App)
	if err != nil {
		return err
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for src, steps := range map[services.Source][]CapabilityStep{
		services.Camera:  s.Capabilities.Camera,
		services.Library: s.Capabilities.Library,
	} {
		for i, step := range steps {
			if err := validateCapabilityStep(step); err != nil {
				return fmt.Errorf("capabilities.%s[%d]: %w", src, i, err)
			}
		}
	}

	for i, step := range s.Flow {
		if err := validateFlowStep(actions, step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, actions); err != nil {
			return err
		}
	}

	return nil
}

func validateCapabilityStep(step CapabilityStep) error {
	set := 0
	if step.URI != "" {
		set++
	}
	if step.Canceled {
		set++
	}
	if step.Error != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of uri, canceled, error is required")
	}
	return nil
}

func validateFlowStep(actions engine.ActionSet, step FlowStep) error {
	if step.Teardown {
		if step.Dispatch != "" || step.Args != nil || step.Expect != nil {
			return fmt.Errorf("teardown takes no dispatch, args or expect")
		}
		return nil
	}
	if step.Dispatch == "" {
		return fmt.Errorf("dispatch or teardown is required")
	}
	if step.Expect != nil && step.Expect.Accepted == nil && step.Expect.Changed == nil {
		return fmt.Errorf("expect needs accepted or changed")
	}

	args, err := step.args()
	if err != nil {
		return err
	}
	if _, err := actions.Decode(step.Dispatch, args); err != nil {
		return err
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, actions engine.ActionSet) error {
	known := func(name string) error {
		if name == ir.InitAction || actions.Has(name) {
			return nil
		}
		return fmt.Errorf("assertions[%d]: unknown action %q", index, name)
	}

	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}

	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
		if _, err := toIRArray(a.Args); err != nil {
			return fmt.Errorf("assertions[%d]: args: %w", index, err)
		}
		return known(a.Action)
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
		for _, name := range a.Actions {
			if err := known(name); err != nil {
				return err
			}
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		return known(a.Action)
	case AssertFinalState:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for final_state", index)
		}
		if a.Equals == nil {
			return fmt.Errorf("assertions[%d]: equals is required for final_state", index)
		}
		if _, err := ir.FromGo(a.Equals); err != nil {
			return fmt.Errorf("assertions[%d]: equals: %w", index, err)
		}
	case AssertNotificationCount, AssertEffectErrors:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// args converts the YAML tuple to an argument array.
func (step FlowStep) args() (ir.IRArray, error) {
	args, err := toIRArray(step.Args)
	if err != nil {
		return nil, fmt.Errorf("args: %w", err)
	}
	return args, nil
}

func toIRArray(vals []any) (ir.IRArray, error) {
	args := make(ir.IRArray, len(vals))
	for i, v := range vals {
		val, err := ir.FromGo(v)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		args[i] = val
	}
	return args, nil
}

// picker builds the scripted capabilities.
func (s *Scenario) picker() *services.ScriptedPicker {
	p := services.NewScriptedPicker()
	for src, steps := range map[services.Source][]CapabilityStep{
		services.Camera:  s.Capabilities.Camera,
		services.Library: s.Capabilities.Library,
	} {
		for _, step := range steps {
			p.Push(src, services.Step{URI: step.URI, Canceled: step.Canceled, Err: step.Error})
		}
	}
	return p
}

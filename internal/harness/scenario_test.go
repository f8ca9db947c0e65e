package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/backlash/internal/ir"
	"github.com/roach88/backlash/internal/services"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
app: filter_constructor
static_image: 2
flow:
  - dispatch: confirmAddFilter
    args: [{ name: blur, amount: 10 }]
    expect: { changed: true }
assertions:
  - type: trace_contains
    action: confirmAddFilter
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, "filter_constructor", scenario.App)
	assert.Equal(t, int64(2), scenario.StaticImage)
	require.Len(t, scenario.Flow, 1)
	assert.Len(t, scenario.Assertions, 1)
	assert.Equal(t, "confirmAddFilter", scenario.Flow[0].Dispatch)
	require.NotNil(t, scenario.Flow[0].Expect)
	assert.True(t, *scenario.Flow[0].Expect.Changed)
	assert.Nil(t, scenario.Flow[0].Expect.Accepted)

	args, err := scenario.Flow[0].args()
	require.NoError(t, err)
	assert.Equal(t, ir.IRArray{ir.IRObject{"name": ir.IRString("blur"), "amount": ir.IRInt(10)}}, args)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario file")
}

func TestLoadScenario_Testdata(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "unknown field",
			content: `
name: x
description: d
app: image_selection
flow: [{ dispatch: enterFullScreen }]
assertion: []
`,
			wantErr: "field assertion not found",
		},
		{
			name: "missing description",
			content: `
name: x
app: image_selection
flow: [{ dispatch: enterFullScreen }]
assertions: [{ type: notification_count }]
`,
			wantErr: "description is required",
		},
		{
			name: "unknown app",
			content: `
name: x
description: d
app: gallery
flow: [{ dispatch: enterFullScreen }]
assertions: [{ type: notification_count }]
`,
			wantErr: `unknown app "gallery"`,
		},
		{
			name: "empty flow",
			content: `
name: x
description: d
app: image_selection
flow: []
assertions: [{ type: notification_count }]
`,
			wantErr: "flow list is required",
		},
		{
			name: "unknown action",
			content: `
name: x
description: d
app: image_selection
flow: [{ dispatch: enterFullscreen }]
assertions: [{ type: notification_count }]
`,
			wantErr: "flow[0]: unknown action",
		},
		{
			name: "wrong arity",
			content: `
name: x
description: d
app: image_selection
flow: [{ dispatch: selectResizeMode }]
assertions: [{ type: notification_count }]
`,
			wantErr: "takes 1 argument(s), got 0",
		},
		{
			name: "bad argument",
			content: `
name: x
description: d
app: image_selection
flow: [{ dispatch: selectResizeMode, args: [sideways] }]
assertions: [{ type: notification_count }]
`,
			wantErr: "flow[0]",
		},
		{
			name: "float argument",
			content: `
name: x
description: d
app: filter_constructor
flow: [{ dispatch: confirmAddFilter, args: [{ name: blur, amount: 1.5 }] }]
assertions: [{ type: notification_count }]
`,
			wantErr: "floats are not allowed",
		},
		{
			name: "dispatch and teardown",
			content: `
name: x
description: d
app: image_selection
flow: [{ dispatch: enterFullScreen, teardown: true }]
assertions: [{ type: notification_count }]
`,
			wantErr: "teardown takes no dispatch",
		},
		{
			name: "empty expect",
			content: `
name: x
description: d
app: image_selection
flow: [{ dispatch: enterFullScreen, expect: {} }]
assertions: [{ type: notification_count }]
`,
			wantErr: "expect needs accepted or changed",
		},
		{
			name: "capability with two answers",
			content: `
name: x
description: d
app: image_selection
capabilities:
  camera: [{ uri: "file:///a.jpg", canceled: true }]
flow: [{ dispatch: takePhotoFromCamera }]
assertions: [{ type: notification_count }]
`,
			wantErr: "capabilities.camera[0]",
		},
		{
			name: "unknown assertion type",
			content: `
name: x
description: d
app: image_selection
flow: [{ dispatch: enterFullScreen }]
assertions: [{ type: trace_matches }]
`,
			wantErr: `unknown assertion type "trace_matches"`,
		},
		{
			name: "final_state without equals",
			content: `
name: x
description: d
app: image_selection
flow: [{ dispatch: enterFullScreen }]
assertions: [{ type: final_state, path: isFullScreen }]
`,
			wantErr: "equals is required",
		},
		{
			name: "trace_order with unknown action",
			content: `
name: x
description: d
app: image_selection
flow: [{ dispatch: enterFullScreen }]
assertions: [{ type: trace_order, actions: ["@init", photoTaken] }]
`,
			wantErr: `unknown action "photoTaken"`,
		},
		{
			name: "name fails schema",
			content: `
name: Bad-Name
description: d
app: image_selection
flow: [{ dispatch: enterFullScreen }]
assertions: [{ type: notification_count }]
`,
			wantErr: "schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario("scenario.yaml", []byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScenario_Picker(t *testing.T) {
	s := &Scenario{Capabilities: Capabilities{
		Camera:  []CapabilityStep{{Canceled: true}, {URI: "file:///a.jpg"}},
		Library: []CapabilityStep{{Error: "denied"}},
	}}

	p := s.picker()
	assert.Equal(t, 2, p.Remaining(services.Camera))
	assert.Equal(t, 1, p.Remaining(services.Library))
}

package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unknownActionScenario = `name: bad_action
description: "bad action"
app: image_selection
flow:
  - dispatch: launchRocket
assertions:
  - type: notification_count
    count: 0
`

const unknownFieldScenario = `name: bad_field
description: "bad field"
app: image_selection
bogus: 1
flow:
  - dispatch: enterFullScreen
`

func TestValidate_Valid(t *testing.T) {
	dir := t.TempDir()
	a := writeScenario(t, dir, "a.yaml", fullScreenScenario)
	b := writeScenario(t, dir, "b.yaml", takePhotoScenario)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 scenario(s) valid")
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown action", unknownActionScenario},
		{"unknown field", unknownFieldScenario},
		{"not yaml", "flow: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			good := writeScenario(t, dir, "good.yaml", fullScreenScenario)
			bad := writeScenario(t, dir, "bad.yaml", tt.content)

			out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), good, bad)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "✗ "+bad)
			assert.Contains(t, out, "✗ 1 of 2 scenario(s) invalid")
		})
	}
}

func TestValidate_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), missing)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, missing)
}

func TestValidate_JSON(t *testing.T) {
	dir := t.TempDir()
	bad := writeScenario(t, dir, "bad.yaml", unknownActionScenario)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), bad)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_INVALID", resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, 1, resp.Data.Files)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, bad, resp.Data.Errors[0].File)
	assert.Contains(t, resp.Data.Errors[0].Message, "launchRocket")
}

func TestValidate_RequiresArgs(t *testing.T) {
	_, err := execute(NewValidateCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
}

package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenariosDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeScenario(t, dir, "full_screen_toggle.yaml", fullScreenScenario)
	writeScenario(t, dir, "take_photo.yaml", takePhotoScenario)
	return dir
}

func TestTest_MissingDirectory(t *testing.T) {
	_, err := execute(NewTestCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_EmptyDirectory(t *testing.T) {
	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTest_AllPass(t *testing.T) {
	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenariosDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ full_screen_toggle")
	assert.Contains(t, out, "✓ take_photo")
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_Filter(t *testing.T) {
	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), "--filter", "take_*", scenariosDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ take_photo")
	assert.NotContains(t, out, "full_screen_toggle")
	assert.Contains(t, out, "1 total")
}

func TestTest_InvalidFilter(t *testing.T) {
	_, err := execute(NewTestCommand(&RootOptions{Format: "text"}), "--filter", "[", scenariosDir(t))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_Failure(t *testing.T) {
	dir := scenariosDir(t)
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_expectation")
	assert.Contains(t, out, "Test Summary: 2 passed, 1 failed, 3 total")
}

func TestTest_LoadFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", unknownFieldScenario)

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTest_GoldenUpdateAndCompare(t *testing.T) {
	dir := scenariosDir(t)
	goldenPath := filepath.Join(dir, "golden", "full_screen_toggle.golden")

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), "--update", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "(golden updated)")
	require.FileExists(t, goldenPath)

	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario":"full_screen_toggle"`)
	assert.Contains(t, string(golden), `"session":"test-session-default"`)

	// golden/ is not scanned for scenarios, and a fresh run matches.
	out, err = execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 passed, 0 failed, 2 total")

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"trace":[]}`), 0644))
	out, err = execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTest_JSON(t *testing.T) {
	dir := scenariosDir(t)
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	out, err := execute(NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Failed)
}

func TestTest_JSONEmpty(t *testing.T) {
	out, err := execute(NewTestCommand(&RootOptions{Format: "json"}), t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Data.Scenarios)
}

func TestFindScenarioFiles(t *testing.T) {
	dir := scenariosDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	writeScenario(t, filepath.Join(dir, "golden"), "ignored.yaml", fullScreenScenario)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	writeScenario(t, filepath.Join(dir, "nested"), "extra.yml", fullScreenScenario)
	writeScenario(t, dir, "README.md", "# scenarios")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "full_screen_toggle.yaml"),
		filepath.Join(dir, "take_photo.yaml"),
		filepath.Join(dir, "nested", "extra.yml"),
	}, files)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "take_photo.golden"), goldenFilePath(filepath.Join("scenarios", "take_photo.yaml")))
}

package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/backlash/internal/store"
)

func TestReplay_NoDatabase(t *testing.T) {
	_, err := execute(NewReplayCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no journal database")
}

func TestReplay_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found in database.")
}

func TestReplay_EmptyDatabaseJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	assert.Equal(t, 0, resp.Data.TotalSessions)
}

func TestReplay_Deterministic(t *testing.T) {
	dbPath := recordRun(t, takePhotoScenario, "replay-ok")

	out, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--static-image", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ replay-ok (image_selection, 3 dispatches)")
	assert.Contains(t, out, "Total sessions: 1")
	assert.Contains(t, out, "✓ All sessions are deterministic")
}

func TestReplay_WrongStaticImage(t *testing.T) {
	dbPath := recordRun(t, fullScreenScenario, "replay-diverged")

	out, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--static-image", "2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ replay-diverged")
	assert.Contains(t, out, "seq 1: state_hash")
	assert.Contains(t, out, "Determinism verification failed")
}

func TestReplay_JSONFailure(t *testing.T) {
	dbPath := recordRun(t, fullScreenScenario, "replay-json")

	out, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--session", "replay-json", "--static-image", "7")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
		Error  *CLIError    `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_DETERMINISM", resp.Error.Code)
	assert.False(t, resp.Data.AllDeterministic)
	require.Len(t, resp.Data.Sessions, 1)
	assert.NotEmpty(t, resp.Data.Sessions[0].Divergences)
}

func TestReplay_SingleSession(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "journal.db")
	scenario := writeScenario(t, dir, "s.yaml", fullScreenScenario)

	for _, session := range []string{"replay-a", "replay-b"} {
		_, err := execute(newTestRunCommand(&RootOptions{Format: "text"}, session), "--db", dbPath, scenario)
		require.NoError(t, err)
	}

	out, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--static-image", "1", "--session", "replay-b")
	require.NoError(t, err)
	assert.Contains(t, out, "replay-b")
	assert.NotContains(t, out, "replay-a")
	assert.Contains(t, out, "Total sessions: 1")

	out, err = execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--static-image", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Total sessions: 2")
}

func TestReplay_UnknownSession(t *testing.T) {
	dbPath := recordRun(t, fullScreenScenario, "replay-known")

	_, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--session", "replay-missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplay_JournalUnchanged(t *testing.T) {
	dbPath := recordRun(t, fullScreenScenario, "replay-readonly")

	_, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--static-image", "1")
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	sessions, err := st.ReadSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

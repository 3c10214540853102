package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/AI-Interview-agent/internal/config"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		configPath = ""
		configForce = false
		scoreXLSX = ""
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := runCommand(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 11, cfg.MaxTurns)

	_, err = runCommand(t, "config", "init", "--config", path)
	assert.Error(t, err, "init must not overwrite without --force")

	_, err = runCommand(t, "config", "init", "--config", path, "--force")
	assert.NoError(t, err)

	t.Setenv("GEMINI_API_KEY", "super-secret")
	out, err = runCommand(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "max_turns: 11")
	assert.Contains(t, out, "****")
	assert.NotContains(t, out, "super-secret")
}

func TestExtractCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Go engineer with PostgreSQL experience\n"), 0600))

	out, err := runCommand(t, "extract", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Go engineer with PostgreSQL experience")

	_, err = runCommand(t, "extract", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestReadTranscript(t *testing.T) {
	dir := t.TempDir()

	bare := filepath.Join(dir, "bare.json")
	require.NoError(t, os.WriteFile(bare, []byte(`[{"question": "Q1", "userResponse": "An answer"}]`), 0600))
	turns, err := readTranscript(bare)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "Q1", turns[0].Question)

	wrapped := filepath.Join(dir, "wrapped.json")
	require.NoError(t, os.WriteFile(wrapped, []byte(`{"sessionId": "abc", "questions": [{"question": "Q1"}, {"question": "Q2"}]}`), 0600))
	turns, err = readTranscript(wrapped)
	require.NoError(t, err)
	assert.Len(t, turns, 2)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0600))
	_, err = readTranscript(broken)
	assert.Error(t, err)
}

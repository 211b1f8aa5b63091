package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ucsname/internal/common"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ucsname version dev")
}

func TestStrategiesCommands(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	db := filepath.Join(home, "ucsname.db")

	out, err := executeCommand(t, "strategies", "disable", "keyword", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "disabled: keyword")

	out, err = executeCommand(t, "strategies", "priority", "contains", "3", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "contains priority set to 3")

	out, err = executeCommand(t, "strategies", "mode", "--multi-word", "partial", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "multiWordMode=partial")

	out, err = executeCommand(t, "strategies", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "keyword")
	assert.Contains(t, out, "multiWordMode: partial")

	exported := filepath.Join(home, "strategies.toml")
	_, err = executeCommand(t, "strategies", "export", exported, "--db", db)
	require.NoError(t, err)
	raw, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "multi_word_mode")

	out, err = executeCommand(t, "strategies", "reset", "--force", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Strategies reset to defaults")

	_, err = executeCommand(t, "strategies", "import", exported, "--db", db)
	require.NoError(t, err)
	out, err = executeCommand(t, "strategies", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "multiWordMode: partial")

	_, err = executeCommand(t, "strategies", "enable", "bogus", "--db", db)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnknownStrategy)

	_, err = executeCommand(t, "strategies", "threshold", "exact", "-1", "--db", db)
	require.Error(t, err)
}

func TestClassifyAndHistoryCommands(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	db := filepath.Join(home, "ucsname.db")
	termsPath := filepath.Join(home, "terms.csv")
	require.NoError(t, os.WriteFile(termsPath, []byte(fixtureTermsCSV), 0o600))

	out, err := executeCommand(t, "classify", "Metal_Door_Slam_03.wav", "--json", "--db", db, "--terms", termsPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"categoryId": "OBJImpt"`)

	out, err = executeCommand(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Metal_Door_Slam_03.wav")

	out, err = executeCommand(t, "terms", "stats", "--db", db, "--terms", termsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Terms: 5")

	out, err = executeCommand(t, "history", "--clear", "--force", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 entries")
}

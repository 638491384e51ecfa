package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/pfncards/internal/card"
	"github.com/hpungsan/pfncards/internal/convert"
	"github.com/hpungsan/pfncards/internal/deck"
	"github.com/hpungsan/pfncards/internal/errors"
)

// setupWorkDir moves the test into an empty working directory with its own data dir.
func setupWorkDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PFN_DATA_DIR", filepath.Join(dir, "data"))
	return dir
}

// runApp runs the CLI with args and returns captured stdout and stderr.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newCLIApp(&stdout, &stderr)
	err := app.Run(append([]string{"pfncards"}, args...))
	return stdout.String(), stderr.String(), err
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	var exitErr cli.ExitCoder
	require.True(t, stderrors.As(err, &exitErr), "expected cli.ExitCoder, got %T", err)
	assert.Equal(t, code, exitErr.ExitCode())
}

const sampleRaw = "quiz pop quiz\nside bedside\n\nonlyoneword\nlove love letter\nmind mind reader\ntongue tongue-tied\nskin snake skin\n"

func TestCLIDefaultAction(t *testing.T) {
	dir := setupWorkDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw.txt"), []byte(sampleRaw), 0644))

	stdout, stderr, err := runApp(t)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Successfully parsed 6 cards from raw.txt")
	assert.Contains(t, stdout, "Output written to pfn_cards.json")
	assert.Contains(t, stdout, "First 5 cards:")
	assert.Contains(t, stdout, "  1. Easy: 'Quiz' | Hard: 'Pop Quiz'")
	assert.Contains(t, stdout, "  5. Easy: 'Tongue' | Hard: 'Tongue-tied'")
	assert.NotContains(t, stdout, "6. Easy")
	assert.Equal(t, "Warning: Line 4 doesn't have expected format: 'onlyoneword'\n", stderr)

	cards, err := convert.LoadCards(filepath.Join(dir, "pfn_cards.json"))
	require.NoError(t, err)
	require.Len(t, cards, 6)
	assert.Equal(t, card.Card{Easy: "Skin", Hard: "Snake Skin"}, cards[5])
}

func TestCLIDefaultAction_MissingSource(t *testing.T) {
	dir := setupWorkDir(t)

	_, _, err := runApp(t)
	requireExitCode(t, err, 1)
	assert.Equal(t, "[FILE_NOT_FOUND] could not find input file 'raw.txt'", err.Error())

	_, statErr := os.Stat(filepath.Join(dir, "pfn_cards.json"))
	assert.True(t, os.IsNotExist(statErr), "no output must be written")
}

func TestCLIUnknownCommand(t *testing.T) {
	setupWorkDir(t)

	_, _, err := runApp(t, "frobnicate")
	requireExitCode(t, err, 1)
	assert.Contains(t, err.Error(), "INVALID_REQUEST")
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestCLIParse(t *testing.T) {
	dir := setupWorkDir(t)
	src := filepath.Join(dir, "words.txt")
	dst := filepath.Join(dir, "out", "deck.json")
	require.NoError(t, os.WriteFile(src, []byte("cat red fox\ndog   \n"), 0644))

	stdout, stderr, err := runApp(t, "parse", "-i", src, "-o", dst, "--preview", "1")
	require.NoError(t, err)

	assert.Contains(t, stdout, fmt.Sprintf("Successfully parsed 1 cards from %s", src))
	assert.Contains(t, stdout, fmt.Sprintf("Output written to %s", dst))
	assert.Contains(t, stdout, "First 1 cards:\n  1. Easy: 'Cat' | Hard: 'Red Fox'\n")
	assert.Contains(t, stderr, "Warning: Line 2 doesn't have expected format: 'dog'")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	var cards []card.Card
	require.NoError(t, json.Unmarshal(data, &cards))
	assert.Equal(t, []card.Card{{Easy: "Cat", Hard: "Red Fox"}}, cards)
}

func TestCLIParse_NoPreview(t *testing.T) {
	dir := setupWorkDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw.txt"), []byte("cat red fox\n"), 0644))

	stdout, _, err := runApp(t, "parse", "-p", "0")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "First")
}

func TestCLIParse_Errors(t *testing.T) {
	dir := setupWorkDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw.txt"), []byte("cat red fox\n"), 0644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"negative preview", []string{"parse", "-p", "-1"}, "INVALID_REQUEST"},
		{"bad extension", []string{"parse", "-o", "out.csv"}, "INVALID_REQUEST"},
		{"missing input", []string{"parse", "-i", "nope.txt"}, "[FILE_NOT_FOUND] could not find input file 'nope.txt'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runApp(t, tt.args...)
			requireExitCode(t, err, 1)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCLIParse_ConfigFile(t *testing.T) {
	dir := setupWorkDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list.txt"), []byte("sun sunburn\n"), 0644))
	configPath := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"input_path": "list.txt", "output_path": "cards.json"}`), 0644))

	stdout, _, err := runApp(t, "--config", configPath, "parse")
	require.NoError(t, err)
	assert.Contains(t, stdout, "from list.txt")

	_, err = os.Stat(filepath.Join(dir, "cards.json"))
	require.NoError(t, err)
}

func TestCLIParse_Verbose(t *testing.T) {
	dir := setupWorkDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw.txt"), []byte("cat red fox\n"), 0644))

	_, stderr, err := runApp(t, "--verbose", "parse")
	require.NoError(t, err)
	assert.Contains(t, stderr, "source parsed")
	assert.Contains(t, stderr, "destination written")
}

func TestCLICheck(t *testing.T) {
	dir := setupWorkDir(t)

	t.Run("clean", func(t *testing.T) {
		src := filepath.Join(dir, "clean.txt")
		require.NoError(t, os.WriteFile(src, []byte("cat red fox\n\nsun sunburn\n"), 0644))

		stdout, _, err := runApp(t, "check", "-i", src)
		require.NoError(t, err)

		var out convert.CheckOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		assert.Equal(t, 2, out.Count)
		assert.Empty(t, out.Issues)
	})

	t.Run("malformed", func(t *testing.T) {
		src := filepath.Join(dir, "dirty.txt")
		require.NoError(t, os.WriteFile(src, []byte("cat red fox\nalone\n"), 0644))

		stdout, stderr, err := runApp(t, "check", "-i", src)
		requireExitCode(t, err, 1)
		assert.True(t, strings.HasPrefix(err.Error(), "[MALFORMED_LINE]"), err.Error())
		assert.Contains(t, stderr, "Warning: Line 2")

		var out convert.CheckOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		assert.Equal(t, 1, out.Count)
		require.Len(t, out.Issues, 1)
		assert.Equal(t, 2, out.Issues[0].Line)
		assert.Equal(t, "alone", out.Issues[0].Content)
	})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".json", filepath.Ext(e.Name()), "check must not write output")
	}
}

func TestCLIDeckWorkflow(t *testing.T) {
	dir := setupWorkDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw.txt"), []byte(sampleRaw), 0644))

	_, _, err := runApp(t, "parse")
	require.NoError(t, err)

	stdout, _, err := runApp(t, "import", "--deck", "Party")
	require.NoError(t, err)
	var imported deck.ImportOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &imported))
	assert.Equal(t, "party", imported.Name)
	assert.Equal(t, 6, imported.Count)
	assert.False(t, imported.Replaced)

	_, _, err = runApp(t, "import", "--deck", "party")
	requireExitCode(t, err, 1)
	assert.Contains(t, err.Error(), "DECK_ALREADY_EXISTS")

	stdout, _, err = runApp(t, "import", "--deck", "party", "--replace")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &imported))
	assert.True(t, imported.Replaced)

	stdout, _, err = runApp(t, "decks")
	require.NoError(t, err)
	var decks []deck.Summary
	require.NoError(t, json.Unmarshal([]byte(stdout), &decks))
	require.Len(t, decks, 1)
	assert.Equal(t, 6, decks[0].CardCount)

	stdout, _, err = runApp(t, "sample", "--deck", "party", "-n", "3")
	require.NoError(t, err)
	var drawn []deck.Card
	require.NoError(t, json.Unmarshal([]byte(stdout), &drawn))
	assert.Len(t, drawn, 3)

	stdout, _, err = runApp(t, "sample", "--deck", "party")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &drawn))
	assert.Len(t, drawn, 6, "default sample size exceeds deck size")
}

func TestCLIDeckErrors(t *testing.T) {
	setupWorkDir(t)

	_, _, err := runApp(t, "sample", "--deck", "missing")
	requireExitCode(t, err, 1)
	assert.Contains(t, err.Error(), "NOT_FOUND")

	_, _, err = runApp(t, "import", "--deck", "party")
	requireExitCode(t, err, 1)
	assert.Contains(t, err.Error(), "FILE_NOT_FOUND")

	_, _, err = runApp(t, "import")
	require.Error(t, err, "deck flag is required")
}

func TestOutputError(t *testing.T) {
	err := outputError(errors.NewNotFound("party"))
	assert.Equal(t, "[NOT_FOUND] deck not found: party", err.Error())

	err = outputError(fmt.Errorf("plain failure"))
	assert.Equal(t, "plain failure", err.Error())
	requireExitCode(t, err, 1)
}

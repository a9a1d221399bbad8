package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spboyer/modeleval/internal/models"
)

func exportedReport(t *testing.T) string {
	t.Helper()
	cfgPath, dir := writeTestConfig(t, "")
	outDir := filepath.Join(dir, "exported")

	_, err := runCLI(t, "quick", "--config", cfgPath, "--prompts", "2", "--format", "json",
		"--export", "--output-dir", outDir, "--formats", "json")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(outDir, "*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	return matches[0]
}

func TestReportCommand_Console(t *testing.T) {
	path := exportedReport(t)

	out, err := runCLI(t, "report", path, "--interpret")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Interpretation ===")
}

func TestReportCommand_GitHubComment(t *testing.T) {
	path := exportedReport(t)

	out, err := runCLI(t, "report", path, "--format", "github-comment")
	require.NoError(t, err)
	assert.Contains(t, out, "# modeleval report: quick")
	assert.Contains(t, out, "<details>")
}

func TestReportCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o644))

	_, err := runCLI(t, "report", filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "reading report")

	_, err = runCLI(t, "report", broken)
	assert.ErrorContains(t, err, "parsing report")

	_, err = runCLI(t, "report", broken, "--format", "xml")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

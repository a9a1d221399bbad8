package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spboyer/modeleval/internal/category"
	"github.com/spboyer/modeleval/internal/models"
)

const legacyHistory = `{
  "GPT2": {
    "Electric Vehicles": {"avg_score": 0.82, "sample_size": 4},
    "AI/Technology": {"avg_score": 0.61, "sample_size": 2}
  },
  "DistilGPT2": {
    "Electric Vehicles": {"avg_score": 0.74, "sample_size": 4}
  }
}`

func writeLegacyHistory(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "legacy.json")
	require.NoError(t, os.WriteFile(path, []byte(legacyHistory), 0o644))
	return path
}

func TestHistoryShow_Empty(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "")

	out, err := runCLI(t, "history", "show", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No history recorded yet")

	out, err = runCLI(t, "history", "show", "--config", cfgPath, "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestHistoryImportShowClear(t *testing.T) {
	cfgPath, dir := writeTestConfig(t, "")
	legacy := writeLegacyHistory(t, dir)

	out, err := runCLI(t, "history", "import", "--config", cfgPath, legacy)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 entries (3 total)")

	out, err = runCLI(t, "history", "show", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Electric Vehicles")
	assert.Contains(t, out, "*GPT2")
	assert.Contains(t, out, " DistilGPT2")

	out, err = runCLI(t, "history", "show", "--config", cfgPath, "--json", "--category", "ai/technology")
	require.NoError(t, err)
	var entries []models.PerformanceEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, models.PerformanceEntry{
		Category:    category.AITechnology,
		Model:       "GPT2",
		SampleCount: 2,
		MeanScore:   0.61,
	}, entries[0])

	// imported history drives recommendations
	out, err = runCLI(t, "recommend", "--config", cfgPath, "--json",
		"Compare the environmental benefits of electric vehicles versus traditional cars.")
	require.NoError(t, err)
	var rec models.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "GPT2", rec.RecommendedModel)

	out, err = runCLI(t, "history", "clear", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared: 3 entries removed")

	out, err = runCLI(t, "history", "show", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No history recorded yet")
}

func TestHistoryImport_Merge(t *testing.T) {
	cfgPath, dir := writeTestConfig(t, "")

	_, err := runCLI(t, "quick", "--config", cfgPath, "--prompts", "1")
	require.NoError(t, err)
	before, err := runCLI(t, "history", "show", "--config", cfgPath, "--json")
	require.NoError(t, err)
	var existing []models.PerformanceEntry
	require.NoError(t, json.Unmarshal([]byte(before), &existing))
	require.NotEmpty(t, existing)

	current := filepath.Join(dir, "current.json")
	require.NoError(t, os.WriteFile(current, []byte(`{"version": 1, "entries": {
  "Business/Economics::T5-Small": {"sample_count": 3, "mean_score": 0.5, "win_count": 1}
}}`), 0o644))

	out, err := runCLI(t, "history", "import", "--config", cfgPath, "--merge", current)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported")

	after, err := runCLI(t, "history", "show", "--config", cfgPath, "--json")
	require.NoError(t, err)
	var merged []models.PerformanceEntry
	require.NoError(t, json.Unmarshal([]byte(after), &merged))
	assert.Len(t, merged, len(existing)+1)
}

func TestHistoryImport_Errors(t *testing.T) {
	cfgPath, dir := writeTestConfig(t, "")
	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("{not json"), 0o644))

	_, err := runCLI(t, "history", "import", "--config", cfgPath, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = runCLI(t, "history", "import", "--config", cfgPath, garbage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing history")

	_, err = runCLI(t, "history", "import", "--config", cfgPath)
	assert.Error(t, err)
}

func TestHistory_SQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	sqliteCfg := filepath.Join(dir, "sqlite.yaml")
	require.NoError(t, os.WriteFile(sqliteCfg, []byte("history:\n  backend: sqlite\n  path: "+filepath.Join(dir, "history.db")+"\n"), 0o644))

	legacy := writeLegacyHistory(t, dir)
	_, err := runCLI(t, "history", "import", "--config", sqliteCfg, legacy)
	require.NoError(t, err)

	out, err := runCLI(t, "history", "show", "--config", sqliteCfg, "--json")
	require.NoError(t, err)
	var entries []models.PerformanceEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 3)
	assert.FileExists(t, filepath.Join(dir, "history.db"))
}

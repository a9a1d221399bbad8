package reporting

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spboyer/modeleval/internal/models"
)

func TestMarkdown(t *testing.T) {
	md := Markdown(newTestReport(), MarkdownOptions{})

	assert.Contains(t, md, "# modeleval report: quick")
	assert.Contains(t, md, "- **Best overall model:** GPT2 (0.820, Good (70-90%))")
	assert.Contains(t, md, "- **Recommendation accuracy:** 50.0% exact, 100.0% top-2 (2 prompts)")
	assert.Contains(t, md, "| 1 | GPT2 | 0.820 | 0.800–0.840 | 0.800 | 0.870 | 0.020 | 2 | 2 |")
	assert.Contains(t, md, "| Electric Vehicles | GPT2 | 0.810 |")
	assert.Contains(t, md, "## Gaps (1)")
	assert.NotContains(t, md, "Per-prompt scores")
	assert.NotContains(t, md, "<details>")
}

func TestMarkdown_PerPrompt(t *testing.T) {
	md := Markdown(newTestReport(), MarkdownOptions{PerPrompt: true})

	assert.Contains(t, md, "| Prompt | Category | GPT2 | T5-Small | Winner | Recommended |")
	assert.Contains(t, md, "|---|---|---:|---:|---|---|")
	assert.Contains(t, md, "| Explain electric vehicle adoption challenges | Electric Vehicles | 0.810 | 0.410 | GPT2 | GPT2 ✓ |")
	assert.Contains(t, md, "| How does AI impact healthcare? | AI/Technology | 0.830 | – | GPT2 | T5-Small |")
}

func TestGitHubComment_Collapsible(t *testing.T) {
	md := GitHubComment(newTestReport())
	assert.Contains(t, md, "<details>\n<summary>Gaps (1)</summary>")
	assert.Contains(t, md, "<summary>Per-prompt scores</summary>")
	assert.Equal(t, strings.Count(md, "<details>"), strings.Count(md, "</details>"))
}

func TestCell(t *testing.T) {
	assert.Equal(t, `a \| b c`, cell("a | b\n c"))
}

func TestHTML(t *testing.T) {
	report := newTestReport()
	report.Suite = "<quick>"
	report.Gaps[0].Error = "<script>alert(1)</script>"

	page, err := HTML(report)
	require.NoError(t, err)
	html := string(page)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>modeleval report: &lt;quick&gt;</title>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>GPT2</td>")
	assert.NotContains(t, html, "<script>alert(1)</script>")
}

func TestWriteConsole(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConsole(&buf, newTestReport()))
	out := buf.String()

	assert.Contains(t, out, "MODELEVAL QUICK REPORT (run run-1)")
	assert.Contains(t, out, "Best overall:      GPT2 (0.820)")
	assert.Contains(t, out, "Rank  Model        Mean           95% CI  StdDev  Wins  Samples")
	assert.Contains(t, out, "1     GPT2        0.820      0.800-0.840   0.020     2        2")
	assert.Contains(t, out, "  Electric Vehicles  GPT2 (0.810)")
	assert.Contains(t, out, "  AI/Technology      GPT2 (0.830)")
	assert.Contains(t, out, "Gaps:")
}

func TestPadRight_WideRunes(t *testing.T) {
	assert.Equal(t, "日本  ", padRight("日本", 6))
	assert.Equal(t, "abc", padRight("abc", 2))
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", truncateName("short", 10))
	got := truncateName("a very long prompt text", 10)
	assert.Equal(t, "a very lo…", got)
}

func TestJSONRoundTrip(t *testing.T) {
	report := newTestReport()
	path := filepath.Join(t.TempDir(), "report.json")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteJSON(f, report))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, key := range []string{"executive_summary", "model_rankings", "category_champions", "recommendation_accuracy", "test_results", "per_model_scores", "gaps"} {
		assert.Contains(t, string(data), `"`+key+`"`)
	}

	got, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, report.Summary, got.Summary)
	assert.Equal(t, report.Rankings, got.Rankings)
	assert.True(t, report.GeneratedAt.Equal(got.GeneratedAt))
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := Export(newTestReport(), dir, []string{"json", "md", "html", "github", "junit"}, 0.5)
	require.NoError(t, err)
	require.Len(t, paths, 5)

	base := filepath.Join(dir, "modeleval-quick-20260314-093000")
	assert.Equal(t, []string{
		base + ".json",
		base + ".md",
		base + ".html",
		base + ".comment.md",
		base + ".junit.xml",
	}, paths)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := Export(newTestReport(), t.TempDir(), []string{"pdf"}, 0)
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestBaseName_SanitizesSuite(t *testing.T) {
	report := newTestReport()
	report.Suite = "My Corpus/v2"
	assert.Equal(t, "modeleval-my-corpus-v2-20260314-093000", BaseName(report))
	report.Suite = ""
	assert.Equal(t, "modeleval-run-20260314-093000", BaseName(report))
}

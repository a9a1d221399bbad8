package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/spboyer/modeleval/internal/models"
)

const promptColumnWidth = 48

// WriteConsole prints the report as aligned text tables.
func WriteConsole(w io.Writer, report *models.Report) error {
	var b strings.Builder
	s := report.Summary

	fmt.Fprintf(&b, "\nMODELEVAL %s REPORT (run %s)\n", strings.ToUpper(report.Suite), report.RunID)
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Total tests:       %d\n", s.TotalTests)
	fmt.Fprintf(&b, "Models evaluated:  %d\n", s.ModelsEvaluated)
	if s.BestOverallModel != "" {
		fmt.Fprintf(&b, "Best overall:      %s (%.3f)\n", s.BestOverallModel, s.BestOverallScore)
	}
	fmt.Fprintf(&b, "Excluded (gaps):   %d\n", s.ExcludedCount)
	acc := report.RecommendationAccuracy
	fmt.Fprintf(&b, "Rec. accuracy:     %.1f%% exact, %.1f%% top-2 over %d prompts\n\n", acc.Rate*100, acc.TopTwoRate*100, acc.Samples)

	modelWidth := len("Model")
	for _, r := range report.Rankings {
		modelWidth = max(modelWidth, runewidth.StringWidth(r.Model))
	}
	fmt.Fprintf(&b, "%-4s  %s  %7s  %15s  %6s  %4s  %7s\n", "Rank", padRight("Model", modelWidth), "Mean", "95% CI", "StdDev", "Wins", "Samples")
	for _, r := range report.Rankings {
		ci := fmt.Sprintf("%.3f-%.3f", r.CI.Lower, r.CI.Upper)
		fmt.Fprintf(&b, "%-4d  %s  %7.3f  %15s  %6.3f  %4d  %7d\n",
			r.Rank, padRight(r.Model, modelWidth), r.MeanOverall, ci, r.StdDev, r.Wins, r.Samples)
	}

	if len(report.CategoryChampions) > 0 {
		catWidth := 0
		for _, c := range report.CategoryChampions {
			catWidth = max(catWidth, runewidth.StringWidth(c.Category))
		}
		b.WriteString("\nCategory champions:\n")
		for _, c := range report.CategoryChampions {
			fmt.Fprintf(&b, "  %s  %s (%.3f)\n", padRight(c.Category, catWidth), c.Model, c.Score)
		}
	}

	if len(report.Insights) > 0 {
		b.WriteString("\nKey insights:\n")
		for _, in := range report.Insights {
			fmt.Fprintf(&b, "  • %s\n", in)
		}
	}

	if len(report.Gaps) > 0 {
		b.WriteString("\nGaps:\n")
		for _, g := range report.Gaps {
			fmt.Fprintf(&b, "  %s  %s  %s\n",
				padRight(g.Model, modelWidth), padRight(truncateName(g.Prompt, promptColumnWidth), promptColumnWidth), g.Error)
		}
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// truncateName shortens a name to maxLen display cells, replacing the tail
// with "…" if needed.
func truncateName(name string, maxLen int) string {
	if runewidth.StringWidth(name) <= maxLen {
		return name
	}
	return runewidth.Truncate(name, maxLen, "…")
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

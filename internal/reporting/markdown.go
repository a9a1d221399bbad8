package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/spboyer/modeleval/internal/models"
)

// MarkdownOptions tunes the Markdown rendering.
type MarkdownOptions struct {
	// PerPrompt appends the per-prompt score table.
	PerPrompt bool
	// Collapsible wraps detail sections in <details> blocks, as GitHub
	// comments expect.
	Collapsible bool
}

// Markdown renders the human-readable summary of a report.
func Markdown(report *models.Report, opts MarkdownOptions) string {
	var b strings.Builder
	s := report.Summary

	fmt.Fprintf(&b, "# modeleval report: %s\n\n", report.Suite)
	fmt.Fprintf(&b, "Run `%s`, generated %s.\n\n", report.RunID, report.GeneratedAt.UTC().Format(time.RFC3339))

	b.WriteString("## Executive summary\n\n")
	fmt.Fprintf(&b, "- **Total tests:** %d\n", s.TotalTests)
	fmt.Fprintf(&b, "- **Models evaluated:** %d\n", s.ModelsEvaluated)
	if s.BestOverallModel != "" {
		fmt.Fprintf(&b, "- **Best overall model:** %s (%.3f, %s)\n", s.BestOverallModel, s.BestOverallScore, InterpretScore(s.BestOverallScore))
	}
	fmt.Fprintf(&b, "- **Excluded responses:** %d\n", s.ExcludedCount)
	acc := report.RecommendationAccuracy
	fmt.Fprintf(&b, "- **Recommendation accuracy:** %.1f%% exact, %.1f%% top-2 (%d prompts)\n", acc.Rate*100, acc.TopTwoRate*100, acc.Samples)
	fmt.Fprintf(&b, "- **Duration:** %v\n\n", time.Duration(s.DurationMs)*time.Millisecond)

	b.WriteString("## Model rankings\n\n")
	b.WriteString("| Rank | Model | Mean | 95% CI | Quality | Similarity | Std dev | Wins | Samples |\n")
	b.WriteString("|---:|---|---:|---|---:|---:|---:|---:|---:|\n")
	for _, r := range report.Rankings {
		fmt.Fprintf(&b, "| %d | %s | %.3f | %.3f–%.3f | %.3f | %.3f | %.3f | %d | %d |\n",
			r.Rank, cell(r.Model), r.MeanOverall, r.CI.Lower, r.CI.Upper, r.MeanQuality, r.MeanSimilarity, r.StdDev, r.Wins, r.Samples)
	}
	b.WriteString("\n")

	if len(report.CategoryChampions) > 0 {
		b.WriteString("## Category champions\n\n")
		b.WriteString("| Category | Best model | Score |\n")
		b.WriteString("|---|---|---:|\n")
		for _, c := range report.CategoryChampions {
			fmt.Fprintf(&b, "| %s | %s | %.3f |\n", cell(c.Category), cell(c.Model), c.Score)
		}
		b.WriteString("\n")
	}

	if len(report.Insights) > 0 {
		b.WriteString("## Key insights\n\n")
		for _, in := range report.Insights {
			fmt.Fprintf(&b, "- %s\n", in)
		}
		b.WriteString("\n")
	}

	if len(report.Gaps) > 0 {
		openSection(&b, opts, fmt.Sprintf("Gaps (%d)", len(report.Gaps)))
		b.WriteString("| Model | Prompt | Error |\n")
		b.WriteString("|---|---|---|\n")
		for _, g := range report.Gaps {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(g.Model), cell(g.Prompt), cell(g.Error))
		}
		closeSection(&b, opts)
	}

	if opts.PerPrompt && len(report.Results) > 0 {
		openSection(&b, opts, "Per-prompt scores")
		b.WriteString("| Prompt | Category |")
		for _, m := range report.Models {
			fmt.Fprintf(&b, " %s |", cell(m))
		}
		b.WriteString(" Winner | Recommended |\n|---|---|")
		for range report.Models {
			b.WriteString("---:|")
		}
		b.WriteString("---|---|\n")
		for _, res := range report.Results {
			fmt.Fprintf(&b, "| %s | %s |", cell(res.Prompt), cell(res.Category))
			for _, m := range report.Models {
				if sc, ok := res.PerModel[m]; ok {
					fmt.Fprintf(&b, " %.3f |", sc.Overall)
				} else {
					b.WriteString(" – |")
				}
			}
			rec := ""
			if res.Recommendation != nil {
				rec = res.Recommendation.RecommendedModel
				if res.Recommendation.Hit {
					rec += " ✓"
				}
			}
			fmt.Fprintf(&b, " %s | %s |\n", cell(res.Winner), cell(rec))
		}
		closeSection(&b, opts)
	}

	return b.String()
}

// GitHubComment renders a compact Markdown body for a pull request comment.
func GitHubComment(report *models.Report) string {
	return Markdown(report, MarkdownOptions{PerPrompt: true, Collapsible: true})
}

func openSection(b *strings.Builder, opts MarkdownOptions, title string) {
	if opts.Collapsible {
		fmt.Fprintf(b, "<details>\n<summary>%s</summary>\n\n", title)
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
}

func closeSection(b *strings.Builder, opts MarkdownOptions) {
	if opts.Collapsible {
		b.WriteString("\n</details>\n\n")
		return
	}
	b.WriteString("\n")
}

// cell makes s safe inside a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// Package reporting renders a run Report as JSON, Markdown, HTML, JUnit XML
// and console text, and explains scores in plain language.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/spboyer/modeleval/internal/models"
)

// InterpretScore returns a plain-language label for a numeric score (0–1).
func InterpretScore(score float64) string {
	pct := score * 100
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// InterpretAccuracy explains a recommendation accuracy rate (0–1).
func InterpretAccuracy(acc models.AccuracyStats) string {
	if acc.Samples == 0 {
		return "No recommendations could be checked against a winner."
	}
	pct := acc.Rate * 100
	var verdict string
	switch {
	case pct >= 80:
		verdict = "Recommendations reliably pick the winner"
	case pct >= 50:
		verdict = "Recommendations pick the winner about half the time"
	default:
		verdict = "Recommendations rarely pick the winner"
	}
	return fmt.Sprintf("%s (%.0f%% exact, %.0f%% within top 2, %d prompts).", verdict, pct, acc.TopTwoRate*100, acc.Samples)
}

// InterpretSpread explains the standard deviation of a model's scores.
func InterpretSpread(stdDev float64, samples int) string {
	switch {
	case samples < 2:
		return "Too few responses to judge consistency."
	case stdDev <= 0.05:
		return "Scores are consistent across prompts."
	case stdDev <= 0.15:
		return "Scores vary moderately across prompts."
	default:
		return fmt.Sprintf("Scores vary widely across prompts (std dev %.2f). Performance depends on the topic.", stdDev)
	}
}

// FormatSummaryReport produces a full plain-language report from a Report.
func FormatSummaryReport(report *models.Report) string {
	var b strings.Builder

	s := report.Summary
	duration := time.Duration(s.DurationMs) * time.Millisecond

	b.WriteString("=== Interpretation ===\n\n")

	if s.BestOverallModel != "" {
		b.WriteString(fmt.Sprintf("Best Model:    %s, %.3f (%s)\n", s.BestOverallModel, s.BestOverallScore, InterpretScore(s.BestOverallScore)))
	} else {
		b.WriteString("Best Model:    none (no model produced a scored response)\n")
	}
	b.WriteString(fmt.Sprintf("Accuracy:      %s\n", InterpretAccuracy(report.RecommendationAccuracy)))
	b.WriteString(fmt.Sprintf("Duration:      %v\n", duration))
	b.WriteString(fmt.Sprintf("Tests:         %d prompts across %d models, %d responses excluded\n",
		s.TotalTests, s.ModelsEvaluated, s.ExcludedCount))

	if len(report.Rankings) > 0 {
		b.WriteString("\nPer-Model Interpretation:\n")
		for _, r := range report.Rankings {
			icon := "✓"
			if r.Samples == 0 {
				icon = "✗"
			}
			b.WriteString(fmt.Sprintf("  %s %s: %d wins over %d responses\n", icon, r.Model, r.Wins, r.Samples))
			if r.Samples > 0 {
				b.WriteString(fmt.Sprintf("    Score: %.2f (%s)\n", r.MeanOverall, InterpretScore(r.MeanOverall)))
				b.WriteString(fmt.Sprintf("    %s\n", InterpretSpread(r.StdDev, r.Samples)))
			}
		}
	}

	return b.String()
}

package orchestration

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spboyer/modeleval/internal/category"
	"github.com/spboyer/modeleval/internal/metrics"
	"github.com/spboyer/modeleval/internal/models"
	"github.com/spboyer/modeleval/internal/statistics"
)

// ConfidenceLevel is the bootstrap interval level used in rankings.
const ConfidenceLevel = 0.95

type modelSamples struct {
	overall    []float64
	quality    []float64
	similarity []float64
	wins       int
}

// aggregate fills rankings, category champions and the executive summary from
// report.Results and report.Gaps.
func aggregate(report *models.Report, seed int64) {
	samples := make(map[string]*modelSamples, len(report.Models))
	for _, m := range report.Models {
		samples[m] = &modelSamples{}
	}
	for _, res := range report.Results {
		for m, s := range res.PerModel {
			ms, ok := samples[m]
			if !ok {
				ms = &modelSamples{}
				samples[m] = ms
			}
			ms.overall = append(ms.overall, s.Overall)
			ms.quality = append(ms.quality, s.Quality)
			ms.similarity = append(ms.similarity, s.Similarity)
		}
		if res.Winner != "" {
			samples[res.Winner].wins++
		}
	}

	boot := statistics.NewBootstrapper(seed)
	rankings := make([]models.ModelRanking, 0, len(samples))
	for _, m := range report.Models {
		ms := samples[m]
		rankings = append(rankings, models.ModelRanking{
			Model:          m,
			MeanOverall:    metrics.Mean(ms.overall),
			MeanQuality:    metrics.Mean(ms.quality),
			MeanSimilarity: metrics.Mean(ms.similarity),
			StdDev:         metrics.StdDev(ms.overall),
			CI:             boot.MeanCI(ms.overall, ConfidenceLevel),
			Wins:           ms.wins,
			Samples:        len(ms.overall),
		})
	}
	// Models without a single score sort last.
	slices.SortStableFunc(rankings, func(a, b models.ModelRanking) int {
		if (a.Samples == 0) != (b.Samples == 0) {
			if a.Samples == 0 {
				return 1
			}
			return -1
		}
		switch {
		case a.MeanOverall > b.MeanOverall:
			return -1
		case a.MeanOverall < b.MeanOverall:
			return 1
		default:
			return strings.Compare(a.Model, b.Model)
		}
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	report.Rankings = rankings
	report.CategoryChampions = champions(report.Results)

	report.Summary = models.RunSummary{
		TotalTests:      len(report.Results),
		ModelsEvaluated: len(report.Models),
		ExcludedCount:   len(report.Gaps),
	}
	if len(rankings) > 0 && rankings[0].Samples > 0 {
		report.Summary.BestOverallModel = rankings[0].Model
		report.Summary.BestOverallScore = rankings[0].MeanOverall
	}
	for _, res := range report.Results {
		if res.ExpectedCategory != "" && res.ExpectedCategory == res.Category {
			report.Summary.ClassifiedAsExpected++
		}
	}
}

// champions returns, per category seen in results, the model with the
// highest mean overall score over that category's prompts. Categories follow
// declaration order.
func champions(results []models.TestResult) []models.CategoryChampion {
	byCategory := make(map[string]map[string][]float64)
	for _, res := range results {
		if len(res.PerModel) == 0 {
			continue
		}
		scores, ok := byCategory[res.Category]
		if !ok {
			scores = make(map[string][]float64)
			byCategory[res.Category] = scores
		}
		for m, s := range res.PerModel {
			scores[m] = append(scores[m], s.Overall)
		}
	}

	var out []models.CategoryChampion
	for _, cat := range category.Names() {
		scores, ok := byCategory[cat]
		if !ok {
			continue
		}
		champ := models.CategoryChampion{Category: cat, AllScores: make(map[string]float64, len(scores))}
		for m, vals := range scores {
			mean := metrics.Mean(vals)
			champ.AllScores[m] = mean
			if champ.Model == "" || mean > champ.Score || (mean == champ.Score && m < champ.Model) {
				champ.Model, champ.Score = m, mean
			}
		}
		out = append(out, champ)
	}
	return out
}

// insights summarizes the report in a few sentences for the executive view.
func insights(report *models.Report) []string {
	var out []string
	scored := make([]models.ModelRanking, 0, len(report.Rankings))
	for _, r := range report.Rankings {
		if r.Samples > 0 {
			scored = append(scored, r)
		}
	}
	if len(scored) > 0 {
		best := scored[0]
		out = append(out, fmt.Sprintf("%s delivers the highest mean score (%.3f over %d responses)", best.Model, best.MeanOverall, best.Samples))
	}
	if len(scored) > 1 {
		worst := scored[len(scored)-1]
		out = append(out, fmt.Sprintf("%s shows the lowest mean score (%.3f)", worst.Model, worst.MeanOverall))
		out = append(out, fmt.Sprintf("%s leads %s by %.3f", scored[0].Model, scored[1].Model, scored[0].MeanOverall-scored[1].MeanOverall))
	}
	if n := len(report.Results); n > 0 {
		out = append(out, fmt.Sprintf("average time per prompt: %.2fs", float64(report.Summary.DurationMs)/float64(n)/1000))
	}
	if acc := report.RecommendationAccuracy; acc.Samples > 0 {
		out = append(out, fmt.Sprintf("pre-run recommendation matched the winner on %d of %d prompts (%.0f%%, top-2 %.0f%%)",
			acc.Hits, acc.Samples, acc.Rate*100, acc.TopTwoRate*100))
	}
	if report.Summary.ExcludedCount > 0 {
		out = append(out, fmt.Sprintf("%d model responses excluded as gaps", report.Summary.ExcludedCount))
	}
	return out
}

package reporting

import (
	"time"

	"github.com/spboyer/modeleval/internal/category"
	"github.com/spboyer/modeleval/internal/models"
	"github.com/spboyer/modeleval/internal/statistics"
)

func newTestReport() *models.Report {
	return &models.Report{
		RunID:       "run-1",
		Suite:       "quick",
		GeneratedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Models:      []string{"GPT2", "T5-Small"},
		Summary: models.RunSummary{
			TotalTests:       2,
			ModelsEvaluated:  2,
			BestOverallModel: "GPT2",
			BestOverallScore: 0.82,
			ExcludedCount:    1,
			DurationMs:       1500,
		},
		Rankings: []models.ModelRanking{
			{
				Rank:           1,
				Model:          "GPT2",
				MeanOverall:    0.82,
				MeanQuality:    0.8,
				MeanSimilarity: 0.87,
				StdDev:         0.02,
				CI:             statistics.ConfidenceInterval{Lower: 0.8, Upper: 0.84, Mean: 0.82, ConfidenceLevel: 0.95},
				Wins:           2,
				Samples:        2,
			},
			{
				Rank:           2,
				Model:          "T5-Small",
				MeanOverall:    0.41,
				MeanQuality:    0.4,
				MeanSimilarity: 0.43,
				CI:             statistics.ConfidenceInterval{Lower: 0.41, Upper: 0.41, Mean: 0.41, ConfidenceLevel: 0.95},
				Samples:        1,
			},
		},
		CategoryChampions: []models.CategoryChampion{
			{Category: category.ElectricVehicles, Model: "GPT2", Score: 0.81},
			{Category: category.AITechnology, Model: "GPT2", Score: 0.83},
		},
		RecommendationAccuracy: models.AccuracyStats{Samples: 2, Hits: 1, TopTwo: 2, Rate: 0.5, TopTwoRate: 1},
		Insights:               []string{"GPT2 delivers the highest mean score (0.820 over 2 responses)"},
		Gaps: []models.Gap{
			{Prompt: "How does AI impact healthcare?", Model: "T5-Small", Error: "inference failed for model T5-Small: timeout"},
		},
		Results: []models.TestResult{
			{
				Prompt:   "Explain electric vehicle adoption challenges",
				Category: category.ElectricVehicles,
				PerModel: map[string]models.ScoreRecord{
					"GPT2":     {Quality: 0.8, Similarity: 0.83, Overall: 0.81},
					"T5-Small": {Quality: 0.4, Similarity: 0.43, Overall: 0.41},
				},
				Winner:         "GPT2",
				Recommendation: &models.RecommendationCheck{RecommendedModel: "GPT2", ActualRank: 1, Hit: true, TopTwo: true},
				DurationMs:     700,
			},
			{
				Prompt:         "How does AI impact healthcare?",
				Category:       category.AITechnology,
				PerModel:       map[string]models.ScoreRecord{"GPT2": {Quality: 0.8, Similarity: 0.9, Overall: 0.83}},
				Winner:         "GPT2",
				Recommendation: &models.RecommendationCheck{RecommendedModel: "T5-Small", TopTwo: true},
				DurationMs:     800,
			},
		},
	}
}

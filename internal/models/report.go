package models

import (
	"time"

	"github.com/spboyer/modeleval/internal/statistics"
)

// RecommendationCheck compares the pre-run recommendation for a prompt
// against the actual outcome of that prompt.
type RecommendationCheck struct {
	RecommendedModel string  `json:"recommended_model"`
	Confidence       float64 `json:"confidence"`
	ActualRank       int     `json:"actual_rank"` // 0 when the model produced no score
	Hit              bool    `json:"hit"`
	TopTwo           bool    `json:"top_two"`
}

// TestResult is the outcome of evaluating one prompt across all models.
type TestResult struct {
	Prompt           string                 `json:"prompt"`
	Category         string                 `json:"category"`
	ExpectedCategory string                 `json:"expected_category,omitempty"`
	PerModel         map[string]ScoreRecord `json:"per_model_scores"`
	Winner           string                 `json:"winner,omitempty"`
	Recommendation   *RecommendationCheck   `json:"recommendation,omitempty"`
	DurationMs       int64                  `json:"duration_ms"`
}

// Gap is a (prompt, model) pair excluded from scoring.
type Gap struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Error  string `json:"error"`
}

// RunSummary is the executive summary of a test run.
type RunSummary struct {
	TotalTests           int     `json:"total_tests"`
	ModelsEvaluated      int     `json:"models_evaluated"`
	BestOverallModel     string  `json:"best_overall_model"`
	BestOverallScore     float64 `json:"best_overall_score"`
	ExcludedCount        int     `json:"excluded_count"`
	ClassifiedAsExpected int     `json:"classified_as_expected"`
	DurationMs           int64   `json:"duration_ms"`
}

// ModelRanking is the aggregate performance of one model across a run.
type ModelRanking struct {
	Rank           int                           `json:"rank"`
	Model          string                        `json:"model"`
	MeanOverall    float64                       `json:"mean_overall"`
	MeanQuality    float64                       `json:"mean_quality"`
	MeanSimilarity float64                       `json:"mean_similarity"`
	StdDev         float64                       `json:"std_dev"`
	CI             statistics.ConfidenceInterval `json:"confidence_interval"`
	Wins           int                           `json:"wins"`
	Samples        int                           `json:"samples"`
}

// CategoryChampion is the best model restricted to one category's prompts.
type CategoryChampion struct {
	Category  string             `json:"category"`
	Model     string             `json:"best_model"`
	Score     float64            `json:"score"`
	AllScores map[string]float64 `json:"all_scores"`
}

// AccuracyStats tracks how often the pre-run recommendation matched reality.
type AccuracyStats struct {
	Samples    int     `json:"samples"`
	Hits       int     `json:"hits"`
	TopTwo     int     `json:"top_two_hits"`
	Rate       float64 `json:"rate"`
	TopTwoRate float64 `json:"top_two_rate"`
}

// Add folds one comparison into the running statistic.
func (a *AccuracyStats) Add(c RecommendationCheck) {
	a.Samples++
	if c.Hit {
		a.Hits++
	}
	if c.TopTwo {
		a.TopTwo++
	}
	a.Rate = float64(a.Hits) / float64(a.Samples)
	a.TopTwoRate = float64(a.TopTwo) / float64(a.Samples)
}

// Report is the aggregate output of a test run.
type Report struct {
	RunID                  string             `json:"run_id"`
	Suite                  string             `json:"suite"`
	GeneratedAt            time.Time          `json:"generated_at"`
	Models                 []string           `json:"models"`
	Summary                RunSummary         `json:"executive_summary"`
	Rankings               []ModelRanking     `json:"model_rankings"`
	CategoryChampions      []CategoryChampion `json:"category_champions"`
	RecommendationAccuracy AccuracyStats      `json:"recommendation_accuracy"`
	Insights               []string           `json:"insights,omitempty"`
	Gaps                   []Gap              `json:"gaps,omitempty"`
	Results                []TestResult       `json:"test_results"`
}

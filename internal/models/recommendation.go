package models

import (
	"fmt"
	"strings"
)

// SpeedTier is the coarse latency class of a model.
type SpeedTier string

const (
	SpeedFast   SpeedTier = "fast"
	SpeedMedium SpeedTier = "medium"
	SpeedSlow   SpeedTier = "slow"
)

// ParseSpeedTier maps config strings such as "Fast" or "medium-slow" onto a tier.
func ParseSpeedTier(s string) (SpeedTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast":
		return SpeedFast, nil
	case "", "medium":
		return SpeedMedium, nil
	case "slow", "medium-slow":
		return SpeedSlow, nil
	default:
		return "", fmt.Errorf("%w: unknown speed tier %q", ErrInvalidInput, s)
	}
}

// Preferences are the user-stated trade-offs for a recommendation.
type Preferences struct {
	PreferFast       bool `json:"prefer_fast"`
	PreferDetailed   bool `json:"prefer_detailed"`
	PreferStructured bool `json:"prefer_structured"`
}

// Recommendation is the ranked suggestion for which model to invoke next.
type Recommendation struct {
	RecommendedModel    string       `json:"recommended_model"`
	Category            string       `json:"category"`
	Complexity          float64      `json:"complexity"`
	Confidence          float64      `json:"confidence"`
	ConfidencePct       float64      `json:"confidence_pct"`
	Reasoning           []string     `json:"reasoning"`
	Alternatives        []string     `json:"alternatives"`
	ExpectedLengthWords int          `json:"expected_length_words"`
	ExpectedSpeedTier   SpeedTier    `json:"expected_speed_tier"`
	Scores              []ModelScore `json:"all_models"`
}

// ModelScore holds the base and adjusted score and rank for one candidate.
type ModelScore struct {
	ModelID       string  `json:"model_id"`
	BaseScore     float64 `json:"base_score"`
	AdjustedScore float64 `json:"adjusted_score"`
	SampleCount   int     `json:"sample_count"`
	Rank          int     `json:"rank"`
}

// MultiRecommendation suggests a diversified set of models to compare.
type MultiRecommendation struct {
	Category   string          `json:"category"`
	Complexity float64         `json:"complexity"`
	Picks      []ComparisonPick `json:"recommendations"`
}

// ComparisonPick is one entry of a MultiRecommendation.
type ComparisonPick struct {
	Model         string  `json:"model"`
	Reason        string  `json:"reason"`
	ExpectedScore float64 `json:"expected_score"`
}

package models

import "math"

// Weights for the overall score. Overall is always derived from its inputs.
const (
	QualityWeight    = 0.7
	SimilarityWeight = 0.3
)

// ScoreRecord holds the evaluation of one model response to one prompt.
type ScoreRecord struct {
	Quality    float64 `json:"quality"`
	Similarity float64 `json:"similarity"`
	Overall    float64 `json:"overall"`
	WordCount  int     `json:"word_count,omitempty"`
}

// NewScoreRecord clamps both components to [0,1] and computes Overall.
func NewScoreRecord(quality, similarity float64) ScoreRecord {
	q := Clamp01(quality)
	s := Clamp01(similarity)
	return ScoreRecord{
		Quality:    q,
		Similarity: s,
		Overall:    QualityWeight*q + SimilarityWeight*s,
	}
}

// Clamp01 limits v to the closed interval [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

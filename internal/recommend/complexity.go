package recommend

import (
	"strings"

	"github.com/spboyer/modeleval/internal/metrics"
)

var interrogatives = map[string]struct{}{
	"how": {}, "why": {}, "what": {}, "when": {}, "where": {},
	"explain": {}, "analyze": {}, "analyse": {}, "compare": {}, "evaluate": {}, "describe": {},
}

var technicalTerms = stemSet(
	"system", "process", "methodology", "framework", "implementation", "optimization",
	"architecture", "algorithm", "infrastructure", "mechanism", "protocol", "paradigm",
	"hypothesis", "theory", "analysis", "quantitative", "scalability", "integration",
)

func stemSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[metrics.Stem(w)] = struct{}{}
	}
	return out
}

// Complexity is the breakdown of a prompt complexity estimate.
type Complexity struct {
	Score          float64 `json:"score"`
	WordCount      int     `json:"word_count"`
	SubQuestions   int     `json:"sub_questions"`
	TechnicalTerms int     `json:"technical_terms"`
}

// Level labels the score as low, moderate or high.
func (c Complexity) Level() string {
	switch {
	case c.Score > HighComplexity:
		return "high"
	case c.Score < LowComplexity:
		return "low"
	default:
		return "moderate"
	}
}

// Complexity thresholds for the role bonuses.
const (
	HighComplexity = 0.7
	LowComplexity  = 0.3
)

// AnalyzeComplexity estimates how demanding a prompt is on a [0,1] scale:
// a length tier, plus sub-questions (interrogatives, extra question marks
// and "and" conjunctions) at 0.15 each capped at 0.4, plus technical terms
// at 0.1 each capped at 0.3.
func AnalyzeComplexity(prompt string) Complexity {
	fields := strings.Fields(prompt)
	c := Complexity{WordCount: len(fields)}

	switch {
	case c.WordCount <= 10:
		c.Score = 0.1
	case c.WordCount <= 20:
		c.Score = 0.2
	default:
		c.Score = 0.3
	}

	for _, w := range metrics.Words(prompt) {
		if _, ok := interrogatives[w]; ok || w == "and" {
			c.SubQuestions++
		}
		if _, ok := technicalTerms[metrics.Stem(w)]; ok {
			c.TechnicalTerms++
		}
	}
	if q := strings.Count(prompt, "?"); q > 1 {
		c.SubQuestions += q - 1
	}

	c.Score += min(0.15*float64(c.SubQuestions), 0.4)
	c.Score += min(0.1*float64(c.TechnicalTerms), 0.3)
	if c.Score > 1 {
		c.Score = 1
	}
	return c
}

package metrics

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/spboyer/modeleval/internal/models"
)

// Default target band for response length, in words.
const (
	DefaultMinWords = 50
	DefaultMaxWords = 250
)

// Evaluator scores a response against the prompt that produced it. The zero
// value is not usable; use NewEvaluator. An Evaluator is immutable and safe
// for concurrent use.
type Evaluator struct {
	minWords int
	maxWords int
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithLengthBand sets the word-count band in which length scores 1.0.
func WithLengthBand(minWords, maxWords int) EvaluatorOption {
	return func(e *Evaluator) {
		if minWords > 0 && maxWords >= minWords {
			e.minWords = minWords
			e.maxWords = maxWords
		}
	}
}

// NewEvaluator returns an Evaluator using the default 50–250 word band.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{minWords: DefaultMinWords, maxWords: DefaultMaxWords}
	for _, o := range opts {
		o(e)
	}
	return e
}

var defaultEvaluator = NewEvaluator()

// Evaluate scores response with the default evaluator.
func Evaluate(prompt, response string) (models.ScoreRecord, error) {
	return defaultEvaluator.Evaluate(prompt, response)
}

// Evaluate returns quality, similarity and overall scores for response.
// Empty prompt or response is a caller error.
func (e *Evaluator) Evaluate(prompt, response string) (models.ScoreRecord, error) {
	if strings.TrimSpace(prompt) == "" {
		return models.ScoreRecord{}, fmt.Errorf("%w: prompt is empty", models.ErrInvalidInput)
	}
	if strings.TrimSpace(response) == "" {
		return models.ScoreRecord{}, fmt.Errorf("%w: response is empty", models.ErrInvalidInput)
	}

	wordCount := len(strings.Fields(response))
	tokens := Words(response)

	quality := (e.LengthScore(wordCount) + Completeness(response) + Diversity(tokens)) / 3
	rec := models.NewScoreRecord(quality, Similarity(prompt, response))
	rec.WordCount = wordCount
	return rec, nil
}

// LengthScore is 1.0 inside the target band and decays linearly to 0 outside it.
func (e *Evaluator) LengthScore(words int) float64 {
	switch {
	case words <= 0:
		return 0
	case words < e.minWords:
		return float64(words) / float64(e.minWords)
	case words <= e.maxWords:
		return 1
	default:
		over := float64(words-e.maxWords) / float64(e.maxWords)
		return models.Clamp01(1 - over)
	}
}

// Completeness is the proportion of sentences that end in terminal
// punctuation. A sentence ends at '.', '!' or '?' followed by whitespace, at
// a line break, or at the end of the text.
func Completeness(text string) float64 {
	total, terminated := 0, 0
	var cur strings.Builder

	flush := func() {
		s := strings.TrimSpace(cur.String())
		cur.Reset()
		if s == "" {
			return
		}
		total++
		if endsSentence(s) {
			terminated++
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' {
			flush()
			continue
		}
		cur.WriteRune(r)
		if isTerminal(r) && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			flush()
		}
	}
	flush()

	if total == 0 {
		return 0
	}
	return float64(terminated) / float64(total)
}

// Diversity is the ratio of unique stems to total words, capped at 1.
func Diversity(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[Stem(t)] = struct{}{}
	}
	return models.Clamp01(float64(len(unique)) / float64(len(tokens)))
}

// Similarity is the fraction of the prompt's significant stems that also
// appear in the response. A prompt made only of stopwords scores 0.
func Similarity(prompt, response string) float64 {
	want := SignificantStems(prompt)
	if len(want) == 0 {
		return 0
	}
	have := make(map[string]struct{})
	for _, w := range Words(response) {
		have[Stem(w)] = struct{}{}
	}
	found := 0
	for s := range want {
		if _, ok := have[s]; ok {
			found++
		}
	}
	return models.Clamp01(float64(found) / float64(len(want)))
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func endsSentence(s string) bool {
	s = strings.TrimRight(s, "\"')]”’")
	if s == "" {
		return false
	}
	r := []rune(s)
	return isTerminal(r[len(r)-1])
}

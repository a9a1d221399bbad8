// Package recommend ranks candidate models for a new prompt from historical
// category performance, estimated prompt complexity and user preferences.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spboyer/modeleval/internal/category"
	"github.com/spboyer/modeleval/internal/models"
)

const (
	DefaultPreferenceBonus = 0.10
	DefaultComplexityBonus = 0.05
	NeutralPrior           = 0.5

	// MinPromptLength is the minimum number of characters, after trimming,
	// for a prompt to be recommendable.
	MinPromptLength = 10

	// DefaultMultiSize is the comparison set size when none is given.
	DefaultMultiSize = 3
)

// Confidence curve: sample support saturates as n/(n+sampleHalf), margin
// support saturates once the lead reaches marginFull.
const (
	sampleWeight = 0.6
	marginWeight = 0.4
	sampleHalf   = 5.0
	marginFull   = 0.2
)

// HistoryReader is the read side of the performance history.
type HistoryReader interface {
	Lookup(category, model string) (models.PerformanceEntry, bool)
}

// Option configures an Engine.
type Option func(*Engine)

// WithPreferenceBonus sets the bonus for each preferred role a model holds.
func WithPreferenceBonus(v float64) Option {
	return func(e *Engine) { e.preferenceBonus = v }
}

// WithComplexityBonus sets the bonus given to the detailed model for complex
// prompts and to the fast model for simple ones.
func WithComplexityBonus(v float64) Option {
	return func(e *Engine) { e.complexityBonus = v }
}

// WithPrior sets the base score used for models without history.
func WithPrior(v float64) Option {
	return func(e *Engine) { e.prior = models.Clamp01(v) }
}

// Engine computes recommendations. It only reads history.
type Engine struct {
	registry        *Registry
	history         HistoryReader
	preferenceBonus float64
	complexityBonus float64
	prior           float64
}

// NewEngine creates an engine over registry and history. A nil history
// behaves as an empty store.
func NewEngine(registry *Registry, history HistoryReader, opts ...Option) *Engine {
	e := &Engine{
		registry:        registry,
		history:         history,
		preferenceBonus: DefaultPreferenceBonus,
		complexityBonus: DefaultComplexityBonus,
		prior:           NeutralPrior,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's model registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Recommend classifies prompt, estimates its complexity and ranks every
// registered model.
func (e *Engine) Recommend(prompt string, prefs models.Preferences) (*models.Recommendation, error) {
	prompt, err := e.validate(prompt)
	if err != nil {
		return nil, err
	}
	return e.rank(category.Classify(prompt), AnalyzeComplexity(prompt), prefs), nil
}

// RecommendCategory ranks models for a category without a concrete prompt.
// No complexity bonus applies.
func (e *Engine) RecommendCategory(cat string, prefs models.Preferences) (*models.Recommendation, error) {
	if !category.Known(cat) {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrInvalidInput, cat)
	}
	if e.registry == nil || e.registry.Len() == 0 {
		return nil, fmt.Errorf("recommend: %w", models.ErrNoCandidateModels)
	}
	return e.rank(cat, Complexity{Score: (LowComplexity + HighComplexity) / 2}, prefs), nil
}

func (e *Engine) validate(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if n := utf8.RuneCountInString(prompt); n < MinPromptLength {
		return "", fmt.Errorf("%w: prompt has %d characters, need at least %d", models.ErrInvalidInput, n, MinPromptLength)
	}
	if e.registry == nil || e.registry.Len() == 0 {
		return "", fmt.Errorf("recommend: %w", models.ErrNoCandidateModels)
	}
	return prompt, nil
}

// baseScores returns one ModelScore per registered model, in registry order,
// with BaseScore and SampleCount filled.
func (e *Engine) baseScores(cat string) []models.ModelScore {
	names := e.registry.Names()
	scores := make([]models.ModelScore, len(names))
	for i, name := range names {
		s := models.ModelScore{ModelID: name, BaseScore: e.prior}
		if e.history != nil {
			if entry, ok := e.history.Lookup(cat, name); ok && entry.SampleCount > 0 {
				s.BaseScore = entry.MeanScore
				s.SampleCount = entry.SampleCount
			}
		}
		s.AdjustedScore = s.BaseScore
		scores[i] = s
	}
	return scores
}

func (e *Engine) rank(cat string, cx Complexity, prefs models.Preferences) *models.Recommendation {
	scores := e.baseScores(cat)

	fast := e.registry.RoleModel(RoleFast)
	detailed := e.registry.RoleModel(RoleDetailed)
	structured := e.registry.RoleModel(RoleStructured)

	var prefClauses, complexityClauses []string
	for i := range scores {
		s := &scores[i]
		if prefs.PreferFast && s.ModelID == fast {
			s.AdjustedScore += e.preferenceBonus
		}
		if prefs.PreferDetailed && s.ModelID == detailed {
			s.AdjustedScore += e.preferenceBonus
		}
		if prefs.PreferStructured && s.ModelID == structured {
			s.AdjustedScore += e.preferenceBonus
		}
		switch {
		case cx.Score > HighComplexity && s.ModelID == detailed:
			s.AdjustedScore += e.complexityBonus
		case cx.Score < LowComplexity && s.ModelID == fast:
			s.AdjustedScore += e.complexityBonus
		}
	}

	// Stable sort keeps registry order for ties.
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].AdjustedScore > scores[b].AdjustedScore
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}

	winner := scores[0]
	margin := marginFull
	if len(scores) > 1 {
		margin = winner.AdjustedScore - scores[1].AdjustedScore
	}
	conf := Confidence(winner.SampleCount, margin)

	var alternatives []string
	for _, s := range scores[1:min(3, len(scores))] {
		alternatives = append(alternatives, s.ModelID)
	}

	if prefs.PreferFast && winner.ModelID == fast {
		prefClauses = append(prefClauses, fmt.Sprintf("preferred fast responses (+%.2f)", e.preferenceBonus))
	}
	if prefs.PreferDetailed && winner.ModelID == detailed {
		prefClauses = append(prefClauses, fmt.Sprintf("preferred detailed responses (+%.2f)", e.preferenceBonus))
	}
	if prefs.PreferStructured && winner.ModelID == structured {
		prefClauses = append(prefClauses, fmt.Sprintf("preferred structured responses (+%.2f)", e.preferenceBonus))
	}
	if cx.WordCount > 0 {
		complexityClauses = append(complexityClauses, fmt.Sprintf("complexity match: %.2f (%s)", cx.Score, cx.Level()))
	}
	switch {
	case cx.Score > HighComplexity && winner.ModelID == detailed:
		complexityClauses = append(complexityClauses, fmt.Sprintf("high complexity favors the detailed model (+%.2f)", e.complexityBonus))
	case cx.Score < LowComplexity && winner.ModelID == fast:
		complexityClauses = append(complexityClauses, fmt.Sprintf("low complexity favors the fast model (+%.2f)", e.complexityBonus))
	}

	reasoning := []string{e.historyClause(cat, winner, scores)}
	reasoning = append(reasoning, prefClauses...)
	reasoning = append(reasoning, complexityClauses...)

	profile, _ := e.registry.Profile(winner.ModelID)
	if len(profile.Strengths) > 0 {
		reasoning = append(reasoning, "model strengths: "+strings.Join(profile.Strengths[:min(2, len(profile.Strengths))], ", "))
	}
	if len(scores) > 1 {
		reasoning = append(reasoning, fmt.Sprintf("leads %s by %.3f", scores[1].ModelID, margin))
	} else {
		reasoning = append(reasoning, "only registered candidate")
	}

	return &models.Recommendation{
		RecommendedModel:    winner.ModelID,
		Category:            cat,
		Complexity:          cx.Score,
		Confidence:          conf,
		ConfidencePct:       math.Round(conf*1000) / 10,
		Reasoning:           reasoning,
		Alternatives:        alternatives,
		ExpectedLengthWords: profile.AvgLengthWords,
		ExpectedSpeedTier:   profile.Speed,
		Scores:              scores,
	}
}

func (e *Engine) historyClause(cat string, winner models.ModelScore, scores []models.ModelScore) string {
	if winner.SampleCount == 0 {
		return fmt.Sprintf("no history for %s; neutral prior %.2f", cat, winner.BaseScore)
	}
	for _, s := range scores {
		if s.BaseScore > winner.BaseScore {
			return fmt.Sprintf("historical performance for %s: %.3f over %d samples", cat, winner.BaseScore, winner.SampleCount)
		}
	}
	return fmt.Sprintf("best historical performance for %s (%.3f over %d samples)", cat, winner.BaseScore, winner.SampleCount)
}

// Confidence combines the winner's sample support with its lead over the
// runner-up: 0.6·n/(n+5) + 0.4·min(margin/0.2, 1), clamped to [0,1]. It is
// monotonic in both arguments.
func Confidence(samples int, margin float64) float64 {
	n := float64(max(samples, 0))
	support := n / (n + sampleHalf)
	lead := models.Clamp01(margin / marginFull)
	return models.Clamp01(sampleWeight*support + marginWeight*lead)
}

// RecommendMulti suggests a diversified set of up to size models to compare:
// the best performer, then the fast and structured role models, then the
// remaining models by historical score.
func (e *Engine) RecommendMulti(prompt string, size int) (*models.MultiRecommendation, error) {
	prompt, err := e.validate(prompt)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultMultiSize
	}
	size = min(size, e.registry.Len())

	cat := category.Classify(prompt)
	scores := e.baseScores(cat)
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].BaseScore > scores[b].BaseScore
	})

	picked := make(map[string]bool, size)
	out := &models.MultiRecommendation{Category: cat, Complexity: AnalyzeComplexity(prompt).Score}
	add := func(s models.ModelScore, reason string) {
		if picked[s.ModelID] || len(out.Picks) >= size {
			return
		}
		picked[s.ModelID] = true
		out.Picks = append(out.Picks, models.ComparisonPick{Model: s.ModelID, Reason: reason, ExpectedScore: s.BaseScore})
	}
	byName := func(name string) (models.ModelScore, bool) {
		for _, s := range scores {
			if s.ModelID == name {
				return s, true
			}
		}
		return models.ModelScore{}, false
	}

	add(scores[0], "highest expected performance for "+cat)
	if s, ok := byName(e.registry.RoleModel(RoleFast)); ok {
		add(s, "fastest response time")
	}
	if s, ok := byName(e.registry.RoleModel(RoleStructured)); ok {
		add(s, "best structured responses")
	}
	for _, s := range scores {
		add(s, "alternative perspective")
	}
	return out, nil
}

// Summary renders rec as human-readable text.
func (e *Engine) Summary(rec *models.Recommendation) string {
	if rec == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Recommended model: %s (confidence %.1f%%)\n", rec.RecommendedModel, rec.ConfidencePct)
	fmt.Fprintf(&b, "Category: %s, complexity %.0f%% (%s)\n",
		rec.Category, rec.Complexity*100, Complexity{Score: rec.Complexity}.Level())
	fmt.Fprintf(&b, "Expected response: ~%d words, %s speed\n", rec.ExpectedLengthWords, rec.ExpectedSpeedTier)
	if e.registry != nil {
		if p, ok := e.registry.Profile(rec.RecommendedModel); ok && p.Style != "" {
			fmt.Fprintf(&b, "Style: %s\n", p.Style)
		}
	}
	b.WriteString("Why:\n")
	for _, r := range rec.Reasoning {
		fmt.Fprintf(&b, "  - %s\n", r)
	}
	if len(rec.Alternatives) > 0 {
		fmt.Fprintf(&b, "Alternatives: %s\n", strings.Join(rec.Alternatives, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

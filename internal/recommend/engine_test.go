package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spboyer/modeleval/internal/category"
	"github.com/spboyer/modeleval/internal/history"
	"github.com/spboyer/modeleval/internal/models"
)

func seed(s *history.Store, cat, model string, score float64, n int) {
	for i := 0; i < n; i++ {
		s.Record(cat, model, score)
	}
}

func TestRecommend_HistoricalLeaderWins(t *testing.T) {
	// fast role on the no-history model keeps the low-complexity bonus off
	// the runner-up, so the margin is the raw 0.185 history gap
	reg, err := NewRegistry(DefaultProfiles()[:3], map[Role]string{
		RoleFast:       "T5-Small",
		RoleDetailed:   "GPT2",
		RoleStructured: "DistilGPT2",
	})
	require.NoError(t, err)

	store := history.NewStore()
	seed(store, category.ElectricVehicles, "GPT2", 0.785, 10)
	seed(store, category.ElectricVehicles, "DistilGPT2", 0.60, 10)

	engine := NewEngine(reg, store)
	rec, err := engine.Recommend("Explain electric vehicle adoption challenges", models.Preferences{})
	require.NoError(t, err)

	assert.Equal(t, "GPT2", rec.RecommendedModel)
	assert.Equal(t, category.ElectricVehicles, rec.Category)
	assert.InDelta(t, 0.25, rec.Complexity, 1e-9)
	// 0.6·10/15 + 0.4·(0.185/0.2)
	assert.InDelta(t, 0.77, rec.Confidence, 1e-9)
	assert.InDelta(t, 77.0, rec.ConfidencePct, 1e-9)
	assert.Equal(t, []string{"DistilGPT2", "T5-Small"}, rec.Alternatives)
	assert.Equal(t, 180, rec.ExpectedLengthWords)
	assert.Equal(t, models.SpeedMedium, rec.ExpectedSpeedTier)
	require.NotEmpty(t, rec.Reasoning)
	assert.Equal(t, "best historical performance for Electric Vehicles (0.785 over 10 samples)", rec.Reasoning[0])
	assert.Contains(t, rec.Reasoning, "complexity match: 0.25 (low)")

	require.Len(t, rec.Scores, 3)
	assert.Equal(t, 1, rec.Scores[0].Rank)
	assert.Equal(t, "T5-Small", rec.Scores[2].ModelID)
	assert.InDelta(t, 0.55, rec.Scores[2].AdjustedScore, 1e-9)
	assert.InDelta(t, NeutralPrior, rec.Scores[2].BaseScore, 1e-9)
}

func TestRecommend_HistoricalLeaderWinsDefaultRoles(t *testing.T) {
	reg, err := NewRegistry(DefaultProfiles()[:3], DefaultRoles())
	require.NoError(t, err)

	store := history.NewStore()
	seed(store, category.ElectricVehicles, "GPT2", 0.785, 10)
	seed(store, category.ElectricVehicles, "DistilGPT2", 0.60, 10)

	rec, err := NewEngine(reg, store).Recommend("Explain electric vehicle adoption challenges", models.Preferences{})
	require.NoError(t, err)

	assert.Equal(t, "GPT2", rec.RecommendedModel)
	// DistilGPT2 holds the fast role and gets the low-complexity bonus:
	// 0.6·10/15 + 0.4·((0.785-0.65)/0.2)
	assert.InDelta(t, 0.67, rec.Confidence, 1e-9)
	assert.Equal(t, []string{"DistilGPT2", "T5-Small"}, rec.Alternatives)
	require.Len(t, rec.Scores, 3)
	assert.Equal(t, "DistilGPT2", rec.Scores[1].ModelID)
	assert.InDelta(t, 0.65, rec.Scores[1].AdjustedScore, 1e-9)
}

func TestRecommend_PreferFastBreaksNeutralTie(t *testing.T) {
	reg, err := NewRegistry([]ModelProfile{
		{Name: "DetailModel", AvgLengthWords: 200},
		{Name: "FastModel", AvgLengthWords: 80, Speed: models.SpeedFast},
		{Name: "StructModel", AvgLengthWords: 150},
	}, map[Role]string{
		RoleFast:       "FastModel",
		RoleDetailed:   "DetailModel",
		RoleStructured: "StructModel",
	})
	require.NoError(t, err)

	engine := NewEngine(reg, history.NewStore())
	rec, err := engine.Recommend("Summarize this quarterly report for me", models.Preferences{PreferFast: true})
	require.NoError(t, err)

	assert.Equal(t, "FastModel", rec.RecommendedModel)
	assert.Equal(t, models.SpeedFast, rec.ExpectedSpeedTier)
	for _, s := range rec.Scores {
		assert.InDelta(t, NeutralPrior, s.BaseScore, 1e-9, s.ModelID)
		assert.Zero(t, s.SampleCount)
	}
	// no samples, margin 0.15 of 0.2
	assert.InDelta(t, 0.3, rec.Confidence, 1e-9)
	assert.Contains(t, rec.Reasoning, "preferred fast responses (+0.10)")
	assert.Contains(t, rec.Reasoning, "low complexity favors the fast model (+0.05)")
}

func TestRecommend_TiesFollowRegistryOrder(t *testing.T) {
	engine := NewEngine(DefaultRegistry(), nil, WithComplexityBonus(0))
	rec, err := engine.Recommend("Tell me something interesting today", models.Preferences{})
	require.NoError(t, err)

	assert.Equal(t, "GPT2", rec.RecommendedModel)
	assert.Equal(t, []string{"DistilGPT2", "T5-Small"}, rec.Alternatives)
	assert.Zero(t, rec.Confidence)
}

func TestRecommend_PreferencesStack(t *testing.T) {
	reg, err := NewRegistry(DefaultProfiles(), map[Role]string{
		RoleFast:       "BERT-Base",
		RoleDetailed:   "GPT2",
		RoleStructured: "BERT-Base",
	})
	require.NoError(t, err)

	engine := NewEngine(reg, nil, WithComplexityBonus(0))
	rec, err := engine.Recommend("Tell me something interesting today", models.Preferences{
		PreferFast:       true,
		PreferStructured: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "BERT-Base", rec.RecommendedModel)
	assert.InDelta(t, 0.7, rec.Scores[0].AdjustedScore, 1e-9)
}

func TestRecommend_HighComplexityFavorsDetailed(t *testing.T) {
	engine := NewEngine(DefaultRegistry(), history.NewStore())
	prompt := "How and why does the system architecture and implementation framework affect optimization? What about the process?"
	rec, err := engine.Recommend(prompt, models.Preferences{})
	require.NoError(t, err)

	assert.Greater(t, rec.Complexity, HighComplexity)
	assert.Equal(t, "GPT2", rec.RecommendedModel)
	assert.Contains(t, rec.Reasoning, "high complexity favors the detailed model (+0.05)")
}

func TestRecommend_DoesNotMutateHistory(t *testing.T) {
	store := history.NewStore()
	seed(store, category.AITechnology, "GPT2", 0.8, 3)
	before := store.Snapshot()

	engine := NewEngine(DefaultRegistry(), store)
	_, err := engine.Recommend("How does AI impact healthcare?", models.Preferences{PreferDetailed: true})
	require.NoError(t, err)

	assert.Equal(t, before, store.Snapshot())
}

func TestRecommend_Errors(t *testing.T) {
	engine := NewEngine(DefaultRegistry(), nil)

	for _, prompt := range []string{"", "   ", "short", "   tiny one  "} {
		_, err := engine.Recommend(prompt, models.Preferences{})
		assert.ErrorIs(t, err, models.ErrInvalidInput, "%q", prompt)
	}

	_, err := NewEngine(nil, nil).Recommend("a perfectly valid prompt", models.Preferences{})
	assert.ErrorIs(t, err, models.ErrNoCandidateModels)
}

func TestRecommendCategory(t *testing.T) {
	store := history.NewStore()
	seed(store, category.ClimateEnvironment, "T5-Small", 0.72, 8)
	seed(store, category.ClimateEnvironment, "GPT2", 0.70, 8)

	engine := NewEngine(DefaultRegistry(), store)
	rec, err := engine.RecommendCategory(category.ClimateEnvironment, models.Preferences{})
	require.NoError(t, err)
	assert.Equal(t, "T5-Small", rec.RecommendedModel)
	for _, r := range rec.Reasoning {
		assert.NotContains(t, r, "complexity")
	}

	_, err = engine.RecommendCategory("Astrology", models.Preferences{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestConfidence_Monotonic(t *testing.T) {
	assert.Zero(t, Confidence(0, 0))
	assert.InDelta(t, 1.0, Confidence(1_000_000, 5), 1e-5)
	assert.Less(t, Confidence(2, 0.1), Confidence(10, 0.1))
	assert.Less(t, Confidence(10, 0.05), Confidence(10, 0.15))
	assert.Equal(t, Confidence(10, 0.2), Confidence(10, 0.9), "margin support saturates")
	assert.GreaterOrEqual(t, Confidence(-3, -1), 0.0)
}

func TestRecommendMulti(t *testing.T) {
	store := history.NewStore()
	seed(store, category.ElectricVehicles, "GPT2", 0.785, 15)
	seed(store, category.ElectricVehicles, "DistilGPT2", 0.720, 15)
	seed(store, category.ElectricVehicles, "T5-Small", 0.698, 15)
	seed(store, category.ElectricVehicles, "BERT-Base", 0.665, 15)
	engine := NewEngine(DefaultRegistry(), store)

	multi, err := engine.RecommendMulti("Compare electric cars and hybrids", 0)
	require.NoError(t, err)
	assert.Equal(t, category.ElectricVehicles, multi.Category)
	require.Len(t, multi.Picks, 3)
	assert.Equal(t, "GPT2", multi.Picks[0].Model)
	assert.Equal(t, "DistilGPT2", multi.Picks[1].Model)
	assert.Equal(t, "fastest response time", multi.Picks[1].Reason)
	assert.Equal(t, "T5-Small", multi.Picks[2].Model)
	assert.InDelta(t, 0.698, multi.Picks[2].ExpectedScore, 1e-9)

	multi, err = engine.RecommendMulti("Compare electric cars and hybrids", 10)
	require.NoError(t, err)
	require.Len(t, multi.Picks, 4)
	assert.Equal(t, "BERT-Base", multi.Picks[3].Model)
	assert.Equal(t, "alternative perspective", multi.Picks[3].Reason)
}

func TestRecommendMulti_RoleModelAlreadyBest(t *testing.T) {
	store := history.NewStore()
	seed(store, category.ElectricVehicles, "T5-Small", 0.9, 4)
	seed(store, category.ElectricVehicles, "BERT-Base", 0.8, 4)
	engine := NewEngine(DefaultRegistry(), store)

	multi, err := engine.RecommendMulti("Compare electric cars and hybrids", 3)
	require.NoError(t, err)

	var got []string
	for _, p := range multi.Picks {
		got = append(got, p.Model)
	}
	assert.Equal(t, []string{"T5-Small", "DistilGPT2", "BERT-Base"}, got)
}

func TestSummary(t *testing.T) {
	store := history.NewStore()
	seed(store, category.ElectricVehicles, "GPT2", 0.785, 10)
	engine := NewEngine(DefaultRegistry(), store)

	rec, err := engine.Recommend("Explain electric vehicle adoption challenges", models.Preferences{})
	require.NoError(t, err)

	out := engine.Summary(rec)
	assert.Contains(t, out, "Recommended model: GPT2")
	assert.Contains(t, out, "Category: Electric Vehicles")
	assert.Contains(t, out, "Style: Detailed and comprehensive")
	assert.Contains(t, out, "Alternatives: DistilGPT2, T5-Small")
	assert.Empty(t, engine.Summary(nil))
}

package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveInference(t *testing.T) {
	m := New()

	m.ObserveInference("GPT2", 120*time.Millisecond, nil)
	m.ObserveInference("GPT2", 80*time.Millisecond, nil)
	m.ObserveInference("T5-Small", time.Second, errors.New("boom"))

	expected := `
		# HELP modeleval_inferences_total Inference calls by model and outcome
		# TYPE modeleval_inferences_total counter
		modeleval_inferences_total{model="GPT2",outcome="ok"} 2
		modeleval_inferences_total{model="T5-Small",outcome="gap"} 1
	`
	require.NoError(t, testutil.CollectAndCompare(m.InferencesTotal, strings.NewReader(expected)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.InferenceDuration))
}

func TestPromptDone(t *testing.T) {
	m := New()

	m.PromptDone("GPT2", 3)
	m.PromptDone("", 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PromptsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WinsTotal.WithLabelValues("GPT2")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.HistoryEntries))
}

func TestRecommendationResult(t *testing.T) {
	m := New()

	m.RecommendationResult(true, true)
	m.RecommendationResult(false, true)
	m.RecommendationResult(false, false)
	m.RecommendationResult(false, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recommendations.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recommendations.WithLabelValues("top_two")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Recommendations.WithLabelValues("miss")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveInference("GPT2", time.Millisecond, nil)
	m.PromptDone("GPT2", 1)
	m.RecommendationResult(true, true)
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestSeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.PromptDone("", 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PromptsTotal))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.PromptDone("DistilGPT2", 2)

	path := filepath.Join(t.TempDir(), "nested", "run.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "modeleval_prompts_total 1")
	assert.Contains(t, string(data), `modeleval_wins_total{model="DistilGPT2"} 1`)
}

package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/spboyer/modeleval/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const evPrompt = "Explain electric vehicle adoption challenges"

func repeatWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "word"
	}
	return strings.Join(words, " ")
}

func TestEvaluate_RejectsEmptyInput(t *testing.T) {
	_, err := Evaluate("", "some response.")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = Evaluate(evPrompt, "   \n\t")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestEvaluate_ScoresAreBoundedAndOverallIsWeighted(t *testing.T) {
	responses := []string{
		"Electric vehicle adoption faces challenges such as charging infrastructure and battery cost.",
		"no punctuation at all here",
		repeatWords(600) + ".",
		"Yes!",
		"Vehicles. Vehicles. Vehicles. Vehicles?",
	}
	for _, r := range responses {
		rec, err := Evaluate(evPrompt, r)
		require.NoError(t, err)
		for _, v := range []float64{rec.Quality, rec.Similarity, rec.Overall} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		assert.InDelta(t, 0.7*rec.Quality+0.3*rec.Similarity, rec.Overall, 1e-9)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	resp := "Adoption of electric vehicles is slowed by range anxiety. Charging networks are growing."
	first, err := Evaluate(evPrompt, resp)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			again, err := Evaluate(evPrompt, resp)
			assert.NoError(t, err)
			assert.Equal(t, first, again)
		}()
	}
	wg.Wait()
}

func TestLengthScore(t *testing.T) {
	e := NewEvaluator()
	tests := []struct {
		words int
		want  float64
	}{
		{0, 0},
		{25, 0.5},
		{50, 1},
		{180, 1},
		{250, 1},
		{375, 0.5},
		{500, 0},
		{900, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, e.LengthScore(tt.words), 1e-9, "words=%d", tt.words)
	}
}

func TestWithLengthBand(t *testing.T) {
	e := NewEvaluator(WithLengthBand(10, 20))
	assert.InDelta(t, 0.5, e.LengthScore(5), 1e-9)
	assert.InDelta(t, 1.0, e.LengthScore(20), 1e-9)

	ignored := NewEvaluator(WithLengthBand(30, 10))
	assert.InDelta(t, 1.0, ignored.LengthScore(100), 1e-9)
}

func TestCompleteness(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"all terminated", "One. Two! Three?", 1},
		{"trailing fragment", "Complete sentence. Dangling fragment", 0.5},
		{"no punctuation", "nothing ends here", 0},
		{"line breaks", "First line.\nsecond line\nthird line!", 2.0 / 3.0},
		{"decimal inside", "The cost fell 3.5 percent.", 1},
		{"quoted ending", "He said \"done.\"", 1},
		{"only whitespace", "   ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Completeness(tt.text), 1e-9)
		})
	}
}

func TestDiversity(t *testing.T) {
	assert.Equal(t, 0.0, Diversity(nil))
	assert.InDelta(t, 1.0, Diversity(Words("alpha beta gamma")), 1e-9)
	assert.InDelta(t, 0.25, Diversity(Words("car cars car cars")), 1e-9)
}

func TestSimilarity(t *testing.T) {
	full := Similarity(evPrompt, "Electric vehicles: adoption is slow, and the challenges are real.")
	assert.InDelta(t, 1.0, full, 1e-9)

	partial := Similarity(evPrompt, "Electric motors are efficient.")
	assert.InDelta(t, 0.25, partial, 1e-9)

	assert.Equal(t, 0.0, Similarity("what is it", "anything at all"))
	assert.Equal(t, 0.0, Similarity(evPrompt, "Completely unrelated text."))
}

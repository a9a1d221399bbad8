package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords_NormalizesCaseAndPunctuation(t *testing.T) {
	got := Words("Électric VEHICLES, 'quoted' don't — ﬁne!")
	assert.Equal(t, []string{"électric", "vehicles", "quoted", "don't", "fine"}, got)
}

func TestStem(t *testing.T) {
	pairs := [][2]string{
		{"vehicle", "vehicles"},
		{"challenge", "challenging"},
		{"charge", "charging"},
		{"industry", "industries"},
		{"optimization", "optimizations"},
	}
	for _, p := range pairs {
		assert.Equal(t, Stem(p[0]), Stem(p[1]), "%s vs %s", p[0], p[1])
	}
	assert.Equal(t, "process", Stem("process"))
}

func TestSignificantStems_SkipsStopwords(t *testing.T) {
	got := SignificantStems("What are the benefits of electric vehicles?")
	assert.Len(t, got, 3)
	assert.Contains(t, got, Stem("benefits"))
	assert.Contains(t, got, Stem("electric"))
	assert.Contains(t, got, Stem("vehicles"))
}

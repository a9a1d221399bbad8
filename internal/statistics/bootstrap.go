// Package statistics computes resampled confidence intervals for the mean
// overall score of a model across a run.
package statistics

import (
	"math"
	"math/rand"
	"sort"
)

// ConfidenceInterval is a percentile bootstrap interval around a mean.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	Resamples       int     `json:"resamples"`
}

// DefaultResamples is the number of bootstrap resamples per interval.
const DefaultResamples = 2000

// Bootstrapper draws resamples from a seeded source so that the same run
// inputs always produce the same report.
type Bootstrapper struct {
	rng       *rand.Rand
	resamples int
}

// NewBootstrapper returns a Bootstrapper seeded with seed.
func NewBootstrapper(seed int64) *Bootstrapper {
	return &Bootstrapper{
		rng:       rand.New(rand.NewSource(seed)),
		resamples: DefaultResamples,
	}
}

// MeanCI returns the percentile interval for the mean of scores at the given
// level, e.g. 0.95. With fewer than two scores the interval collapses to the
// mean and no resampling happens.
func (b *Bootstrapper) MeanCI(scores []float64, level float64) ConfidenceInterval {
	n := len(scores)
	m := mean(scores)
	if n < 2 {
		return ConfidenceInterval{Lower: m, Upper: m, Mean: m, ConfidenceLevel: level}
	}

	means := make([]float64, b.resamples)
	for i := range means {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += scores[b.rng.Intn(n)]
		}
		means[i] = sum / float64(n)
	}
	sort.Float64s(means)

	alpha := 1.0 - level
	lo := int(math.Floor(alpha / 2 * float64(b.resamples)))
	hi := int(math.Floor((1 - alpha/2) * float64(b.resamples)))
	if hi >= b.resamples {
		hi = b.resamples - 1
	}

	return ConfidenceInterval{
		Lower:           means[lo],
		Upper:           means[hi],
		Mean:            m,
		ConfidenceLevel: level,
		Resamples:       b.resamples,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

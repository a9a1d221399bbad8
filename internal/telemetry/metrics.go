// Package telemetry records Prometheus metrics for a test run. Each Metrics
// owns its registry so runs and tests never collide on the default one.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "modeleval"

// Outcome labels for InferencesTotal.
const (
	OutcomeOK  = "ok"
	OutcomeGap = "gap"
)

// Metrics groups the collectors updated by the runner. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	InferencesTotal   *prometheus.CounterVec
	InferenceDuration *prometheus.HistogramVec
	PromptsTotal      prometheus.Counter
	WinsTotal         *prometheus.CounterVec
	Recommendations   *prometheus.CounterVec
	HistoryEntries    prometheus.Gauge
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		InferencesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inferences_total",
			Help:      "Inference calls by model and outcome",
		}, []string{"model", "outcome"}),
		InferenceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Inference latency by model",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"model"}),
		PromptsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompts_total",
			Help:      "Prompts processed",
		}),
		WinsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wins_total",
			Help:      "Per-prompt wins by model",
		}, []string{"model"}),
		Recommendations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Pre-run recommendations by result (hit, top_two, miss)",
		}, []string{"result"}),
		HistoryEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_entries",
			Help:      "Performance history entries after the last prompt",
		}),
	}
}

// Registry exposes the gatherer, e.g. for promhttp or tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveInference records one inference call.
func (m *Metrics) ObserveInference(model string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeGap
	}
	m.InferencesTotal.WithLabelValues(model, outcome).Inc()
	m.InferenceDuration.WithLabelValues(model).Observe(d.Seconds())
}

// PromptDone records a processed prompt and its winner, if any.
func (m *Metrics) PromptDone(winner string, historyLen int) {
	if m == nil {
		return
	}
	m.PromptsTotal.Inc()
	if winner != "" {
		m.WinsTotal.WithLabelValues(winner).Inc()
	}
	m.HistoryEntries.Set(float64(historyLen))
}

// RecommendationResult records how the pre-run recommendation fared.
func (m *Metrics) RecommendationResult(hit, topTwo bool) {
	if m == nil {
		return
	}
	switch {
	case hit:
		m.Recommendations.WithLabelValues("hit").Inc()
	case topTwo:
		m.Recommendations.WithLabelValues("top_two").Inc()
	default:
		m.Recommendations.WithLabelValues("miss").Inc()
	}
}

// WriteTextfile writes the current metrics in the node_exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

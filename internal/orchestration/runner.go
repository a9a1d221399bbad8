// Package orchestration drives prompt corpora through every candidate model,
// scores the responses, folds them into the performance history and
// aggregates a Report.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spboyer/modeleval/internal/category"
	"github.com/spboyer/modeleval/internal/dataset"
	"github.com/spboyer/modeleval/internal/execution"
	"github.com/spboyer/modeleval/internal/history"
	"github.com/spboyer/modeleval/internal/metrics"
	"github.com/spboyer/modeleval/internal/models"
	"github.com/spboyer/modeleval/internal/recommend"
	"github.com/spboyer/modeleval/internal/telemetry"
)

// DefaultWorkers bounds concurrent inference calls for one prompt.
const DefaultWorkers = 4

// Runner orchestrates test runs. The history store is owned by the caller;
// the runner is its only writer during Run.
type Runner struct {
	gen       execution.Generator
	store     *history.Store
	engine    *recommend.Engine
	evaluator *metrics.Evaluator

	workers          int
	timeout          time.Duration
	resetBetweenRuns bool
	categoryFilters  []string
	suite            string
	bootstrapSeed    int64

	telemetry *telemetry.Metrics
	now       func() time.Time
	newRunID  func() string

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventRunStart       EventType = "run_start"
	EventRunComplete    EventType = "run_complete"
	EventRunStopped     EventType = "run_stopped"
	EventPromptStart    EventType = "prompt_start"
	EventPromptComplete EventType = "prompt_complete"
	EventModelResponse  EventType = "model_response"
	EventModelGap       EventType = "model_gap"
	EventRecommendation EventType = "recommendation"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType    EventType
	Prompt       string
	Category     string
	PromptNum    int
	TotalPrompts int
	Model        string
	DurationMs   int64
	Details      map[string]any
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers limits concurrent inference calls per prompt. n <= 0 keeps
// DefaultWorkers.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithTimeout bounds each inference call. Zero disables the bound.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithResetBetweenRuns clears the history store at the start of every Run.
func WithResetBetweenRuns(reset bool) RunnerOption {
	return func(r *Runner) {
		r.resetBetweenRuns = reset
	}
}

// WithCategoryFilters keeps only prompts whose classified category or text
// matches one of the glob patterns.
func WithCategoryFilters(patterns ...string) RunnerOption {
	return func(r *Runner) {
		r.categoryFilters = patterns
	}
}

// WithTelemetry records run metrics.
func WithTelemetry(m *telemetry.Metrics) RunnerOption {
	return func(r *Runner) {
		r.telemetry = m
	}
}

// WithEvaluator replaces the default metrics evaluator.
func WithEvaluator(e *metrics.Evaluator) RunnerOption {
	return func(r *Runner) {
		r.evaluator = e
	}
}

// WithSuiteName labels the report.
func WithSuiteName(name string) RunnerOption {
	return func(r *Runner) {
		r.suite = name
	}
}

// WithBootstrapSeed fixes the resampling seed used for confidence intervals.
func WithBootstrapSeed(seed int64) RunnerOption {
	return func(r *Runner) {
		r.bootstrapSeed = seed
	}
}

// NewRunner creates a runner. engine must read the same store the runner
// writes to.
func NewRunner(gen execution.Generator, store *history.Store, engine *recommend.Engine, opts ...RunnerOption) *Runner {
	r := &Runner{
		gen:           gen,
		store:         store,
		engine:        engine,
		evaluator:     metrics.NewEvaluator(),
		workers:       DefaultWorkers,
		suite:         "custom",
		bootstrapSeed: 42,
		now:           time.Now,
		newRunID:      uuid.NewString,
		listeners:     []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run evaluates every prompt against every model. Prompts are processed in
// order; the model calls of one prompt run concurrently. A failed call is a
// gap in the report and never aborts the run. When ctx is cancelled between
// prompts, the partial report is returned together with the context error.
func (r *Runner) Run(ctx context.Context, prompts []dataset.Prompt, modelNames []string) (*models.Report, error) {
	candidates := uniqueModels(modelNames)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("run: %w", models.ErrNoCandidateModels)
	}

	prompts, err := FilterPrompts(prompts, r.categoryFilters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("%w: prompt corpus is empty", models.ErrInvalidInput)
	}

	if r.resetBetweenRuns {
		r.store.Clear()
	}

	start := r.now()
	report := &models.Report{
		RunID:       r.newRunID(),
		Suite:       r.suite,
		GeneratedAt: start.UTC(),
		Models:      candidates,
	}
	var accuracy models.AccuracyStats

	r.notifyProgress(ProgressEvent{
		EventType:    EventRunStart,
		TotalPrompts: len(prompts),
		Details:      map[string]any{"run_id": report.RunID, "models": candidates},
	})

	for i, p := range prompts {
		if err := ctx.Err(); err != nil {
			r.notifyProgress(ProgressEvent{
				EventType:    EventRunStopped,
				PromptNum:    i + 1,
				TotalPrompts: len(prompts),
			})
			r.finish(report, accuracy, start)
			return report, fmt.Errorf("run stopped after %d of %d prompts: %w", i, len(prompts), err)
		}

		result, gaps := r.runPrompt(ctx, p, i+1, len(prompts), candidates)
		if result.Recommendation != nil && result.Winner != "" {
			accuracy.Add(*result.Recommendation)
			r.telemetry.RecommendationResult(result.Recommendation.Hit, result.Recommendation.TopTwo)
		}
		report.Results = append(report.Results, result)
		report.Gaps = append(report.Gaps, gaps...)
		r.telemetry.PromptDone(result.Winner, r.store.Len())
	}

	r.finish(report, accuracy, start)
	r.notifyProgress(ProgressEvent{
		EventType:    EventRunComplete,
		TotalPrompts: len(prompts),
		DurationMs:   report.Summary.DurationMs,
		Details: map[string]any{
			"best_model": report.Summary.BestOverallModel,
			"excluded":   report.Summary.ExcludedCount,
		},
	})
	return report, nil
}

func (r *Runner) finish(report *models.Report, accuracy models.AccuracyStats, start time.Time) {
	report.RecommendationAccuracy = accuracy
	aggregate(report, r.bootstrapSeed)
	report.Summary.DurationMs = r.now().Sub(start).Milliseconds()
	report.Insights = insights(report)
}

type modelResult struct {
	model string
	score models.ScoreRecord
	err   error
}

// runPrompt recommends against the pre-update history, fans the prompt out
// to every model, then records the scores and the winner.
func (r *Runner) runPrompt(ctx context.Context, p dataset.Prompt, num, total int, candidates []string) (models.TestResult, []models.Gap) {
	promptStart := r.now()
	text := strings.TrimSpace(p.Text)
	cat := category.Classify(text)

	r.notifyProgress(ProgressEvent{
		EventType:    EventPromptStart,
		Prompt:       text,
		Category:     cat,
		PromptNum:    num,
		TotalPrompts: total,
	})

	rec := r.recommend(text)
	if rec != nil {
		r.notifyProgress(ProgressEvent{
			EventType:    EventRecommendation,
			Prompt:       text,
			Category:     cat,
			PromptNum:    num,
			TotalPrompts: total,
			Model:        rec.RecommendedModel,
			Details:      map[string]any{"confidence": rec.Confidence},
		})
	}

	results := r.fanOut(ctx, text, cat, num, total, candidates)

	result := models.TestResult{
		Prompt:           text,
		Category:         cat,
		ExpectedCategory: p.ExpectedCategory,
		PerModel:         make(map[string]models.ScoreRecord, len(candidates)),
	}
	var gaps []models.Gap
	for _, res := range results {
		if res.err != nil {
			gaps = append(gaps, models.Gap{Prompt: text, Model: res.model, Error: res.err.Error()})
			continue
		}
		result.PerModel[res.model] = res.score
	}

	ranking := rankScores(result.PerModel)
	if len(ranking) > 0 {
		result.Winner = ranking[0]
	}

	for _, m := range ranking {
		r.store.Record(cat, m, result.PerModel[m].Overall)
	}
	if result.Winner != "" {
		r.store.RecordWin(cat, result.Winner)
	}

	if rec != nil && result.Winner != "" {
		check := models.RecommendationCheck{
			RecommendedModel: rec.RecommendedModel,
			Confidence:       rec.Confidence,
		}
		if idx := slices.Index(ranking, rec.RecommendedModel); idx >= 0 {
			check.ActualRank = idx + 1
		}
		check.Hit = check.ActualRank == 1
		check.TopTwo = check.ActualRank == 1 || check.ActualRank == 2
		result.Recommendation = &check
	}

	result.DurationMs = r.now().Sub(promptStart).Milliseconds()
	r.notifyProgress(ProgressEvent{
		EventType:    EventPromptComplete,
		Prompt:       text,
		Category:     cat,
		PromptNum:    num,
		TotalPrompts: total,
		Model:        result.Winner,
		DurationMs:   result.DurationMs,
		Details:      map[string]any{"gaps": len(gaps), "scored": len(result.PerModel)},
	})
	return result, gaps
}

// recommend returns nil when the engine cannot produce a suggestion for this
// prompt; such prompts contribute no accuracy sample.
func (r *Runner) recommend(text string) *models.Recommendation {
	if r.engine == nil {
		return nil
	}
	rec, err := r.engine.Recommend(text, models.Preferences{})
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, models.ErrInvalidInput) {
			level = slog.LevelDebug
		}
		slog.Log(context.Background(), level, "no recommendation for prompt", "prompt", truncate(text, 60), "error", err)
		return nil
	}
	return rec
}

func (r *Runner) fanOut(ctx context.Context, text, cat string, num, total int, candidates []string) []modelResult {
	results := make([]modelResult, len(candidates))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, model := range candidates {
		g.Go(func() error {
			results[i] = r.invoke(ctx, text, model)
			res := results[i]

			ev := ProgressEvent{
				EventType:    EventModelResponse,
				Prompt:       text,
				Category:     cat,
				PromptNum:    num,
				TotalPrompts: total,
				Model:        model,
			}
			if res.err != nil {
				ev.EventType = EventModelGap
				ev.Details = map[string]any{"error": res.err.Error()}
				slog.Warn("inference gap", "model", model, "prompt", truncate(text, 60), "error", res.err)
			} else {
				ev.Details = map[string]any{"overall": res.score.Overall}
			}
			r.notifyProgress(ev)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Runner) invoke(ctx context.Context, prompt, model string) modelResult {
	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := r.now()
	response, err := r.gen.Generate(callCtx, model, prompt)
	r.telemetry.ObserveInference(model, r.now().Sub(start), err)
	if err != nil {
		var ie *models.InferenceError
		if !errors.As(err, &ie) {
			err = &models.InferenceError{Model: model, Err: err}
		}
		return modelResult{model: model, err: err}
	}

	score, err := r.evaluator.Evaluate(prompt, response)
	if err != nil {
		return modelResult{model: model, err: fmt.Errorf("evaluating %s: %w", model, err)}
	}
	return modelResult{model: model, score: score}
}

// rankScores orders models by overall score, highest first. Ties go to the
// lexicographically smallest name.
func rankScores(scores map[string]models.ScoreRecord) []string {
	names := make([]string, 0, len(scores))
	for m := range scores {
		names = append(names, m)
	}
	slices.SortFunc(names, func(a, b string) int {
		sa, sb := scores[a].Overall, scores[b].Overall
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
	return names
}

func uniqueModels(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

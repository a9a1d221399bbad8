package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spboyer/modeleval/internal/orchestration"
)

// progressPrinter writes runner progress to w. Model events arrive from
// several goroutines, so writes are serialized.
type progressPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

func newProgressPrinter(w io.Writer, verbose bool) *progressPrinter {
	return &progressPrinter{w: w, verbose: verbose}
}

func (p *progressPrinter) listen(event orchestration.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.verbose {
		p.verboseEvent(event)
		return
	}
	p.simpleEvent(event)
}

func (p *progressPrinter) simpleEvent(event orchestration.ProgressEvent) {
	switch event.EventType {
	case orchestration.EventPromptComplete:
		status := "✓"
		if gaps, _ := event.Details["gaps"].(int); gaps > 0 {
			status = "!"
		}
		if event.Model == "" {
			status = "✗"
		}
		fmt.Fprintf(p.w, "%s [%d/%d] %s → %s\n", status, event.PromptNum, event.TotalPrompts, truncate(event.Prompt, 60), winnerLabel(event.Model)) //nolint:errcheck
	case orchestration.EventRunStopped:
		fmt.Fprintf(p.w, "Run stopped before prompt %d of %d\n", event.PromptNum, event.TotalPrompts) //nolint:errcheck
	}
}

func (p *progressPrinter) verboseEvent(event orchestration.ProgressEvent) {
	switch event.EventType {
	case orchestration.EventRunStart:
		fmt.Fprintf(p.w, "Starting run with %d prompt(s)...\n\n", event.TotalPrompts) //nolint:errcheck
	case orchestration.EventPromptStart:
		fmt.Fprintf(p.w, "[%d/%d] %s\n  Category: %s\n", event.PromptNum, event.TotalPrompts, event.Prompt, event.Category) //nolint:errcheck
	case orchestration.EventRecommendation:
		confidence, _ := event.Details["confidence"].(float64)
		fmt.Fprintf(p.w, "  [RECOMMEND] %s (%.0f%% confidence)\n", event.Model, confidence*100) //nolint:errcheck
	case orchestration.EventModelResponse:
		overall, _ := event.Details["overall"].(float64)
		fmt.Fprintf(p.w, "  [SCORE] %s: %.3f\n", event.Model, overall) //nolint:errcheck
	case orchestration.EventModelGap:
		fmt.Fprintf(p.w, "  [GAP] %s: %v\n", event.Model, event.Details["error"]) //nolint:errcheck
	case orchestration.EventPromptComplete:
		duration := time.Duration(event.DurationMs) * time.Millisecond
		fmt.Fprintf(p.w, "  Winner: %s (%v)\n\n", winnerLabel(event.Model), duration) //nolint:errcheck
	case orchestration.EventRunStopped:
		fmt.Fprintf(p.w, "Run stopped before prompt %d of %d\n\n", event.PromptNum, event.TotalPrompts) //nolint:errcheck
	case orchestration.EventRunComplete:
		duration := time.Duration(event.DurationMs) * time.Millisecond
		fmt.Fprintf(p.w, "Run completed in %v\n\n", duration) //nolint:errcheck
	}
}

func winnerLabel(model string) string {
	if model == "" {
		return "no scored response"
	}
	return model
}

// truncate shortens s to n runes, adding "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spboyer/modeleval/internal/category"
	"github.com/spboyer/modeleval/internal/models"
	"github.com/spboyer/modeleval/internal/recommend"
)

type recommendOptions struct {
	prefs   models.Preferences
	multi   bool
	size    int
	jsonOut bool
	scores  bool
}

func newRecommendCommand(global *globalOptions) *cobra.Command {
	opts := &recommendOptions{}
	cmd := &cobra.Command{
		Use:   "recommend [prompt]",
		Short: "Recommend a model for a prompt",
		Long: `Recommend the model most likely to answer a prompt best, based on the
performance history of the prompt's category, its estimated complexity and
the stated preferences.

Without a prompt, prints the general recommendation for every category.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, func(a *app) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					return recommendCategories(out, a.engine, opts)
				}
				if opts.multi {
					return recommendMulti(out, a.engine, args[0], opts)
				}
				return recommendPrompt(out, a.engine, args[0], opts)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.prefs.PreferFast, "fast", false, "Prefer a fast model")
	cmd.Flags().BoolVar(&opts.prefs.PreferDetailed, "detailed", false, "Prefer a detailed model")
	cmd.Flags().BoolVar(&opts.prefs.PreferStructured, "structured", false, "Prefer a model with structured output")
	cmd.Flags().BoolVar(&opts.multi, "multi", false, "Suggest a diversified set of models to compare")
	cmd.Flags().IntVar(&opts.size, "size", recommend.DefaultMultiSize, "Number of models suggested by --multi")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the recommendation as JSON")
	cmd.Flags().BoolVar(&opts.scores, "scores", false, "Also print the base and adjusted score of every model")

	return cmd
}

func recommendPrompt(out io.Writer, engine *recommend.Engine, prompt string, opts *recommendOptions) error {
	rec, err := engine.Recommend(prompt, opts.prefs)
	if err != nil {
		return fmt.Errorf("recommending: %w", err)
	}
	if opts.jsonOut {
		return writeJSON(out, rec)
	}

	var b strings.Builder
	b.WriteString(engine.Summary(rec))
	b.WriteString("\n")
	if opts.scores {
		fmt.Fprintf(&b, "\n%4s  %-20s  %5s  %8s  %7s\n", "Rank", "Model", "Base", "Adjusted", "Samples")
		for _, s := range rec.Scores {
			fmt.Fprintf(&b, "%4d  %-20s  %.3f  %8.3f  %7d\n", s.Rank, s.ModelID, s.BaseScore, s.AdjustedScore, s.SampleCount)
		}
	}
	_, err = io.WriteString(out, b.String())
	return err
}

func recommendMulti(out io.Writer, engine *recommend.Engine, prompt string, opts *recommendOptions) error {
	multi, err := engine.RecommendMulti(prompt, opts.size)
	if err != nil {
		return fmt.Errorf("recommending: %w", err)
	}
	if opts.jsonOut {
		return writeJSON(out, multi)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s, complexity %.0f%%\n", multi.Category, multi.Complexity*100)
	b.WriteString("Compare these models:\n")
	for i, p := range multi.Picks {
		fmt.Fprintf(&b, "  %d. %s (expected %.3f): %s\n", i+1, p.Model, p.ExpectedScore, p.Reason)
	}
	_, err = io.WriteString(out, b.String())
	return err
}

// categoryRecommendation is the JSON shape of one general recommendation.
type categoryRecommendation struct {
	Category   string  `json:"category"`
	Model      string  `json:"recommended_model"`
	Confidence float64 `json:"confidence"`
	Samples    int     `json:"sample_count"`
}

func recommendCategories(out io.Writer, engine *recommend.Engine, opts *recommendOptions) error {
	var recs []categoryRecommendation
	for _, cat := range category.Names() {
		rec, err := engine.RecommendCategory(cat, opts.prefs)
		if err != nil {
			return fmt.Errorf("recommending for %s: %w", cat, err)
		}
		cr := categoryRecommendation{Category: cat, Model: rec.RecommendedModel, Confidence: rec.Confidence}
		for _, s := range rec.Scores {
			if s.ModelID == rec.RecommendedModel {
				cr.Samples = s.SampleCount
			}
		}
		recs = append(recs, cr)
	}
	if opts.jsonOut {
		return writeJSON(out, recs)
	}

	var b strings.Builder
	b.WriteString("General recommendations by category:\n\n")
	for _, r := range recs {
		basis := fmt.Sprintf("%d samples", r.Samples)
		if r.Samples == 0 {
			basis = "no history yet"
		}
		fmt.Fprintf(&b, "  %-22s %-14s %5.1f%%  (%s)\n", r.Category, r.Model, r.Confidence*100, basis)
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

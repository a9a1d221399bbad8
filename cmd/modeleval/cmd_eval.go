package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spboyer/modeleval/internal/dataset"
	"github.com/spboyer/modeleval/internal/models"
	"github.com/spboyer/modeleval/internal/orchestration"
	"github.com/spboyer/modeleval/internal/reporting"
)

// evalOptions holds the flags shared by quick and full.
type evalOptions struct {
	prompts     int
	export      bool
	outputDir   string
	formats     []string
	corpusPath  string
	categories  []string
	minAccuracy float64
	minScore    float64
	verbose     bool
	interpret   bool
	format      string
	metricsFile string
	cache       bool
}

func addEvalFlags(cmd *cobra.Command, opts *evalOptions) {
	cmd.Flags().IntVar(&opts.prompts, "prompts", 0, "Limit the number of prompts (0 = all)")
	cmd.Flags().BoolVar(&opts.export, "export", false, "Write report files to the output directory")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for exported reports (default: output.dir from config)")
	cmd.Flags().StringSliceVar(&opts.formats, "formats", nil, "Export formats: json, markdown, html, github, junit (default: output.formats from config)")
	cmd.Flags().StringArrayVar(&opts.categories, "category", nil, "Only run prompts whose category or text matches this glob (can be repeated)")
	cmd.Flags().Float64Var(&opts.minAccuracy, "min-accuracy", 0, "Fail with exit code 1 when recommendation accuracy is below this rate (0-1)")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "Overall score below which a JUnit test case fails (0 disables)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output with per-model scores")
	cmd.Flags().BoolVar(&opts.interpret, "interpret", false, "Print a plain-language interpretation of the results")
	cmd.Flags().StringVar(&opts.format, "format", "default", "Output format: default, json, github-comment")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	cmd.Flags().BoolVar(&opts.cache, "cache", false, "Cache model responses (overrides cache.enabled from config)")
}

func newQuickCommand(global *globalOptions) *cobra.Command {
	opts := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "quick",
		Short: "Run the quick smoke-test corpus",
		Long: `Run a short corpus, one prompt per category by default, through every
candidate model. Uses corpus.path from config when set, limited to
corpus.quick_size prompts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, global, opts, true)
		},
	}
	addEvalFlags(cmd, opts)
	return cmd
}

func newFullCommand(global *globalOptions) *cobra.Command {
	opts := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "full",
		Short: "Run the full prompt corpus",
		Long: `Run the whole prompt corpus through every candidate model, record the
results in the performance history and report rankings, category
champions and recommendation accuracy.

The corpus is the built-in set unless --corpus or corpus.path names a YAML
or CSV file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, global, opts, false)
		},
	}
	addEvalFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.corpusPath, "corpus", "", "Corpus file (.yaml, .yml or .csv)")
	return cmd
}

// selectCorpus picks the prompt set for a quick or full run.
func selectCorpus(a *app, opts *evalOptions, quick bool) (dataset.Corpus, error) {
	path := opts.corpusPath
	if path == "" {
		path = a.cfg.Corpus.Path
	}

	var (
		corpus dataset.Corpus
		err    error
	)
	switch {
	case path != "":
		corpus, err = dataset.Load(path)
		if err != nil {
			return dataset.Corpus{}, fmt.Errorf("loading corpus: %w", err)
		}
	case quick:
		corpus = dataset.Quick()
	default:
		corpus = dataset.BuiltIn()
	}

	limit := opts.prompts
	if limit <= 0 && quick {
		limit = a.cfg.Corpus.QuickSize
	}
	return corpus.Limit(limit), nil
}

func runEval(cmd *cobra.Command, global *globalOptions, opts *evalOptions, quick bool) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	if opts.minAccuracy < 0 || opts.minAccuracy > 1 {
		return fmt.Errorf("%w: --min-accuracy must be between 0 and 1", models.ErrInvalidInput)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, global)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if cmd.Flags().Changed("cache") {
		a.cfg.Cache.Enabled = &opts.cache
	}

	corpus, err := selectCorpus(a, opts, quick)
	if err != nil {
		return err
	}

	gen, err := a.generator()
	if err != nil {
		return err
	}

	runner := orchestration.NewRunner(gen, a.store, a.engine,
		orchestration.WithWorkers(a.cfg.Engine.Workers),
		orchestration.WithTimeout(a.cfg.TimeoutDuration()),
		orchestration.WithResetBetweenRuns(a.cfg.History.ResetBetweenRuns != nil && *a.cfg.History.ResetBetweenRuns),
		orchestration.WithCategoryFilters(opts.categories...),
		orchestration.WithTelemetry(a.metrics),
		orchestration.WithSuiteName(corpus.Name),
	)

	out := cmd.OutOrStdout()
	machineOutput := opts.format == "json"
	if !machineOutput {
		runner.OnProgress(newProgressPrinter(out, opts.verbose).listen)
		fmt.Fprintf(out, "Corpus: %s (%d prompts)\n", corpus.Name, len(corpus.Prompts)) //nolint:errcheck
		fmt.Fprintf(out, "Engine: %s\n", a.cfg.Engine.Kind)                             //nolint:errcheck
		fmt.Fprintf(out, "Models: %v\n\n", a.models)                                    //nolint:errcheck
	}

	report, runErr := runner.Run(ctx, corpus.Prompts, a.models)
	if report == nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	saveErr := a.saveHistory(context.Background())

	if err := printReport(out, report, opts); err != nil {
		return err
	}

	if opts.export {
		if err := exportReport(out, a, report, opts); err != nil {
			return err
		}
	}

	if opts.metricsFile != "" {
		if err := a.metrics.WriteTextfile(opts.metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	if runErr != nil {
		return errors.Join(fmt.Errorf("run incomplete: %w", runErr), saveErr)
	}
	if saveErr != nil {
		return saveErr
	}

	acc := report.RecommendationAccuracy
	if opts.minAccuracy > 0 && acc.Rate < opts.minAccuracy {
		return &RunFailureError{
			Message: fmt.Sprintf("recommendation accuracy %.1f%% is below the required %.1f%%", acc.Rate*100, opts.minAccuracy*100),
		}
	}
	return nil
}

func checkFormat(format string) error {
	switch format {
	case "default", "json", "github-comment":
		return nil
	}
	return fmt.Errorf("%w: unknown output format %q (want default, json or github-comment)", models.ErrInvalidInput, format)
}

func printReport(out io.Writer, report *models.Report, opts *evalOptions) error {
	switch opts.format {
	case "json":
		return reporting.WriteJSON(out, report)
	case "github-comment":
		_, err := io.WriteString(out, reporting.GitHubComment(report))
		return err
	default:
		if err := reporting.WriteConsole(out, report); err != nil {
			return err
		}
		if opts.interpret {
			_, err := io.WriteString(out, reporting.FormatSummaryReport(report)+"\n")
			return err
		}
		return nil
	}
}

func exportReport(out io.Writer, a *app, report *models.Report, opts *evalOptions) error {
	dir := opts.outputDir
	if dir == "" {
		dir = a.cfg.Output.Dir
	}
	formats := opts.formats
	if len(formats) == 0 {
		formats = a.cfg.Output.Formats
	}

	paths, err := reporting.Export(report, dir, formats, opts.minScore)
	if err != nil {
		return fmt.Errorf("exporting report: %w", err)
	}
	if opts.format != "json" {
		for _, p := range paths {
			fmt.Fprintf(out, "Report saved to: %s\n", p) //nolint:errcheck
		}
	}
	return nil
}

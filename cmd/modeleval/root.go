package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "dev"

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	debug      bool
	configPath string
	engine     string
	models     []string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "modeleval",
		Short: "modeleval - compare and recommend language models",
		Long: `modeleval runs prompt corpora through a set of candidate language models,
scores every response, and learns which model performs best per topic.

It keeps a performance history across runs and uses it to recommend a model
for new prompts. Run without a subcommand on a terminal for an interactive menu.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(cmd) {
				return cmd.Help()
			}
			return runInteractive(cmd, opts)
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a .modeleval.yaml file (default: searched upward from the working directory)")
	cmd.PersistentFlags().StringVar(&opts.engine, "engine", "", "Inference engine: offline, openai, copilot (overrides config)")
	cmd.PersistentFlags().StringArrayVar(&opts.models, "model", nil, "Model to evaluate (can be repeated, default: every registered model)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if opts.debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newQuickCommand(opts))
	cmd.AddCommand(newFullCommand(opts))
	cmd.AddCommand(newRecommendCommand(opts))
	cmd.AddCommand(newHistoryCommand(opts))
	cmd.AddCommand(newCacheCommand(opts))
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newReportCommand())

	return cmd
}

// isTerminal reports whether both the command's input and output are a TTY.
func isTerminal(cmd *cobra.Command) bool {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(in.Fd())) {
		return false
	}
	out, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(out.Fd()))
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

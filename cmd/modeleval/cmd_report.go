package main

import (
	"github.com/spf13/cobra"

	"github.com/spboyer/modeleval/internal/reporting"
)

func newReportCommand() *cobra.Command {
	opts := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "report <results.json>",
		Short: "Print a saved evaluation report",
		Long: `Print a report previously exported with --export --formats json.

The report is rendered exactly as at the end of a run, so a saved result can be
turned into a console table or a GitHub comment later.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			report, err := reporting.ReadJSON(args[0])
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "default", "Output format: default, json, github-comment")
	cmd.Flags().BoolVar(&opts.interpret, "interpret", false, "Append a plain-language interpretation of the scores")

	return cmd
}

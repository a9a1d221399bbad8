package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spboyer/modeleval/internal/history"
	"github.com/spboyer/modeleval/internal/models"
)

func newHistoryCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage the performance history",
		Long: `Inspect and manage the per-category performance history that drives
recommendations. The backend and location come from the history section of
.modeleval.yaml.`,
	}

	cmd.AddCommand(newHistoryShowCommand(global))
	cmd.AddCommand(newHistoryClearCommand(global))
	cmd.AddCommand(newHistoryImportCommand(global))

	return cmd
}

func newHistoryShowCommand(global *globalOptions) *cobra.Command {
	var (
		jsonOut    bool
		categories []string
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the running statistics per category and model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, func(a *app) error {
				entries := filterEntries(a.store.Entries(), categories)
				if jsonOut {
					if entries == nil {
						entries = []models.PerformanceEntry{}
					}
					return writeJSON(cmd.OutOrStdout(), entries)
				}
				return printHistory(cmd.OutOrStdout(), a.store, entries)
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print entries as JSON")
	cmd.Flags().StringArrayVar(&categories, "category", nil, "Only show this category (can be repeated)")
	return cmd
}

func newHistoryClearCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every history entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), global)
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			removed := a.store.Len()
			a.store.Clear()
			if err := history.SaveFrom(cmd.Context(), a.persister, a.store); err != nil {
				return fmt.Errorf("clearing history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "History cleared: %d entries removed\n", removed) //nolint:errcheck
			return nil
		},
	}
}

func newHistoryImportCommand(global *globalOptions) *cobra.Command {
	var merge bool
	cmd := &cobra.Command{
		Use:   "import <history.json>",
		Short: "Import a history file",
		Long: `Import a history document into the configured backend. Both the current
{"version": 1, "entries": {...}} layout and the legacy per-model layout
{model: {category: {avg_score, sample_size}}} are accepted.

Existing entries are replaced unless --merge is given, in which case
imported entries overwrite only the (category, model) pairs they name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			snap, err := history.DecodeSnapshot(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			a, err := newApp(cmd.Context(), global)
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			if merge {
				current := a.store.Snapshot()
				for k, e := range snap {
					current[k] = e
				}
				snap = current
			}
			a.store.Restore(snap)
			if err := history.SaveFrom(cmd.Context(), a.persister, a.store); err != nil {
				return fmt.Errorf("importing history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (%d total)\n", len(snap), a.store.Len()) //nolint:errcheck
			return nil
		},
	}
	cmd.Flags().BoolVar(&merge, "merge", false, "Merge into the existing history instead of replacing it")
	return cmd
}

func filterEntries(entries []models.PerformanceEntry, categories []string) []models.PerformanceEntry {
	if len(categories) == 0 {
		return entries
	}
	var out []models.PerformanceEntry
	for _, e := range entries {
		for _, c := range categories {
			if strings.EqualFold(e.Category, c) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func printHistory(out io.Writer, store *history.Store, entries []models.PerformanceEntry) error {
	if len(entries) == 0 {
		_, err := io.WriteString(out, "No history recorded yet. Run `modeleval quick` or `modeleval full` first.\n")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-22s  %-14s  %7s  %6s  %4s\n", "Category", "Model", "Samples", "Mean", "Wins")
	b.WriteString(strings.Repeat("-", 61) + "\n")
	last := ""
	for _, e := range entries {
		marker := " "
		if best, ok := store.BestFor(e.Category); ok && best == e.Model {
			marker = "*"
		}
		cat := e.Category
		if cat == last {
			cat = ""
		}
		last = e.Category
		fmt.Fprintf(&b, "%-22s %s%-14s  %7d  %6.3f  %4d\n", cat, marker, e.Model, e.SampleCount, e.MeanScore, e.WinCount)
	}
	b.WriteString("\n* best mean score in category\n")
	_, err := io.WriteString(out, b.String())
	return err
}

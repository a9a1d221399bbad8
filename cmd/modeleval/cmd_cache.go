package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spboyer/modeleval/internal/cache"
)

func newCacheCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the model response cache",
		Long: `Manage the model response cache.

When cache.enabled is set (or --cache is passed to quick or full), responses
are stored per (model, prompt) so repeated runs skip inference.`,
	}

	cmd.AddCommand(newCacheClearCommand(global))

	return cmd
}

func newCacheClearCommand(global *globalOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the model response cache",
		Long: `Clear all cached model responses.

The next run will call every model again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				cfg, err := loadConfig(global)
				if err != nil {
					return err
				}
				dir = cfg.Cache.Dir
			}

			// Resolve to absolute path
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving cache directory: %w", err)
			}

			c := cache.New(absDir)
			removed := c.Len()
			if err := c.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s (%d entries)\n", absDir, removed) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "cache-dir", "", "Cache directory to clear (default: cache.dir from config)")

	return cmd
}

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spboyer/modeleval/internal/dataset"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <corpus>",
		Short: "Check a corpus file",
		Long: `Check a corpus file before running it. YAML corpora are validated against
the corpus JSON schema and every violation is reported with its location.
CSV corpora are parsed and must contain at least one prompt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()

			if strings.EqualFold(filepath.Ext(path), ".csv") {
				corpus, err := dataset.Load(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ %s: %d prompts\n", path, len(corpus.Prompts)) //nolint:errcheck
				return nil
			}

			errs, err := dataset.ValidateFile(path)
			if err != nil {
				return err
			}
			if len(errs) > 0 {
				fmt.Fprintf(out, "✗ %s\n", path) //nolint:errcheck
				for _, e := range errs {
					fmt.Fprintf(out, "  - %s\n", e) //nolint:errcheck
				}
				return fmt.Errorf("%s: %d schema violation(s): %w", path, len(errs), dataset.ErrCorpusInvalid)
			}

			corpus, err := dataset.Load(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ %s: %d prompts\n", path, len(corpus.Prompts)) //nolint:errcheck
			return nil
		},
	}
}

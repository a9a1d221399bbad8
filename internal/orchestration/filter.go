package orchestration

import (
	"fmt"
	"path/filepath"

	"github.com/spboyer/modeleval/internal/category"
	"github.com/spboyer/modeleval/internal/dataset"
)

// FilterPrompts returns the subset of prompts whose classified category or
// text matches at least one of the given glob patterns. An empty patterns
// slice returns all prompts unchanged.
func FilterPrompts(prompts []dataset.Prompt, patterns []string) ([]dataset.Prompt, error) {
	if len(patterns) == 0 {
		return prompts, nil
	}

	var matched []dataset.Prompt
	for _, p := range prompts {
		ok, err := matchesAny(p, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// matchesAny reports whether a prompt's category or text matches any pattern.
func matchesAny(p dataset.Prompt, patterns []string) (bool, error) {
	cat := category.Classify(p.Text)
	for _, pat := range patterns {
		catMatch, err := filepath.Match(pat, cat)
		if err != nil {
			return false, fmt.Errorf("invalid category filter pattern %q: %w", pat, err)
		}
		if catMatch {
			return true, nil
		}
		textMatch, err := filepath.Match(pat, p.Text)
		if err != nil {
			return false, fmt.Errorf("invalid category filter pattern %q: %w", pat, err)
		}
		if textMatch {
			return true, nil
		}
	}
	return false, nil
}

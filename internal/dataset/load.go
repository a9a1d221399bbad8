package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spboyer/modeleval/internal/models"
)

// ErrCorpusInvalid marks a corpus file that fails schema validation.
var ErrCorpusInvalid = errors.New("corpus failed validation")

// Load reads a corpus from a .yaml/.yml or .csv file.
func Load(path string) (Corpus, error) {
	var (
		c   Corpus
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		c, err = loadYAMLCorpus(path)
	case ".csv":
		c, err = loadCSVCorpus(path)
	default:
		return Corpus{}, fmt.Errorf("%w: unsupported corpus format %q", models.ErrInvalidInput, filepath.Ext(path))
	}
	if err != nil {
		return Corpus{}, err
	}
	if len(c.Prompts) == 0 {
		return Corpus{}, fmt.Errorf("%w: corpus %s has no prompts", models.ErrInvalidInput, path)
	}
	return c, nil
}

func loadYAMLCorpus(path string) (Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Corpus{}, fmt.Errorf("reading corpus file: %w", err)
	}
	return ParseYAML(data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// ParseYAML validates and decodes corpus YAML. fallbackName is used when the
// document has no name.
func ParseYAML(data []byte, fallbackName string) (Corpus, error) {
	if errs := ValidateBytes(data); len(errs) > 0 {
		return Corpus{}, fmt.Errorf("%w: %s", ErrCorpusInvalid, strings.Join(errs, "; "))
	}

	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Corpus{}, fmt.Errorf("parsing corpus: %w", err)
	}
	if c.Name == "" {
		c.Name = fallbackName
	}
	for i := range c.Prompts {
		c.Prompts[i].Text = strings.TrimSpace(c.Prompts[i].Text)
	}
	return c, nil
}

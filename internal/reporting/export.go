package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spboyer/modeleval/internal/models"
)

// Format names accepted by Export.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatGitHub   = "github"
	FormatJUnit    = "junit"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// BaseName is the file stem shared by every exported format of a report.
func BaseName(report *models.Report) string {
	suite := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(report.Suite), "-"), "-")
	if suite == "" {
		suite = "run"
	}
	return fmt.Sprintf("modeleval-%s-%s", suite, report.GeneratedAt.UTC().Format("20060102-150405"))
}

// Export writes report to dir in each requested format and returns the
// written paths in format order. minScore applies to JUnit only.
func Export(report *models.Report, dir string, formats []string, minScore float64) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	base := filepath.Join(dir, BaseName(report))

	var paths []string
	for _, f := range formats {
		var (
			path string
			err  error
		)
		switch strings.ToLower(f) {
		case FormatJSON:
			path = base + ".json"
			err = writeFile(path, func(fh *os.File) error { return WriteJSON(fh, report) })
		case FormatMarkdown, "md":
			path = base + ".md"
			err = os.WriteFile(path, []byte(Markdown(report, MarkdownOptions{PerPrompt: true})), 0o644)
		case FormatHTML:
			path = base + ".html"
			var page []byte
			if page, err = HTML(report); err == nil {
				err = os.WriteFile(path, page, 0o644)
			}
		case FormatGitHub:
			path = base + ".comment.md"
			err = os.WriteFile(path, []byte(GitHubComment(report)), 0o644)
		case FormatJUnit:
			path = base + ".junit.xml"
			err = WriteJUnitXML(report, minScore, path)
		default:
			return paths, fmt.Errorf("%w: unknown report format %q", models.ErrInvalidInput, f)
		}
		if err != nil {
			return paths, fmt.Errorf("writing %s report: %w", f, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(fh); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

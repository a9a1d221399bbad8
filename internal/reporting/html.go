package reporting

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/spboyer/modeleval/internal/models"
)

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 72rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; }
th { background: #f3f3f3; }
code { background: #f3f3f3; padding: 0 0.2rem; }
</style>
</head>
<body>
%s</body>
</html>
`

// HTML renders the Markdown summary of report as a standalone page.
func HTML(report *models.Report) ([]byte, error) {
	var body bytes.Buffer
	src := Markdown(report, MarkdownOptions{PerPrompt: true})
	if err := markdownRenderer.Convert([]byte(src), &body); err != nil {
		return nil, fmt.Errorf("rendering html: %w", err)
	}
	title := html.EscapeString("modeleval report: " + report.Suite)
	return fmt.Appendf(nil, htmlPage, title, body.String()), nil
}

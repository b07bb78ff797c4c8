package out

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"focuslog/internal/modules/analytics/domain"
	analyticsout "focuslog/internal/modules/analytics/port/out"
)

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 960px; margin: 2rem auto; color: #4c4f69; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #ccd0da; padding: 0.3rem 0.6rem; }
th { background: #eff1f5; }
</style>
</head>
<body>
%s
</body>
</html>
`

type HTMLExporter struct {
	md goldmark.Markdown
}

func NewHTMLExporter() analyticsout.Exporter {
	return HTMLExporter{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

func (HTMLExporter) Format() string { return "html" }

func (e HTMLExporter) Export(_ context.Context, doc domain.ExportDocument, path string) error {
	var body bytes.Buffer
	if err := e.md.Convert([]byte(RenderMarkdown(doc)), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	title := html.EscapeString(fmt.Sprintf("focuslog report (%s)", doc.Report.Range))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(fmt.Sprintf(htmlPage, title, body.String())), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"focuslog/internal/modules/analytics/domain"
	analyticsout "focuslog/internal/modules/analytics/port/out"
	"focuslog/internal/platform/markdown"
)

var reportBlock = markdown.Block{
	Start: "<!-- focuslog:report:start -->",
	End:   "<!-- focuslog:report:end -->",
}

// MarkdownExporter writes the report into a managed block so the rest of the note,
// e.g. a daily journal, survives repeated exports.
type MarkdownExporter struct{}

func NewMarkdownExporter() analyticsout.Exporter {
	return MarkdownExporter{}
}

func (MarkdownExporter) Format() string { return "md" }

func (MarkdownExporter) Export(_ context.Context, doc domain.ExportDocument, path string) error {
	existing := ""
	if raw, err := os.ReadFile(path); err == nil {
		existing = string(raw)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	updated := reportBlock.Replace(existing, RenderMarkdown(doc))
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

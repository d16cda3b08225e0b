package curriculum

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/svit-college/curriculum-portal/internal/view"
)

// PrintPage is the template set holding the standalone syllabus document.
const PrintPage = "curriculum/print"

// HTMLRenderer converts an HTML document to PDF. report.Client satisfies it.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html []byte) ([]byte, error)
}

// PDFExporter produces a printable syllabus.
type PDFExporter struct {
	templates *view.Engine
	renderer  HTMLRenderer
	now       func() time.Time
}

// NewPDFExporter constructs a PDFExporter.
func NewPDFExporter(templates *view.Engine, renderer HTMLRenderer) *PDFExporter {
	return &PDFExporter{templates: templates, renderer: renderer, now: time.Now}
}

// Export renders e to PDF. A failed conversion is returned as is; there is no
// fallback document.
func (x *PDFExporter) Export(ctx context.Context, e Entry) ([]byte, error) {
	var buf bytes.Buffer
	err := x.templates.Execute(&buf, PrintPage, "print", map[string]any{
		"Entry":       e,
		"GeneratedAt": x.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("curriculum: print template: %w", err)
	}
	pdf, err := x.renderer.RenderHTML(ctx, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("curriculum: export pdf: %w", err)
	}
	return pdf, nil
}

// FileName returns the download name for e.
func FileName(e Entry) string {
	return fmt.Sprintf("curriculum-%d.pdf", e.ID)
}

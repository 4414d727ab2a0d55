// Package report writes the run-level outputs: the Markdown report, its
// HTML rendering and the JSON manifest.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"panelmap/domain/core"
	"panelmap/domain/run"
	"panelmap/internal"
	"panelmap/internal/errors"
	"panelmap/ports"
)

var _ ports.Reporter = (*FileReporter)(nil)

// FileReporter writes report.md, report.html and run.json under the output
// directory. Artifact links use base names so the report stays valid next
// to its sibling files.
type FileReporter struct {
	outputDir string
	logger    *internal.Logger
}

// NewFileReporter creates a reporter writing into outputDir.
func NewFileReporter(outputDir string, logger *internal.Logger) *FileReporter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &FileReporter{outputDir: outputDir, logger: logger}
}

// WriteReport renders the manifest as Markdown and HTML and returns both
// paths, Markdown first.
func (r *FileReporter) WriteReport(ctx context.Context, manifest *run.Manifest) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return nil, errors.WithCode(errors.CodeExportFailed, fmt.Errorf("failed to create output directory: %w", err))
	}

	md := buildMarkdown(manifest)
	mdPath := filepath.Join(r.outputDir, "report.md")
	if err := os.WriteFile(mdPath, md, 0o644); err != nil {
		return nil, errors.WithCode(errors.CodeExportFailed, fmt.Errorf("failed to write %s: %w", mdPath, err))
	}

	htmlPath := filepath.Join(r.outputDir, "report.html")
	if err := os.WriteFile(htmlPath, renderHTML(manifest.Workbook, md), 0o644); err != nil {
		return nil, errors.WithCode(errors.CodeExportFailed, fmt.Errorf("failed to write %s: %w", htmlPath, err))
	}

	r.logger.Debug("[FileReporter] report written to %s in %.2fms",
		r.outputDir, float64(time.Since(start).Nanoseconds())/1e6)
	return []string{mdPath, htmlPath}, nil
}

// WriteManifest persists the manifest as indented JSON.
func (r *FileReporter) WriteManifest(ctx context.Context, manifest *run.Manifest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", errors.WithCode(errors.CodeInternalError, fmt.Errorf("failed to encode manifest: %w", err))
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", errors.WithCode(errors.CodeExportFailed, fmt.Errorf("failed to create output directory: %w", err))
	}
	path := filepath.Join(r.outputDir, "run.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", errors.WithCode(errors.CodeExportFailed, fmt.Errorf("failed to write %s: %w", path, err))
	}
	return path, nil
}

func buildMarkdown(m *run.Manifest) []byte {
	var b strings.Builder
	b.WriteString("# Panel Analysis Report\n\n")
	fmt.Fprintf(&b, "Workbook: `%s`\n\n", m.Workbook)
	fmt.Fprintf(&b, "- Run: `%s`\n", m.RunID)
	if m.CodeVersion != "" {
		fmt.Fprintf(&b, "- Code version: `%s`\n", m.CodeVersion)
	}
	fmt.Fprintf(&b, "- Started: %s\n", m.StartedAt)
	if !m.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "- Finished: %s (%.1fs)\n", m.FinishedAt, m.FinishedAt.Sub(m.StartedAt).Seconds())
	}
	fmt.Fprintf(&b, "- Input fingerprint: `%s`\n", shortFingerprint(m.Fingerprint))
	completed, skipped, failed := m.Counts()
	fmt.Fprintf(&b, "- Sheets: %d completed, %d skipped, %d failed\n\n", completed, skipped, failed)

	b.WriteString("| Sheet | Status | Rows kept | Rows dropped | Live columns | Components |\n")
	b.WriteString("|-------|--------|-----------|--------------|--------------|------------|\n")
	for _, s := range m.Sheets {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d |\n",
			s.Sheet, s.Status, s.RowsKept, s.DroppedRows, s.LiveColumns, s.Components)
	}
	b.WriteString("\n")

	for i := range m.Sheets {
		writeSheetSection(&b, &m.Sheets[i])
	}
	return []byte(b.String())
}

func writeSheetSection(b *strings.Builder, s *run.SheetOutcome) {
	fmt.Fprintf(b, "## %s (%s)\n\n", s.Sheet, s.Status)
	if s.Error != "" {
		fmt.Fprintf(b, "Error: %s\n\n", s.Error)
	}
	if len(s.VarianceExplained) > 0 {
		parts := make([]string, len(s.VarianceExplained))
		for i, v := range s.VarianceExplained {
			parts[i] = fmt.Sprintf("PC%d %.1f%%", i+1, v)
		}
		fmt.Fprintf(b, "Variance explained: %s\n\n", strings.Join(parts, ", "))
	}
	if len(s.DroppedColumns) > 0 {
		fmt.Fprintf(b, "Dropped columns: `%s`\n\n", strings.Join(s.DroppedColumns, "`, `"))
	}
	if len(s.Notices) > 0 {
		b.WriteString("Notices:\n\n")
		for _, n := range s.Notices {
			fmt.Fprintf(b, "- %s\n", n.Message)
		}
		b.WriteString("\n")
	}
	if len(s.Artifacts) > 0 {
		b.WriteString("Artifacts:\n\n")
		for _, a := range s.Artifacts {
			name := filepath.Base(a.Path)
			fmt.Fprintf(b, "- [%s](%s)\n", name, name)
		}
		b.WriteString("\n")
		for _, a := range s.Artifacts {
			if a.Kind == run.ArtifactScatterSVG {
				fmt.Fprintf(b, "![%s PCA scatter](%s)\n\n", s.Sheet, filepath.Base(a.Path))
			}
		}
	}
}

func renderHTML(title string, md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	body := markdown.Render(doc, renderer)
	return []byte(fmt.Sprintf(htmlShell, html.EscapeString(title), body))
}

func shortFingerprint(f core.InputFingerprint) string {
	s := f.String()
	if len(s) > 12 {
		return s[:12]
	}
	return s
}

const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2em auto; padding: 0 1em; color: #222; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
th { background: #f2f2f2; }
code { background: #f5f5f5; padding: 1px 4px; }
img { max-width: 100%%; }
</style>
</head>
<body>
%s</body>
</html>
`

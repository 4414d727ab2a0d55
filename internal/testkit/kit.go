package testkit

import (
	"context"
	"fmt"
	"sync"

	"panelmap/domain/core"
	"panelmap/domain/frame"
	"panelmap/domain/heatmap"
	"panelmap/domain/run"
	"panelmap/domain/scatter"
	"panelmap/ports"
)

var (
	_ ports.SheetSource     = (*MemorySource)(nil)
	_ ports.Exporter        = (*MemoryExporter)(nil)
	_ ports.HeatmapRenderer = (*MemoryHeatmapRenderer)(nil)
	_ ports.ScatterRenderer = (*MemoryScatterRenderer)(nil)
	_ ports.Reporter        = (*MemoryReporter)(nil)
)

// MemorySource implements ports.SheetSource over in-memory sheets.
type MemorySource struct {
	Sheets []*frame.Sheet
	Err    error
}

// NewMemorySource creates a source over the given sheets.
func NewMemorySource(sheets ...*frame.Sheet) *MemorySource {
	return &MemorySource{Sheets: sheets}
}

func (s *MemorySource) SheetNames(ctx context.Context) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	names := make([]string, len(s.Sheets))
	for i, sheet := range s.Sheets {
		names[i] = sheet.Name
	}
	return names, nil
}

func (s *MemorySource) ReadSheet(ctx context.Context, name string) (*frame.Sheet, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, sheet := range s.Sheets {
		if sheet.Name == name {
			return sheet, nil
		}
	}
	return nil, fmt.Errorf("%w %q", core.ErrSheetNotFound, name)
}

func (s *MemorySource) ReadAll(ctx context.Context) ([]*frame.Sheet, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]*frame.Sheet(nil), s.Sheets...), nil
}

func (s *MemorySource) Close() error { return nil }

// MemoryExporter implements ports.Exporter, recording every call. Safe for
// concurrent use so runner tests can process sheets in parallel.
type MemoryExporter struct {
	mu      sync.Mutex
	Columns map[string][]string
	Scores  map[string]frame.NumericMatrix
	Err     error
}

// NewMemoryExporter creates an empty recording exporter.
func NewMemoryExporter() *MemoryExporter {
	return &MemoryExporter{
		Columns: make(map[string][]string),
		Scores:  make(map[string]frame.NumericMatrix),
	}
}

func (e *MemoryExporter) ExportColumns(ctx context.Context, sheet string, columns []string) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Columns[sheet] = append([]string(nil), columns...)
	return sheet + "_columns.csv", nil
}

func (e *MemoryExporter) ExportPCValues(ctx context.Context, sheet string, metadata frame.MetadataTable, scores frame.NumericMatrix) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Scores[sheet] = scores
	return sheet + "_PCvalues.csv", nil
}

// MemoryHeatmapRenderer implements ports.HeatmapRenderer, keeping the last
// layout per sheet.
type MemoryHeatmapRenderer struct {
	mu      sync.Mutex
	Layouts map[string]*heatmap.Layout
	Err     error
}

// NewMemoryHeatmapRenderer creates an empty recording renderer.
func NewMemoryHeatmapRenderer() *MemoryHeatmapRenderer {
	return &MemoryHeatmapRenderer{Layouts: make(map[string]*heatmap.Layout)}
}

func (r *MemoryHeatmapRenderer) RenderHeatmap(ctx context.Context, sheet string, layout *heatmap.Layout) (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Layouts[sheet] = layout
	return sheet + "_heatmap_split.svg", nil
}

// MemoryScatterRenderer implements ports.ScatterRenderer, keeping the last
// spec per sheet.
type MemoryScatterRenderer struct {
	mu    sync.Mutex
	Specs map[string]*scatter.Spec
	Err   error
}

// NewMemoryScatterRenderer creates an empty recording renderer.
func NewMemoryScatterRenderer() *MemoryScatterRenderer {
	return &MemoryScatterRenderer{Specs: make(map[string]*scatter.Spec)}
}

func (r *MemoryScatterRenderer) RenderScatter(ctx context.Context, sheet string, spec *scatter.Spec) (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Specs[sheet] = spec
	return sheet + "_pca_scatter.svg", nil
}

// MemoryReporter implements ports.Reporter, keeping the written manifests.
type MemoryReporter struct {
	mu        sync.Mutex
	Manifests []*run.Manifest
	Err       error
}

// NewMemoryReporter creates an empty recording reporter.
func NewMemoryReporter() *MemoryReporter {
	return &MemoryReporter{}
}

func (r *MemoryReporter) WriteReport(ctx context.Context, manifest *run.Manifest) ([]string, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return []string{"report.md", "report.html"}, nil
}

func (r *MemoryReporter) WriteManifest(ctx context.Context, manifest *run.Manifest) (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Manifests = append(r.Manifests, manifest)
	return "run.json", nil
}

// Package render draws the per-sheet SVG artifacts: the split heatmap and
// the component-space scatter.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	svg "github.com/ajstarks/svgo"

	"panelmap/domain/annotate"
	"panelmap/domain/heatmap"
	"panelmap/domain/run"
	"panelmap/internal"
	"panelmap/internal/config"
	"panelmap/internal/errors"
	"panelmap/ports"
)

var _ ports.HeatmapRenderer = (*HeatmapSVG)(nil)

// Pixel geometry of the rendered heatmap.
const (
	cellSize   = 14
	groupGap   = 6
	stripWidth = 12
	stripGap   = 2
	gridLeft   = 2*stripWidth + stripGap + 6
	titleBase  = 14
	headerBase = 32
	gridTop    = 38
	labelWidth = 170
	legendRow  = 16
	minWidth   = 360
)

const (
	labelStyle   = "font-family:sans-serif;font-size:10px"
	headingStyle = "font-family:sans-serif;font-size:10px;font-weight:bold"
)

// HeatmapSVG renders split heatmap layouts as standalone SVG files under
// the output directory.
type HeatmapSVG struct {
	outputDir string
	cfg       *config.Config
	logger    *internal.Logger
}

// NewHeatmapSVG creates a heatmap renderer using the configured palettes.
func NewHeatmapSVG(outputDir string, cfg *config.Config, logger *internal.Logger) *HeatmapSVG {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &HeatmapSVG{outputDir: outputDir, cfg: cfg, logger: logger}
}

// RenderHeatmap draws the layout: clustered cell grid split by treatment
// and method+organ groups, annotation strips, row labels, and the
// treatment/method/organ legends with the diverging scale bar.
func (r *HeatmapSVG) RenderHeatmap(ctx context.Context, sheet string, layout *heatmap.Layout) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()

	heatW := gridWidth(layout)
	heatH := gridHeight(layout)
	width := gridLeft + heatW + 8 + labelWidth
	if width < minWidth {
		width = minWidth
	}
	height := gridTop + heatH + 16 + legendHeight(layout)

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", errors.WithCode(errors.CodeRenderFailed, fmt.Errorf("failed to create output directory: %w", err))
	}
	path := filepath.Join(r.outputDir, run.SafeSheetName(sheet)+"_heatmap_split.svg")
	file, err := os.Create(path)
	if err != nil {
		return "", errors.WithCode(errors.CodeRenderFailed, fmt.Errorf("failed to create %s: %w", path, err))
	}

	canvas := svg.New(file)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#FFFFFF")
	canvas.Text(4, titleBase, sheet, "font-family:sans-serif;font-size:12px;font-weight:bold")
	r.drawGrid(canvas, layout, heatW)
	r.drawLegend(canvas, layout, gridTop+heatH+16)
	canvas.End()

	if err := file.Close(); err != nil {
		return "", errors.WithCode(errors.CodeRenderFailed, fmt.Errorf("failed to close %s: %w", path, err))
	}
	r.logger.Debug("[HeatmapSVG] %s rendered to %s in %.2fms",
		sheet, path, float64(time.Since(start).Nanoseconds())/1e6)
	return path, nil
}

// drawGrid draws the cell grid with its group headers, the per-row method
// and organ strips, and the row labels.
func (r *HeatmapSVG) drawGrid(canvas *svg.SVG, layout *heatmap.Layout, heatW int) {
	colX := gridLeft
	for _, cg := range layout.ColumnGroups {
		groupW := len(cg.Columns) * cellSize
		canvas.Text(colX+groupW/2, headerBase, cg.Treatment,
			"font-family:sans-serif;font-size:11px;text-anchor:middle")
		rowY := gridTop
		for _, rg := range layout.RowGroups {
			for ri, v := range rg.Rows {
				for ci, o := range cg.Columns {
					canvas.Rect(colX+ci*cellSize, rowY+ri*cellSize, cellSize, cellSize,
						"fill:"+layout.Scale.Color(layout.Cells[v][o]).Hex())
				}
			}
			rowY += len(rg.Rows)*cellSize + groupGap
		}
		colX += groupW + groupGap
	}

	rowY := gridTop
	for _, rg := range layout.RowGroups {
		for ri, v := range rg.Rows {
			y := rowY + ri*cellSize
			a := layout.Annotations[v]
			canvas.Rect(0, y, stripWidth, cellSize, "fill:"+r.methodColor(a.Method))
			canvas.Rect(stripWidth+stripGap, y, stripWidth, cellSize, "fill:"+r.organColor(a.Organ))
			canvas.Text(gridLeft+heatW+8, y+cellSize-4, layout.RowLabels[v], labelStyle)
		}
		rowY += len(rg.Rows)*cellSize + groupGap
	}
}

// drawLegend draws the treatment, method and organ color keys followed by
// the diverging scale bar.
func (r *HeatmapSVG) drawLegend(canvas *svg.SVG, layout *heatmap.Layout, y int) {
	canvas.Text(0, y+10, "Treatment", headingStyle)
	y += legendRow
	treatmentColors := r.cfg.TreatmentColors()
	for _, cg := range layout.ColumnGroups {
		canvas.Rect(0, y, 10, 10, "fill:"+colorOr(treatmentColors[cg.Treatment], "#999999"))
		canvas.Text(16, y+9, cg.Treatment, labelStyle)
		y += legendRow
	}

	canvas.Text(0, y+10, "Method", headingStyle)
	y += legendRow
	for _, m := range presentMethods(layout.Annotations) {
		canvas.Rect(0, y, 10, 10, "fill:"+r.methodColor(m))
		canvas.Text(16, y+9, m, labelStyle)
		y += legendRow
	}

	canvas.Text(0, y+10, "Organ", headingStyle)
	y += legendRow
	for _, o := range presentOrgans(layout.Annotations) {
		canvas.Rect(0, y, 10, 10, "fill:"+r.organColor(o))
		canvas.Text(16, y+9, o, labelStyle)
		y += legendRow
	}

	y += 6
	const steps = 40
	for i := 0; i < steps; i++ {
		v := heatmap.ScaleMin + (heatmap.ScaleMax-heatmap.ScaleMin)*float64(i)/float64(steps-1)
		canvas.Rect(i*3, y, 3, 10, "fill:"+layout.Scale.Color(v).Hex())
	}
	canvas.Text(0, y+22, "-2", labelStyle)
	canvas.Text(steps*3/2, y+22, "0", labelStyle+";text-anchor:middle")
	canvas.Text(steps*3, y+22, "+2", labelStyle+";text-anchor:end")
}

func (r *HeatmapSVG) methodColor(method string) string {
	if c, ok := r.cfg.MethodColors[method]; ok {
		return c
	}
	if c, ok := r.cfg.MethodColors[annotate.CategoryOther]; ok {
		return c
	}
	return "#999999"
}

// organColor maps an undefined organ to white: absence of a category, not
// membership in the "other" bucket.
func (r *HeatmapSVG) organColor(organ string) string {
	if organ == "" {
		return "#FFFFFF"
	}
	if c, ok := r.cfg.OrganColors[organ]; ok {
		return c
	}
	if c, ok := r.cfg.OrganColors[annotate.CategoryOther]; ok {
		return c
	}
	return "#CCCCCC"
}

func colorOr(c, fallback string) string {
	if c == "" {
		return fallback
	}
	return c
}

func gridWidth(layout *heatmap.Layout) int {
	w := 0
	for _, cg := range layout.ColumnGroups {
		w += len(cg.Columns) * cellSize
	}
	if len(layout.ColumnGroups) > 1 {
		w += (len(layout.ColumnGroups) - 1) * groupGap
	}
	return w
}

func gridHeight(layout *heatmap.Layout) int {
	h := 0
	for _, rg := range layout.RowGroups {
		h += len(rg.Rows) * cellSize
	}
	if len(layout.RowGroups) > 1 {
		h += (len(layout.RowGroups) - 1) * groupGap
	}
	return h
}

func legendHeight(layout *heatmap.Layout) int {
	entries := len(layout.ColumnGroups) + len(presentMethods(layout.Annotations)) + len(presentOrgans(layout.Annotations))
	return (entries+3)*legendRow + 44
}

// presentMethods lists the methods in first-appearance order.
func presentMethods(annotations []annotate.Annotation) []string {
	seen := make(map[string]bool)
	var methods []string
	for _, a := range annotations {
		if !seen[a.Method] {
			seen[a.Method] = true
			methods = append(methods, a.Method)
		}
	}
	return methods
}

// presentOrgans lists the defined organs in first-appearance order.
func presentOrgans(annotations []annotate.Annotation) []string {
	seen := make(map[string]bool)
	var organs []string
	for _, a := range annotations {
		if a.Organ == "" || seen[a.Organ] {
			continue
		}
		seen[a.Organ] = true
		organs = append(organs, a.Organ)
	}
	return organs
}

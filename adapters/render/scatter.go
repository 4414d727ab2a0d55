package render

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"panelmap/domain/heatmap"
	"panelmap/domain/run"
	"panelmap/domain/scatter"
	"panelmap/internal"
	"panelmap/internal/config"
	"panelmap/internal/errors"
	"panelmap/ports"
)

var _ ports.ScatterRenderer = (*ScatterPlot)(nil)

// Marker shapes assigned to treatments in legend order.
var glyphShapes = []draw.GlyphDrawer{
	draw.CircleGlyph{},
	draw.TriangleGlyph{},
	draw.SquareGlyph{},
	draw.CrossGlyph{},
	draw.RingGlyph{},
	draw.PyramidGlyph{},
}

// ScatterPlot renders the component-space projection as an SVG file under
// the output directory. Each treatment gets its configured color and its
// own marker shape.
type ScatterPlot struct {
	outputDir string
	cfg       *config.Config
	logger    *internal.Logger
}

// NewScatterPlot creates a scatter renderer using the configured palette.
func NewScatterPlot(outputDir string, cfg *config.Config, logger *internal.Logger) *ScatterPlot {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ScatterPlot{outputDir: outputDir, cfg: cfg, logger: logger}
}

// RenderScatter draws one point per observation in PC1/PC2 space.
func (r *ScatterPlot) RenderScatter(ctx context.Context, sheet string, spec *scatter.Spec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()

	p := plot.New()
	p.Title.Text = sheet
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.Add(plotter.NewGrid())

	colors := r.cfg.TreatmentColors()
	for i, treatment := range spec.Treatments {
		var xys plotter.XYs
		for _, point := range spec.Points {
			if point.Treatment == treatment {
				xys = append(xys, plotter.XY{X: point.X, Y: point.Y})
			}
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return "", errors.WithCode(errors.CodeRenderFailed, fmt.Errorf("failed to plot %s points: %w", treatment, err))
		}
		s.GlyphStyle.Color = parseColor(colors[treatment])
		s.GlyphStyle.Radius = vg.Points(3.5)
		s.GlyphStyle.Shape = glyphShapes[i%len(glyphShapes)]
		p.Add(s)
		p.Legend.Add(treatment, s)
	}
	p.Legend.Top = true

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", errors.WithCode(errors.CodeRenderFailed, fmt.Errorf("failed to create output directory: %w", err))
	}
	path := filepath.Join(r.outputDir, run.SafeSheetName(sheet)+"_pca_scatter.svg")
	if err := p.Save(6*vg.Inch, 5*vg.Inch, path); err != nil {
		return "", errors.WithCode(errors.CodeRenderFailed, fmt.Errorf("failed to save %s: %w", path, err))
	}

	r.logger.Debug("[ScatterPlot] %s rendered to %s in %.2fms (%d points)",
		sheet, path, float64(time.Since(start).Nanoseconds())/1e6, len(spec.Points))
	return path, nil
}

func parseColor(hex string) color.Color {
	rgb, err := heatmap.ParseHex(hex)
	if err != nil {
		return color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xFF}
	}
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 0xFF}
}

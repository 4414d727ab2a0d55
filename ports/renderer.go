package ports

import (
	"context"

	"panelmap/domain/heatmap"
	"panelmap/domain/scatter"
)

// HeatmapRenderer renders a split heatmap layout and returns the path of
// the written file.
type HeatmapRenderer interface {
	RenderHeatmap(ctx context.Context, sheet string, layout *heatmap.Layout) (string, error)
}

// ScatterRenderer renders the component-space projection and returns the
// path of the written file.
type ScatterRenderer interface {
	RenderScatter(ctx context.Context, sheet string, spec *scatter.Spec) (string, error)
}

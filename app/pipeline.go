package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"panelmap/domain/annotate"
	"panelmap/domain/core"
	"panelmap/domain/frame"
	"panelmap/domain/heatmap"
	"panelmap/domain/pca"
	"panelmap/domain/run"
	"panelmap/domain/scatter"
	"panelmap/internal"
	"panelmap/internal/config"
	"panelmap/ports"
)

// Pipeline processes one sheet end to end: standardize, clean, classify,
// project, lay out, and write the sheet's artifacts through the output
// ports. Processing is synchronous and touches no shared mutable state, so
// separate sheets can run on separate goroutines.
type Pipeline struct {
	cfg        *config.Config
	classifier *annotate.Classifier
	exporter   ports.Exporter
	heatmaps   ports.HeatmapRenderer
	scatters   ports.ScatterRenderer
	logger     *internal.Logger
}

// NewPipeline creates a sheet pipeline.
func NewPipeline(cfg *config.Config, exporter ports.Exporter, heatmaps ports.HeatmapRenderer, scatters ports.ScatterRenderer, logger *internal.Logger) *Pipeline {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Pipeline{
		cfg:        cfg,
		classifier: annotate.NewClassifier(),
		exporter:   exporter,
		heatmaps:   heatmaps,
		scatters:   scatters,
		logger:     logger,
	}
}

// ProcessSheet runs the full per-sheet flow and reports everything that
// happened as a SheetOutcome. Errors never escape: a fatal stage error marks
// the sheet failed, a degenerate stage records a notice and the remaining
// stages continue where they still make sense.
func (p *Pipeline) ProcessSheet(ctx context.Context, sheet *frame.Sheet) (outcome run.SheetOutcome) {
	start := time.Now()
	outcome = run.SheetOutcome{Sheet: sheet.Name, Status: run.StatusCompleted}
	defer func() {
		outcome.DurationMS = float64(time.Since(start).Nanoseconds()) / 1e6
	}()

	std, err := frame.Standardize(*sheet, frame.Options{
		MetadataColumns: p.cfg.MetadataColumns,
		TreatmentColumn: p.cfg.TreatmentColumn,
		Treatments:      p.cfg.Labels(),
	})
	if err != nil {
		return p.fail(outcome, "standardize", err)
	}
	p.logger.Debug("[Pipeline] %s: standardized to %d rows, %d measurement columns",
		sheet.Name, std.Matrix.RowCount(), std.Matrix.ColumnCount())

	cleaned, err := frame.Clean(std.Metadata, std.Matrix)
	if err != nil {
		return p.fail(outcome, "filter", err)
	}
	outcome.RowsKept = cleaned.Matrix.RowCount()
	outcome.DroppedRows = cleaned.DroppedRows
	outcome.DroppedColumns = core.KeyStrings(cleaned.DroppedColumns)
	outcome.LiveColumns = cleaned.Matrix.ColumnCount()
	if cleaned.DroppedRows > 0 {
		outcome.AddNotice(run.NewMissingDataNotice(cleaned.DroppedRows))
	}
	if len(cleaned.DroppedColumns) > 0 {
		outcome.AddNotice(run.NewInfoNotice("filter", fmt.Sprintf(
			"%d zero-variance columns dropped: %s",
			len(cleaned.DroppedColumns), strings.Join(outcome.DroppedColumns, ", "))))
	}

	if outcome.RowsKept == 0 || outcome.LiveColumns == 0 {
		reason := "no rows survive cleaning"
		if outcome.RowsKept > 0 {
			reason = "no informative columns survive cleaning"
		}
		outcome.Status = run.StatusSkipped
		outcome.AddNotice(run.NewDegenerateNotice("sheet", reason))
		p.logger.Warn("[Pipeline] %s skipped: %s", sheet.Name, reason)
		return outcome
	}

	columnsPath, err := p.exporter.ExportColumns(ctx, sheet.Name, cleaned.Matrix.KeyStrings())
	if err != nil {
		return p.fail(outcome, "export", err)
	}
	outcome.AddArtifact(run.ArtifactColumnsCSV, columnsPath)

	// The annotation table covers every pre-filter measurement column plus
	// the appended score columns; alignment against the live column list
	// happens after augmentation.
	table := p.classifier.Annotate(std.Matrix.Keys)

	augmented := cleaned.Matrix
	result, err := pca.Compute(cleaned.Matrix)
	switch {
	case core.IsDegenerateInput(err):
		result = nil
		outcome.AddNotice(run.NewDegenerateNotice("pca", fmt.Sprintf(
			"matrix is %dx%d, need at least 2x2", outcome.RowsKept, outcome.LiveColumns)))
		p.logger.Warn("[Pipeline] %s: pca skipped on %dx%d matrix",
			sheet.Name, outcome.RowsKept, outcome.LiveColumns)
	case err != nil:
		return p.fail(outcome, "pca", err)
	default:
		outcome.Components = result.K
		outcome.VarianceExplained = result.VarianceExplained
		scores := make([][]float64, result.K)
		for j := 0; j < result.K; j++ {
			scores[j] = result.Component(j)
		}
		augmented, err = cleaned.Matrix.AppendColumns(result.Scores.Keys, scores)
		if err != nil {
			return p.fail(outcome, "pca", err)
		}
		table = append(table, p.classifier.Annotate(result.Scores.Keys)...)

		pcPath, err := p.exporter.ExportPCValues(ctx, sheet.Name, cleaned.Metadata, result.Scores)
		if err != nil {
			return p.fail(outcome, "export", err)
		}
		outcome.AddArtifact(run.ArtifactPCValuesCSV, pcPath)
	}

	treatments, hasTreatment := cleaned.Metadata.ColumnFold(p.cfg.TreatmentColumn)
	if !hasTreatment {
		outcome.AddNotice(run.NewDegenerateNotice("heatmap", "no treatment column in sheet metadata"))
		outcome.AddNotice(run.NewDegenerateNotice("scatter", "no treatment column in sheet metadata"))
		p.logger.Warn("[Pipeline] %s: no %q column, plots skipped", sheet.Name, p.cfg.TreatmentColumn)
		return outcome
	}

	scale, err := heatmap.NewScale(p.cfg.HeatmapScale.Low, p.cfg.HeatmapScale.Mid, p.cfg.HeatmapScale.High)
	if err != nil {
		return p.fail(outcome, "heatmap", err)
	}
	layout, err := heatmap.Build(augmented, treatments, annotate.Align(table, augmented.Keys), heatmap.Params{
		Treatments: p.cfg.Labels(),
		Scale:      scale,
	})
	if err != nil {
		return p.fail(outcome, "heatmap", err)
	}
	heatmapPath, err := p.heatmaps.RenderHeatmap(ctx, sheet.Name, layout)
	if err != nil {
		return p.fail(outcome, "render", err)
	}
	outcome.AddArtifact(run.ArtifactHeatmapSVG, heatmapPath)

	spec, err := scatter.Build(result, treatments, p.cfg.Labels())
	switch {
	case core.IsDegenerateInput(err):
		k := 0
		if result != nil {
			k = result.K
		}
		outcome.AddNotice(run.NewDegenerateNotice("scatter", fmt.Sprintf(
			"fewer than 2 components (have %d)", k)))
		p.logger.Warn("[Pipeline] %s: scatter skipped with %d components", sheet.Name, k)
	case err != nil:
		return p.fail(outcome, "scatter", err)
	default:
		scatterPath, err := p.scatters.RenderScatter(ctx, sheet.Name, spec)
		if err != nil {
			return p.fail(outcome, "render", err)
		}
		outcome.AddArtifact(run.ArtifactScatterSVG, scatterPath)
	}

	p.logger.Info("[Pipeline] %s: %d rows, %d live columns, %d components, %d artifacts",
		sheet.Name, outcome.RowsKept, outcome.LiveColumns, outcome.Components, len(outcome.Artifacts))
	return outcome
}

// fail marks the outcome failed at the named stage. Other sheets are not
// affected.
func (p *Pipeline) fail(outcome run.SheetOutcome, stage string, err error) run.SheetOutcome {
	outcome.Status = run.StatusFailed
	outcome.Error = fmt.Sprintf("%s: %v", stage, err)
	p.logger.Error("[Pipeline] %s failed at %s: %v", outcome.Sheet, stage, err)
	return outcome
}

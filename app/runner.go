package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"panelmap/domain/core"
	"panelmap/domain/run"
	"panelmap/internal"
	"panelmap/internal/config"
	"panelmap/ports"
)

// Runner executes the sheet pipeline across a whole workbook and assembles
// the run manifest and report.
type Runner struct {
	cfg      *config.Config
	source   ports.SheetSource
	pipeline *Pipeline
	reporter ports.Reporter
	logger   *internal.Logger
}

// RunRequest carries the run-level inputs.
type RunRequest struct {
	// Workbook is the input path recorded in the manifest.
	Workbook string
	// Parallel is the worker limit for sheet processing; values below 1 run
	// sequentially.
	Parallel int
	// CodeVersion is stamped into the manifest for repeatability.
	CodeVersion string
}

// RunResult pairs the finished manifest with the written run-level paths.
type RunResult struct {
	Manifest     *run.Manifest
	ManifestPath string
	ReportPaths  []string
	RuntimeMs    int64
}

// NewRunner creates a workbook runner.
func NewRunner(cfg *config.Config, source ports.SheetSource, pipeline *Pipeline, reporter ports.Reporter, logger *internal.Logger) *Runner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Runner{
		cfg:      cfg,
		source:   source,
		pipeline: pipeline,
		reporter: reporter,
		logger:   logger,
	}
}

// Execute reads every sheet, processes them with at most req.Parallel
// workers, and writes the manifest and report. Sheets are independent, so a
// failed sheet never stops the others; the manifest keeps workbook order
// regardless of completion order.
func (r *Runner) Execute(ctx context.Context, req RunRequest) (*RunResult, error) {
	start := time.Now()

	readStart := time.Now()
	sheets, err := r.source.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", req.Workbook)
	}
	r.logger.Info("[Runner] %d sheets read in %.2fms",
		len(sheets), float64(time.Since(readStart).Nanoseconds())/1e6)

	dims := make(map[string][2]int, len(sheets))
	for _, s := range sheets {
		dims[s.Name] = [2]int{s.RowCount(), s.ColumnCount()}
	}
	manifest := run.NewManifest(req.Workbook, core.ComputeInputFingerprint(dims, r.fingerprintValues()), req.CodeVersion)
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}

	parallel := req.Parallel
	if parallel < 1 {
		parallel = 1
	}
	outcomes := make([]run.SheetOutcome, len(sheets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, sheet := range sheets {
		i, sheet := i, sheet
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Distinct indices per goroutine; outcomes need no lock.
			outcomes[i] = r.pipeline.ProcessSheet(gctx, sheet)
			return nil
		})
	}
	// ProcessSheet never returns an error, so Wait only surfaces
	// cancellation.
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	for _, outcome := range outcomes {
		manifest.AddSheet(outcome)
	}
	manifest.Finish()

	completed, skipped, failed := manifest.Counts()
	r.logger.Info("[Runner] run %s: %d completed, %d skipped, %d failed",
		manifest.RunID, completed, skipped, failed)

	manifestPath, err := r.reporter.WriteManifest(ctx, manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	reportPaths, err := r.reporter.WriteReport(ctx, manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	return &RunResult{
		Manifest:     manifest,
		ManifestPath: manifestPath,
		ReportPaths:  reportPaths,
		RuntimeMs:    time.Since(start).Milliseconds(),
	}, nil
}

// fingerprintValues flattens the configuration knobs that change analysis
// output. Cosmetic settings (palettes, output directory) stay out so restyled
// reruns over the same data keep the same fingerprint.
func (r *Runner) fingerprintValues() map[string]string {
	return map[string]string{
		"treatments":       strings.Join(r.cfg.Labels(), "|"),
		"treatment_column": r.cfg.TreatmentColumn,
		"metadata_columns": strings.Join(r.cfg.MetadataColumns, "|"),
	}
}

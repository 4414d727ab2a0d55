// Package export writes per-sheet flat CSV artifacts.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"panelmap/domain/frame"
	"panelmap/domain/run"
	"panelmap/internal"
	"panelmap/internal/errors"
	"panelmap/ports"
)

var _ ports.Exporter = (*CSVExporter)(nil)

// CSVExporter writes the per-sheet column list and component scores under
// the output directory.
type CSVExporter struct {
	outputDir string
	logger    *internal.Logger
}

// NewCSVExporter creates an exporter rooted at outputDir.
func NewCSVExporter(outputDir string, logger *internal.Logger) *CSVExporter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CSVExporter{outputDir: outputDir, logger: logger}
}

// ExportColumns writes the live numeric column names, one per record.
func (e *CSVExporter) ExportColumns(ctx context.Context, sheet string, columns []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(e.outputDir, run.SafeSheetName(sheet)+"_columns.csv")

	records := make([][]string, len(columns))
	for i, name := range columns {
		records[i] = []string{name}
	}
	if err := e.writeRecords(path, records); err != nil {
		return "", err
	}
	e.logger.Debug("[CSVExporter] %s: %d column names written to %s", sheet, len(columns), path)
	return path, nil
}

// ExportPCValues writes the metadata columns followed by the component
// scores, one row per observation, with a header row.
func (e *CSVExporter) ExportPCValues(ctx context.Context, sheet string, metadata frame.MetadataTable, scores frame.NumericMatrix) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(metadata.Columns) > 0 && metadata.RowCount() != scores.RowCount() {
		return "", errors.ExportFailed(fmt.Sprintf(
			"metadata has %d rows, scores have %d", metadata.RowCount(), scores.RowCount()))
	}
	path := filepath.Join(e.outputDir, run.SafeSheetName(sheet)+"_PCvalues.csv")

	header := append(metadata.ColumnNames(), scores.KeyStrings()...)
	records := make([][]string, 0, scores.RowCount()+1)
	records = append(records, header)
	for i := 0; i < scores.RowCount(); i++ {
		record := make([]string, 0, len(header))
		for _, col := range metadata.Columns {
			record = append(record, col.Values[i])
		}
		for _, v := range scores.Row(i) {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		records = append(records, record)
	}

	start := time.Now()
	if err := e.writeRecords(path, records); err != nil {
		return "", err
	}
	e.logger.Debug("[CSVExporter] %s: %d score rows written to %s in %.2fms",
		sheet, scores.RowCount(), path, float64(time.Since(start).Nanoseconds())/1e6)
	return path, nil
}

func (e *CSVExporter) writeRecords(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WithCode(errors.CodeExportFailed, fmt.Errorf("failed to create output directory: %w", err))
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.WithCode(errors.CodeExportFailed, fmt.Errorf("failed to create %s: %w", path, err))
	}
	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		file.Close()
		return errors.WithCode(errors.CodeExportFailed, fmt.Errorf("failed to write %s: %w", path, err))
	}
	if err := file.Close(); err != nil {
		return errors.WithCode(errors.CodeExportFailed, fmt.Errorf("failed to close %s: %w", path, err))
	}
	return nil
}

package ports

import (
	"context"

	"panelmap/domain/frame"
)

// Exporter writes a sheet's flat tabular artifacts and returns the path of
// each written file.
type Exporter interface {
	// ExportColumns writes the live numeric column names, one per record.
	ExportColumns(ctx context.Context, sheet string, columns []string) (string, error)

	// ExportPCValues writes the metadata columns followed by the component
	// scores, one row per observation.
	ExportPCValues(ctx context.Context, sheet string, metadata frame.MetadataTable, scores frame.NumericMatrix) (string, error)
}

package frame

import (
	"github.com/montanaflynn/stats"

	"panelmap/domain/core"
)

// CleanResult carries the cleaned tables together with what Clean removed.
type CleanResult struct {
	Metadata       MetadataTable
	Matrix         NumericMatrix
	DroppedRows    int
	DroppedColumns []core.VariableKey
}

// Clean drops every row containing a missing or non-finite numeric value,
// applying the identical mask to the metadata, then drops columns whose
// sample standard deviation over the remaining rows is zero or undefined.
// The variance check runs strictly after row removal: a column may become
// constant only once outlier rows are gone. Zero rows or zero columns after
// cleaning is not an error. Clean is idempotent.
func Clean(metadata MetadataTable, matrix NumericMatrix) (*CleanResult, error) {
	if err := matrix.Validate(); err != nil {
		return nil, err
	}
	if len(metadata.Columns) > 0 && metadata.RowCount() != matrix.RowCount() {
		return nil, core.NewSchemaMismatchError(metadata.RowCount(), matrix.RowCount())
	}

	keep := make([]bool, matrix.RowCount())
	dropped := 0
	for i, row := range matrix.Data {
		keep[i] = true
		for _, v := range row {
			if !isFinite(v) {
				keep[i] = false
				dropped++
				break
			}
		}
	}

	cleanMeta := metadata.FilterRows(keep)
	cleanMatrix := matrix.FilterRows(keep)

	keptCols := make([]int, 0, cleanMatrix.ColumnCount())
	var droppedCols []core.VariableKey
	for j := range cleanMatrix.Keys {
		if columnInformative(cleanMatrix.Column(j)) {
			keptCols = append(keptCols, j)
		} else {
			droppedCols = append(droppedCols, cleanMatrix.Keys[j])
		}
	}

	return &CleanResult{
		Metadata:       cleanMeta,
		Matrix:         cleanMatrix.SelectColumns(keptCols),
		DroppedRows:    dropped,
		DroppedColumns: droppedCols,
	}, nil
}

// columnInformative reports whether the column has a defined, nonzero
// sample standard deviation. Undefined (fewer than two rows) counts as
// uninformative.
func columnInformative(values []float64) bool {
	sd, err := stats.StandardDeviationSample(values)
	return err == nil && sd > 0
}

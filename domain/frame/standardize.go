package frame

import (
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"panelmap/domain/core"
)

// Options configures Standardize.
type Options struct {
	// MetadataColumns is the recognized metadata vocabulary; sheet columns
	// whose name appears here (case-insensitive) become metadata, everything
	// else is a measurement variable.
	MetadataColumns []string
	// TreatmentColumn names the metadata column holding the treatment label.
	TreatmentColumn string
	// Treatments is the retained label set. Rows whose treatment value is
	// not in it are filtered out. With no treatment column present, or an
	// empty label set, all rows are kept.
	Treatments []string
}

// Moments records a column's pre-scaling mean and sample standard deviation
// over its finite cells. Scaled is false when the column passed through
// unscaled because its deviation was zero or undefined.
type Moments struct {
	Key    core.VariableKey
	Mean   float64
	SD     float64
	Scaled bool
}

// Standardized is the output of Standardize: metadata split off, measurement
// columns z-scored.
type Standardized struct {
	Metadata MetadataTable
	Matrix   NumericMatrix
	Moments  []Moments
}

// Standardize filters rows to the recognized treatment labels, splits the
// recognized metadata columns into a MetadataTable, parses the remaining
// columns as numeric, and z-scores each column using mean and sample
// deviation over its finite cells. Non-finite cells pass through so Clean
// can count them; columns with zero or undefined deviation pass through
// unscaled and are left for Clean to drop. A zero-row or zero-measurement
// sheet passes through unchanged.
func Standardize(sheet Sheet, opts Options) (*Standardized, error) {
	vocab := make(map[string]bool, len(opts.MetadataColumns))
	for _, name := range opts.MetadataColumns {
		vocab[strings.ToLower(name)] = true
	}

	var metaCols, measureCols []RawColumn
	for _, col := range sheet.Columns {
		if vocab[strings.ToLower(col.Name)] {
			metaCols = append(metaCols, col)
		} else {
			measureCols = append(measureCols, col)
		}
	}

	rows := sheet.RowCount()
	keep := keepByTreatment(metaCols, rows, opts)

	metadata := MetadataTable{}
	for _, col := range metaCols {
		values := make([]string, 0, rows)
		for i := 0; i < rows; i++ {
			if keep[i] {
				values = append(values, strings.TrimSpace(col.Cell(i)))
			}
		}
		metadata.Columns = append(metadata.Columns, MetadataColumn{Name: col.Name, Values: values})
	}

	keys := make([]core.VariableKey, len(measureCols))
	columns := make([][]float64, len(measureCols))
	for j, col := range measureCols {
		keys[j] = core.VariableKey(col.Name)
		parsed := make([]float64, 0, rows)
		for i := 0; i < rows; i++ {
			if keep[i] {
				parsed = append(parsed, parseCell(col.Cell(i)))
			}
		}
		columns[j] = parsed
	}

	moments := make([]Moments, len(columns))
	for j := range columns {
		moments[j] = standardizeColumn(keys[j], columns[j])
	}

	keptRows := 0
	for _, k := range keep {
		if k {
			keptRows++
		}
	}
	data := make([][]float64, keptRows)
	for i := range data {
		row := make([]float64, len(columns))
		for j := range columns {
			row[j] = columns[j][i]
		}
		data[i] = row
	}
	matrix := NewNumericMatrix(keys, data)

	if len(metadata.Columns) > 0 && metadata.RowCount() != matrix.RowCount() {
		return nil, core.NewSchemaMismatchError(metadata.RowCount(), matrix.RowCount())
	}
	return &Standardized{Metadata: metadata, Matrix: matrix, Moments: moments}, nil
}

// keepByTreatment builds the row mask for treatment filtering.
func keepByTreatment(metaCols []RawColumn, rows int, opts Options) []bool {
	keep := make([]bool, rows)

	var treatment *RawColumn
	for i := range metaCols {
		if strings.EqualFold(metaCols[i].Name, opts.TreatmentColumn) {
			treatment = &metaCols[i]
			break
		}
	}
	if treatment == nil || len(opts.Treatments) == 0 {
		for i := range keep {
			keep[i] = true
		}
		return keep
	}

	allowed := make(map[string]bool, len(opts.Treatments))
	for _, label := range opts.Treatments {
		allowed[label] = true
	}
	for i := 0; i < rows; i++ {
		keep[i] = allowed[strings.TrimSpace(treatment.Cell(i))]
	}
	return keep
}

// standardizeColumn z-scores values in place and returns the column moments.
// Columns with fewer than two finite cells or zero deviation are left as-is.
func standardizeColumn(key core.VariableKey, values []float64) Moments {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			finite = append(finite, v)
		}
	}

	m := Moments{Key: key}
	if len(finite) == 0 {
		return m
	}
	mean, err := stats.Mean(finite)
	if err != nil {
		return m
	}
	m.Mean = mean
	if len(finite) < 2 {
		return m
	}
	sd, err := stats.StandardDeviationSample(finite)
	if err != nil || sd == 0 {
		return m
	}
	m.SD = sd
	m.Scaled = true

	for i, v := range values {
		values[i] = (v - mean) / sd
	}
	return m
}

// parseCell turns a raw cell into a float64, NaN when blank or unparsable.
func parseCell(cell string) float64 {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

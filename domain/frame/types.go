// Package frame holds the tabular data model of the pipeline: raw sheets,
// categorical metadata and the numeric measurement matrix. Every transform
// returns a derived value; nothing mutates a table in place.
package frame

import (
	"fmt"
	"strings"

	"panelmap/domain/core"
)

// Sheet is one named worksheet as loaded from the workbook: an ordered set
// of raw string columns. Metadata/numeric separation happens in Standardize.
type Sheet struct {
	Name    string
	Columns []RawColumn
}

// RawColumn is a single sheet column before any typing.
type RawColumn struct {
	Name  string
	Cells []string
}

// RowCount returns the longest column length; short columns read as blank.
func (s Sheet) RowCount() int {
	rows := 0
	for _, col := range s.Columns {
		if len(col.Cells) > rows {
			rows = len(col.Cells)
		}
	}
	return rows
}

// ColumnCount returns the number of raw columns.
func (s Sheet) ColumnCount() int {
	return len(s.Columns)
}

// Cell returns the cell at row i of column col, blank when the column is
// shorter than the sheet.
func (c RawColumn) Cell(i int) string {
	if i < 0 || i >= len(c.Cells) {
		return ""
	}
	return c.Cells[i]
}

// MetadataTable holds the categorical columns aligned row-for-row with a
// NumericMatrix. Rows are filtered in lock-step with the matrix.
type MetadataTable struct {
	Columns []MetadataColumn
}

// MetadataColumn is one categorical column.
type MetadataColumn struct {
	Name   string
	Values []string
}

// RowCount returns the number of rows, 0 for a table with no columns.
func (m MetadataTable) RowCount() int {
	if len(m.Columns) == 0 {
		return 0
	}
	return len(m.Columns[0].Values)
}

// Column returns the values of the named column (exact match).
func (m MetadataTable) Column(name string) ([]string, bool) {
	for _, col := range m.Columns {
		if col.Name == name {
			return col.Values, true
		}
	}
	return nil, false
}

// ColumnFold returns the values of the named column, matching the name
// case-insensitively the way the metadata vocabulary is matched.
func (m MetadataTable) ColumnFold(name string) ([]string, bool) {
	for _, col := range m.Columns {
		if strings.EqualFold(col.Name, name) {
			return col.Values, true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in table order.
func (m MetadataTable) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, col := range m.Columns {
		names[i] = col.Name
	}
	return names
}

// FilterRows returns a copy keeping only rows where keep[i] is true.
func (m MetadataTable) FilterRows(keep []bool) MetadataTable {
	out := MetadataTable{Columns: make([]MetadataColumn, len(m.Columns))}
	for ci, col := range m.Columns {
		kept := make([]string, 0, len(col.Values))
		for i, v := range col.Values {
			if i < len(keep) && keep[i] {
				kept = append(kept, v)
			}
		}
		out.Columns[ci] = MetadataColumn{Name: col.Name, Values: kept}
	}
	return out
}

// NumericMatrix represents dense numeric data: rows are observations,
// columns are named measurement variables.
type NumericMatrix struct {
	Keys []core.VariableKey
	Data [][]float64 // rows x columns
}

// NewNumericMatrix builds a matrix over rows x len(keys) data. The row
// slices are used as given, not copied.
func NewNumericMatrix(keys []core.VariableKey, data [][]float64) NumericMatrix {
	return NumericMatrix{Keys: keys, Data: data}
}

// RowCount returns the number of observations.
func (m NumericMatrix) RowCount() int {
	return len(m.Data)
}

// ColumnCount returns the number of variables.
func (m NumericMatrix) ColumnCount() int {
	return len(m.Keys)
}

// Validate ensures the matrix is internally consistent.
func (m NumericMatrix) Validate() error {
	cols := len(m.Keys)
	for i, row := range m.Data {
		if len(row) != cols {
			return core.NewValidationError("matrix_data",
				fmt.Sprintf("row %d has %d columns, expected %d", i, len(row), cols))
		}
	}
	return nil
}

// Column returns a copy of column j.
func (m NumericMatrix) Column(j int) []float64 {
	out := make([]float64, len(m.Data))
	for i, row := range m.Data {
		out[i] = row[j]
	}
	return out
}

// ColumnIndex returns the index of the column with the given key.
func (m NumericMatrix) ColumnIndex(key core.VariableKey) (int, bool) {
	for j, k := range m.Keys {
		if k == key {
			return j, true
		}
	}
	return -1, false
}

// Row returns row i without copying.
func (m NumericMatrix) Row(i int) []float64 {
	return m.Data[i]
}

// KeyStrings returns the column names in matrix order.
func (m NumericMatrix) KeyStrings() []string {
	return core.KeyStrings(m.Keys)
}

// FilterRows returns a copy keeping only rows where keep[i] is true.
func (m NumericMatrix) FilterRows(keep []bool) NumericMatrix {
	out := NumericMatrix{Keys: append([]core.VariableKey(nil), m.Keys...)}
	for i, row := range m.Data {
		if i < len(keep) && keep[i] {
			out.Data = append(out.Data, append([]float64(nil), row...))
		}
	}
	if out.Data == nil {
		out.Data = [][]float64{}
	}
	return out
}

// SelectColumns returns a copy keeping the columns at the given indices, in
// the given order.
func (m NumericMatrix) SelectColumns(indices []int) NumericMatrix {
	keys := make([]core.VariableKey, len(indices))
	for i, j := range indices {
		keys[i] = m.Keys[j]
	}
	data := make([][]float64, len(m.Data))
	for r, row := range m.Data {
		picked := make([]float64, len(indices))
		for i, j := range indices {
			picked[i] = row[j]
		}
		data[r] = picked
	}
	return NumericMatrix{Keys: keys, Data: data}
}

// AppendColumns returns a copy with the given columns appended on the right.
// Every column must have exactly RowCount values.
func (m NumericMatrix) AppendColumns(keys []core.VariableKey, columns [][]float64) (NumericMatrix, error) {
	if len(keys) != len(columns) {
		return NumericMatrix{}, core.NewValidationError("columns",
			fmt.Sprintf("%d keys for %d columns", len(keys), len(columns)))
	}
	for i, col := range columns {
		if len(col) != m.RowCount() {
			return NumericMatrix{}, core.NewValidationError("columns",
				fmt.Sprintf("column %s has %d rows, expected %d", keys[i], len(col), m.RowCount()))
		}
	}
	out := NumericMatrix{
		Keys: append(append([]core.VariableKey(nil), m.Keys...), keys...),
		Data: make([][]float64, m.RowCount()),
	}
	for r, row := range m.Data {
		extended := make([]float64, 0, len(row)+len(columns))
		extended = append(extended, row...)
		for _, col := range columns {
			extended = append(extended, col[r])
		}
		out.Data[r] = extended
	}
	return out, nil
}

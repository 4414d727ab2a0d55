// Package testkit provides synthetic sheet fixtures and in-memory port
// fakes for tests.
package testkit

import (
	"strconv"

	"panelmap/domain/frame"
)

// Column builds a raw sheet column from string cells.
func Column(name string, cells ...string) frame.RawColumn {
	return frame.RawColumn{Name: name, Cells: cells}
}

// NumericColumn builds a raw column from float values formatted the way a
// spreadsheet cell holds them.
func NumericColumn(name string, values ...float64) frame.RawColumn {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return frame.RawColumn{Name: name, Cells: cells}
}

// Sheet assembles a named sheet from columns.
func Sheet(name string, cols ...frame.RawColumn) *frame.Sheet {
	return &frame.Sheet{Name: name, Columns: cols}
}

// MeasurementSheet returns the canonical six-observation fixture: treatment
// and organ metadata plus three measurement columns, one of them constant.
// The constant column is dropped by cleaning; the two surviving columns
// classify into distinct method groups on the same organ.
func MeasurementSheet(name string) *frame.Sheet {
	return Sheet(name,
		Column("treatment", "PBS", "PBS", "PBS", "FTY 720", "FTY 720", "FTY 720"),
		Column("organ", "SC", "SC", "SC", "SC", "SC", "SC"),
		NumericColumn("CD4_SC_flow", 1.0, 2.5, 3.2, 4.8, 5.1, 6.9),
		NumericColumn("IL17_SC_homo", 10.4, 9.1, 8.0, 7.7, 6.2, 5.5),
		NumericColumn("baseline_SC_flow", 3.0, 3.0, 3.0, 3.0, 3.0, 3.0),
	)
}

// SparseSheet returns the canonical fixture with one missing measurement
// cell in the second observation.
func SparseSheet(name string) *frame.Sheet {
	sheet := MeasurementSheet(name)
	for i, col := range sheet.Columns {
		if col.Name == "CD4_SC_flow" {
			cells := append([]string(nil), col.Cells...)
			cells[1] = ""
			sheet.Columns[i] = frame.RawColumn{Name: col.Name, Cells: cells}
		}
	}
	return sheet
}

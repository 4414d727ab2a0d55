package excel

import (
	"testing"

	"panelmap/internal"
	"panelmap/internal/errors"
)

func TestSheetFromRows_TrimsAndOrientsColumns(t *testing.T) {
	rows := [][]string{
		{" treatment ", "CD4_SC_flow", " IL17_SC_homo"},
		{"PBS", " 1.5", "10.4"},
		{"FTY 720", "2.5 ", ""},
	}

	sheet := sheetFromRows("panel", rows)

	if sheet.ColumnCount() != 3 {
		t.Fatalf("Expected 3 columns, got %d", sheet.ColumnCount())
	}
	if sheet.Columns[0].Name != "treatment" || sheet.Columns[2].Name != "IL17_SC_homo" {
		t.Errorf("Headers not trimmed: %q, %q", sheet.Columns[0].Name, sheet.Columns[2].Name)
	}
	if sheet.RowCount() != 2 {
		t.Errorf("Expected 2 data rows, got %d", sheet.RowCount())
	}
	if got := sheet.Columns[1].Cell(0); got != "1.5" {
		t.Errorf("Expected trimmed cell \"1.5\", got %q", got)
	}
	// The empty interior cell survives as a missing value.
	if got := sheet.Columns[2].Cell(1); got != "" {
		t.Errorf("Expected empty cell, got %q", got)
	}
}

func TestSheetFromRows_DropsTrailingBlankRows(t *testing.T) {
	rows := [][]string{
		{"treatment", "a"},
		{"PBS", "1.0"},
		{"", "  "},
		{"", ""},
	}

	sheet := sheetFromRows("panel", rows)

	if sheet.RowCount() != 1 {
		t.Errorf("Expected trailing blank rows dropped, got %d rows", sheet.RowCount())
	}
}

func TestSheetFromRows_RaggedRowsPadAsMissing(t *testing.T) {
	// excelize returns short rows when trailing cells are empty.
	rows := [][]string{
		{"treatment", "a", "b"},
		{"PBS", "1.0"},
		{"PBS", "2.0", "3.0"},
	}

	sheet := sheetFromRows("panel", rows)

	if sheet.ColumnCount() != 3 {
		t.Fatalf("Expected 3 columns, got %d", sheet.ColumnCount())
	}
	if got := sheet.Columns[2].Cell(0); got != "" {
		t.Errorf("Expected the short row padded with a blank, got %q", got)
	}
	if got := sheet.Columns[2].Cell(1); got != "3.0" {
		t.Errorf("Expected \"3.0\", got %q", got)
	}
}

func TestSheetFromRows_SkipsUnnamedColumns(t *testing.T) {
	rows := [][]string{
		{"treatment", "", "a", "", ""},
		{"PBS", "stray", "1.0", "", ""},
	}

	sheet := sheetFromRows("panel", rows)

	if sheet.ColumnCount() != 2 {
		t.Fatalf("Expected unnamed columns skipped, got %d columns", sheet.ColumnCount())
	}
	if sheet.Columns[0].Name != "treatment" || sheet.Columns[1].Name != "a" {
		t.Errorf("Unexpected columns: %q, %q", sheet.Columns[0].Name, sheet.Columns[1].Name)
	}
}

func TestSheetFromRows_EmptySheet(t *testing.T) {
	sheet := sheetFromRows("empty", nil)

	if sheet.Name != "empty" || sheet.ColumnCount() != 0 || sheet.RowCount() != 0 {
		t.Errorf("Expected an empty named sheet, got %d columns, %d rows", sheet.ColumnCount(), sheet.RowCount())
	}
}

func TestOpenSource_MissingFile(t *testing.T) {
	_, err := OpenSource("/nonexistent/panel.xlsx", internal.NewLogger(internal.LogLevelError))
	if err == nil {
		t.Fatal("Expected an error for a missing workbook")
	}
	if errors.GetCode(err) != errors.CodeReadFailed {
		t.Errorf("Expected code %s, got %s", errors.CodeReadFailed, errors.GetCode(err))
	}
}

package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"panelmap/domain/core"
	"panelmap/domain/frame"
	"panelmap/internal"
)

func readRecords(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", path, err)
	}
	return records
}

func TestExportColumns(t *testing.T) {
	dir := t.TempDir()
	exporter := NewCSVExporter(dir, internal.NewLogger(internal.LogLevelError))

	path, err := exporter.ExportColumns(context.Background(), "panel", []string{"CD4_SC_flow", "IL17_SC_homo"})
	if err != nil {
		t.Fatalf("ExportColumns failed: %v", err)
	}
	if filepath.Base(path) != "panel_columns.csv" {
		t.Errorf("Expected panel_columns.csv, got %s", filepath.Base(path))
	}

	records := readRecords(t, path)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0][0] != "CD4_SC_flow" || records[1][0] != "IL17_SC_homo" {
		t.Errorf("Unexpected records: %v", records)
	}
}

func TestExportColumns_SanitizesSheetName(t *testing.T) {
	dir := t.TempDir()
	exporter := NewCSVExporter(dir, internal.NewLogger(internal.LogLevelError))

	path, err := exporter.ExportColumns(context.Background(), "flow (repeat) 2", []string{"a"})
	if err != nil {
		t.Fatalf("ExportColumns failed: %v", err)
	}
	if filepath.Base(path) != "flow__repeat__2_columns.csv" {
		t.Errorf("Expected sanitized file name, got %s", filepath.Base(path))
	}
}

func TestExportPCValues(t *testing.T) {
	dir := t.TempDir()
	exporter := NewCSVExporter(dir, internal.NewLogger(internal.LogLevelError))

	metadata := frame.MetadataTable{Columns: []frame.MetadataColumn{
		{Name: "treatment", Values: []string{"PBS", "FTY 720"}},
		{Name: "organ", Values: []string{"SC", "SC"}},
	}}
	scores := frame.NewNumericMatrix(
		core.VariableKeys([]string{"PC1", "PC2"}),
		[][]float64{{1.25, -0.5}, {-1.25, 0.5}},
	)

	path, err := exporter.ExportPCValues(context.Background(), "panel", metadata, scores)
	if err != nil {
		t.Fatalf("ExportPCValues failed: %v", err)
	}
	if filepath.Base(path) != "panel_PCvalues.csv" {
		t.Errorf("Expected panel_PCvalues.csv, got %s", filepath.Base(path))
	}

	records := readRecords(t, path)
	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d records", len(records))
	}
	wantHeader := []string{"treatment", "organ", "PC1", "PC2"}
	for i, name := range wantHeader {
		if records[0][i] != name {
			t.Errorf("Header %d: expected %q, got %q", i, name, records[0][i])
		}
	}
	if records[1][0] != "PBS" || records[1][2] != "1.25" {
		t.Errorf("Unexpected first row: %v", records[1])
	}
	if records[2][1] != "SC" || records[2][3] != "0.5" {
		t.Errorf("Unexpected second row: %v", records[2])
	}
}

func TestExportPCValues_RejectsMisalignedRows(t *testing.T) {
	dir := t.TempDir()
	exporter := NewCSVExporter(dir, internal.NewLogger(internal.LogLevelError))

	metadata := frame.MetadataTable{Columns: []frame.MetadataColumn{
		{Name: "treatment", Values: []string{"PBS"}},
	}}
	scores := frame.NewNumericMatrix(
		core.VariableKeys([]string{"PC1"}),
		[][]float64{{1.0}, {2.0}},
	)

	if _, err := exporter.ExportPCValues(context.Background(), "panel", metadata, scores); err == nil {
		t.Fatal("Expected an error for misaligned metadata and scores")
	}
}

func TestExportCreatesOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	exporter := NewCSVExporter(dir, internal.NewLogger(internal.LogLevelError))

	if _, err := exporter.ExportColumns(context.Background(), "panel", []string{"a"}); err != nil {
		t.Fatalf("ExportColumns failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "panel_columns.csv")); err != nil {
		t.Errorf("Expected the output directory to be created: %v", err)
	}
}

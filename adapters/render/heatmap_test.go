package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"panelmap/domain/annotate"
	"panelmap/domain/core"
	"panelmap/domain/heatmap"
	"panelmap/internal"
	"panelmap/internal/config"
)

func testLayout(t *testing.T) *heatmap.Layout {
	t.Helper()
	scale, err := heatmap.NewScale("#2166AC", "#F7F7F7", "#B2182B")
	if err != nil {
		t.Fatalf("Failed to build scale: %v", err)
	}
	return &heatmap.Layout{
		Cells: [][]float64{
			{-1.2, -0.5, 0.8, 1.5},
			{1.0, 0.3, -0.7, -1.9},
		},
		RowKeys:   []core.VariableKey{"CD4_SC_flow", "IL17_SC_homo"},
		RowLabels: []string{"CD4_SC_flow", "IL17_SC_homo"},
		Annotations: []annotate.Annotation{
			{Variable: "CD4_SC_flow", Method: annotate.MethodFlow, Organ: annotate.OrganSpinalCord},
			{Variable: "IL17_SC_homo", Method: annotate.MethodHomogenate, Organ: annotate.OrganSpinalCord},
		},
		ColumnGroups: []heatmap.ColumnGroup{
			{Treatment: "PBS", Columns: []int{0, 1}},
			{Treatment: "FTY 720", Columns: []int{2, 3}},
		},
		RowGroups: []heatmap.RowGroup{
			{Key: "Flow Cytometry SC", Rows: []int{0}},
			{Key: "Homogenate SC", Rows: []int{1}},
		},
		Scale: scale,
	}
}

func newTestHeatmapRenderer(t *testing.T) *HeatmapSVG {
	t.Helper()
	return NewHeatmapSVG(t.TempDir(), config.Default(), internal.NewLogger(internal.LogLevelError))
}

func TestRenderHeatmap_WritesSVG(t *testing.T) {
	renderer := newTestHeatmapRenderer(t)

	path, err := renderer.RenderHeatmap(context.Background(), "Panel 1", testLayout(t))
	if err != nil {
		t.Fatalf("RenderHeatmap failed: %v", err)
	}
	if base := filepath.Base(path); base != "Panel_1_heatmap_split.svg" {
		t.Errorf("Expected file Panel_1_heatmap_split.svg, got %s", base)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read rendered file: %v", err)
	}
	content := string(b)
	if !strings.Contains(content, "<svg") {
		t.Error("Expected an SVG document")
	}
	// Treatment headers, row labels and the scale anchors all end up as
	// literal strings in the markup.
	for _, want := range []string{"PBS", "FTY 720", "CD4_SC_flow", "IL17_SC_homo", "#2166AC", "#B2182B"} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected rendered SVG to contain %q", want)
		}
	}
}

func TestRenderHeatmap_SanitizesSheetName(t *testing.T) {
	renderer := newTestHeatmapRenderer(t)

	path, err := renderer.RenderHeatmap(context.Background(), "flow (repeat)", testLayout(t))
	if err != nil {
		t.Fatalf("RenderHeatmap failed: %v", err)
	}
	if base := filepath.Base(path); base != "flow__repeat__heatmap_split.svg" {
		t.Errorf("Expected sanitized file name, got %s", base)
	}
}

func TestRenderHeatmap_CancelledContext(t *testing.T) {
	renderer := newTestHeatmapRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := renderer.RenderHeatmap(ctx, "Panel 1", testLayout(t)); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestCategoryColors(t *testing.T) {
	renderer := newTestHeatmapRenderer(t)

	if got := renderer.methodColor(annotate.MethodFlow); got != "#D95F02" {
		t.Errorf("Expected #D95F02 for Flow Cytometry, got %s", got)
	}
	if got := renderer.methodColor("unheard-of method"); got != "#999999" {
		t.Errorf("Expected other-bucket color for unknown method, got %s", got)
	}
	if got := renderer.organColor(annotate.OrganSpinalCord); got != "#1F78B4" {
		t.Errorf("Expected #1F78B4 for SC, got %s", got)
	}
	if got := renderer.organColor("unheard-of organ"); got != "#CCCCCC" {
		t.Errorf("Expected other-bucket color for unknown organ, got %s", got)
	}
	// An undefined organ is blank in the strip, not binned into "other".
	if got := renderer.organColor(annotate.OrganUndefined); got != "#FFFFFF" {
		t.Errorf("Expected white for undefined organ, got %s", got)
	}
}

func TestPresentCategories_FirstAppearanceOrder(t *testing.T) {
	annotations := []annotate.Annotation{
		{Variable: "a", Method: annotate.MethodFlow, Organ: annotate.OrganSpinalCord},
		{Variable: "b", Method: annotate.MethodHomogenate, Organ: annotate.OrganSpinalCord},
		{Variable: "c", Method: annotate.MethodFlow, Organ: annotate.OrganDrainingNode},
		{Variable: "d", Method: annotate.MethodPC, Organ: annotate.OrganUndefined},
	}

	methods := presentMethods(annotations)
	wantMethods := []string{annotate.MethodFlow, annotate.MethodHomogenate, annotate.MethodPC}
	if len(methods) != len(wantMethods) {
		t.Fatalf("Expected %d methods, got %d", len(wantMethods), len(methods))
	}
	for i, want := range wantMethods {
		if methods[i] != want {
			t.Errorf("Expected method %s at %d, got %s", want, i, methods[i])
		}
	}

	// The undefined organ never shows up in the legend.
	organs := presentOrgans(annotations)
	wantOrgans := []string{annotate.OrganSpinalCord, annotate.OrganDrainingNode}
	if len(organs) != len(wantOrgans) {
		t.Fatalf("Expected %d organs, got %d", len(wantOrgans), len(organs))
	}
	for i, want := range wantOrgans {
		if organs[i] != want {
			t.Errorf("Expected organ %s at %d, got %s", want, i, organs[i])
		}
	}
}

package scatter

import (
	"testing"

	"panelmap/domain/core"
	"panelmap/domain/frame"
	"panelmap/domain/pca"
)

func twoComponentResult() *pca.Result {
	return &pca.Result{
		Scores: frame.NewNumericMatrix(
			core.VariableKeys([]string{"PC1", "PC2"}),
			[][]float64{
				{1.5, -0.5},
				{-2.0, 0.25},
				{0.5, 1.75},
			},
		),
		VarianceExplained: []float64{48.31, 22.94},
		K:                 2,
	}
}

func TestBuild_PointsAndAxisLabels(t *testing.T) {
	treatments := []string{"PBS", "FTY 720", "PBS"}

	spec, err := Build(twoComponentResult(), treatments, []string{"PBS", "FTY 720", "anti-CD20"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(spec.Points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(spec.Points))
	}
	if spec.Points[1].X != -2.0 || spec.Points[1].Y != 0.25 {
		t.Errorf("Point 1 = (%v, %v), expected (-2, 0.25)", spec.Points[1].X, spec.Points[1].Y)
	}
	if spec.Points[1].Treatment != "FTY 720" {
		t.Errorf("Point 1 treatment = %q, expected FTY 720", spec.Points[1].Treatment)
	}
	if spec.XLabel != "PC1 (48.3%)" {
		t.Errorf("XLabel = %q, expected \"PC1 (48.3%%)\"", spec.XLabel)
	}
	if spec.YLabel != "PC2 (22.9%)" {
		t.Errorf("YLabel = %q, expected \"PC2 (22.9%%)\"", spec.YLabel)
	}
}

func TestBuild_LegendFollowsConfiguredOrder(t *testing.T) {
	treatments := []string{"FTY 720", "PBS", "FTY 720"}

	spec, err := Build(twoComponentResult(), treatments, []string{"PBS", "FTY 720", "anti-CD20"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(spec.Treatments) != 2 || spec.Treatments[0] != "PBS" || spec.Treatments[1] != "FTY 720" {
		t.Errorf("Legend = %v, expected [PBS FTY 720]", spec.Treatments)
	}
}

func TestBuild_SkipsWithFewerThanTwoComponents(t *testing.T) {
	single := &pca.Result{
		Scores: frame.NewNumericMatrix(
			core.VariableKeys([]string{"PC1"}),
			[][]float64{{1.0}, {2.0}},
		),
		VarianceExplained: []float64{100},
		K:                 1,
	}

	_, err := Build(single, []string{"PBS", "PBS"}, []string{"PBS"})
	if err == nil {
		t.Fatal("Expected degenerate-input error for k=1, got nil")
	}
	if !core.IsDegenerateInput(err) {
		t.Errorf("Expected degenerate-input error, got %v", err)
	}

	_, err = Build(nil, nil, []string{"PBS"})
	if err == nil || !core.IsDegenerateInput(err) {
		t.Errorf("Expected degenerate-input error for missing result, got %v", err)
	}
}

func TestBuild_RejectsMisalignedTreatments(t *testing.T) {
	_, err := Build(twoComponentResult(), []string{"PBS"}, []string{"PBS"})
	if err == nil {
		t.Fatal("Expected error for misaligned treatment labels, got nil")
	}
}

// Package scatter builds the 2D component-space projection of a sheet.
package scatter

import (
	"fmt"

	"panelmap/domain/core"
	"panelmap/domain/pca"
)

// Point is one observation in component space.
type Point struct {
	X         float64
	Y         float64
	Treatment string
}

// Spec describes the PC1/PC2 point plot: positions, the treatment keying
// both color and marker shape, and axis labels carrying each component's
// variance share to one decimal.
type Spec struct {
	Points     []Point
	Treatments []string // legend order; configured order restricted to present labels
	XLabel     string
	YLabel     string
}

// Build produces the scatter spec for a PCA result. Fewer than two
// components yields a degenerate-input error the caller records as a
// documented skip, never as a run failure.
func Build(result *pca.Result, observationTreatments []string, treatmentOrder []string) (*Spec, error) {
	if result == nil || result.K < 2 {
		k := 0
		if result != nil {
			k = result.K
		}
		return nil, core.NewDegenerateInputError("scatter",
			fmt.Sprintf("need 2 components, have %d", k))
	}
	rows := result.Scores.RowCount()
	if len(observationTreatments) != rows {
		return nil, core.NewValidationError("observation_treatments",
			fmt.Sprintf("%d labels for %d observations", len(observationTreatments), rows))
	}

	pc1 := result.Component(0)
	pc2 := result.Component(1)
	points := make([]Point, rows)
	present := make(map[string]bool, len(observationTreatments))
	for i := 0; i < rows; i++ {
		points[i] = Point{X: pc1[i], Y: pc2[i], Treatment: observationTreatments[i]}
		present[observationTreatments[i]] = true
	}

	var legend []string
	for _, label := range treatmentOrder {
		if present[label] {
			legend = append(legend, label)
		}
	}

	return &Spec{
		Points:     points,
		Treatments: legend,
		XLabel:     result.Label(0),
		YLabel:     result.Label(1),
	}, nil
}

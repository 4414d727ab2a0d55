package heatmap

import (
	"fmt"

	"panelmap/domain/annotate"
	"panelmap/domain/core"
	"panelmap/domain/frame"
)

// ColumnGroup is one treatment block of the column axis. Columns holds
// observation indices in display (clustered) order.
type ColumnGroup struct {
	Treatment string
	Columns   []int
}

// RowGroup is one method+organ block of the row axis. Rows holds variable
// indices in input order.
type RowGroup struct {
	Key  string
	Rows []int
}

// Layout is the renderable description of a split heatmap.
type Layout struct {
	// Cells is the transposed matrix, indexed [variable][observation].
	Cells [][]float64
	// RowKeys, RowLabels and Annotations are aligned per layout row.
	RowKeys     []core.VariableKey
	RowLabels   []string
	Annotations []annotate.Annotation

	ColumnGroups []ColumnGroup
	RowGroups    []RowGroup
	Scale        Scale
}

// Params carries the configured layout inputs.
type Params struct {
	// Treatments is the column-group display order.
	Treatments []string
	Scale      Scale
}

// Build lays the augmented matrix out as a split heatmap: the matrix is
// transposed so variables become rows, columns are partitioned into
// treatment groups in configured order and clustered within each group,
// and rows are partitioned into method+organ groups by first appearance,
// keeping input order inside each group. The caller must supply exactly
// one annotation per matrix column and one treatment label per matrix
// row; a count mismatch is a precondition violation, not a data problem.
func Build(matrix frame.NumericMatrix, observationTreatments []string, annotations []annotate.Annotation, params Params) (*Layout, error) {
	if len(annotations) != matrix.ColumnCount() {
		return nil, core.NewAnnotationMismatchError(len(annotations), matrix.ColumnCount())
	}
	if len(observationTreatments) != matrix.RowCount() {
		return nil, core.NewValidationError("observation_treatments",
			fmt.Sprintf("%d labels for %d observations", len(observationTreatments), matrix.RowCount()))
	}

	nVars, nObs := matrix.ColumnCount(), matrix.RowCount()
	cells := make([][]float64, nVars)
	for v := 0; v < nVars; v++ {
		rowVals := make([]float64, nObs)
		for o := 0; o < nObs; o++ {
			rowVals[o] = matrix.Data[o][v]
		}
		cells[v] = rowVals
	}

	rowKeys := append([]core.VariableKey(nil), matrix.Keys...)
	rowLabels := make([]string, nVars)
	for v, key := range rowKeys {
		rowLabels[v] = annotate.DisplayLabel(string(key))
	}

	// Treatments absent from this sheet are omitted rather than rendered
	// as empty blocks. Clustering sees the full observation vector, PC
	// scores included.
	var columnGroups []ColumnGroup
	for _, label := range params.Treatments {
		var members []int
		for o, t := range observationTreatments {
			if t == label {
				members = append(members, o)
			}
		}
		if len(members) == 0 {
			continue
		}
		vectors := make([][]float64, len(members))
		for i, o := range members {
			vectors[i] = matrix.Row(o)
		}
		order := OrderColumns(vectors)
		ordered := make([]int, len(members))
		for i, idx := range order {
			ordered[i] = members[idx]
		}
		columnGroups = append(columnGroups, ColumnGroup{Treatment: label, Columns: ordered})
	}

	groupIndex := make(map[string]int)
	var rowGroups []RowGroup
	for v, a := range annotations {
		key := a.GroupKey()
		gi, ok := groupIndex[key]
		if !ok {
			gi = len(rowGroups)
			groupIndex[key] = gi
			rowGroups = append(rowGroups, RowGroup{Key: key})
		}
		rowGroups[gi].Rows = append(rowGroups[gi].Rows, v)
	}

	return &Layout{
		Cells:        cells,
		RowKeys:      rowKeys,
		RowLabels:    rowLabels,
		Annotations:  append([]annotate.Annotation(nil), annotations...),
		ColumnGroups: columnGroups,
		RowGroups:    rowGroups,
		Scale:        params.Scale,
	}, nil
}

// Rows returns the layout row indices in display order: group by group,
// input order within each group.
func (l *Layout) Rows() []int {
	var rows []int
	for _, g := range l.RowGroups {
		rows = append(rows, g.Rows...)
	}
	return rows
}

// Columns returns the observation indices in display order: treatment
// group by treatment group, clustered order within each group.
func (l *Layout) Columns() []int {
	var cols []int
	for _, g := range l.ColumnGroups {
		cols = append(cols, g.Columns...)
	}
	return cols
}

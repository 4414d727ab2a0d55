// Package pca computes principal components of a standardized measurement
// matrix. The matrix arrives already z-scored, so no further centering or
// scaling is applied before the decomposition.
package pca

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"panelmap/domain/core"
	"panelmap/domain/frame"
)

// rankTolerance scales the largest singular value to decide which
// components count towards the numerical rank.
const rankTolerance = 1e-12

// Result holds the component scores and the share of total variance each
// component explains.
type Result struct {
	// Scores has one row per observation and K columns named PC1..PCK.
	Scores frame.NumericMatrix
	// VarianceExplained lists the percentage of total variance for every
	// computable component, not only the K kept ones. Entries are
	// non-negative and sum to at most 100.
	VarianceExplained []float64
	// K is the number of score columns kept: min(2, numerical rank).
	K int
}

// Component returns the scores of component j (0-based).
func (r *Result) Component(j int) []float64 {
	return r.Scores.Column(j)
}

// Label returns the axis label for component j (0-based) with its variance
// percentage to one decimal, e.g. "PC1 (48.3%)".
func (r *Result) Label(j int) string {
	return fmt.Sprintf("PC%d (%.1f%%)", j+1, r.VarianceExplained[j])
}

// Compute runs an uncentered principal-component analysis via thin SVD.
// It requires at least 2 rows and 2 columns; smaller input yields a
// degenerate-input error the caller treats as a documented skip, never as
// a run failure. Eigenvalues are the squared singular values; scores are
// U scaled by the singular values.
func Compute(matrix frame.NumericMatrix) (*Result, error) {
	rows, cols := matrix.RowCount(), matrix.ColumnCount()
	if rows < 2 || cols < 2 {
		return nil, core.NewDegenerateInputError("pca",
			fmt.Sprintf("need at least 2 rows and 2 columns, have %dx%d", rows, cols))
	}

	dense := mat.NewDense(rows, cols, nil)
	for i, row := range matrix.Data {
		dense.SetRow(i, row)
	}

	var svd mat.SVD
	if ok := svd.Factorize(dense, mat.SVDThin); !ok {
		return nil, core.NewDegenerateInputError("pca", "singular value decomposition did not converge")
	}
	values := svd.Values(nil)

	total := 0.0
	for _, s := range values {
		total += s * s
	}
	if total == 0 {
		return nil, core.NewDegenerateInputError("pca", "matrix has zero total variance")
	}

	percent := make([]float64, len(values))
	for i, s := range values {
		percent[i] = s * s / total * 100
	}

	// Singular values come back in descending order.
	rank := 0
	tol := values[0] * rankTolerance
	for _, s := range values {
		if s > tol {
			rank++
		}
	}
	k := rank
	if k > 2 {
		k = 2
	}

	var u mat.Dense
	svd.UTo(&u)

	keys := make([]core.VariableKey, k)
	for j := 0; j < k; j++ {
		keys[j] = core.VariableKey(fmt.Sprintf("PC%d", j+1))
	}
	data := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, k)
		for j := 0; j < k; j++ {
			row[j] = u.At(i, j) * values[j]
		}
		data[i] = row
	}

	return &Result{
		Scores:            frame.NewNumericMatrix(keys, data),
		VarianceExplained: percent,
		K:                 k,
	}, nil
}

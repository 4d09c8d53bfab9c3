// Package matutil holds small gonum helpers shared by the clustering loops.
package matutil

import "gonum.org/v1/gonum/mat"

// Rows returns the rows of m as slices. For matrices that expose their raw
// storage (e.g. *mat.Dense) the slices alias it and must be treated as
// read-only.
func Rows(m mat.Matrix) [][]float64 {
	n, _ := m.Dims()
	rows := make([][]float64, n)
	if d, ok := m.(mat.RawRowViewer); ok {
		for i := range rows {
			rows[i] = d.RawRowView(i)
		}
		return rows
	}
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}
	return rows
}

// SelectRows returns a new matrix made of the given rows of m, in order.
func SelectRows(m mat.Matrix, idx []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for r, i := range idx {
		out.SetRow(r, mat.Row(nil, i, m))
	}
	return out
}

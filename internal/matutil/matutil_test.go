package matutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRows(t *testing.T) {
	d := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})

	rows := Rows(d)
	require.Len(t, rows, 2)
	assert.Equal(t, []float64{4, 5, 6}, rows[1])

	rows = Rows(d.T())
	require.Len(t, rows, 3)
	assert.Equal(t, []float64{1, 4}, rows[0])
	assert.Equal(t, []float64{3, 6}, rows[2])
}

func TestSelectRows(t *testing.T) {
	d := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	s := SelectRows(d, []int{2, 0})

	r, c := s.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{5, 6}, s.RawRowView(0))
	assert.Equal(t, []float64{1, 2}, s.RawRowView(1))
}

package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSquaredL2(t *testing.T) {
	assert.Equal(t, 25.0, SquaredL2([]float64{0, 0}, []float64{3, 4}))
	assert.Equal(t, 5.0, L2([]float64{0, 0}, []float64{3, 4}))
	assert.Equal(t, 0.0, SquaredL2(nil, nil))
}

func TestPairwise(t *testing.T) {
	points := mat.NewDense(3, 2, []float64{
		0, 0,
		3, 4,
		6, 8,
	})

	d, err := Pairwise(points, MetricL2)
	require.NoError(t, err)
	assert.Equal(t, 3, d.SymmetricDim())
	assert.Equal(t, 0.0, d.At(1, 1))
	assert.Equal(t, 5.0, d.At(0, 1))
	assert.Equal(t, 5.0, d.At(1, 0))
	assert.Equal(t, 10.0, d.At(0, 2))

	sq, err := Pairwise(points, MetricSquaredL2)
	require.NoError(t, err)
	assert.Equal(t, 100.0, sq.At(2, 0))
}

func TestProviderError(t *testing.T) {
	_, err := Provider(Metric(999))
	assert.Error(t, err)
	_, err = Pairwise(mat.NewDense(1, 1, []float64{1}), Metric(999))
	assert.Error(t, err)
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "L2", MetricL2.String())
	assert.Equal(t, "SquaredL2", MetricSquaredL2.String())
	assert.Equal(t, "Unknown(9)", Metric(9).String())
	assert.False(t, math.IsNaN(L2([]float64{1}, []float64{2})))
}

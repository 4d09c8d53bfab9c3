package distance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// L2 calculates the Euclidean distance between two vectors.
func L2(a, b []float64) float64 {
	return math.Sqrt(SquaredL2(a, b))
}

// Metric selects the dissimilarity produced by Pairwise.
type Metric int

const (
	MetricL2 Metric = iota
	MetricSquaredL2
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricSquaredL2:
		return "SquaredL2"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float64) float64

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return L2, nil
	case MetricSquaredL2:
		return SquaredL2, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// Pairwise returns the N-by-N dissimilarity matrix between the rows of points.
// The result is symmetric with a zero diagonal.
func Pairwise(points mat.Matrix, m Metric) (*mat.SymDense, error) {
	fn, err := Provider(m)
	if err != nil {
		return nil, err
	}

	n, _ := points.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, points)
	}

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out.SetSym(i, j, fn(rows[i], rows[j]))
		}
	}
	return out, nil
}

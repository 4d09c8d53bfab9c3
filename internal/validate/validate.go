// Package validate checks clustering inputs before any iteration runs.
package validate

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidK              = errors.New("k out of range")
	ErrEmptyData             = errors.New("empty data")
	ErrNonFinite             = errors.New("NaN or Inf value")
	ErrNotSquare             = errors.New("matrix is not square")
	ErrAsymmetric            = errors.New("matrix is not symmetric")
	ErrNegativeDissimilarity = errors.New("negative dissimilarity")
	ErrNonZeroDiagonal       = errors.New("non-zero diagonal")
	ErrSeedShape             = errors.New("seed shape mismatch")
	ErrSeedOutOfRange        = errors.New("seed index out of range")
	ErrDuplicateSeed         = errors.New("duplicate seed index")
)

// SymmetryTolerance is the relative tolerance used when comparing (i,j) and (j,i).
const SymmetryTolerance = 1e-9

// Error describes which input failed and what shape was expected.
type Error struct {
	Field    string
	Expected string
	Actual   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Field, e.Err)
	if e.Expected != "" {
		msg += fmt.Sprintf(": expected %s", e.Expected)
	}
	if e.Actual != "" {
		msg += fmt.Sprintf(", got %s", e.Actual)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// K checks 1 <= k <= n.
func K(k, n int) error {
	if k < 1 || k > n {
		return &Error{
			Field:    "k",
			Expected: fmt.Sprintf("1 <= k <= %d", n),
			Actual:   fmt.Sprintf("%d", k),
			Err:      ErrInvalidK,
		}
	}
	return nil
}

// Points checks that data is a non-empty matrix of finite values and returns
// its shape.
func Points(data mat.Matrix) (n, d int, err error) {
	if data == nil {
		return 0, 0, &Error{Field: "data", Err: ErrEmptyData}
	}
	n, d = data.Dims()
	if n == 0 || d == 0 {
		return 0, 0, &Error{Field: "data", Expected: "a non-empty N-by-D matrix", Actual: shape(n, d), Err: ErrEmptyData}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			if v := data.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, 0, &Error{Field: "data", Actual: fmt.Sprintf("%v at (%d,%d)", v, i, j), Err: ErrNonFinite}
			}
		}
	}
	return n, d, nil
}

// Dissimilarity checks that dist is a square, finite, non-negative matrix with
// a zero diagonal that is symmetric within SymmetryTolerance. Matrices that
// implement mat.Symmetric skip the symmetry scan.
func Dissimilarity(dist mat.Matrix) (int, error) {
	if dist == nil {
		return 0, &Error{Field: "distmat", Err: ErrEmptyData}
	}
	r, c := dist.Dims()
	if r == 0 {
		return 0, &Error{Field: "distmat", Expected: "a non-empty N-by-N matrix", Actual: shape(r, c), Err: ErrEmptyData}
	}
	if r != c {
		return 0, &Error{Field: "distmat", Expected: "an N-by-N matrix", Actual: shape(r, c), Err: ErrNotSquare}
	}

	_, symmetric := dist.(mat.Symmetric)

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := dist.At(i, j)
			switch {
			case math.IsNaN(v) || math.IsInf(v, 0):
				return 0, &Error{Field: "distmat", Actual: fmt.Sprintf("%v at (%d,%d)", v, i, j), Err: ErrNonFinite}
			case v < 0:
				return 0, &Error{Field: "distmat", Actual: fmt.Sprintf("%v at (%d,%d)", v, i, j), Err: ErrNegativeDissimilarity}
			case i == j && v != 0:
				return 0, &Error{Field: "distmat", Actual: fmt.Sprintf("%v at (%d,%d)", v, i, j), Err: ErrNonZeroDiagonal}
			}
			if !symmetric && j > i {
				w := dist.At(j, i)
				if math.Abs(v-w) > SymmetryTolerance*math.Max(1, math.Max(v, w)) {
					return 0, &Error{
						Field:  "distmat",
						Actual: fmt.Sprintf("(%d,%d)=%v, (%d,%d)=%v", i, j, v, j, i, w),
						Err:    ErrAsymmetric,
					}
				}
			}
		}
	}
	return r, nil
}

// CentroidSeeds checks that seeds is a k-by-d matrix of finite values.
func CentroidSeeds(seeds mat.Matrix, k, d int) error {
	r, c := seeds.Dims()
	if r != k || c != d {
		return &Error{
			Field:    "seeds",
			Expected: fmt.Sprintf("a %d-by-%d matrix", k, d),
			Actual:   shape(r, c),
			Err:      ErrSeedShape,
		}
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := seeds.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return &Error{Field: "seeds", Actual: fmt.Sprintf("%v at (%d,%d)", v, i, j), Err: ErrNonFinite}
			}
		}
	}
	return nil
}

// MedoidSeeds checks that seeds holds k distinct indices in [0,n).
func MedoidSeeds(seeds []int, k, n int) error {
	if len(seeds) != k {
		return &Error{
			Field:    "seeds",
			Expected: fmt.Sprintf("a length-%d index sequence", k),
			Actual:   fmt.Sprintf("length %d", len(seeds)),
			Err:      ErrSeedShape,
		}
	}
	seen := make(map[int]struct{}, k)
	for _, s := range seeds {
		if s < 0 || s >= n {
			return &Error{
				Field:    "seeds",
				Expected: fmt.Sprintf("indices in [0,%d)", n),
				Actual:   fmt.Sprintf("%d", s),
				Err:      ErrSeedOutOfRange,
			}
		}
		if _, dup := seen[s]; dup {
			return &Error{Field: "seeds", Actual: fmt.Sprintf("%d", s), Err: ErrDuplicateSeed}
		}
		seen[s] = struct{}{}
	}
	return nil
}

func shape(r, c int) string {
	return fmt.Sprintf("%d-by-%d", r, c)
}

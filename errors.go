package kcluster

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kcluster/internal/converge"
	"github.com/hupe1980/kcluster/internal/membership"
	"github.com/hupe1980/kcluster/internal/validate"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidK is returned when k is not in [1, N].
	ErrInvalidK = errors.New("k out of range")
	// ErrEmptyData is returned for nil or zero-sized input matrices.
	ErrEmptyData = errors.New("empty data")
	// ErrNonFinite is returned when an input contains NaN or Inf.
	ErrNonFinite = errors.New("NaN or Inf value")
	// ErrNotSquare is returned when a dissimilarity matrix is not N-by-N.
	ErrNotSquare = errors.New("dissimilarity matrix is not square")
	// ErrAsymmetric is returned when dist(i,j) != dist(j,i).
	ErrAsymmetric = errors.New("dissimilarity matrix is not symmetric")
	// ErrNegativeDissimilarity is returned for negative matrix entries.
	ErrNegativeDissimilarity = errors.New("negative dissimilarity")
	// ErrNonZeroDiagonal is returned when dist(i,i) != 0.
	ErrNonZeroDiagonal = errors.New("dissimilarity matrix has a non-zero diagonal")
	// ErrSeedShape is returned when explicit seeds have the wrong shape.
	ErrSeedShape = errors.New("seed shape mismatch")
	// ErrSeedOutOfRange is returned for medoid seeds outside [0, N).
	ErrSeedOutOfRange = errors.New("seed index out of range")
	// ErrDuplicateSeed is returned when a medoid seed index repeats.
	ErrDuplicateSeed = errors.New("duplicate seed index")
	// ErrWrongSeedKind is returned when centroid seeds are passed to k-medoids
	// or medoid seeds to k-means.
	ErrWrongSeedKind = errors.New("seeds do not match the algorithm")
	// ErrInvalidOption is returned for out-of-range option values.
	ErrInvalidOption = errors.New("invalid option")
	// ErrDimensionMismatch is returned when a point has the wrong number of features.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrDegenerateCluster matches every *DegenerateClusterError.
	ErrDegenerateCluster = errors.New("degenerate cluster")
	// ErrObjectiveIncreased matches every *ObjectiveIncreaseError.
	ErrObjectiveIncreased = errors.New("objective increased")
)

// ValidationError describes a rejected input. It matches ErrValidation and
// the specific sentinel in Kind.
type ValidationError struct {
	Field    string
	Expected string
	Actual   string
	Kind     error
	cause    error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %v", e.Field, e.Kind)
	if e.Expected != "" {
		msg += fmt.Sprintf(": expected %s", e.Expected)
	}
	if e.Actual != "" {
		msg += fmt.Sprintf(", got %s", e.Actual)
	}
	return msg
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

// DegenerateClusterError indicates a cluster lost all of its members while
// the Fail empty-cluster policy was active.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type DegenerateClusterError struct {
	Cluster   int
	Iteration int
	cause     error
}

func (e *DegenerateClusterError) Error() string {
	return fmt.Sprintf("degenerate cluster: cluster %d is empty at iteration %d", e.Cluster, e.Iteration)
}

func (e *DegenerateClusterError) Is(target error) bool { return target == ErrDegenerateCluster }

func (e *DegenerateClusterError) Unwrap() error { return e.cause }

// ObjectiveIncreaseError indicates the objective value went up between two
// iterations while the Strict convergence policy was active.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ObjectiveIncreaseError struct {
	Iteration int
	Previous  float64
	Current   float64
	cause     error
}

func (e *ObjectiveIncreaseError) Error() string {
	return fmt.Sprintf("objective increased at iteration %d: %g -> %g", e.Iteration, e.Previous, e.Current)
}

func (e *ObjectiveIncreaseError) Is(target error) bool { return target == ErrObjectiveIncreased }

func (e *ObjectiveIncreaseError) Unwrap() error { return e.cause }

var validationKinds = map[error]error{
	validate.ErrInvalidK:              ErrInvalidK,
	validate.ErrEmptyData:             ErrEmptyData,
	validate.ErrNonFinite:             ErrNonFinite,
	validate.ErrNotSquare:             ErrNotSquare,
	validate.ErrAsymmetric:            ErrAsymmetric,
	validate.ErrNegativeDissimilarity: ErrNegativeDissimilarity,
	validate.ErrNonZeroDiagonal:       ErrNonZeroDiagonal,
	validate.ErrSeedShape:             ErrSeedShape,
	validate.ErrSeedOutOfRange:        ErrSeedOutOfRange,
	validate.ErrDuplicateSeed:         ErrDuplicateSeed,
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ve *validate.Error
	if errors.As(err, &ve) {
		kind, ok := validationKinds[ve.Err]
		if !ok {
			kind = ve.Err
		}
		return &ValidationError{Field: ve.Field, Expected: ve.Expected, Actual: ve.Actual, Kind: kind, cause: err}
	}

	var ece *membership.EmptyClusterError
	if errors.As(err, &ece) {
		return &DegenerateClusterError{Cluster: ece.Cluster, Iteration: ece.Iteration, cause: err}
	}

	var ie *converge.IncreaseError
	if errors.As(err, &ie) {
		return &ObjectiveIncreaseError{Iteration: ie.Iteration, Previous: ie.Previous, Current: ie.Current, cause: err}
	}

	return err
}

func optionError(field, expected, actual string) error {
	return &ValidationError{Field: field, Expected: expected, Actual: actual, Kind: ErrInvalidOption}
}

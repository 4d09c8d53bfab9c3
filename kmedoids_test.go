package kcluster

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/kcluster/distance"
)

// twoGroups is the dissimilarity matrix of two obvious groups {0,1,2} and {3,4}.
func twoGroups() *mat.SymDense {
	return mat.NewSymDense(5, []float64{
		0, 1, 1, 10, 10,
		1, 0, 1, 10, 10,
		1, 1, 0, 10, 10,
		10, 10, 10, 0, 1,
		10, 10, 10, 1, 0,
	})
}

func TestKMedoidsTwoGroups(t *testing.T) {
	res, err := KMedoids(context.Background(), twoGroups(), 2, WithTries(20), WithRandSeed(42))
	require.NoError(t, err)

	assert.Equal(t, 3.0, res.Objective)
	assert.True(t, res.Converged)
	assert.Equal(t, 20, res.Tries)
	assert.Equal(t, res.Labels[0], res.Labels[1])
	assert.Equal(t, res.Labels[0], res.Labels[2])
	assert.Equal(t, res.Labels[3], res.Labels[4])
	assert.NotEqual(t, res.Labels[0], res.Labels[3])

	small, large := res.Medoids[res.Labels[0]], res.Medoids[res.Labels[3]]
	assert.Contains(t, []int{0, 1, 2}, small)
	assert.Contains(t, []int{3, 4}, large)
}

func TestKMedoidsSeeded(t *testing.T) {
	seeds := []int{4, 1}

	res, err := KMedoids(context.Background(), twoGroups(), 2, WithMedoidSeeds(seeds))
	require.NoError(t, err)

	assert.Equal(t, []int{3, 0}, res.Medoids)
	assert.Equal(t, []int{1, 1, 1, 0, 0}, res.Labels)
	assert.Equal(t, 3.0, res.Objective)
	assert.Equal(t, 0, res.Try)
	assert.Equal(t, 1, res.Tries)
	assert.Equal(t, []int{4, 1}, seeds)
	assert.Equal(t, []int{3, 4}, res.Members(0))
	assert.Equal(t, []int{0, 1, 2}, res.Members(1))
}

func TestKMedoidsEveryPointOwnCluster(t *testing.T) {
	res, err := KMedoids(context.Background(), twoGroups(), 5, WithRandSeed(3))
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Objective)
	assert.Equal(t, []int{1, 1, 1, 1, 1}, res.Sizes())
	for i, l := range res.Labels {
		assert.Equal(t, i, res.Medoids[l])
	}
}

func TestKMedoidsMedoidsAreMinimal(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	points := randomPoints(rng, 40, 2)

	res, err := KMedoidsFromPoints(context.Background(), points, 4, WithRandSeed(5))
	require.NoError(t, err)

	dist, err := distance.Pairwise(points, distance.MetricL2)
	require.NoError(t, err)

	var total float64
	for j, m := range res.Medoids {
		members := res.Members(j)
		require.Contains(t, members, m)

		sumOf := func(c int) float64 {
			var s float64
			for _, o := range members {
				s += dist.At(c, o)
			}
			return s
		}
		best := sumOf(m)
		total += best
		for _, c := range members {
			assert.GreaterOrEqual(t, sumOf(c), best-1e-9, "cluster %d candidate %d", j, c)
		}
	}
	assert.InDelta(t, total, res.Objective, 1e-9)
}

func TestKMedoidsDeterministic(t *testing.T) {
	points := randomPoints(rand.New(rand.NewSource(23)), 50, 3)
	dist, err := distance.Pairwise(points, distance.MetricL2)
	require.NoError(t, err)

	a, err := KMedoids(context.Background(), dist, 3, WithRandSeed(9), WithTries(6))
	require.NoError(t, err)
	b, err := KMedoids(context.Background(), dist, 3, WithRandSeed(9), WithTries(6), WithParallelism(3))
	require.NoError(t, err)

	assert.Equal(t, a.Medoids, b.Medoids)
	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Objective, b.Objective)
	assert.Equal(t, a.Try, b.Try)
}

func TestKMedoidsDenseInput(t *testing.T) {
	dense := mat.DenseCopyOf(twoGroups())

	res, err := KMedoids(context.Background(), dense, 2, WithMedoidSeeds([]int{0, 3}))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, res.Medoids)
	assert.Equal(t, 3.0, res.Objective)
}

func TestKMedoidsValidation(t *testing.T) {
	asym := mat.DenseCopyOf(twoGroups())
	asym.Set(0, 1, 2)

	negative := mat.NewSymDense(2, []float64{0, -1, -1, 0})
	diagonal := mat.NewSymDense(2, []float64{1, 1, 1, 0})

	tests := []struct {
		name string
		dist mat.Matrix
		k    int
		opts []Option
		kind error
	}{
		{name: "not square", dist: mat.NewDense(2, 3, nil), k: 1, kind: ErrNotSquare},
		{name: "asymmetric", dist: asym, k: 2, kind: ErrAsymmetric},
		{name: "negative", dist: negative, k: 1, kind: ErrNegativeDissimilarity},
		{name: "diagonal", dist: diagonal, k: 1, kind: ErrNonZeroDiagonal},
		{name: "k above n", dist: twoGroups(), k: 6, kind: ErrInvalidK},
		{name: "seed length", dist: twoGroups(), k: 2, opts: []Option{WithMedoidSeeds([]int{0})}, kind: ErrSeedShape},
		{name: "seed range", dist: twoGroups(), k: 2, opts: []Option{WithMedoidSeeds([]int{0, 5})}, kind: ErrSeedOutOfRange},
		{name: "negative seed", dist: twoGroups(), k: 2, opts: []Option{WithMedoidSeeds([]int{-1, 3})}, kind: ErrSeedOutOfRange},
		{name: "duplicate seed", dist: twoGroups(), k: 2, opts: []Option{WithMedoidSeeds([]int{3, 3})}, kind: ErrDuplicateSeed},
		{name: "centroid seeds", dist: twoGroups(), k: 2, opts: []Option{WithCentroidSeeds(mat.NewDense(2, 5, nil))}, kind: ErrWrongSeedKind},
		{name: "empty policy", dist: twoGroups(), k: 2, opts: []Option{WithEmptyClusterPolicy(EmptyClusterPolicy(7))}, kind: ErrInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			_, err := KMedoids(context.Background(), tt.dist, tt.k,
				append(tt.opts, WithObserver(func(Progress) { called = true }))...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorIs(t, err, tt.kind)
			assert.False(t, called)
		})
	}
}

func TestKMedoidsCoincidentPoints(t *testing.T) {
	// Points 0 and 1 coincide.
	dist := mat.NewSymDense(4, []float64{
		0, 0, 3, 3,
		0, 0, 3, 3,
		3, 3, 0, 1,
		3, 3, 1, 0,
	})

	for _, policy := range []EmptyClusterPolicy{EmptyFreeze, EmptyFail, EmptyReseed} {
		t.Run(policy.String(), func(t *testing.T) {
			res, err := KMedoids(context.Background(), dist, 3,
				WithMedoidSeeds([]int{1, 0, 2}),
				WithEmptyClusterPolicy(policy),
				WithRandSeed(1),
			)
			require.NoError(t, err)

			assert.Equal(t, []int{1, 0, 2}, res.Medoids)
			assert.Equal(t, []int{1, 0, 2, 2}, res.Labels)
			assert.Equal(t, []int{1, 1, 2}, res.Sizes())
			assert.Equal(t, 1.0, res.Objective)
			for j, m := range res.Medoids {
				assert.Contains(t, res.Members(j), m)
			}
		})
	}
}

func TestKMedoidsDuplicateRowsKeepMedoidsDistinct(t *testing.T) {
	points := mat.NewDense(6, 1, []float64{0, 0, 0, 5, 5, 9})

	res, err := KMedoidsFromPoints(context.Background(), points, 3, WithTries(10), WithRandSeed(3))
	require.NoError(t, err)

	seen := map[int]bool{}
	for j, m := range res.Medoids {
		assert.False(t, seen[m], "duplicate medoid %d in %v", m, res.Medoids)
		seen[m] = true
		assert.Contains(t, res.Members(j), m)
		assert.Positive(t, res.Sizes()[j])
	}
}

// risingObjective is a dissimilarity matrix on which the objective rises by
// one ulp in the second iteration when started from medoids 0 and 2: the
// cluster sums 0.1 + (0.2 + 0.3) become (0.1 + 0.2) + 0.3.
func risingObjective() *mat.SymDense {
	return mat.NewSymDense(6, []float64{
		0, 0.1, 9, 0.2, 9, 9,
		0.1, 0, 9, 9, 9, 9,
		9, 9, 0, 0.15, 1, 0,
		0.2, 9, 0.15, 0, 9, 0.2,
		9, 9, 1, 9, 0, 0.3,
		9, 9, 0, 0.2, 0.3, 0,
	})
}

func TestKMedoidsConvergencePolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("strict", func(t *testing.T) {
		res, err := KMedoids(ctx, risingObjective(), 2,
			WithMedoidSeeds([]int{0, 2}),
			WithThreshold(1e-18),
			WithConvergencePolicy(Strict),
		)
		require.Error(t, err)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrObjectiveIncreased)

		var oie *ObjectiveIncreaseError
		require.ErrorAs(t, err, &oie)
		assert.Equal(t, 2, oie.Iteration)
		assert.Equal(t, 0.1+0.5, oie.Previous)
		assert.Greater(t, oie.Current, oie.Previous)
	})

	t.Run("non-strict", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

		res, err := KMedoids(ctx, risingObjective(), 2,
			WithMedoidSeeds([]int{0, 2}),
			WithThreshold(1e-18),
			WithLogger(logger),
		)
		require.NoError(t, err)

		assert.True(t, res.Converged)
		assert.Equal(t, 2, res.Iterations)
		assert.Equal(t, []int{0, 5}, res.Medoids)
		assert.Equal(t, []int{0, 0, 1, 0, 1, 1}, res.Labels)

		var warned bool
		for _, rec := range decodeLines(t, &buf) {
			if rec["level"] == "WARN" && rec["reason"] == stopReasonIncreased {
				warned = true
			}
		}
		assert.True(t, warned, "stop on an increase must be logged")
	})

	t.Run("default threshold", func(t *testing.T) {
		res, err := KMedoids(ctx, risingObjective(), 2,
			WithMedoidSeeds([]int{0, 2}),
			WithConvergencePolicy(Strict),
		)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Iterations)
	})
}

func TestKMedoidsFromPointsValidation(t *testing.T) {
	_, err := KMedoidsFromPoints(context.Background(), mat.NewDense(2, 1, []float64{0, infValue()}), 1)
	assert.ErrorIs(t, err, ErrNonFinite)
	assert.ErrorIs(t, err, ErrValidation)
}

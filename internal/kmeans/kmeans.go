package kmeans

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/kcluster/distance"
	"github.com/hupe1980/kcluster/internal/converge"
	"github.com/hupe1980/kcluster/internal/membership"
)

// Config controls a single run.
type Config struct {
	Criterion converge.Criterion
	Empty     membership.EmptyPolicy
	// Rand is only used by the Reseed policy.
	Rand *rand.Rand
	// OnIteration, if set, is called after every iteration.
	OnIteration func(iter int, objective float64)
}

// Result is the state of a run after it stopped.
type Result struct {
	Centroids  *mat.Dense
	Labels     []int
	Objective  float64
	Iterations int
	Status     converge.Status
}

// Run iterates Lloyd's algorithm on points starting from seeds. seeds is
// copied; the caller's matrix is never modified.
func Run(ctx context.Context, points [][]float64, seeds mat.Matrix, cfg Config) (*Result, error) {
	k, dim := seeds.Dims()
	n := len(points)

	centroids := mat.DenseCopyOf(seeds)
	labels := make([]int, n)
	sets := membership.New(k)
	sum := make([]float64, dim)

	prev := math.Inf(1)
	for iter := 1; ; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		Assign(points, centroids, labels)
		sets.Reset(labels)

		for j := 0; j < k; j++ {
			if sets.IsEmpty(j) {
				switch cfg.Empty {
				case membership.Fail:
					return nil, &membership.EmptyClusterError{Cluster: j, Iteration: iter}
				case membership.Reseed:
					if i, ok := randomNonCentroid(cfg.Rand, points, centroids); ok {
						centroids.SetRow(j, points[i])
					}
				}
				continue
			}

			for i := range sum {
				sum[i] = 0
			}
			sets.ForEach(j, func(i int) bool {
				floats.Add(sum, points[i])
				return true
			})
			floats.Scale(1/float64(sets.Len(j)), sum)
			centroids.SetRow(j, sum)
		}

		cur := Objective(points, centroids, labels)
		if cfg.OnIteration != nil {
			cfg.OnIteration(iter, cur)
		}

		status, err := cfg.Criterion.Check(iter, prev, cur)
		if err != nil {
			return nil, err
		}
		if status != converge.Continue {
			return &Result{
				Centroids:  centroids,
				Labels:     labels,
				Objective:  cur,
				Iterations: iter,
				Status:     status,
			}, nil
		}
		prev = cur
	}
}

// randomNonCentroid draws uniformly among the points that do not coincide
// with any current centroid.
func randomNonCentroid(rng *rand.Rand, points [][]float64, centroids *mat.Dense) (int, bool) {
	if rng == nil {
		return 0, false
	}
	k, _ := centroids.Dims()
	candidates := make([]int, 0, len(points))
	for i, p := range points {
		free := true
		for j := 0; j < k; j++ {
			if distance.SquaredL2(p, centroids.RawRowView(j)) == 0 {
				free = false
				break
			}
		}
		if free {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// Assign writes the index of the nearest centroid of every point into labels.
// Ties go to the lowest centroid index.
func Assign(points [][]float64, centroids *mat.Dense, labels []int) {
	for i, p := range points {
		labels[i] = Nearest(p, centroids)
	}
}

// Nearest returns the index of the centroid closest to vec under squared L2.
// Ties go to the lowest index.
func Nearest(vec []float64, centroids *mat.Dense) int {
	k, _ := centroids.Dims()

	best := 0
	minDist := math.Inf(1)
	for j := 0; j < k; j++ {
		d := distance.SquaredL2(vec, centroids.RawRowView(j))
		if d < minDist {
			minDist = d
			best = j
		}
	}
	return best
}

// Objective returns the sum of squared distances of every point to the
// centroid it is labeled with.
func Objective(points [][]float64, centroids *mat.Dense, labels []int) float64 {
	var j float64
	for i, p := range points {
		j += distance.SquaredL2(p, centroids.RawRowView(labels[i]))
	}
	return j
}

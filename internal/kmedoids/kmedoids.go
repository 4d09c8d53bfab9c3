// Package kmedoids implements a single run of partitioning around medoids on
// a precomputed dissimilarity matrix.
package kmedoids

import (
	"context"
	"math"
	"math/rand"
	"slices"

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
	Medoids    []int
	Labels     []int
	Objective  float64
	Iterations int
	Status     converge.Status
}

// Run iterates assignment and medoid re-selection on the N-by-N dissimilarity
// rows dist, starting from the medoid indices in seeds. seeds is copied; the
// caller's slice is never modified.
func Run(ctx context.Context, dist [][]float64, seeds []int, cfg Config) (*Result, error) {
	n := len(dist)
	k := len(seeds)

	medoids := slices.Clone(seeds)
	labels := make([]int, n)
	sets := membership.New(k)

	prev := math.Inf(1)
	for iter := 1; ; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		Assign(dist, medoids, labels)
		sets.Reset(labels)

		var cur float64
		for j := 0; j < k; j++ {
			if sets.IsEmpty(j) {
				switch cfg.Empty {
				case membership.Fail:
					return nil, &membership.EmptyClusterError{Cluster: j, Iteration: iter}
				case membership.Reseed:
					if m, ok := randomNonMedoid(cfg.Rand, n, medoids); ok {
						medoids[j] = m
					}
				}
				continue
			}

			m, sum := medoidOf(dist, sets, j)
			medoids[j] = m
			cur += sum
		}

		if cfg.OnIteration != nil {
			cfg.OnIteration(iter, cur)
		}

		status, err := cfg.Criterion.Check(iter, prev, cur)
		if err != nil {
			return nil, err
		}
		if status != converge.Continue {
			return &Result{
				Medoids:    medoids,
				Labels:     labels,
				Objective:  cur,
				Iterations: iter,
				Status:     status,
			}, nil
		}
		prev = cur
	}
}

// Assign labels every point with the medoid it is least dissimilar to.
// Ties go to the lowest cluster index. A medoid always keeps its own label,
// even when another medoid coincides with it, so distinct medoids never leave
// a cluster empty.
func Assign(dist [][]float64, medoids []int, labels []int) {
	for i := range labels {
		labels[i] = -1
	}
	for j, m := range medoids {
		if labels[m] < 0 {
			labels[m] = j
		}
	}

	for i := range labels {
		if labels[i] >= 0 {
			continue
		}
		best := 0
		minDist := math.Inf(1)
		for j, m := range medoids {
			if d := dist[m][i]; d < minDist {
				minDist = d
				best = j
			}
		}
		labels[i] = best
	}
}

// medoidOf returns the member of cluster j with the smallest sum of
// dissimilarities to all other members, and that sum. Ties go to the lowest
// point index. A singleton cluster yields its only member with sum 0.
func medoidOf(dist [][]float64, sets *membership.Sets, j int) (int, float64) {
	members := sets.Members(j)

	best := members[0]
	minSum := math.Inf(1)
	for _, cand := range members {
		row := dist[cand]
		var sum float64
		for _, o := range members {
			sum += row[o]
		}
		if sum < minSum {
			minSum = sum
			best = cand
		}
	}
	return best, minSum
}

func randomNonMedoid(rng *rand.Rand, n int, medoids []int) (int, bool) {
	if rng == nil || n <= len(medoids) {
		return 0, false
	}
	for {
		c := rng.Intn(n)
		if !slices.Contains(medoids, c) {
			return c, true
		}
	}
}

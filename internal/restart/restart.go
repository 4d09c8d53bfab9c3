// Package restart runs independent clustering trials and keeps the one with
// the lowest objective value.
package restart

import (
	"context"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kcluster/resource"
)

// Trial runs one restart with its own random source and returns the run
// result together with its final objective value.
type Trial[T any] func(ctx context.Context, try int, rng *rand.Rand) (T, float64, error)

// Config controls the restart loop.
type Config struct {
	// Tries is the number of independent restarts. Values < 1 mean 1.
	Tries int
	// Parallelism bounds the number of trials running at the same time.
	// Values < 1 mean 1.
	Parallelism int
	// Rand is the master random source. Every trial receives its own source
	// seeded from it in try order, so the outcome does not depend on
	// Parallelism.
	Rand *rand.Rand
	// Controller optionally bounds concurrency and memory across calls.
	Controller *resource.Controller
	// MemoryPerTry is reserved on Controller while a trial runs.
	MemoryPerTry int64
	// OnTrial, if set, is called after every successful trial.
	OnTrial func(try int, objective float64)
}

// Outcome is the best trial.
type Outcome[T any] struct {
	Best      T
	Objective float64
	Try       int
}

// Run executes cfg.Tries trials and returns the one with minimum objective.
// Ties go to the lowest try index. The first trial error cancels the others
// and is returned.
func Run[T any](ctx context.Context, cfg Config, trial Trial[T]) (Outcome[T], error) {
	tries := max(cfg.Tries, 1)
	master := cfg.Rand
	if master == nil {
		master = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec
	}

	seeds := make([]int64, tries)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	type result struct {
		v T
		j float64
	}
	results := make([]result, tries)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Parallelism, 1))

	for i := 0; i < tries; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := cfg.Controller.AcquireRun(gctx); err != nil {
				return err
			}
			defer cfg.Controller.ReleaseRun()

			if err := cfg.Controller.AcquireMemory(gctx, cfg.MemoryPerTry); err != nil {
				return err
			}
			defer cfg.Controller.ReleaseMemory(cfg.MemoryPerTry)

			v, j, err := trial(gctx, i, rand.New(rand.NewSource(seeds[i]))) //nolint:gosec
			if err != nil {
				return err
			}
			results[i] = result{v: v, j: j}
			if cfg.OnTrial != nil {
				cfg.OnTrial(i, j)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Outcome[T]{}, err
	}

	best := Outcome[T]{Objective: math.Inf(1), Try: -1}
	for i, r := range results {
		if best.Try < 0 || r.j < best.Objective {
			best = Outcome[T]{Best: r.v, Objective: r.j, Try: i}
		}
	}
	return best, nil
}

// Sample returns k distinct indices drawn uniformly from [0,n).
func Sample(rng *rand.Rand, n, k int) []int {
	return rng.Perm(n)[:k]
}

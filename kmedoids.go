package kcluster

import (
	"context"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/kcluster/distance"
	"github.com/hupe1980/kcluster/internal/kmedoids"
	"github.com/hupe1980/kcluster/internal/matutil"
	"github.com/hupe1980/kcluster/internal/restart"
	"github.com/hupe1980/kcluster/internal/validate"
)

const algorithmKMedoids = "kmedoids"

// KMedoidsResult is the outcome of KMedoids.
type KMedoidsResult struct {
	Partition
	// Medoids holds the index of the point representing each cluster.
	Medoids []int
}

// KMedoids clusters N points described by the N-by-N dissimilarity matrix
// dist into k clusters, each represented by one of the points.
//
// dist must be square, symmetric, non-negative and have a zero diagonal.
// A *mat.SymDense skips the symmetry check. Without WithMedoidSeeds the core
// loop is restarted WithTries times from k distinct random points and the
// run with the lowest objective is returned.
func KMedoids(ctx context.Context, dist mat.Matrix, k int, optFns ...Option) (*KMedoidsResult, error) {
	start := time.Now()
	o := applyOptions(DefaultKMedoidsTries, optFns)

	res, tries, err := o.kmedoids(ctx, dist, k)
	o.metrics.RecordCall(algorithmKMedoids, tries, time.Since(start), err)
	if err != nil {
		return nil, translateError(err)
	}
	return res, nil
}

// KMedoidsFromPoints builds the Euclidean dissimilarity matrix of the rows of
// data and clusters it with KMedoids.
func KMedoidsFromPoints(ctx context.Context, data mat.Matrix, k int, optFns ...Option) (*KMedoidsResult, error) {
	if _, _, err := validate.Points(data); err != nil {
		return nil, translateError(err)
	}
	dist, err := distance.Pairwise(data, distance.MetricL2)
	if err != nil {
		return nil, err
	}
	return KMedoids(ctx, dist, k, optFns...)
}

func (o *options) kmedoids(ctx context.Context, dist mat.Matrix, k int) (*KMedoidsResult, int, error) {
	n, err := validate.Dissimilarity(dist)
	if err != nil {
		return nil, 0, err
	}
	if err := validate.K(k, n); err != nil {
		return nil, 0, err
	}
	if err := o.validate(); err != nil {
		return nil, 0, err
	}
	if o.centroidSeeds != nil {
		return nil, 0, &ValidationError{Field: "seeds", Expected: "medoid seeds", Actual: "centroid seeds", Kind: ErrWrongSeedKind}
	}

	tries := o.tries
	if o.medoidSeeds != nil {
		if err := validate.MedoidSeeds(o.medoidSeeds, k, n); err != nil {
			return nil, 0, err
		}
		tries = 1
	}

	rows := matutil.Rows(dist)
	logger := o.logger.WithAlgorithm(algorithmKMedoids).WithK(k)

	trial := func(ctx context.Context, try int, rng *rand.Rand) (*kmedoids.Result, float64, error) {
		seeds := o.medoidSeeds
		if seeds == nil {
			seeds = restart.Sample(rng, n, k)
		}

		log := logger.WithTry(try)
		runStart := time.Now()
		res, err := kmedoids.Run(ctx, rows, seeds, kmedoids.Config{
			Criterion:   o.criterion(),
			Empty:       o.empty,
			Rand:        rng,
			OnIteration: o.iterationHook(ctx, log, algorithmKMedoids, try),
		})
		if err != nil {
			o.metrics.RecordRun(algorithmKMedoids, 0, 0, time.Since(runStart), err)
			log.LogRun(ctx, 0, 0, "", err)
			return nil, 0, err
		}
		o.metrics.RecordRun(algorithmKMedoids, res.Iterations, res.Objective, time.Since(runStart), nil)
		log.LogRun(ctx, res.Iterations, res.Objective, stopReason(res.Status), nil)
		return res, res.Objective, nil
	}

	out, err := restart.Run(ctx, restart.Config{
		Tries:        tries,
		Parallelism:  o.parallelism,
		Rand:         o.rng,
		Controller:   o.controller,
		MemoryPerTry: int64(8 * (k + n)),
	}, trial)
	if err != nil {
		return nil, tries, err
	}
	logger.LogBest(ctx, out.Try, tries, out.Objective)

	best := out.Best
	p := newPartition(best.Labels, k)
	p.Objective = best.Objective
	p.Iterations = best.Iterations
	p.Converged = stopReason(best.Status) != stopReasonMaxIterations
	p.Try = out.Try
	p.Tries = tries

	return &KMedoidsResult{Partition: p, Medoids: best.Medoids}, tries, nil
}

package kcluster

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/kcluster/internal/kmeans"
	"github.com/hupe1980/kcluster/internal/matutil"
	"github.com/hupe1980/kcluster/internal/restart"
	"github.com/hupe1980/kcluster/internal/validate"
)

const algorithmKMeans = "kmeans"

// KMeansResult is the outcome of KMeans.
type KMeansResult struct {
	Partition
	// Centroids is the k-by-D matrix of final centroids.
	Centroids *mat.Dense
}

// Predict returns the cluster whose centroid is nearest to x.
func (r *KMeansResult) Predict(x []float64) (int, error) {
	_, d := r.Centroids.Dims()
	if len(x) != d {
		return -1, &ValidationError{
			Field:    "x",
			Expected: fmt.Sprintf("%d features", d),
			Actual:   fmt.Sprintf("%d", len(x)),
			Kind:     ErrDimensionMismatch,
		}
	}
	return kmeans.Nearest(x, r.Centroids), nil
}

// KMeans clusters the rows of the N-by-D matrix data into k clusters with
// Lloyd's algorithm under squared Euclidean distance.
//
// Without WithCentroidSeeds the core loop is restarted WithTries times from
// k distinct points sampled uniformly at random, and the run with the lowest
// objective is returned. With explicit seeds it runs exactly once.
func KMeans(ctx context.Context, data mat.Matrix, k int, optFns ...Option) (*KMeansResult, error) {
	start := time.Now()
	o := applyOptions(DefaultKMeansTries, optFns)

	res, tries, err := o.kmeans(ctx, data, k)
	o.metrics.RecordCall(algorithmKMeans, tries, time.Since(start), err)
	if err != nil {
		return nil, translateError(err)
	}
	return res, nil
}

func (o *options) kmeans(ctx context.Context, data mat.Matrix, k int) (*KMeansResult, int, error) {
	n, d, err := validate.Points(data)
	if err != nil {
		return nil, 0, err
	}
	if err := validate.K(k, n); err != nil {
		return nil, 0, err
	}
	if err := o.validate(); err != nil {
		return nil, 0, err
	}
	if o.medoidSeeds != nil {
		return nil, 0, &ValidationError{Field: "seeds", Expected: "centroid seeds", Actual: "medoid seeds", Kind: ErrWrongSeedKind}
	}

	tries := o.tries
	if o.centroidSeeds != nil {
		if err := validate.CentroidSeeds(o.centroidSeeds, k, d); err != nil {
			return nil, 0, err
		}
		tries = 1
	}

	points := matutil.Rows(data)
	logger := o.logger.WithAlgorithm(algorithmKMeans).WithK(k)

	trial := func(ctx context.Context, try int, rng *rand.Rand) (*kmeans.Result, float64, error) {
		seeds := o.centroidSeeds
		if seeds == nil {
			seeds = matutil.SelectRows(data, restart.Sample(rng, n, k))
		}

		log := logger.WithTry(try)
		runStart := time.Now()
		res, err := kmeans.Run(ctx, points, seeds, kmeans.Config{
			Criterion:   o.criterion(),
			Empty:       o.empty,
			Rand:        rng,
			OnIteration: o.iterationHook(ctx, log, algorithmKMeans, try),
		})
		if err != nil {
			o.metrics.RecordRun(algorithmKMeans, 0, 0, time.Since(runStart), err)
			log.LogRun(ctx, 0, 0, "", err)
			return nil, 0, err
		}
		o.metrics.RecordRun(algorithmKMeans, res.Iterations, res.Objective, time.Since(runStart), nil)
		log.LogRun(ctx, res.Iterations, res.Objective, stopReason(res.Status), nil)
		return res, res.Objective, nil
	}

	out, err := restart.Run(ctx, restart.Config{
		Tries:        tries,
		Parallelism:  o.parallelism,
		Rand:         o.rng,
		Controller:   o.controller,
		MemoryPerTry: int64(8 * (k*d + n)),
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

	return &KMeansResult{Partition: p, Centroids: best.Centroids}, tries, nil
}

func (o *options) iterationHook(ctx context.Context, log *Logger, algorithm string, try int) func(int, float64) {
	return func(iter int, objective float64) {
		log.LogIteration(ctx, o.verbose, iter, objective)
		if o.observer != nil {
			o.observer(Progress{Algorithm: algorithm, Try: try, Iteration: iter, Objective: objective})
		}
	}
}

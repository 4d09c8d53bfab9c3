// Package kcluster provides k-means and k-medoids clustering for Go.
//
// Both algorithms iterate a pair of alternating steps until the objective J
// stops improving by more than a threshold, and both come with a driver that
// restarts the core loop from random seeds and keeps the best run.
//
// # Quick Start
//
// k-means on an N-by-D data matrix:
//
//	ctx := context.Background()
//	data := mat.NewDense(n, d, values)
//	res, _ := kcluster.KMeans(ctx, data, 4, kcluster.WithRandSeed(42))
//	fmt.Println(res.Labels, res.Objective)
//
// k-medoids on an N-by-N dissimilarity matrix:
//
//	res, _ := kcluster.KMedoids(ctx, dist, 3, kcluster.WithTries(20))
//	fmt.Println(res.Medoids)
//
// # Objectives
//
// k-means minimises the sum of squared Euclidean distances from each point to
// the mean of its cluster. k-medoids minimises the sum of dissimilarities from
// each point to the medoid of its cluster. A medoid is always one of the
// input points.
//
// # Seeding
//
// Without explicit seeds every restart samples k distinct points uniformly
// at random. WithCentroidSeeds and WithMedoidSeeds run the core loop exactly
// once. Inputs and seeds are never modified.
//
// # Convergence
//
// A run stops when Jprev-J falls below the threshold (NonStrict, the default)
// or when |Jprev-J| does (Strict). Every run is capped by WithMaxIterations.
// In Strict mode an objective increase larger than the threshold fails the
// call with an *ObjectiveIncreaseError.
//
// # Errors
//
// Invalid input is reported as *ValidationError before any iteration runs.
// Use errors.Is with ErrValidation or one of the more specific sentinels such
// as ErrInvalidK or ErrSeedShape.
package kcluster

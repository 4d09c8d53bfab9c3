// Package distance provides the Euclidean distances used by the clustering
// algorithms and a builder for dissimilarity matrices.
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	dist := distance.Pairwise(points, distance.MetricL2)
//	res, err := kcluster.KMedoids(ctx, dist, k)
package distance

// Package kmeans implements a single run of Lloyd's k-means algorithm.
//
// The restart driver lives in internal/restart; this package only iterates
// assignment and centroid update from a given set of initial centroids until
// the convergence criterion stops it.
package kmeans

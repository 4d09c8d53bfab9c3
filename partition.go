package kcluster

import (
	"github.com/hupe1980/kcluster/internal/membership"
)

// Partition is the part of a clustering result shared by both algorithms.
type Partition struct {
	// Labels maps every point to its cluster in [0,k).
	Labels []int
	// Objective is the final objective value J of the selected run.
	Objective float64
	// Iterations is the number of iterations of the selected run.
	Iterations int
	// Converged is false when the selected run hit the iteration cap.
	Converged bool
	// Try is the index of the selected restart.
	Try int
	// Tries is the number of restarts that were executed.
	Tries int

	members *membership.Sets
}

func newPartition(labels []int, k int) Partition {
	return Partition{
		Labels:  labels,
		members: membership.FromLabels(labels, k),
	}
}

// K returns the number of clusters.
func (p *Partition) K() int { return p.members.K() }

// Members returns the ascending indices of the points in cluster j.
func (p *Partition) Members(j int) []int { return p.members.Members(j) }

// Sizes returns the number of points in every cluster.
func (p *Partition) Sizes() []int { return p.members.Sizes() }

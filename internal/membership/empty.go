package membership

import (
	"errors"
	"fmt"
)

// EmptyPolicy decides what happens to the representative of a cluster that
// has no members after an assignment step.
type EmptyPolicy int

const (
	// Freeze keeps the previous representative.
	Freeze EmptyPolicy = iota
	// Fail aborts the run with an *EmptyClusterError.
	Fail
	// Reseed moves the representative onto a random data point.
	Reseed
)

func (p EmptyPolicy) String() string {
	switch p {
	case Freeze:
		return "freeze"
	case Fail:
		return "fail"
	case Reseed:
		return "reseed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ErrEmptyCluster is wrapped by EmptyClusterError.
var ErrEmptyCluster = errors.New("empty cluster")

// EmptyClusterError reports the cluster that lost all of its members.
type EmptyClusterError struct {
	Cluster   int
	Iteration int
}

func (e *EmptyClusterError) Error() string {
	return fmt.Sprintf("cluster %d became empty at iteration %d", e.Cluster, e.Iteration)
}

func (e *EmptyClusterError) Unwrap() error { return ErrEmptyCluster }

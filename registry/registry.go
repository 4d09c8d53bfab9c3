// Package registry keeps the best clustering run per dataset, algorithm and
// number of clusters across process invocations.
//
// Restarts inside one call already keep the lowest objective; the registry
// extends that rule to independent calls. Submit stores a record only when
// its objective is strictly lower than the stored one, so an earlier run
// wins ties.
package registry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no run is recorded for a key.
	ErrNotFound = errors.New("registry: record not found")
	// ErrInvalidRecord is returned for records that cannot be stored.
	ErrInvalidRecord = errors.New("registry: invalid record")
)

// Key identifies a clustering problem.
type Key struct {
	Dataset   string `json:"dataset"`
	Algorithm string `json:"algorithm"`
	K         int    `json:"k"`
}

// String returns "dataset/algorithm/k".
func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Dataset, k.Algorithm, k.K)
}

// Validate reports whether k can be stored.
func (k Key) Validate() error {
	switch {
	case k.Dataset == "":
		return fmt.Errorf("%w: empty dataset", ErrInvalidRecord)
	case k.Algorithm == "" || strings.Contains(k.Algorithm, "/"):
		return fmt.Errorf("%w: algorithm %q", ErrInvalidRecord, k.Algorithm)
	case k.K < 1:
		return fmt.Errorf("%w: k %d", ErrInvalidRecord, k.K)
	}
	return nil
}

// Record is one finished clustering run.
type Record struct {
	Key
	Objective  float64     `json:"objective"`
	Iterations int         `json:"iterations"`
	Converged  bool        `json:"converged"`
	Try        int         `json:"try"`
	Tries      int         `json:"tries"`
	Labels     []int       `json:"labels"`
	Centroids  [][]float64 `json:"centroids,omitempty"`
	Medoids    []int       `json:"medoids,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Validate reports whether r can be stored.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil", ErrInvalidRecord)
	}
	if err := r.Key.Validate(); err != nil {
		return err
	}
	if math.IsNaN(r.Objective) || math.IsInf(r.Objective, 0) || r.Objective < 0 {
		return fmt.Errorf("%w: objective %g", ErrInvalidRecord, r.Objective)
	}
	return nil
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r
	c.Labels = slices.Clone(r.Labels)
	c.Medoids = slices.Clone(r.Medoids)
	if r.Centroids != nil {
		c.Centroids = make([][]float64, len(r.Centroids))
		for i, row := range r.Centroids {
			c.Centroids[i] = slices.Clone(row)
		}
	}
	return &c
}

// Better reports whether candidate should replace current.
func Better(candidate, current *Record) bool {
	return current == nil || candidate.Objective < current.Objective
}

// Registry stores the best run per key. Implementations must be safe for
// concurrent use.
type Registry interface {
	// Best returns the stored run for key or ErrNotFound.
	Best(ctx context.Context, key Key) (*Record, error)
	// Submit stores rec if it beats the stored run and reports whether it
	// did.
	Submit(ctx context.Context, rec *Record) (bool, error)
}

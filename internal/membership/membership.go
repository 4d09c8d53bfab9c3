// Package membership maintains per-cluster member sets derived from labels.
package membership

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Sets holds one bitmap of point indices per cluster.
type Sets struct {
	bm []*roaring.Bitmap
}

// New creates k empty sets.
func New(k int) *Sets {
	bm := make([]*roaring.Bitmap, k)
	for i := range bm {
		bm[i] = roaring.New()
	}
	return &Sets{bm: bm}
}

// FromLabels builds the sets for labels in [0,k).
func FromLabels(labels []int, k int) *Sets {
	s := New(k)
	s.Reset(labels)
	return s
}

// Reset rebuilds all sets from labels, reusing the bitmaps.
func (s *Sets) Reset(labels []int) {
	for _, b := range s.bm {
		b.Clear()
	}
	for i, l := range labels {
		s.bm[l].Add(uint32(i))
	}
}

// K returns the number of clusters.
func (s *Sets) K() int { return len(s.bm) }

// Len returns the number of members of cluster j.
func (s *Sets) Len(j int) int {
	return int(s.bm[j].GetCardinality())
}

// IsEmpty reports whether cluster j has no members.
func (s *Sets) IsEmpty(j int) bool {
	return s.bm[j].IsEmpty()
}

// Contains reports whether point i belongs to cluster j.
func (s *Sets) Contains(j, i int) bool {
	return s.bm[j].Contains(uint32(i))
}

// Members returns the sorted member indices of cluster j.
func (s *Sets) Members(j int) []int {
	out := make([]int, 0, s.bm[j].GetCardinality())
	it := s.bm[j].Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// ForEach calls fn for every member of cluster j in ascending order until
// fn returns false.
func (s *Sets) ForEach(j int, fn func(i int) bool) {
	it := s.bm[j].Iterator()
	for it.HasNext() {
		if !fn(int(it.Next())) {
			return
		}
	}
}

// Sizes returns the cardinality of every cluster.
func (s *Sets) Sizes() []int {
	out := make([]int, len(s.bm))
	for j := range s.bm {
		out[j] = s.Len(j)
	}
	return out
}

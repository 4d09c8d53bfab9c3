package dataset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// docs has 6 rows in 3 categories; column 2 is only used by category 2.
func docs(t *testing.T) *Dataset {
	t.Helper()

	ds, err := New(mat.NewDense(6, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		2, 0, 0,
		0, 2, 0,
		0, 0, 5,
		1, 1, 5,
	}), []int{0, 1, 0, 1, 2, 2})
	require.NoError(t, err)
	return ds
}

func TestSelectCategories(t *testing.T) {
	ds := docs(t)

	got, err := ds.Select(Selection{Categories: []int{1, 0}, DropZeros: true})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1, 0, 0}, got.Labels)
	r, c := got.Features.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 2, c, "the all-zero column must be dropped")
	assert.Equal(t, []float64{0, 1}, got.Features.RawRowView(0))
	assert.Equal(t, []float64{2, 0}, got.Features.RawRowView(3))

	got, err = ds.Select(Selection{Categories: []int{1, 0}})
	require.NoError(t, err)
	_, c = got.Features.Dims()
	assert.Equal(t, 3, c)
}

func TestSelectAll(t *testing.T) {
	ds := docs(t)

	got, err := ds.Select(Selection{})
	require.NoError(t, err)
	assert.True(t, mat.Equal(ds.Features, got.Features))
	assert.Equal(t, ds.Labels, got.Labels)

	got.Features.Set(0, 0, 99)
	assert.Equal(t, 1.0, ds.Features.At(0, 0), "Select must copy")
}

func TestSelectSample(t *testing.T) {
	ds := docs(t)

	got, err := ds.Select(Selection{Sample: 2, Rand: rand.New(rand.NewSource(4))})
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, l := range got.Labels {
		seen[l] = true
	}
	assert.Len(t, seen, 2)
	assert.Len(t, got.Labels, 4)
}

func TestSelectErrors(t *testing.T) {
	ds := docs(t)

	_, err := ds.Select(Selection{Categories: []int{3}})
	assert.ErrorIs(t, err, ErrCategoryOutOfRange)

	_, err = ds.Select(Selection{Categories: []int{-1}})
	assert.ErrorIs(t, err, ErrCategoryOutOfRange)

	_, err = ds.Select(Selection{Sample: 4})
	assert.ErrorIs(t, err, ErrCategoryOutOfRange)

	unlabeled, err := New(mat.NewDense(1, 1, []float64{1}), nil)
	require.NoError(t, err)
	_, err = unlabeled.Select(Selection{Categories: []int{0}})
	assert.ErrorIs(t, err, ErrUnlabeled)

	zeros, err := New(mat.NewDense(2, 1, nil), []int{0, 0})
	require.NoError(t, err)
	_, err = zeros.Select(Selection{DropZeros: true})
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestNewValidatesLabels(t *testing.T) {
	_, err := New(mat.NewDense(2, 1, nil), []int{0})
	assert.Error(t, err)

	_, err = New(mat.NewDense(1, 1, nil), []int{-1})
	assert.Error(t, err)
}

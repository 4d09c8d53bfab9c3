package dataset

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUnlabeled is returned when a category selection is made on a
	// dataset without labels.
	ErrUnlabeled = errors.New("dataset: no labels")
	// ErrCategoryOutOfRange is returned for a category outside [0, Categories).
	ErrCategoryOutOfRange = errors.New("dataset: category out of range")
	// ErrEmptySelection is returned when a selection keeps no rows or columns.
	ErrEmptySelection = errors.New("dataset: empty selection")
)

// Dataset is a feature matrix with optional ground-truth labels.
type Dataset struct {
	// Features holds one row per sample.
	Features *mat.Dense
	// Labels holds the category of each row in [0, Categories), or nil.
	Labels []int
	// Categories is the number of distinct categories.
	Categories int
}

// New returns a Dataset and derives Categories from the labels.
func New(features *mat.Dense, labels []int) (*Dataset, error) {
	ds := &Dataset{Features: features, Labels: labels}
	if len(labels) > 0 {
		ds.Categories = slices.Max(labels) + 1
	}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (d *Dataset) validate() error {
	if d == nil || d.Features == nil {
		return errors.New("dataset: nil features")
	}
	rows, _ := d.Features.Dims()
	if d.Labels == nil {
		return nil
	}
	if len(d.Labels) != rows {
		return fmt.Errorf("dataset: %d labels for %d rows", len(d.Labels), rows)
	}
	for i, l := range d.Labels {
		if l < 0 || l >= d.Categories {
			return fmt.Errorf("%w: label %d of row %d, categories %d", ErrCategoryOutOfRange, l, i, d.Categories)
		}
	}
	return nil
}

// Size returns the memory held by the dataset in bytes.
func (d *Dataset) Size() int64 {
	r, c := d.Features.Dims()
	return int64(r*c*8 + len(d.Labels)*8)
}

// Selection chooses the rows and columns returned by Select.
type Selection struct {
	// Categories lists the categories to keep, in output order. Rows of
	// each category keep their original order.
	Categories []int
	// Sample picks this many distinct categories at random when Categories
	// is empty. Zero with empty Categories keeps every row.
	Sample int
	// DropZeros removes feature columns whose sum over the selected rows is 0.
	DropZeros bool
	// Rand is used by Sample. Defaults to a randomly seeded source.
	Rand *rand.Rand
}

// Select returns a copy of the rows and columns chosen by sel. The receiver
// is never modified.
func (d *Dataset) Select(sel Selection) (*Dataset, error) {
	categories, err := d.categories(sel)
	if err != nil {
		return nil, err
	}

	rows, cols := d.Features.Dims()
	var idx []int
	if categories == nil {
		idx = make([]int, rows)
		for i := range idx {
			idx[i] = i
		}
	} else {
		for _, c := range categories {
			for i, l := range d.Labels {
				if l == c {
					idx = append(idx, i)
				}
			}
		}
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: no rows in categories %v", ErrEmptySelection, categories)
	}

	keep := make([]int, 0, cols)
	for j := 0; j < cols; j++ {
		if !sel.DropZeros {
			keep = append(keep, j)
			continue
		}
		var sum float64
		for _, i := range idx {
			sum += d.Features.At(i, j)
		}
		if sum != 0 {
			keep = append(keep, j)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("%w: every column sums to zero", ErrEmptySelection)
	}

	out := &Dataset{
		Features:   mat.NewDense(len(idx), len(keep), nil),
		Categories: d.Categories,
	}
	for r, i := range idx {
		src := d.Features.RawRowView(i)
		dst := out.Features.RawRowView(r)
		for c, j := range keep {
			dst[c] = src[j]
		}
	}
	if d.Labels != nil {
		out.Labels = make([]int, len(idx))
		for r, i := range idx {
			out.Labels[r] = d.Labels[i]
		}
	}
	return out, nil
}

func (d *Dataset) categories(sel Selection) ([]int, error) {
	if len(sel.Categories) == 0 && sel.Sample == 0 {
		return nil, nil
	}
	if d.Labels == nil {
		return nil, ErrUnlabeled
	}

	if len(sel.Categories) > 0 {
		for _, c := range sel.Categories {
			if c < 0 || c >= d.Categories {
				return nil, fmt.Errorf("%w: categories should be within [0, %d), got %d", ErrCategoryOutOfRange, d.Categories, c)
			}
		}
		return sel.Categories, nil
	}

	if sel.Sample < 0 || sel.Sample > d.Categories {
		return nil, fmt.Errorf("%w: cannot sample %d of %d categories", ErrCategoryOutOfRange, sel.Sample, d.Categories)
	}
	rng := sel.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec
	}
	return rng.Perm(d.Categories)[:sel.Sample], nil
}

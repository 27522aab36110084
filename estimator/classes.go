package estimator

import (
	"fmt"
	"slices"
)

// ClassSet is an ordered, de-duplicated set of class labels, fixed at
// fit time and shared read-only by every member of an ensemble. Labels
// are kept in ascending order, so for a binary problem index 1 is the
// larger label.
type ClassSet struct {
	labels []float64
}

// NewClassSet collects the distinct labels in y, sorted ascending.
func NewClassSet(y []float64) *ClassSet {
	labels := slices.Clone(y)
	slices.Sort(labels)
	labels = slices.Compact(labels)
	return &ClassSet{labels: labels}
}

// Len returns the number of distinct classes.
func (c *ClassSet) Len() int { return len(c.labels) }

// Labels returns a copy of the ordered class labels.
func (c *ClassSet) Labels() []float64 { return slices.Clone(c.labels) }

// Label returns the label at index i.
func (c *ClassSet) Label(i int) float64 { return c.labels[i] }

// Index returns the position of label in the ordered set.
func (c *ClassSet) Index(label float64) (int, bool) {
	i, ok := slices.BinarySearch(c.labels, label)
	return i, ok
}

// Indices encodes each label in y as its index in the set. Unknown
// labels fail with ErrDataShape.
func (c *ClassSet) Indices(y []float64) ([]int, error) {
	out := make([]int, len(y))
	for i, v := range y {
		idx, ok := c.Index(v)
		if !ok {
			return nil, fmt.Errorf("%w: label %v not seen at fit time", ErrDataShape, v)
		}
		out[i] = idx
	}
	return out, nil
}

// Binarize returns the one-vs-rest indicator column for the class at
// index k: 1 where the sample belongs to the class, 0 elsewhere.
func (c *ClassSet) Binarize(y []float64, k int) ([]float64, error) {
	idx, err := c.Indices(y)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(y))
	for i, v := range idx {
		if v == k {
			out[i] = 1
		}
	}
	return out, nil
}

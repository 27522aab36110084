// Package split provides the cross-validation splitter contract used by
// the calibration and threshold-selection layers, plus a deterministic
// stratified k-fold implementation.
package split

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/PGryllos/scikit-learn/estimator"
)

// Fold is one train/test partition expressed as row indices into the
// original data.
type Fold struct {
	Train []int
	Test  []int
}

// Splitter generates the train/test partitions a cross-validated fit
// iterates over. For classification targets splits should be stratified.
type Splitter interface {
	Split(x *mat.Dense, y []float64) ([]Fold, error)
}

// StratifiedKFold partitions samples into K folds preserving each
// class's proportion. Assignment is deterministic: within a class,
// samples are dealt to folds round-robin in input order, no shuffling.
type StratifiedKFold struct {
	K int
}

var _ Splitter = StratifiedKFold{}

// Split returns K folds. Every class must have at least K samples so
// that each test fold contains all classes; otherwise the split fails
// with ErrInsufficientData.
func (s StratifiedKFold) Split(x *mat.Dense, y []float64) ([]Fold, error) {
	if s.K < 2 {
		return nil, fmt.Errorf("%w: need at least 2 folds, got %d", estimator.ErrInvalidConfiguration, s.K)
	}

	classes := estimator.NewClassSet(y)
	byClass := make([][]int, classes.Len())
	for i, label := range y {
		k, _ := classes.Index(label)
		byClass[k] = append(byClass[k], i)
	}
	for k, idx := range byClass {
		if len(idx) < s.K {
			return nil, fmt.Errorf("%w: class %v has %d samples for %d folds",
				estimator.ErrInsufficientData, classes.Label(k), len(idx), s.K)
		}
	}

	test := make([][]int, s.K)
	for _, idx := range byClass {
		for i, sample := range idx {
			f := i % s.K
			test[f] = append(test[f], sample)
		}
	}

	folds := make([]Fold, s.K)
	for f := range folds {
		slices.Sort(test[f])
		inTest := make(map[int]bool, len(test[f]))
		for _, i := range test[f] {
			inTest[i] = true
		}
		train := make([]int, 0, len(y)-len(test[f]))
		for i := range y {
			if !inTest[i] {
				train = append(train, i)
			}
		}
		folds[f] = Fold{Train: train, Test: test[f]}
	}
	return folds, nil
}

// Rows materializes the subset of x and y selected by idx. A nil
// weights slice stays nil; otherwise it is subset alongside.
func Rows(x *mat.Dense, y, weights []float64, idx []int) (*mat.Dense, []float64, []float64) {
	_, d := x.Dims()
	xs := mat.NewDense(len(idx), d, nil)
	ys := make([]float64, len(idx))
	var ws []float64
	if weights != nil {
		ws = make([]float64, len(idx))
	}
	for row, i := range idx {
		xs.SetRow(row, x.RawRowView(i))
		ys[row] = y[i]
		if weights != nil {
			ws[row] = weights[i]
		}
	}
	return xs, ys, ws
}

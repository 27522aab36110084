// Package calibration turns the raw scores of an already-trained
// classifier into well-calibrated class probabilities. A
// CalibratedEnsemble fits one calibrator per cross-validation fold, each
// holding a per-class monotone map from score to probability, and
// averages the fold probabilities at prediction time.
package calibration

import (
	"fmt"

	"github.com/PGryllos/scikit-learn/estimator"
	"github.com/PGryllos/scikit-learn/isotonic"
)

// Method selects the per-class calibration map family.
type Method string

const (
	// MethodSigmoid fits Platt's two-parameter logistic map. Preferred
	// on small calibration sets where isotonic regression overfits.
	MethodSigmoid Method = "sigmoid"

	// MethodIsotonic fits a non-parametric monotone map via
	// pool-adjacent-violators.
	MethodIsotonic Method = "isotonic"
)

// Map is a per-class monotone function from raw score to probability.
type Map interface {
	// Fit estimates the map from scores and 0/1 indicator targets.
	// A nil weights slice means equal weighting.
	Fit(scores, targets, weights []float64) error

	// Predict maps raw scores to probabilities in [0, 1].
	Predict(scores []float64) ([]float64, error)
}

// newMap constructs the calibration map for method.
func newMap(method Method) (Map, error) {
	switch method {
	case MethodSigmoid:
		return &SigmoidMap{}, nil
	case MethodIsotonic:
		return &IsotonicMap{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown calibration method %q", estimator.ErrInvalidConfiguration, method)
	}
}

// IsotonicMap adapts isotonic.Regression to the Map interface. Inputs
// outside the fitted score range clip to the boundary knot values.
type IsotonicMap struct {
	reg isotonic.Regression
}

// Fit runs pool-adjacent-violators on (scores, targets).
func (m *IsotonicMap) Fit(scores, targets, weights []float64) error {
	return m.reg.Fit(scores, targets, weights)
}

// Predict evaluates the fitted step curve with boundary clipping.
func (m *IsotonicMap) Predict(scores []float64) ([]float64, error) {
	return m.reg.Predict(scores)
}

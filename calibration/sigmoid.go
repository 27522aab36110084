package calibration

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/PGryllos/scikit-learn/estimator"
)

// SigmoidMap is Platt's probability calibration: P(y=1|f) is modeled as
// 1/(1+exp(a·f+b)) and (a, b) are fit by maximum likelihood against
// smoothed targets.
type SigmoidMap struct {
	// A is the slope of the fitted logistic.
	A float64

	// B is its intercept.
	B float64

	fitted bool
}

// Fit estimates the slope and intercept by minimizing the weighted
// negative log-likelihood with a quasi-Newton optimizer. Targets are
// smoothed with Platt's Bayesian priors so small calibration sets cannot
// push the optimizer towards degenerate 0/1 targets.
func (m *SigmoidMap) Fit(scores, targets, weights []float64) error {
	if len(scores) != len(targets) {
		return fmt.Errorf("%w: %d scores for %d targets", estimator.ErrDataShape, len(scores), len(targets))
	}
	if weights != nil && len(weights) != len(scores) {
		return fmt.Errorf("%w: %d weights for %d samples", estimator.ErrDataShape, len(weights), len(scores))
	}
	a, b, err := fitSigmoid(scores, targets, weights)
	if err != nil {
		return err
	}
	m.A, m.B = a, b
	m.fitted = true
	return nil
}

// Predict applies the fitted logistic to each score.
func (m *SigmoidMap) Predict(scores []float64) ([]float64, error) {
	if !m.fitted {
		return nil, estimator.ErrNotFitted
	}
	out := make([]float64, len(scores))
	for i, f := range scores {
		out[i] = 1 / (1 + math.Exp(m.A*f+m.B))
	}
	return out, nil
}

// tiny keeps the logarithms in the likelihood finite when a predicted
// probability underflows to zero.
const tiny = math.SmallestNonzeroFloat64

// fitSigmoid computes Platt's (a, b) for raw scores f and indicator
// targets y (positive where y > 0). The optimizer runs to its own
// convergence criterion; no outer iteration bound is imposed here.
func fitSigmoid(f, y, weights []float64) (a, b float64, err error) {
	var n0, n1 float64
	for _, v := range y {
		if v > 0 {
			n1++
		} else {
			n0++
		}
	}

	// Platt's Bayesian priors (end of his section 2.2): positives train
	// against (N1+1)/(N1+2), negatives against 1/(N0+2).
	t := make([]float64, len(y))
	for i, v := range y {
		if v > 0 {
			t[i] = (n1 + 1) / (n1 + 2)
		} else {
			t[i] = 1 / (n0 + 2)
		}
	}

	objective := func(ab []float64) float64 {
		var loss float64
		for i, fi := range f {
			e := math.Exp(ab[0]*fi + ab[1])
			p := 1 / (1 + e)
			l := -(t[i]*math.Log(p+tiny) + (1-t[i])*math.Log(1-p+tiny))
			if weights != nil {
				l *= weights[i]
			}
			loss += l
		}
		return loss
	}

	gradient := func(grad, ab []float64) {
		var da, db float64
		for i, fi := range f {
			e := math.Exp(ab[0]*fi + ab[1])
			p := 1 / (1 + e)
			g := p * (t[i]*e - (1 - t[i]))
			if weights != nil {
				g *= weights[i]
			}
			da += g * fi
			db += g
		}
		grad[0] = da
		grad[1] = db
	}

	problem := optimize.Problem{Func: objective, Grad: gradient}
	initial := []float64{0, math.Log((n0 + 1) / (n1 + 1))}

	result, err := optimize.Minimize(problem, initial, nil, &optimize.BFGS{})
	if result == nil {
		return 0, 0, fmt.Errorf("sigmoid calibration: %w", err)
	}
	// A stalled line search near the optimum still yields a usable
	// minimizer; anything else is a genuine failure.
	if err != nil && !errors.Is(err, optimize.ErrLinesearcherFailure) {
		return 0, 0, fmt.Errorf("sigmoid calibration: %w", err)
	}
	return result.X[0], result.X[1], nil
}

package calibration

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/PGryllos/scikit-learn/estimator"
)

// Curve computes the points of a calibration curve (reliability
// diagram) from true binary labels and predicted positive-class
// probabilities. Predictions are bucketed into equal-width bins over
// [0, 1]; for every non-empty bin the empirical positive fraction
// and the mean predicted value are reported. Empty bins are omitted, so
// the outputs may be shorter than bins.
//
// When normalize is set, predictions are min-max rescaled into [0, 1]
// first; otherwise out-of-range values fail with ErrDataShape.
func Curve(yTrue, yProb []float64, normalize bool, bins int) (probTrue, probPred []float64, err error) {
	if len(yTrue) != len(yProb) {
		return nil, nil, fmt.Errorf("%w: %d labels for %d predictions",
			estimator.ErrDataShape, len(yTrue), len(yProb))
	}
	if len(yTrue) == 0 {
		return nil, nil, fmt.Errorf("%w: no samples", estimator.ErrDataShape)
	}
	if bins < 1 {
		return nil, nil, fmt.Errorf("%w: bins must be positive, got %d", estimator.ErrInvalidConfiguration, bins)
	}
	for _, v := range yTrue {
		if v != 0 && v != 1 {
			return nil, nil, fmt.Errorf("%w: labels must be 0 or 1, got %v", estimator.ErrDataShape, v)
		}
	}

	if normalize {
		lo, hi := floats.Min(yProb), floats.Max(yProb)
		if lo == hi {
			return nil, nil, fmt.Errorf("%w: constant predictions cannot be normalized", estimator.ErrDataShape)
		}
		scaled := make([]float64, len(yProb))
		for i, v := range yProb {
			scaled[i] = (v - lo) / (hi - lo)
		}
		yProb = scaled
	} else if floats.Min(yProb) < 0 || floats.Max(yProb) > 1 {
		return nil, nil, fmt.Errorf("%w: predictions outside [0, 1] and normalize not set", estimator.ErrDataShape)
	}

	// Bin edges span [0, 1+1e-8) so a prediction of exactly 1 lands in
	// the last bin instead of its own.
	step := (1 + 1e-8) / float64(bins)
	sums := make([]float64, bins)
	trues := make([]float64, bins)
	counts := make([]int, bins)
	for i, p := range yProb {
		b := int(p / step)
		if b >= bins {
			b = bins - 1
		}
		sums[b] += p
		trues[b] += yTrue[i]
		counts[b]++
	}

	for b := range counts {
		if counts[b] == 0 {
			continue
		}
		probTrue = append(probTrue, trues[b]/float64(counts[b]))
		probPred = append(probPred, sums[b]/float64(counts[b]))
	}
	return probTrue, probPred, nil
}

// Package cutoff selects an optimal binary decision threshold by ROC
// analysis: a CutoffClassifier wraps a base classifier, derives a score
// cutoff from the ROC curve under a configurable policy, and predicts
// with that cutoff instead of the classifier's default.
package cutoff

import (
	"fmt"
	"sort"

	"github.com/PGryllos/scikit-learn/estimator"
)

// Point is one operating point of a ROC curve: the false and true
// positive rates achieved by classifying samples scoring at least
// Threshold as positive.
type Point struct {
	FPR       float64
	TPR       float64
	Threshold float64
}

// Curve builds the ROC curve for labels y and raw scores, with posLabel
// marking the positive class. Points are ordered by decreasing
// threshold, starting at (0, 0) for a threshold above every score and
// approaching (1, 1); both rates are non-decreasing along the curve.
// Samples with equal scores collapse into a single point using the
// cumulative counts of the whole tie group.
//
// It fails with ErrDataShape when the lengths differ or fewer than two
// distinct label values are present.
func Curve(y, scores []float64, posLabel float64) ([]Point, error) {
	if len(y) != len(scores) {
		return nil, fmt.Errorf("%w: %d labels for %d scores", estimator.ErrDataShape, len(y), len(scores))
	}

	var nPos, nNeg float64
	for _, label := range y {
		if label == posLabel {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil, fmt.Errorf("%w: need both classes to build a ROC curve", estimator.ErrDataShape)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	points := []Point{{FPR: 0, TPR: 0, Threshold: scores[order[0]] + 1}}
	var tp, fp float64
	for i, idx := range order {
		if y[idx] == posLabel {
			tp++
		} else {
			fp++
		}
		// Emit only once per distinct score so a tie group is never
		// split across two points.
		if i+1 < len(order) && scores[order[i+1]] == scores[idx] {
			continue
		}
		points = append(points, Point{
			FPR:       fp / nNeg,
			TPR:       tp / nPos,
			Threshold: scores[idx],
		})
	}
	return points, nil
}

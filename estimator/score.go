package estimator

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Scorer binds exactly one scoring capability of a classifier. The
// resolution happens once, at bind time, so every later extraction uses
// the same capability regardless of what else the classifier implements.
type Scorer struct {
	clf      Classifier
	decision DecisionScorer
	proba    ProbaScorer
}

// ResolveScorer selects the scoring capability of clf according to mode.
// In auto mode DecisionFunction takes precedence over PredictProba; an
// explicit mode requires exactly that capability. It returns
// ErrUnsupportedEstimator when the required capability is missing and
// ErrInvalidConfiguration for an unknown mode.
func ResolveScorer(clf Classifier, mode ScoringMode) (*Scorer, error) {
	d, hasDecision := clf.(DecisionScorer)
	p, hasProba := clf.(ProbaScorer)

	switch mode {
	case ScoreAuto, "":
		if hasDecision {
			return &Scorer{clf: clf, decision: d}, nil
		}
		if hasProba {
			return &Scorer{clf: clf, proba: p}, nil
		}
		return nil, ErrUnsupportedEstimator
	case ScoreDecisionFunction:
		if !hasDecision {
			return nil, fmt.Errorf("%w: decision_function requested", ErrUnsupportedEstimator)
		}
		return &Scorer{clf: clf, decision: d}, nil
	case ScoreProba:
		if !hasProba {
			return nil, fmt.Errorf("%w: predict_proba requested", ErrUnsupportedEstimator)
		}
		return &Scorer{clf: clf, proba: p}, nil
	default:
		return nil, fmt.Errorf("%w: unknown scoring mode %q", ErrInvalidConfiguration, mode)
	}
}

// Binary returns one raw score per sample for a binary classifier,
// relative to the class at posIndex (0 or 1) so that higher always means
// more positive. Decision margins are negated when the target class sits
// in the negative slot; probability scores use the matching column.
func (s *Scorer) Binary(x *mat.Dense, posIndex int) ([]float64, error) {
	n, _ := x.Dims()
	out := make([]float64, n)

	if s.decision != nil {
		df, err := s.decision.DecisionFunction(x)
		if err != nil {
			return nil, err
		}
		rows, cols := df.Dims()
		if rows != n || cols != 1 {
			return nil, fmt.Errorf("%w: expected a single decision column, got %dx%d", ErrDataShape, rows, cols)
		}
		for i := range out {
			out[i] = df.At(i, 0)
			if posIndex == 0 {
				out[i] = -out[i]
			}
		}
		return out, nil
	}

	pm, err := s.proba.PredictProba(x)
	if err != nil {
		return nil, err
	}
	rows, cols := pm.Dims()
	col, err := s.probaColumn(posIndex, cols)
	if err != nil {
		return nil, err
	}
	if rows != n || col >= cols {
		return nil, fmt.Errorf("%w: probability matrix is %dx%d, want column %d", ErrDataShape, rows, cols, col)
	}
	for i := range out {
		out[i] = pm.At(i, col)
	}
	return out, nil
}

// probaColumn maps posIndex, which counts classes in ascending label
// order, onto the classifier's own column ordering. The two agree for
// most classifiers, but Classes() is not required to be sorted.
func (s *Scorer) probaColumn(posIndex, cols int) (int, error) {
	labels := s.clf.Classes()
	if len(labels) != cols || posIndex >= len(labels) {
		return posIndex, nil
	}
	sorted := slices.Clone(labels)
	slices.Sort(sorted)
	want := sorted[posIndex]
	for j, label := range labels {
		if label == want {
			return j, nil
		}
	}
	return 0, fmt.Errorf("%w: class %v has no probability column", ErrDataShape, want)
}

// BinaryScores resolves the scoring capability of clf and extracts one
// raw score per sample for the class at posIndex. It is the one-shot
// form of ResolveScorer followed by Scorer.Binary.
func BinaryScores(clf Classifier, x *mat.Dense, posIndex int, mode ScoringMode) ([]float64, error) {
	s, err := ResolveScorer(clf, mode)
	if err != nil {
		return nil, err
	}
	return s.Binary(x, posIndex)
}

// ClassScores returns the per-class score matrix used for one-vs-rest
// calibration together with the index, within classes, of the class each
// column scores. For a binary problem the result is a single column for
// the positive class; for multiclass there is one column per classifier
// class, mapped onto the shared class set.
func (s *Scorer) ClassScores(x *mat.Dense, classes *ClassSet) (*mat.Dense, []int, error) {
	var scores *mat.Dense
	if s.decision != nil {
		df, err := s.decision.DecisionFunction(x)
		if err != nil {
			return nil, nil, err
		}
		scores = df
	} else {
		pm, err := s.proba.PredictProba(x)
		if err != nil {
			return nil, nil, err
		}
		if classes.Len() == 2 {
			// Only the positive-class column carries information; the
			// complement is derived as 1-p after calibration.
			n, cols := pm.Dims()
			j, err := s.probaColumn(1, cols)
			if err != nil {
				return nil, nil, err
			}
			col := mat.NewDense(n, 1, nil)
			col.SetCol(0, mat.Col(nil, j, pm))
			scores = col
		} else {
			scores = pm
		}
	}

	_, m := scores.Dims()
	clfClasses := s.clf.Classes()
	cols := make([]int, m)
	if m == 1 {
		// A single score column always calibrates the positive class.
		cols[0] = 1
		return scores, cols, nil
	}
	if len(clfClasses) != m {
		return nil, nil, fmt.Errorf("%w: %d score columns for %d classifier classes", ErrDataShape, m, len(clfClasses))
	}
	for j, label := range clfClasses {
		k, ok := classes.Index(label)
		if !ok {
			return nil, nil, fmt.Errorf("%w: classifier class %v not in the calibration class set", ErrDataShape, label)
		}
		cols[j] = k
	}
	return scores, cols, nil
}

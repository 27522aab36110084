// Package estimator defines the contracts between the calibration layer
// and the classifiers it post-processes: the base Classifier interface,
// the optional scoring and weighting capabilities, and the score
// extraction rules shared by threshold selection and probability
// calibration.
package estimator

import (
	"gonum.org/v1/gonum/mat"
)

// Classifier is the minimal contract a base estimator must satisfy.
// A calibrator never trains a classifier from scratch; it only refits
// fresh instances obtained through Prototype and reads scores through
// the optional capability interfaces below.
type Classifier interface {
	// Fit trains the classifier on the feature matrix x and the target
	// labels y. It must leave the receiver in a state where Classes and
	// at least one scoring capability are usable.
	Fit(x *mat.Dense, y []float64) error

	// Classes returns the learned class labels in the classifier's own
	// column ordering. The calibration layer maps this ordering onto its
	// fixed class set; the two need not agree.
	Classes() []float64
}

// DecisionScorer exposes raw decision margins. Binary classifiers return
// a single column holding the margin of the positive class; multiclass
// classifiers return one column per class in Classes order.
type DecisionScorer interface {
	DecisionFunction(x *mat.Dense) (*mat.Dense, error)
}

// ProbaScorer exposes per-class probability estimates as an n×k matrix
// with columns in Classes order.
type ProbaScorer interface {
	PredictProba(x *mat.Dense) (*mat.Dense, error)
}

// WeightedClassifier is implemented by classifiers that support
// per-sample weights during fitting. When a classifier does not
// implement it, sample weights are applied to the calibration maps only.
type WeightedClassifier interface {
	FitWeighted(x *mat.Dense, y, weights []float64) error
}

// Prototype produces independent, unfitted classifier instances sharing
// the receiver's configuration. Cross-validated fitting requires it:
// each fold trains its own fresh instance, never a mutated copy of a
// shared one.
type Prototype interface {
	New() Classifier
}

// ScoringMode selects which capability is used to extract raw scores.
type ScoringMode string

const (
	// ScoreAuto tries DecisionFunction first and falls back to
	// PredictProba when the classifier does not expose margins.
	ScoreAuto ScoringMode = "auto"

	// ScoreDecisionFunction requires the DecisionScorer capability.
	ScoreDecisionFunction ScoringMode = "decision_function"

	// ScoreProba requires the ProbaScorer capability.
	ScoreProba ScoringMode = "predict_proba"
)

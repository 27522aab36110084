package estimator

import "errors"

// Common errors shared by the calibration and threshold-selection
// packages. Call sites wrap them with fmt.Errorf and %w so callers can
// match with errors.Is.
var (
	// ErrUnsupportedEstimator indicates that the classifier exposes
	// neither DecisionFunction nor PredictProba, or lacks the capability
	// an explicit scoring mode asked for.
	ErrUnsupportedEstimator = errors.New("estimator supports neither decision_function nor predict_proba")

	// ErrInvalidConfiguration indicates an unknown enum value or a
	// missing/out-of-range numeric option.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDataShape indicates malformed input data: mismatched lengths,
	// a non-binary target where a binary one is required, or
	// probabilities outside [0, 1].
	ErrDataShape = errors.New("invalid data shape")

	// ErrInsufficientData indicates that at least one class has fewer
	// samples than the requested number of cross-validation folds.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInfeasibleConstraint indicates that no ROC point satisfies the
	// requested rate bound.
	ErrInfeasibleConstraint = errors.New("no point satisfies the requested constraint")

	// ErrNotFitted indicates that Fit has not been called, or failed,
	// before a prediction method was used.
	ErrNotFitted = errors.New("estimator is not fitted")
)

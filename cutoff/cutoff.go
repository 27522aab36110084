package cutoff

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/PGryllos/scikit-learn/estimator"
	"github.com/PGryllos/scikit-learn/split"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Method is the policy for picking one threshold off the ROC curve.
type Method string

const (
	// MethodROC picks the point with the smallest euclidean distance to
	// the ideal corner (0, 1), minimizing fpr² + (1-tpr)².
	MethodROC Method = "roc"

	// MethodMaxTPR maximizes the true positive rate among points whose
	// true negative rate is at least Bound.
	MethodMaxTPR Method = "max_tpr"

	// MethodMaxTNR maximizes the true negative rate among points whose
	// true positive rate is at least Bound.
	MethodMaxTNR Method = "max_tnr"
)

// Config controls threshold selection. Bound is required, in [0, 1],
// for max_tpr and max_tnr and ignored for roc. A nil PosLabel means the
// larger of the two class labels is treated as positive.
type Config struct {
	Method Method `yaml:"method" validate:"required,oneof=roc max_tpr max_tnr"`

	// Scoring selects the capability used to extract raw scores.
	Scoring estimator.ScoringMode `yaml:"scoring" validate:"omitempty,oneof=auto decision_function predict_proba"`

	// Bound is the minimum TNR (max_tpr) or minimum TPR (max_tnr).
	Bound *float64 `yaml:"bound" validate:"omitempty,gte=0,lte=1"`

	// Folds is the number of cross-validation folds. Ignored when
	// Prefit is set.
	Folds int `yaml:"folds" validate:"omitempty,min=2"`

	// Prefit declares the base classifier already trained; the whole
	// input of Fit is then used for the single threshold selection.
	Prefit bool `yaml:"prefit"`

	// PosLabel overrides which class label counts as positive.
	PosLabel *float64 `yaml:"pos_label"`
}

// DefaultConfig returns the roc policy with auto scoring over 3 folds.
func DefaultConfig() Config {
	return Config{Method: MethodROC, Scoring: estimator.ScoreAuto, Folds: 3}
}

// CutoffClassifier calibrates the decision threshold of a binary
// classifier without touching its probabilities. In cross-validated mode
// the threshold is the arithmetic mean of per-fold thresholds, each
// derived from a fresh clone scored on held-out data; the classifier
// exposed for prediction is refit once on the entire dataset and never
// used to derive the threshold itself.
type CutoffClassifier struct {
	base     estimator.Classifier
	splitter split.Splitter
	cfg      Config

	classes   *estimator.ClassSet
	posIndex  int
	scorer    *estimator.Scorer
	threshold float64
	fitted    bool
}

// Option customizes classifier construction.
type Option func(*CutoffClassifier)

// WithSplitter injects a cross-validation splitter, replacing the
// default stratified k-fold generator.
func WithSplitter(s split.Splitter) Option {
	return func(cc *CutoffClassifier) { cc.splitter = s }
}

// New builds an unfitted CutoffClassifier around base. All configuration
// problems surface here: an unknown method or scoring mode, a missing or
// out-of-range bound for the rate-constrained policies, and a base
// classifier without the Prototype capability in cross-validated mode.
func New(base estimator.Classifier, cfg Config, opts ...Option) (*CutoffClassifier, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: base classifier is required", estimator.ErrInvalidConfiguration)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", estimator.ErrInvalidConfiguration, err)
	}
	if (cfg.Method == MethodMaxTPR || cfg.Method == MethodMaxTNR) && cfg.Bound == nil {
		return nil, fmt.Errorf("%w: method %s requires a bound in [0, 1]", estimator.ErrInvalidConfiguration, cfg.Method)
	}
	if cfg.Folds == 0 {
		cfg.Folds = DefaultConfig().Folds
	}
	if !cfg.Prefit {
		if _, ok := base.(estimator.Prototype); !ok {
			return nil, fmt.Errorf("%w: cross-validated threshold selection needs a Prototype base classifier",
				estimator.ErrInvalidConfiguration)
		}
	}

	cc := &CutoffClassifier{base: base, cfg: cfg}
	for _, opt := range opts {
		opt(cc)
	}
	if cc.splitter == nil {
		cc.splitter = split.StratifiedKFold{K: cfg.Folds}
	}
	return cc, nil
}

// NewFromConfig builds a CutoffClassifier from a raw configuration map,
// overlaying the provided keys on DefaultConfig.
func NewFromConfig(base estimator.Classifier, raw map[string]any, opts ...Option) (*CutoffClassifier, error) {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return New(base, cfg, opts...)
}

// Threshold returns the selected decision threshold. It is only
// meaningful after a successful Fit.
func (cc *CutoffClassifier) Threshold() float64 { return cc.threshold }

// Classes returns the two class labels in ascending order.
func (cc *CutoffClassifier) Classes() []float64 {
	if cc.classes == nil {
		return nil
	}
	return cc.classes.Labels()
}

// Fit selects the decision threshold. The target must be binary. In
// prefit mode the provided classifier is scored on the whole input; in
// cross-validated mode each split trains a fresh clone on the train
// indices and contributes the threshold selected on the test indices,
// and the final threshold is their arithmetic mean.
func (cc *CutoffClassifier) Fit(ctx context.Context, x *mat.Dense, y []float64) error {
	n, _ := x.Dims()
	if n != len(y) {
		return fmt.Errorf("%w: %d rows for %d labels", estimator.ErrDataShape, n, len(y))
	}

	classes := estimator.NewClassSet(y)
	if classes.Len() != 2 {
		return fmt.Errorf("%w: expected a binary target, got %d classes", estimator.ErrDataShape, classes.Len())
	}

	posIndex := 1
	if cc.cfg.PosLabel != nil {
		idx, ok := classes.Index(*cc.cfg.PosLabel)
		if !ok {
			return fmt.Errorf("%w: pos_label %v is not one of the target labels",
				estimator.ErrInvalidConfiguration, *cc.cfg.PosLabel)
		}
		posIndex = idx
	}

	encoded, err := classes.Indices(y)
	if err != nil {
		return err
	}
	y01 := make([]float64, len(encoded))
	for i, v := range encoded {
		y01[i] = float64(v)
	}

	if cc.cfg.Prefit {
		threshold, err := cc.selectThreshold(ctx, cc.base, x, y01, posIndex)
		if err != nil {
			return err
		}
		return cc.bind(classes, posIndex, threshold)
	}

	splits, err := cc.splitter.Split(x, y01)
	if err != nil {
		return err
	}

	proto := cc.base.(estimator.Prototype)
	var sum float64
	for i, fold := range splits {
		if err := ctx.Err(); err != nil {
			return err
		}
		clone := proto.New()
		xTrain, yTrain, _ := split.Rows(x, y01, nil, fold.Train)
		if err := clone.Fit(xTrain, yTrain); err != nil {
			return fmt.Errorf("fold %d: %w", i, err)
		}
		xTest, yTest, _ := split.Rows(x, y01, nil, fold.Test)
		threshold, err := cc.selectThreshold(ctx, clone, xTest, yTest, posIndex)
		if err != nil {
			return fmt.Errorf("fold %d: %w", i, err)
		}
		sum += threshold
	}

	// The classifier used at prediction time sees all the data; the
	// threshold above never came from it.
	if err := cc.base.Fit(x, y01); err != nil {
		return err
	}
	return cc.bind(classes, posIndex, sum/float64(len(splits)))
}

// bind freezes the fitted state, resolving the scoring capability of the
// exposed classifier once.
func (cc *CutoffClassifier) bind(classes *estimator.ClassSet, posIndex int, threshold float64) error {
	scorer, err := estimator.ResolveScorer(cc.base, cc.cfg.Scoring)
	if err != nil {
		return err
	}
	cc.classes = classes
	cc.posIndex = posIndex
	cc.scorer = scorer
	cc.threshold = threshold
	cc.fitted = true
	return nil
}

// selectThreshold scores clf on (x, y01) and applies the configured
// policy to the resulting ROC curve.
func (cc *CutoffClassifier) selectThreshold(
	ctx context.Context,
	clf estimator.Classifier,
	x *mat.Dense, y01 []float64,
	posIndex int,
) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	scores, err := estimator.BinaryScores(clf, x, posIndex, cc.cfg.Scoring)
	if err != nil {
		return 0, err
	}
	curve, err := Curve(y01, scores, float64(posIndex))
	if err != nil {
		return 0, err
	}
	var bound float64
	if cc.cfg.Bound != nil {
		bound = *cc.cfg.Bound
	}
	return SelectThreshold(curve, cc.cfg.Method, bound)
}

// SelectThreshold applies a selection policy over a ROC curve.
//
// Ties are resolved deterministically: roc keeps the first optimum in
// decreasing-threshold order, max_tpr prefers the smallest false
// positive rate among equally sensitive points, and max_tnr mirrors
// that with the largest true positive rate among equally specific ones.
func SelectThreshold(curve []Point, method Method, bound float64) (float64, error) {
	if len(curve) == 0 {
		return 0, fmt.Errorf("%w: empty ROC curve", estimator.ErrDataShape)
	}

	switch method {
	case MethodROC:
		best := 0
		bestDist := curve[0].FPR*curve[0].FPR + (1-curve[0].TPR)*(1-curve[0].TPR)
		for i, p := range curve[1:] {
			d := p.FPR*p.FPR + (1-p.TPR)*(1-p.TPR)
			if d < bestDist {
				bestDist = d
				best = i + 1
			}
		}
		return curve[best].Threshold, nil

	case MethodMaxTPR:
		best := -1
		for i, p := range curve {
			if 1-p.FPR < bound {
				continue
			}
			if best < 0 || p.TPR > curve[best].TPR ||
				(p.TPR == curve[best].TPR && p.FPR < curve[best].FPR) {
				best = i
			}
		}
		if best < 0 {
			return 0, fmt.Errorf("%w: no ROC point has TNR >= %v", estimator.ErrInfeasibleConstraint, bound)
		}
		return curve[best].Threshold, nil

	case MethodMaxTNR:
		best := -1
		for i, p := range curve {
			if p.TPR < bound {
				continue
			}
			if best < 0 || p.FPR < curve[best].FPR ||
				(p.FPR == curve[best].FPR && p.TPR > curve[best].TPR) {
				best = i
			}
		}
		if best < 0 {
			return 0, fmt.Errorf("%w: no ROC point has TPR >= %v", estimator.ErrInfeasibleConstraint, bound)
		}
		return curve[best].Threshold, nil

	default:
		return 0, fmt.Errorf("%w: unknown method %q", estimator.ErrInvalidConfiguration, method)
	}
}

// Predict classifies each sample by comparing its raw score with the
// calibrated threshold. Scoring at least the threshold means the
// positive class, matching how the ROC curve counts its rates.
func (cc *CutoffClassifier) Predict(x *mat.Dense) ([]float64, error) {
	if !cc.fitted {
		return nil, estimator.ErrNotFitted
	}
	scores, err := cc.scorer.Binary(x, cc.posIndex)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		if s >= cc.threshold {
			out[i] = cc.classes.Label(cc.posIndex)
		} else {
			out[i] = cc.classes.Label(1 - cc.posIndex)
		}
	}
	return out, nil
}

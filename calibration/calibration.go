package calibration

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/PGryllos/scikit-learn/estimator"
	"github.com/PGryllos/scikit-learn/split"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Config controls how a CalibratedEnsemble is fitted. It is immutable
// after construction and validated eagerly, before any fold work starts.
type Config struct {
	// Method selects the calibration map family: "sigmoid" or
	// "isotonic".
	Method Method `yaml:"method" validate:"required,oneof=sigmoid isotonic"`

	// Folds is the number of cross-validation folds. Ignored when
	// Prefit is set.
	Folds int `yaml:"folds" validate:"omitempty,min=2"`

	// Prefit declares the base classifier already trained; the whole
	// input of Fit then acts as the single calibration fold.
	Prefit bool `yaml:"prefit"`

	// Parallelism caps how many folds fit concurrently. The default of
	// 1 keeps fitting fully sequential; fold fits are independent, so
	// larger values only change wall-clock time, never the result.
	Parallelism int `yaml:"parallelism" validate:"omitempty,min=1"`
}

// DefaultConfig returns sigmoid calibration over 3 folds, fitted
// sequentially.
func DefaultConfig() Config {
	return Config{Method: MethodSigmoid, Folds: 3, Parallelism: 1}
}

// CalibratedEnsemble fits per-fold probability calibrators over a base
// classifier and averages their outputs at prediction time. The base
// classifier itself is never modified.
type CalibratedEnsemble struct {
	base     estimator.Classifier
	splitter split.Splitter
	cfg      Config

	classes *estimator.ClassSet
	folds   []*foldCalibrator
}

// Option customizes ensemble construction.
type Option func(*CalibratedEnsemble)

// WithSplitter injects a cross-validation splitter, replacing the
// default stratified k-fold generator.
func WithSplitter(s split.Splitter) Option {
	return func(ce *CalibratedEnsemble) { ce.splitter = s }
}

// New builds an unfitted ensemble around base. In cross-validated mode
// base must implement estimator.Prototype so each fold trains a fresh
// instance; in prefit mode base must already be trained. Configuration
// problems are reported here, never deferred to Fit.
func New(base estimator.Classifier, cfg Config, opts ...Option) (*CalibratedEnsemble, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: base classifier is required", estimator.ErrInvalidConfiguration)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", estimator.ErrInvalidConfiguration, err)
	}
	if cfg.Folds == 0 {
		cfg.Folds = DefaultConfig().Folds
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = 1
	}
	if !cfg.Prefit {
		if _, ok := base.(estimator.Prototype); !ok {
			return nil, fmt.Errorf("%w: cross-validated calibration needs a Prototype base classifier",
				estimator.ErrInvalidConfiguration)
		}
	}

	ce := &CalibratedEnsemble{base: base, cfg: cfg}
	for _, opt := range opts {
		opt(ce)
	}
	if ce.splitter == nil {
		ce.splitter = split.StratifiedKFold{K: cfg.Folds}
	}
	return ce, nil
}

// NewFromConfig builds an ensemble from a raw configuration map, the
// boundary adapter for YAML/JSON pipelines. Unknown keys are rejected by
// the subsequent validation, and defaults fill anything unset.
func NewFromConfig(base estimator.Classifier, raw map[string]any, opts ...Option) (*CalibratedEnsemble, error) {
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

// Classes returns the ordered class labels fixed at fit time.
func (ce *CalibratedEnsemble) Classes() []float64 {
	if ce.classes == nil {
		return nil
	}
	return ce.classes.Labels()
}

// Fit builds the ensemble. In prefit mode the provided data is entirely
// the calibration set for the single fold. In cross-validated mode each
// split trains a fresh clone on the train indices and calibrates its
// maps on the test indices only; train and calibration data never
// overlap within a fold. Any fold failure aborts the whole fit and
// leaves the ensemble unfitted.
func (ce *CalibratedEnsemble) Fit(ctx context.Context, x *mat.Dense, y, weights []float64) error {
	n, _ := x.Dims()
	if n != len(y) {
		return fmt.Errorf("%w: %d rows for %d labels", estimator.ErrDataShape, n, len(y))
	}
	if weights != nil && len(weights) != n {
		return fmt.Errorf("%w: %d weights for %d samples", estimator.ErrDataShape, len(weights), n)
	}

	classes := estimator.NewClassSet(y)
	if classes.Len() < 2 {
		return fmt.Errorf("%w: need at least 2 classes, got %d", estimator.ErrDataShape, classes.Len())
	}

	if ce.cfg.Prefit {
		fold, err := fitFoldCalibrator(ce.base, ce.cfg.Method, classes, x, y, weights)
		if err != nil {
			return err
		}
		ce.classes = classes
		ce.folds = []*foldCalibrator{fold}
		return nil
	}

	splits, err := ce.splitter.Split(x, y)
	if err != nil {
		return err
	}

	// Every class needs at least one sample in every test fold. The
	// bound comes from the splitter's actual fold count, which an
	// injected splitter may set independently of Config.Folds.
	counts := make([]int, classes.Len())
	for _, label := range y {
		k, _ := classes.Index(label)
		counts[k]++
	}
	for k, count := range counts {
		if count < len(splits) {
			return fmt.Errorf("%w: class %v has %d samples for %d-fold calibration",
				estimator.ErrInsufficientData, classes.Label(k), count, len(splits))
		}
	}

	proto := ce.base.(estimator.Prototype)
	folds := make([]*foldCalibrator, len(splits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ce.cfg.Parallelism)
	for i, fold := range splits {
		i, fold := i, fold
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fc, err := fitFold(proto, ce.cfg.Method, classes, x, y, weights, fold)
			if err != nil {
				return fmt.Errorf("fold %d: %w", i, err)
			}
			folds[i] = fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ce.classes = classes
	ce.folds = folds
	return nil
}

// fitFold is the pure per-fold unit of work: train a fresh classifier on
// the fold's train rows and calibrate its maps on the test rows. It
// touches no ensemble state, so folds can run in any order or in
// parallel.
func fitFold(
	proto estimator.Prototype,
	method Method,
	classes *estimator.ClassSet,
	x *mat.Dense, y, weights []float64,
	fold split.Fold,
) (*foldCalibrator, error) {
	clf := proto.New()

	xTrain, yTrain, wTrain := split.Rows(x, y, weights, fold.Train)
	if wc, ok := clf.(estimator.WeightedClassifier); ok && wTrain != nil {
		if err := wc.FitWeighted(xTrain, yTrain, wTrain); err != nil {
			return nil, err
		}
	} else {
		if err := clf.Fit(xTrain, yTrain); err != nil {
			return nil, err
		}
	}

	xTest, yTest, wTest := split.Rows(x, y, weights, fold.Test)
	return fitFoldCalibrator(clf, method, classes, xTest, yTest, wTest)
}

// PredictProba returns the n×k matrix of calibrated class probabilities:
// the uniform average of the fold calibrators' outputs, renormalized per
// row. Rows that sum to zero fall back to the uniform distribution, and
// values that overshoot 1 by at most 1e-5 are clamped to exactly 1;
// larger overshoots are left alone as a data integrity signal.
func (ce *CalibratedEnsemble) PredictProba(x *mat.Dense) (*mat.Dense, error) {
	if ce.folds == nil {
		return nil, estimator.ErrNotFitted
	}
	n, _ := x.Dims()
	k := ce.classes.Len()

	mean := mat.NewDense(n, k, nil)
	for _, fold := range ce.folds {
		proba, err := fold.predictProba(x)
		if err != nil {
			return nil, err
		}
		mean.Add(mean, proba)
	}
	mean.Scale(1/float64(len(ce.folds)), mean)

	if k == 2 {
		// Recompute the complement so the two columns sum to 1 exactly,
		// not merely up to the rounding of the per-fold averages.
		for i := 0; i < n; i++ {
			mean.Set(i, 0, 1-mean.At(i, 1))
		}
		return mean, nil
	}
	normalizeRows(mean)
	return mean, nil
}

// Predict returns the most probable class label per sample, ties broken
// by the lowest class index.
func (ce *CalibratedEnsemble) Predict(x *mat.Dense) ([]float64, error) {
	proba, err := ce.PredictProba(x)
	if err != nil {
		return nil, err
	}
	n, k := proba.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		best := 0
		for c := 1; c < k; c++ {
			if proba.At(i, c) > proba.At(i, best) {
				best = c
			}
		}
		out[i] = ce.classes.Label(best)
	}
	return out, nil
}

// foldCalibrator bundles one trained classifier with its per-class
// calibration maps. The binary case stores exactly one map; the
// complementary class is derived as 1-p.
type foldCalibrator struct {
	clf     estimator.Classifier
	scorer  *estimator.Scorer
	classes *estimator.ClassSet
	cols    []int // class index calibrated by each map
	maps    []Map
}

// fitFoldCalibrator calibrates one map per score column of the already
// trained clf against the one-vs-rest targets from y.
func fitFoldCalibrator(
	clf estimator.Classifier,
	method Method,
	classes *estimator.ClassSet,
	x *mat.Dense, y, weights []float64,
) (*foldCalibrator, error) {
	scorer, err := estimator.ResolveScorer(clf, estimator.ScoreAuto)
	if err != nil {
		return nil, err
	}

	scores, cols, err := scorer.ClassScores(x, classes)
	if err != nil {
		return nil, err
	}

	maps := make([]Map, len(cols))
	for j, k := range cols {
		target, err := classes.Binarize(y, k)
		if err != nil {
			return nil, err
		}
		m, err := newMap(method)
		if err != nil {
			return nil, err
		}
		if err := m.Fit(mat.Col(nil, j, scores), target, weights); err != nil {
			return nil, fmt.Errorf("class %v: %w", classes.Label(k), err)
		}
		maps[j] = m
	}

	return &foldCalibrator{
		clf:     clf,
		scorer:  scorer,
		classes: classes,
		cols:    cols,
		maps:    maps,
	}, nil
}

// predictProba computes this fold's calibrated probability matrix.
func (fc *foldCalibrator) predictProba(x *mat.Dense) (*mat.Dense, error) {
	scores, cols, err := fc.scorer.ClassScores(x, fc.classes)
	if err != nil {
		return nil, err
	}

	n, _ := x.Dims()
	k := fc.classes.Len()
	proba := mat.NewDense(n, k, nil)
	for j, c := range cols {
		p, err := fc.maps[j].Predict(mat.Col(nil, j, scores))
		if err != nil {
			return nil, err
		}
		proba.SetCol(c, p)
	}

	if k == 2 {
		for i := 0; i < n; i++ {
			proba.Set(i, 0, 1-proba.At(i, 1))
		}
		return proba, nil
	}
	normalizeRows(proba)
	return proba, nil
}

// normalizeRows turns each row into a probability distribution: zero-sum
// rows become uniform, every other row is divided by its sum, and values
// in (1, 1+1e-5] are clamped down to exactly 1. Values beyond that
// tolerance pass through untouched.
func normalizeRows(m *mat.Dense) {
	n, k := m.Dims()
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < k; c++ {
			sum += m.At(i, c)
		}
		if sum == 0 {
			for c := 0; c < k; c++ {
				m.Set(i, c, 1/float64(k))
			}
			continue
		}
		for c := 0; c < k; c++ {
			v := m.At(i, c) / sum
			if v > 1 && v <= 1+1e-5 {
				v = 1
			}
			m.Set(i, c, v)
		}
	}
}

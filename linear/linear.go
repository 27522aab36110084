// Package linear provides a small, fully deterministic logistic
// regression classifier. It exists as the explicit default base
// estimator for calibration and threshold selection: construction is
// always explicit and injected, and cross-validated fitting obtains
// fresh instances through the Prototype capability rather than copying
// a shared one.
package linear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/PGryllos/scikit-learn/estimator"
)

// Config holds the gradient-descent hyperparameters. Weights start at
// zero and no randomness is involved, so two classifiers with the same
// config and data learn identical parameters.
type Config struct {
	// LearningRate is the fixed step size for full-batch gradient
	// descent.
	LearningRate float64 `yaml:"learning_rate" validate:"gt=0"`

	// Epochs is the number of full passes over the data.
	Epochs int `yaml:"epochs" validate:"min=1"`

	// L2 is the ridge penalty applied to the weights (not the bias).
	L2 float64 `yaml:"l2" validate:"gte=0"`
}

// DefaultConfig returns hyperparameters that converge on the small,
// well-scaled datasets calibration is typically exercised with.
func DefaultConfig() Config {
	return Config{LearningRate: 0.1, Epochs: 500, L2: 1e-4}
}

// Classifier is a one-vs-rest logistic regression model. For a binary
// target a single weight vector is learned for the larger class label;
// for a multiclass target one binary model per class.
type Classifier struct {
	cfg     Config
	classes *estimator.ClassSet
	w       [][]float64 // one weight vector per one-vs-rest model
	b       []float64   // one bias per model
}

var (
	_ estimator.Classifier         = (*Classifier)(nil)
	_ estimator.DecisionScorer     = (*Classifier)(nil)
	_ estimator.ProbaScorer        = (*Classifier)(nil)
	_ estimator.WeightedClassifier = (*Classifier)(nil)
	_ estimator.Prototype          = (*Classifier)(nil)
)

// New returns an unfitted classifier with the given hyperparameters.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// NewDefault returns an unfitted classifier with DefaultConfig.
func NewDefault() *Classifier { return New(DefaultConfig()) }

// New produces a fresh, unfitted instance sharing the receiver's
// hyperparameters. It implements estimator.Prototype.
func (c *Classifier) New() estimator.Classifier { return New(c.cfg) }

// Fit trains the model with all samples equally weighted.
func (c *Classifier) Fit(x *mat.Dense, y []float64) error {
	return c.FitWeighted(x, y, nil)
}

// FitWeighted trains the model with per-sample weights. A nil weights
// slice means equal weighting.
func (c *Classifier) FitWeighted(x *mat.Dense, y, weights []float64) error {
	n, d := x.Dims()
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

	// One binary model per class; a binary target only needs the model
	// for the larger label since the other is its complement.
	models := classes.Len()
	if models == 2 {
		models = 1
	}

	c.classes = classes
	c.w = make([][]float64, models)
	c.b = make([]float64, models)
	for m := 0; m < models; m++ {
		target := m
		if classes.Len() == 2 {
			target = 1
		}
		t, err := classes.Binarize(y, target)
		if err != nil {
			return err
		}
		c.w[m], c.b[m] = c.descend(x, t, weights, n, d)
	}
	return nil
}

// descend runs full-batch gradient descent on the binary cross-entropy
// loss for indicator targets t.
func (c *Classifier) descend(x *mat.Dense, t, weights []float64, n, d int) ([]float64, float64) {
	w := make([]float64, d)
	var b float64
	grad := make([]float64, d)

	totalWeight := float64(n)
	if weights != nil {
		totalWeight = floats.Sum(weights)
	}

	for e := 0; e < c.cfg.Epochs; e++ {
		for j := range grad {
			grad[j] = c.cfg.L2 * w[j]
		}
		var gradB float64
		for i := 0; i < n; i++ {
			row := x.RawRowView(i)
			p := sigmoid(floats.Dot(w, row) + b)
			g := p - t[i]
			if weights != nil {
				g *= weights[i]
			}
			floats.AddScaled(grad, g, row)
			gradB += g
		}
		step := c.cfg.LearningRate / totalWeight
		floats.AddScaled(w, -step, grad)
		b -= step * gradB
	}
	return w, b
}

// Classes returns the learned class labels in ascending order.
func (c *Classifier) Classes() []float64 {
	if c.classes == nil {
		return nil
	}
	return c.classes.Labels()
}

// DecisionFunction returns the raw margins w·x+b: a single column for a
// binary target, one column per class otherwise.
func (c *Classifier) DecisionFunction(x *mat.Dense) (*mat.Dense, error) {
	if c.classes == nil {
		return nil, estimator.ErrNotFitted
	}
	n, d := x.Dims()
	if d != len(c.w[0]) {
		return nil, fmt.Errorf("%w: %d features, model has %d", estimator.ErrDataShape, d, len(c.w[0]))
	}
	out := mat.NewDense(n, len(c.w), nil)
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		for m := range c.w {
			out.Set(i, m, floats.Dot(c.w[m], row)+c.b[m])
		}
	}
	return out, nil
}

// PredictProba returns an n×k probability matrix. The binary case uses
// the logistic of the single margin and its complement; the multiclass
// case normalizes the one-vs-rest logistics by their row sum.
func (c *Classifier) PredictProba(x *mat.Dense) (*mat.Dense, error) {
	df, err := c.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	n, _ := x.Dims()
	k := c.classes.Len()
	out := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		if k == 2 {
			p := sigmoid(df.At(i, 0))
			out.Set(i, 0, 1-p)
			out.Set(i, 1, p)
			continue
		}
		var sum float64
		for m := 0; m < k; m++ {
			p := sigmoid(df.At(i, m))
			out.Set(i, m, p)
			sum += p
		}
		if sum > 0 {
			for m := 0; m < k; m++ {
				out.Set(i, m, out.At(i, m)/sum)
			}
		}
	}
	return out, nil
}

// Predict returns the most probable class label per sample.
func (c *Classifier) Predict(x *mat.Dense) ([]float64, error) {
	pm, err := c.PredictProba(x)
	if err != nil {
		return nil, err
	}
	n, k := pm.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		best := 0
		for m := 1; m < k; m++ {
			if pm.At(i, m) > pm.At(i, best) {
				best = m
			}
		}
		out[i] = c.classes.Label(best)
	}
	return out, nil
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

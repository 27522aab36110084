package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/PGryllos/scikit-learn/estimator"
)

func binaryData() (*mat.Dense, []float64) {
	x := mat.NewDense(8, 1, []float64{-2, -1.5, -1, -0.5, 0.5, 1, 1.5, 2})
	y := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	return x, y
}

func TestClassifierSeparatesBinaryData(t *testing.T) {
	x, y := binaryData()
	clf := NewDefault()
	require.NoError(t, clf.Fit(x, y))

	assert.Equal(t, []float64{0, 1}, clf.Classes())

	got, err := clf.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, y, got)
}

func TestClassifierDecisionFunctionShape(t *testing.T) {
	x, y := binaryData()
	clf := NewDefault()
	require.NoError(t, clf.Fit(x, y))

	df, err := clf.DecisionFunction(x)
	require.NoError(t, err)
	rows, cols := df.Dims()
	assert.Equal(t, 8, rows)
	assert.Equal(t, 1, cols)

	// Margins grow with the feature.
	for i := 1; i < rows; i++ {
		assert.Greater(t, df.At(i, 0), df.At(i-1, 0))
	}
}

func TestClassifierProbaRowsSumToOne(t *testing.T) {
	x := mat.NewDense(9, 2, []float64{
		-2, 0, -1.5, 0.2, -1, -0.1,
		0, 2, 0.1, 1.5, -0.2, 1,
		2, -2, 1.5, -1.5, 1, -1,
	})
	y := []float64{0, 0, 0, 1, 1, 1, 2, 2, 2}

	clf := NewDefault()
	require.NoError(t, clf.Fit(x, y))
	assert.Equal(t, []float64{0, 1, 2}, clf.Classes())

	pm, err := clf.PredictProba(x)
	require.NoError(t, err)
	rows, cols := pm.Dims()
	require.Equal(t, 3, cols)
	for i := 0; i < rows; i++ {
		var sum float64
		for c := 0; c < cols; c++ {
			sum += pm.At(i, c)
		}
		assert.InDelta(t, 1, sum, 1e-9)
	}
}

func TestClassifierIsDeterministic(t *testing.T) {
	x, y := binaryData()

	a, b := NewDefault(), NewDefault()
	require.NoError(t, a.Fit(x, y))
	require.NoError(t, b.Fit(x, y))

	da, err := a.DecisionFunction(x)
	require.NoError(t, err)
	db, err := b.DecisionFunction(x)
	require.NoError(t, err)
	assert.Equal(t, da.RawMatrix().Data, db.RawMatrix().Data)
}

func TestClassifierPrototypeIsIndependent(t *testing.T) {
	x, y := binaryData()
	parent := NewDefault()
	require.NoError(t, parent.Fit(x, y))

	child := parent.New()
	// The prototype instance is unfitted, not a copy of the parent.
	_, err := child.(*Classifier).DecisionFunction(x)
	assert.ErrorIs(t, err, estimator.ErrNotFitted)
}

func TestClassifierWeightedFit(t *testing.T) {
	// A heavily weighted minority flips the learned direction.
	x := mat.NewDense(4, 1, []float64{-1, -1, 1, 1})
	y := []float64{0, 1, 0, 1}

	clf := NewDefault()
	require.NoError(t, clf.FitWeighted(x, y, []float64{100, 1, 1, 100}))

	df, err := clf.DecisionFunction(x)
	require.NoError(t, err)
	// Downweighted conflicting samples leave a positive slope.
	assert.Greater(t, df.At(3, 0), df.At(0, 0))
}

func TestClassifierErrors(t *testing.T) {
	clf := NewDefault()

	t.Run("length mismatch", func(t *testing.T) {
		err := clf.Fit(mat.NewDense(2, 1, []float64{1, 2}), []float64{0})
		assert.ErrorIs(t, err, estimator.ErrDataShape)
	})

	t.Run("single class", func(t *testing.T) {
		err := clf.Fit(mat.NewDense(2, 1, []float64{1, 2}), []float64{1, 1})
		assert.ErrorIs(t, err, estimator.ErrDataShape)
	})
}

package cutoff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PGryllos/scikit-learn/estimator"
)

func TestCurve(t *testing.T) {
	y := []float64{0, 0, 1, 1}
	scores := []float64{0.125, 0.5, 0.375, 0.75}

	curve, err := Curve(y, scores, 1)
	require.NoError(t, err)

	want := []Point{
		{FPR: 0, TPR: 0, Threshold: 1.75},
		{FPR: 0, TPR: 0.5, Threshold: 0.75},
		{FPR: 0.5, TPR: 0.5, Threshold: 0.5},
		{FPR: 0.5, TPR: 1, Threshold: 0.375},
		{FPR: 1, TPR: 1, Threshold: 0.125},
	}
	assert.Equal(t, want, curve)
}

func TestCurveCollapsesTies(t *testing.T) {
	// One positive and one negative share the score 0.5; the tie group
	// must produce a single point with both counted.
	y := []float64{0, 1, 0, 1}
	scores := []float64{0.5, 0.5, 0.25, 0.75}

	curve, err := Curve(y, scores, 1)
	require.NoError(t, err)

	want := []Point{
		{FPR: 0, TPR: 0, Threshold: 1.75},
		{FPR: 0, TPR: 0.5, Threshold: 0.75},
		{FPR: 0.5, TPR: 1, Threshold: 0.5},
		{FPR: 1, TPR: 1, Threshold: 0.25},
	}
	assert.Equal(t, want, curve)
}

func TestCurveRatesAreMonotone(t *testing.T) {
	y := []float64{1, 0, 1, 0, 1, 0, 1, 1, 0, 0}
	scores := []float64{0.875, 0.8125, 0.8125, 0.75, 0.625, 0.5625, 0.5, 0.4375, 0.375, 0.3125}

	curve, err := Curve(y, scores, 1)
	require.NoError(t, err)
	require.NotEmpty(t, curve)

	assert.Equal(t, Point{FPR: 0, TPR: 0, Threshold: 1.875}, curve[0])
	last := curve[len(curve)-1]
	assert.Equal(t, 1.0, last.FPR)
	assert.Equal(t, 1.0, last.TPR)

	for i := 1; i < len(curve); i++ {
		assert.GreaterOrEqual(t, curve[i].FPR, curve[i-1].FPR)
		assert.GreaterOrEqual(t, curve[i].TPR, curve[i-1].TPR)
		assert.Less(t, curve[i].Threshold, curve[i-1].Threshold)
	}
}

func TestCurveErrors(t *testing.T) {
	t.Run("length mismatch", func(t *testing.T) {
		_, err := Curve([]float64{0, 1}, []float64{0.5}, 1)
		assert.ErrorIs(t, err, estimator.ErrDataShape)
	})

	t.Run("single class", func(t *testing.T) {
		_, err := Curve([]float64{1, 1, 1}, []float64{0.1, 0.2, 0.3}, 1)
		assert.ErrorIs(t, err, estimator.ErrDataShape)
	})
}

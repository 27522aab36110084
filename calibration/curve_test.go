package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PGryllos/scikit-learn/estimator"
)

func TestCurveTwoBins(t *testing.T) {
	yTrue := []float64{0, 0, 0, 1, 1, 1}
	yProb := []float64{0, 0.1, 0.2, 0.8, 0.9, 1}

	probTrue, probPred, err := Curve(yTrue, yProb, false, 2)
	require.NoError(t, err)
	require.Len(t, probTrue, 2)
	assert.InDeltaSlice(t, []float64{0, 1}, probTrue, 1e-12)
	assert.InDeltaSlice(t, []float64{0.1, 0.9}, probPred, 1e-9)
}

func TestCurveOmitsEmptyBins(t *testing.T) {
	// Everything lands in the first and last of five bins.
	yTrue := []float64{0, 0, 1, 1}
	yProb := []float64{0.05, 0.1, 0.9, 0.95}

	probTrue, probPred, err := Curve(yTrue, yProb, false, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, probTrue)
	assert.InDeltaSlice(t, []float64{0.075, 0.925}, probPred, 1e-12)
}

func TestCurveNormalize(t *testing.T) {
	// Decision margins are rescaled into [0, 1] before binning.
	yTrue := []float64{0, 0, 1, 1}
	margins := []float64{-4, -2, 2, 4}

	probTrue, _, err := Curve(yTrue, margins, true, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, probTrue)
}

func TestCurveErrors(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     []float64
		yProb     []float64
		normalize bool
		bins      int
		wantErr   error
	}{
		{
			name:    "length mismatch",
			yTrue:   []float64{0, 1},
			yProb:   []float64{0.5},
			bins:    2,
			wantErr: estimator.ErrDataShape,
		},
		{
			name:    "out of range without normalize",
			yTrue:   []float64{0, 1},
			yProb:   []float64{-0.2, 0.5},
			bins:    2,
			wantErr: estimator.ErrDataShape,
		},
		{
			name:    "labels not 0 or 1",
			yTrue:   []float64{1, 2},
			yProb:   []float64{0.2, 0.5},
			bins:    2,
			wantErr: estimator.ErrDataShape,
		},
		{
			name:      "constant predictions with normalize",
			yTrue:     []float64{0, 1},
			yProb:     []float64{3, 3},
			normalize: true,
			bins:      2,
			wantErr:   estimator.ErrDataShape,
		},
		{
			name:    "non-positive bin count",
			yTrue:   []float64{0, 1},
			yProb:   []float64{0.2, 0.5},
			bins:    0,
			wantErr: estimator.ErrInvalidConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Curve(tt.yTrue, tt.yProb, tt.normalize, tt.bins)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

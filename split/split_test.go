package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/PGryllos/scikit-learn/estimator"
)

func TestStratifiedKFoldSplit(t *testing.T) {
	y := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	folds, err := StratifiedKFold{K: 2}.Split(nil, y)
	require.NoError(t, err)
	require.Len(t, folds, 2)

	for _, fold := range folds {
		// Train and test are disjoint and together cover everything.
		seen := make(map[int]bool)
		for _, i := range fold.Train {
			seen[i] = true
		}
		for _, i := range fold.Test {
			assert.False(t, seen[i], "index %d in both train and test", i)
			seen[i] = true
		}
		assert.Len(t, seen, len(y))

		// Each test fold holds both classes.
		var pos, neg int
		for _, i := range fold.Test {
			if y[i] == 1 {
				pos++
			} else {
				neg++
			}
		}
		assert.Positive(t, pos)
		assert.Positive(t, neg)
	}
}

func TestStratifiedKFoldDeterministic(t *testing.T) {
	y := []float64{0, 1, 0, 1, 0, 1, 0, 1, 0}
	first, err := StratifiedKFold{K: 3}.Split(nil, y)
	require.NoError(t, err)
	second, err := StratifiedKFold{K: 3}.Split(nil, y)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStratifiedKFoldErrors(t *testing.T) {
	t.Run("fewer than two folds", func(t *testing.T) {
		_, err := StratifiedKFold{K: 1}.Split(nil, []float64{0, 1})
		assert.ErrorIs(t, err, estimator.ErrInvalidConfiguration)
	})

	t.Run("class smaller than fold count", func(t *testing.T) {
		_, err := StratifiedKFold{K: 3}.Split(nil, []float64{0, 0, 0, 1, 1})
		assert.ErrorIs(t, err, estimator.ErrInsufficientData)
	})
}

func TestRows(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
		7, 8,
	})
	y := []float64{10, 11, 12, 13}
	w := []float64{0.1, 0.2, 0.3, 0.4}

	xs, ys, ws := Rows(x, y, w, []int{2, 0})
	assert.Equal(t, []float64{5, 6}, xs.RawRowView(0))
	assert.Equal(t, []float64{1, 2}, xs.RawRowView(1))
	assert.Equal(t, []float64{12, 10}, ys)
	assert.Equal(t, []float64{0.3, 0.1}, ws)

	_, _, ws = Rows(x, y, nil, []int{1})
	assert.Nil(t, ws)
}

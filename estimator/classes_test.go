package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClassSet(t *testing.T) {
	tests := []struct {
		name string
		y    []float64
		want []float64
	}{
		{name: "duplicates collapse", y: []float64{1, 0, 1, 0, 1}, want: []float64{0, 1}},
		{name: "labels sort ascending", y: []float64{2, 0, 1, 2}, want: []float64{0, 1, 2}},
		{name: "negative labels keep their order", y: []float64{1, -1, 1}, want: []float64{-1, 1}},
		{name: "single class", y: []float64{3, 3}, want: []float64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassSet(tt.y)
			assert.Equal(t, tt.want, c.Labels())
			assert.Equal(t, len(tt.want), c.Len())
		})
	}
}

func TestClassSetIndices(t *testing.T) {
	c := NewClassSet([]float64{-1, 1})

	got, err := c.Indices([]float64{1, -1, -1, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0, 1}, got)

	_, err = c.Indices([]float64{2})
	assert.ErrorIs(t, err, ErrDataShape)
}

func TestClassSetBinarize(t *testing.T) {
	c := NewClassSet([]float64{0, 1, 2})

	got, err := c.Binarize([]float64{0, 1, 2, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 1}, got)
}

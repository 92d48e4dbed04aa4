package analysis

import (
	"testing"

	"gosus/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var oneToTen = []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"median of one to ten", oneToTen, 0.5, 5.5},
		{"first quartile interpolates between index 1 and 2", oneToTen, 0.25, 2.75},
		{"third quartile", oneToTen, 0.75, 8.25},
		{"exact order statistic", []float64{1, 2, 3, 4, 5}, 0.5, 3},
		{"minimum", oneToTen, 0, 1},
		{"maximum", oneToTen, 1, 10},
		{"single value", []float64{42}, 0.25, 42},
		{"two values clamp low", []float64{10, 20}, 0.25, 10},
		{"two values clamp high", []float64{10, 20}, 0.75, 20},
		{"unsorted input", []float64{10, 1, 5, 3, 8, 2, 9, 4, 7, 6}, 0.25, 2.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quantile(tt.values, tt.p)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestQuantile_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_, err := Quantile(values, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestQuantile_InvalidInput(t *testing.T) {
	_, err := Quantile(nil, 0.5)
	assert.True(t, core.IsInvalidArgument(err))

	_, err = Quantile(oneToTen, 1.5)
	assert.True(t, core.IsInvalidArgument(err))
}

func TestQuartiles(t *testing.T) {
	q1, median, q3, err := Quartiles([]float64{100, 0, 75, 50})
	require.NoError(t, err)

	assert.InDelta(t, 12.5, q1, 1e-12)
	assert.InDelta(t, 62.5, median, 1e-12)
	assert.InDelta(t, 93.75, q3, 1e-12)
}

func TestTukeyFences(t *testing.T) {
	lower, upper, err := TukeyFences(oneToTen, DefaultTukeyK)
	require.NoError(t, err)

	// IQR = 8.25 - 2.75 = 5.5
	assert.InDelta(t, -5.5, lower, 1e-12)
	assert.InDelta(t, 16.5, upper, 1e-12)
}

func TestIdentifyOutliers(t *testing.T) {
	data := []float64{100, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	outliers, err := IdentifyOutliers(data, DefaultTukeyK)
	require.NoError(t, err)
	assert.Equal(t, []float64{100}, outliers)

	none, err := IdentifyOutliers(oneToTen, DefaultTukeyK)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIdentifyOutliers_ValuesOnFenceAreKept(t *testing.T) {
	// Q1 = 2.75, Q3 = 8.25; with k = 0 the fences are the quartiles themselves.
	outliers, err := IdentifyOutliers(oneToTen, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 9, 10}, outliers)
}

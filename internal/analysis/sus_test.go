package analysis

import (
	"math"
	"testing"

	"gosus/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	neutralRow = []float64{3, 3, 3, 3, 3, 3, 3, 3, 3, 3}
	bestRow    = []float64{5, 1, 5, 1, 5, 1, 5, 1, 5, 1}
	worstRow   = []float64{1, 5, 1, 5, 1, 5, 1, 5, 1, 5}
	goodRow    = []float64{4, 2, 4, 2, 4, 2, 4, 2, 4, 2}
)

func TestSUSScore(t *testing.T) {
	tests := []struct {
		name  string
		items []float64
		want  float64
	}{
		{"all neutral", neutralRow, 50},
		{"best per polarity", bestRow, 100},
		{"worst per polarity", worstRow, 0},
		{"agree on everything", []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5}, 50},
		{"good", goodRow, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SUSScore(tt.items); got != tt.want {
				t.Errorf("SUSScore(%v) = %v, want %v", tt.items, got, tt.want)
			}
		})
	}
}

func TestNewStudy(t *testing.T) {
	raw := [][]float64{neutralRow, bestRow, worstRow, goodRow}

	study, err := NewStudy("System A", raw, DefaultTukeyK)
	require.NoError(t, err)

	assert.Equal(t, "System A", study.Name)
	assert.Equal(t, []float64{50, 100, 0, 75}, study.SUSScores, "scores keep respondent order")
	assert.Equal(t, raw, study.RawItemScores)
	assert.Equal(t, 4, study.Respondents())

	assert.Equal(t, 56.25, study.Mean)
	assert.Equal(t, 42.70, study.SampleStdDev)
	assert.Equal(t, 0.0, study.Min)
	assert.Equal(t, 100.0, study.Max)
	assert.InDelta(t, 12.5, study.Q1, 1e-12)
	assert.InDelta(t, 62.5, study.Median, 1e-12)
	assert.InDelta(t, 93.75, study.Q3, 1e-12)
	assert.Empty(t, study.Outliers)
	assert.InDelta(t, 1.0, study.Reliability, 1e-12)
}

func TestNewStudy_DoesNotAliasInput(t *testing.T) {
	row := append([]float64(nil), neutralRow...)
	study, err := NewStudy("A", [][]float64{row, bestRow}, DefaultTukeyK)
	require.NoError(t, err)

	row[0] = 1
	assert.Equal(t, 3.0, study.RawItemScores[0][0])
}

func TestNewStudy_SingleRespondentHasUndefinedSD(t *testing.T) {
	study, err := NewStudy("Solo", [][]float64{goodRow}, DefaultTukeyK)
	require.NoError(t, err)

	assert.Equal(t, 75.0, study.Mean)
	assert.True(t, math.IsNaN(study.SampleStdDev))
	assert.Equal(t, 75.0, study.Median)
	assert.Equal(t, 0.0, study.Reliability)
}

func TestNewStudy_RejectsBadInput(t *testing.T) {
	_, err := NewStudy("Empty", nil, DefaultTukeyK)
	assert.True(t, core.IsInvalidArgument(err))

	_, err = NewStudy("Short", [][]float64{{1, 2, 3}}, DefaultTukeyK)
	assert.True(t, core.IsInvalidArgument(err))
}

func TestCronbachAlpha(t *testing.T) {
	consistent := [][]float64{neutralRow, bestRow, worstRow, goodRow}
	assert.InDelta(t, 1.0, CronbachAlpha(consistent), 1e-12)

	assert.Equal(t, 0.0, CronbachAlpha(nil))
	assert.Equal(t, 0.0, CronbachAlpha([][]float64{neutralRow}))
	assert.Equal(t, 0.0, CronbachAlpha([][]float64{neutralRow, neutralRow}), "no variance")
	assert.Equal(t, 0.0, CronbachAlpha([][]float64{neutralRow, {1, 2}}), "ragged")
}

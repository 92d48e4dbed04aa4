package analysis

import (
	"github.com/montanaflynn/stats"
)

// CronbachAlpha returns Cronbach's alpha for a [respondent][item] matrix of
// SUS ratings. Items are first converted to their score contributions so the
// negatively worded questions point the same way as the positive ones.
// Population variances are used throughout; the result is clamped to [0, 1]
// and is 0 when it cannot be computed.
func CronbachAlpha(raw [][]float64) float64 {
	n := len(raw)
	if n < 2 {
		return 0
	}
	k := len(raw[0])
	if k < 2 {
		return 0
	}

	columns := make([][]float64, k)
	totals := make([]float64, n)
	for i, row := range raw {
		if len(row) != k {
			return 0
		}
		for j, v := range row {
			c := itemContribution(j, v)
			columns[j] = append(columns[j], c)
			totals[i] += c
		}
	}

	totalVar, err := stats.PopulationVariance(totals)
	if err != nil || totalVar == 0 {
		return 0
	}

	var sumItemVars float64
	for _, col := range columns {
		v, err := stats.PopulationVariance(col)
		if err != nil {
			return 0
		}
		sumItemVars += v
	}

	kf := float64(k)
	alpha := (kf / (kf - 1)) * (1 - sumItemVars/totalVar)
	if alpha < 0 {
		return 0
	}
	if alpha > 1 {
		return 1
	}
	return alpha
}

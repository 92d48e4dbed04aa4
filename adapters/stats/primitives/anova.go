package primitives

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gosus/domain/core"
	"gosus/domain/stats"

	"gonum.org/v1/gonum/stat"
)

// OneWayANOVA performs the omnibus F-test for equal group means
func (p *GonumPrimitives) OneWayANOVA(ctx context.Context, groups [][]float64) (stats.FTest, error) {
	if err := checkContext(ctx); err != nil {
		return stats.FTest{}, err
	}
	if err := checkGroups(groups); err != nil {
		return stats.FTest{}, err
	}
	return oneWay(groups)
}

// Levene performs Levene's test for equality of variances. With median set
// the deviations are taken from each group's median (Brown-Forsythe).
func (p *GonumPrimitives) Levene(ctx context.Context, groups [][]float64, median bool) (stats.FTest, error) {
	if err := checkContext(ctx); err != nil {
		return stats.FTest{}, err
	}
	if err := checkGroups(groups); err != nil {
		return stats.FTest{}, err
	}

	deviations := make([][]float64, len(groups))
	for i, g := range groups {
		center := stat.Mean(g, nil)
		if median {
			center = medianOf(g)
		}
		dev := make([]float64, len(g))
		for j, v := range g {
			dev[j] = math.Abs(v - center)
		}
		deviations[i] = dev
	}
	return oneWay(deviations)
}

func checkGroups(groups [][]float64) error {
	if len(groups) < 2 {
		return core.NewInvalidArgumentError("at least two groups are required")
	}
	total := 0
	for i, g := range groups {
		if len(g) == 0 {
			return core.NewInvalidArgumentError(fmt.Sprintf("group %d cannot be nil or empty", i+1))
		}
		total += len(g)
	}
	if total <= len(groups) {
		return core.NewInvalidArgumentError("groups need more observations than there are groups")
	}
	return nil
}

func oneWay(groups [][]float64) (stats.FTest, error) {
	k := float64(len(groups))
	var n float64
	var grandSum float64
	for _, g := range groups {
		n += float64(len(g))
		for _, v := range g {
			grandSum += v
		}
	}
	grandMean := grandSum / n

	var between, within float64
	for _, g := range groups {
		m := stat.Mean(g, nil)
		between += float64(len(g)) * (m - grandMean) * (m - grandMean)
		for _, v := range g {
			within += (v - m) * (v - m)
		}
	}

	df1 := k - 1
	df2 := n - k
	msBetween := between / df1
	msWithin := within / df2

	var f float64
	switch {
	case msWithin == 0 && msBetween == 0:
		f = math.NaN()
	case msWithin == 0:
		f = math.Inf(1)
	default:
		f = msBetween / msWithin
	}

	pValue := fUpperTail(f, df1, df2)
	return stats.FTest{
		Statistic:         f,
		DegreesOfFreedom1: df1,
		DegreesOfFreedom2: df2,
		PValue:            pValue,
		Significant:       pValue < alpha,
		BetweenSS:         between,
		WithinSS:          within,
	}, nil
}

func medianOf(x []float64) float64 {
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

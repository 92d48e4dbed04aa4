package primitives

import (
	"context"
	"math"

	"gosus/domain/core"
	"gosus/domain/stats"

	"gonum.org/v1/gonum/stat"
)

// TwoSampleTTest performs Student's t-test with pooled variance
func (p *GonumPrimitives) TwoSampleTTest(ctx context.Context, x, y []float64) (stats.TTest, error) {
	if err := checkContext(ctx); err != nil {
		return stats.TTest{}, err
	}
	if err := checkSample("first", x, 1); err != nil {
		return stats.TTest{}, err
	}
	if err := checkSample("second", y, 1); err != nil {
		return stats.TTest{}, err
	}

	n1 := float64(len(x))
	n2 := float64(len(y))
	df := n1 + n2 - 2
	if df < 1 {
		return stats.TTest{}, core.NewInvalidArgumentError("two-sample t-test needs at least three observations")
	}

	mean1, var1 := meanVariance(x)
	mean2, var2 := meanVariance(y)

	pooledVariance := ((n1-1)*var1 + (n2-1)*var2) / df
	se := math.Sqrt(pooledVariance * (1/n1 + 1/n2))
	diff := mean1 - mean2

	t := tStatistic(diff, se)
	pValue, critical := studentsT(t, df)

	return stats.TTest{
		Statistic:          t,
		DegreesOfFreedom:   df,
		PValue:             pValue,
		Significant:        pValue < alpha,
		ObservedDifference: diff,
		StandardError:      se,
		ConfidenceMin:      diff - critical*se,
		ConfidenceMax:      diff + critical*se,
		SampleSize:         len(x) + len(y),
	}, nil
}

// PairedTTest performs the dependent-samples t-test. StandardError is the
// standard deviation of the differences divided by sqrt(n).
func (p *GonumPrimitives) PairedTTest(ctx context.Context, x, y []float64) (stats.TTest, error) {
	if err := checkContext(ctx); err != nil {
		return stats.TTest{}, err
	}
	if err := checkSample("first", x, 2); err != nil {
		return stats.TTest{}, err
	}
	if err := checkSample("second", y, 2); err != nil {
		return stats.TTest{}, err
	}
	if len(x) != len(y) {
		return stats.TTest{}, core.NewInvalidArgumentError("paired samples must have the same length")
	}

	diffs := make([]float64, len(x))
	for i := range x {
		diffs[i] = x[i] - y[i]
	}

	n := float64(len(diffs))
	meanDiff, varDiff := meanVariance(diffs)
	se := math.Sqrt(varDiff) / math.Sqrt(n)
	df := n - 1

	t := tStatistic(meanDiff, se)
	pValue, critical := studentsT(t, df)

	return stats.TTest{
		Statistic:          t,
		DegreesOfFreedom:   df,
		PValue:             pValue,
		Significant:        pValue < alpha,
		ObservedDifference: meanDiff,
		StandardError:      se,
		ConfidenceMin:      meanDiff - critical*se,
		ConfidenceMax:      meanDiff + critical*se,
		SampleSize:         len(diffs),
	}, nil
}

// tStatistic divides a difference by its standard error. With zero error a
// zero difference gives t = 0 and any other difference an infinite t.
func tStatistic(diff, se float64) float64 {
	if se == 0 {
		if diff == 0 {
			return 0
		}
		return math.Copysign(math.Inf(1), diff)
	}
	return diff / se
}

// meanVariance returns the mean and the unbiased sample variance (0 for n == 1).
func meanVariance(x []float64) (float64, float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanVariance(x, nil)
}

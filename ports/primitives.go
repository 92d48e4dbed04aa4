package ports

import (
	"context"

	"gosus/domain/stats"
)

// StatsPrimitivesPort computes the standard hypothesis-test primitives from raw
// samples. Implementations must be deterministic for a given input.
type StatsPrimitivesPort interface {
	// TwoSampleTTest runs Student's t-test assuming equal variances.
	TwoSampleTTest(ctx context.Context, x, y []float64) (stats.TTest, error)

	// PairedTTest runs the t-test on the pairwise differences x[i]-y[i].
	PairedTTest(ctx context.Context, x, y []float64) (stats.TTest, error)

	// OneWayANOVA runs the omnibus F-test across all groups.
	OneWayANOVA(ctx context.Context, groups [][]float64) (stats.FTest, error)

	// MannWhitneyU runs the two-sided rank-sum test.
	MannWhitneyU(ctx context.Context, x, y []float64) (stats.RankTest, error)

	// WilcoxonSignedRank runs the two-sided signed-rank test on paired samples.
	WilcoxonSignedRank(ctx context.Context, x, y []float64) (stats.RankTest, error)

	// Levene tests homogeneity of variance; median selects the Brown-Forsythe variant.
	Levene(ctx context.Context, groups [][]float64, median bool) (stats.FTest, error)

	// ShapiroWilk tests normality of one sample.
	ShapiroWilk(ctx context.Context, x []float64) (stats.NormalityTest, error)
}

package primitives

import (
	"context"
	"math"

	"gosus/domain/core"
	"gosus/domain/stats"
)

const (
	// Samples below these sizes without ties use the exact null distribution.
	maxExactRankSum    = 30
	maxExactSignedRank = 25
)

// MannWhitneyU performs the two-sided Mann-Whitney U test. The reported
// statistic is min(U1, U2); Z is the continuity-corrected normal
// approximation signed by the first sample.
func (p *GonumPrimitives) MannWhitneyU(ctx context.Context, x, y []float64) (stats.RankTest, error) {
	if err := checkContext(ctx); err != nil {
		return stats.RankTest{}, err
	}
	if err := checkSample("first", x, 1); err != nil {
		return stats.RankTest{}, err
	}
	if err := checkSample("second", y, 1); err != nil {
		return stats.RankTest{}, err
	}

	n1, n2 := len(x), len(y)
	combined := make([]float64, 0, n1+n2)
	combined = append(combined, x...)
	combined = append(combined, y...)

	ranks, hasTies, tieTerm := rankWithTies(combined)
	var r1 float64
	for i := 0; i < n1; i++ {
		r1 += ranks[i]
	}

	fn1, fn2 := float64(n1), float64(n2)
	n := fn1 + fn2
	u1 := r1 - fn1*(fn1+1)/2
	u2 := fn1*fn2 - u1
	u := math.Min(u1, u2)

	mu := fn1 * fn2 / 2
	variance := fn1 * fn2 / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	z := continuityZ(u1, mu, variance)

	result := stats.RankTest{
		Statistic: u,
		Z:         z,
		HasTies:   hasTies,
	}

	if !hasTies && n1 < maxExactRankSum && n2 < maxExactRankSum {
		result.PValue = math.Min(1, 2*rankSumCDF(n1, n2, int(math.Floor(u+1e-9))))
		result.Exact = true
	} else {
		result.PValue = normalTwoTailed(z)
	}
	result.Significant = result.PValue < alpha
	return result, nil
}

// WilcoxonSignedRank performs the two-sided signed-rank test on x[i]-y[i].
// Zero differences are dropped; the statistic is min(W+, W-).
func (p *GonumPrimitives) WilcoxonSignedRank(ctx context.Context, x, y []float64) (stats.RankTest, error) {
	if err := checkContext(ctx); err != nil {
		return stats.RankTest{}, err
	}
	if err := checkSample("first", x, 1); err != nil {
		return stats.RankTest{}, err
	}
	if err := checkSample("second", y, 1); err != nil {
		return stats.RankTest{}, err
	}
	if len(x) != len(y) {
		return stats.RankTest{}, core.NewInvalidArgumentError("paired samples must have the same length")
	}

	var hasZeros bool
	diffs := make([]float64, 0, len(x))
	for i := range x {
		d := x[i] - y[i]
		if d == 0 {
			hasZeros = true
			continue
		}
		diffs = append(diffs, d)
	}

	nr := len(diffs)
	if nr == 0 {
		return stats.RankTest{PValue: 1.0, HasZeros: hasZeros}, nil
	}

	abs := make([]float64, nr)
	for i, d := range diffs {
		abs[i] = math.Abs(d)
	}
	ranks, hasTies, tieTerm := rankWithTies(abs)

	var wPlus float64
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		}
	}
	fn := float64(nr)
	total := fn * (fn + 1) / 2
	w := math.Min(wPlus, total-wPlus)

	mu := fn * (fn + 1) / 4
	variance := fn*(fn+1)*(2*fn+1)/24 - tieTerm/48
	z := continuityZ(wPlus, mu, variance)

	result := stats.RankTest{
		Statistic: w,
		Z:         z,
		HasTies:   hasTies,
		HasZeros:  hasZeros,
	}

	if !hasTies && nr <= maxExactSignedRank {
		result.PValue = math.Min(1, 2*signedRankCDF(nr, int(math.Floor(w+1e-9))))
		result.Exact = true
	} else {
		result.PValue = normalTwoTailed(z)
	}
	result.Significant = result.PValue < alpha
	return result, nil
}

// continuityZ standardizes a statistic with a 0.5 continuity correction
// towards the mean. A degenerate variance yields z = 0.
func continuityZ(value, mu, variance float64) float64 {
	if variance <= 0 {
		return 0
	}
	dev := math.Abs(value-mu) - 0.5
	if dev < 0 {
		dev = 0
	}
	return math.Copysign(dev, value-mu) / math.Sqrt(variance)
}

// rankSumCDF returns P(U <= u) under the null for sample sizes n1, n2
// without ties.
func rankSumCDF(n1, n2, u int) float64 {
	if u < 0 {
		return 0
	}
	// counts[m][n][k] = arrangements of m x's and n y's with U = k
	counts := make([][][]float64, n1+1)
	for m := 0; m <= n1; m++ {
		counts[m] = make([][]float64, n2+1)
		for n := 0; n <= n2; n++ {
			c := make([]float64, m*n+1)
			if m == 0 || n == 0 {
				c[0] = 1
			} else {
				for k := range c {
					// largest observation is an x: it beats all n y's
					if k-n >= 0 && k-n < len(counts[m-1][n]) {
						c[k] += counts[m-1][n][k-n]
					}
					if k < len(counts[m][n-1]) {
						c[k] += counts[m][n-1][k]
					}
				}
			}
			counts[m][n] = c
		}
	}

	dist := counts[n1][n2]
	var below, total float64
	for k, c := range dist {
		total += c
		if k <= u {
			below += c
		}
	}
	return below / total
}

// signedRankCDF returns P(W+ <= w) under the null for n non-zero,
// untied differences.
func signedRankCDF(n, w int) float64 {
	if w < 0 {
		return 0
	}
	maxSum := n * (n + 1) / 2
	counts := make([]float64, maxSum+1)
	counts[0] = 1
	for r := 1; r <= n; r++ {
		for s := maxSum; s >= r; s-- {
			counts[s] += counts[s-r]
		}
	}
	var below float64
	for s := 0; s <= w && s <= maxSum; s++ {
		below += counts[s]
	}
	return below / math.Pow(2, float64(n))
}

package primitives

import (
	"context"
	"math"
	"sort"

	"gosus/domain/core"
	"gosus/domain/stats"

	"gonum.org/v1/gonum/stat/distuv"
)

// Royston (1995) polynomial coefficients, lowest order first.
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

const (
	minShapiroN = 3
	maxShapiroN = 5000
)

// ShapiroWilk performs the Shapiro-Wilk W test using Royston's approximation
// of the coefficients and of the null distribution of W.
func (p *GonumPrimitives) ShapiroWilk(ctx context.Context, x []float64) (stats.NormalityTest, error) {
	if err := checkContext(ctx); err != nil {
		return stats.NormalityTest{}, err
	}
	if err := checkSample("normality", x, minShapiroN); err != nil {
		return stats.NormalityTest{}, err
	}
	if len(x) > maxShapiroN {
		return stats.NormalityTest{}, core.NewInvalidArgumentError("Shapiro-Wilk supports at most 5000 observations")
	}

	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	n := len(sorted)

	if sorted[n-1]-sorted[0] == 0 {
		return stats.NormalityTest{}, core.NewInvalidArgumentError("Shapiro-Wilk is undefined for identical values")
	}

	a := shapiroCoefficients(n)

	var mean float64
	for _, v := range sorted {
		mean += v
	}
	mean /= float64(n)

	var num, ss float64
	for i, v := range sorted {
		num += a[i] * v
		ss += (v - mean) * (v - mean)
	}
	w := num * num / ss
	if w > 1 {
		w = 1
	}

	return stats.NormalityTest{
		W:          w,
		PValue:     shapiroPValue(w, n),
		SampleSize: n,
	}, nil
}

// shapiroCoefficients returns the antisymmetric weights a_1..a_n for
// ascending order statistics.
func shapiroCoefficients(n int) []float64 {
	a := make([]float64, n)
	if n == 3 {
		a[0] = -math.Sqrt(0.5)
		a[2] = math.Sqrt(0.5)
		return a
	}

	fn := float64(n)
	m := make([]float64, n)
	var mm float64
	for i := 0; i < n; i++ {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (fn + 0.25))
		mm += m[i] * m[i]
	}

	u := 1 / math.Sqrt(fn)
	rootMM := math.Sqrt(mm)
	an := poly(swC1, u) + m[n-1]/rootMM

	if n > 5 {
		an1 := poly(swC2, u) + m[n-2]/rootMM
		phi := (mm - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
		rootPhi := math.Sqrt(phi)
		for i := 2; i < n-2; i++ {
			a[i] = m[i] / rootPhi
		}
		a[0], a[1] = -an, -an1
		a[n-1], a[n-2] = an, an1
		return a
	}

	phi := (mm - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
	rootPhi := math.Sqrt(phi)
	for i := 1; i < n-1; i++ {
		a[i] = m[i] / rootPhi
	}
	a[0], a[n-1] = -an, an
	return a
}

// shapiroPValue returns the upper-tail probability of W.
func shapiroPValue(w float64, n int) float64 {
	if n == 3 {
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return math.Max(0, math.Min(1, p))
	}
	if w >= 1 {
		return 1
	}

	fn := float64(n)
	y := math.Log1p(-w)
	var mu, sigma float64
	if n <= 11 {
		gamma := poly(swG, fn)
		if y >= gamma {
			return 0
		}
		y = -math.Log(gamma - y)
		mu = poly(swC3, fn)
		sigma = math.Exp(poly(swC4, fn))
	} else {
		ln := math.Log(fn)
		mu = poly(swC5, ln)
		sigma = math.Exp(poly(swC6, ln))
	}
	return distuv.Normal{Mu: mu, Sigma: sigma}.Survival(y)
}

// poly evaluates c[0] + c[1]x + c[2]x² + ...
func poly(c []float64, x float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}

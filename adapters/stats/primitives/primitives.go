package primitives

import (
	"context"
	"math"
	"sort"

	"gosus/domain/core"
	"gosus/ports"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	alpha           = 0.05
	confidenceLevel = 0.95
)

// GonumPrimitives implements ports.StatsPrimitivesPort on top of gonum's
// distributions.
type GonumPrimitives struct{}

var _ ports.StatsPrimitivesPort = (*GonumPrimitives)(nil)

// New creates the primitives adapter
func New() *GonumPrimitives {
	return &GonumPrimitives{}
}

// studentsT returns the two-tailed p-value and the 95% critical value for df.
func studentsT(t, df float64) (pValue, critical float64) {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	critical = dist.Quantile(1 - (1-confidenceLevel)/2)

	switch {
	case math.IsNaN(t):
		return 1.0, critical
	case math.IsInf(t, 0):
		return 0.0, critical
	}
	return 2 * dist.Survival(math.Abs(t)), critical
}

// fUpperTail returns P(F > f) for the given degrees of freedom.
func fUpperTail(f, df1, df2 float64) float64 {
	switch {
	case math.IsNaN(f):
		return 1.0
	case math.IsInf(f, 1):
		return 0.0
	}
	dist := distuv.F{D1: df1, D2: df2}
	return dist.Survival(f)
}

// normalTwoTailed returns the two-tailed p-value for a standard normal z.
func normalTwoTailed(z float64) float64 {
	if math.IsNaN(z) {
		return 1.0
	}
	p := 2 * distuv.UnitNormal.Survival(math.Abs(z))
	return math.Min(p, 1.0)
}

func checkSample(name string, x []float64, min int) error {
	if len(x) == 0 {
		return core.NewInvalidArgumentError(name + " sample cannot be nil or empty")
	}
	if len(x) < min {
		return core.NewInvalidArgumentError(name + " sample is too small")
	}
	return nil
}

func checkContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

// rankWithTies assigns average ranks (1-based) and reports whether any ties
// were present. The tie term is Σ(t³ - t) over tie groups.
func rankWithTies(values []float64) (ranks []float64, hasTies bool, tieTerm float64) {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		if t := float64(j - i + 1); t > 1 {
			hasTies = true
			tieTerm += t*t*t - t
		}
		i = j + 1
	}
	return ranks, hasTies, tieTerm
}

package analysis

import (
	"context"
	"fmt"
	"math"

	"gosus/domain/core"
	"gosus/domain/sus"
	"gosus/internal"
	"gosus/ports"

	"github.com/montanaflynn/stats"
)

// Engine executes a routed test path and derives effect sizes from the
// primitive results. It holds no per-run state and is safe for concurrent use.
type Engine struct {
	prims  ports.StatsPrimitivesPort
	logger *internal.Logger
}

// NewEngine creates an engine over the given primitives. A nil logger uses
// internal.DefaultLogger.
func NewEngine(prims ports.StatsPrimitivesPort, logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{prims: prims, logger: logger.WithField("component", "engine")}
}

// Execute runs the test identified by kind over groups. Either a complete
// result is returned or an error; never a partial result.
func (e *Engine) Execute(ctx context.Context, kind sus.TestKind, groups []sus.Group) (*sus.TestResult, error) {
	if err := checkGroupsFor(kind, groups); err != nil {
		return nil, err
	}

	summaries, err := summarize(groups)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("executing %s over %d groups", kind, len(groups))

	var result *sus.TestResult
	switch kind {
	case sus.IndependentTTest:
		result, err = e.independentTTest(ctx, groups)
	case sus.PairedTTest:
		result, err = e.pairedTTest(ctx, groups)
	case sus.OneWayANOVA:
		result, err = e.oneWayANOVA(ctx, groups)
	case sus.MannWhitneyU:
		result, err = e.mannWhitneyU(ctx, groups)
	case sus.WilcoxonSignedRank:
		result, err = e.wilcoxon(ctx, groups)
	default:
		return nil, core.NewInvalidArgumentError(fmt.Sprintf("unknown test kind %d", int(kind)))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	result.Kind = kind
	result.Groups = summaries
	e.logger.Info("%s finished: statistic=%.4f p=%.4f significant=%t", kind, result.Statistic, result.PValue, result.Significant)
	return result, nil
}

func checkGroupsFor(kind sus.TestKind, groups []sus.Group) error {
	for i, g := range groups {
		if len(g.Scores) == 0 {
			return core.NewInvalidArgumentError(fmt.Sprintf("group %d (%s) cannot be nil or empty", i+1, g.Name))
		}
	}
	switch kind {
	case sus.OneWayANOVA:
		if len(groups) < 2 {
			return core.NewInvalidArgumentError("ANOVA needs at least two groups")
		}
	default:
		if len(groups) != 2 {
			return core.NewInvalidArgumentError(fmt.Sprintf("%s compares exactly two groups, got %d", kind, len(groups)))
		}
	}
	return nil
}

// summarize computes the unrounded figures the narratives quote.
func summarize(groups []sus.Group) ([]sus.GroupSummary, error) {
	out := make([]sus.GroupSummary, len(groups))
	for i, g := range groups {
		mean, err := stats.Mean(g.Scores)
		if err != nil {
			return nil, core.NewInvalidArgumentError(err.Error())
		}
		q1, median, q3, err := Quartiles(g.Scores)
		if err != nil {
			return nil, err
		}
		out[i] = sus.GroupSummary{
			Name:   g.Name,
			N:      len(g.Scores),
			Mean:   mean,
			SD:     sampleSD(g.Scores),
			Median: median,
			Q1:     q1,
			Q3:     q3,
		}
	}
	return out, nil
}

func sampleSD(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	sd, err := stats.StandardDeviationSample(x)
	if err != nil {
		return math.NaN()
	}
	return sd
}

func sampleVariance(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	v, err := stats.SampleVariance(x)
	if err != nil {
		return 0
	}
	return v
}

func (e *Engine) independentTTest(ctx context.Context, groups []sus.Group) (*sus.TestResult, error) {
	x, y := groups[0].Scores, groups[1].Scores
	r, err := e.prims.TwoSampleTTest(ctx, x, y)
	if err != nil {
		return nil, err
	}

	n1, n2 := float64(len(x)), float64(len(y))
	pooledSD := math.Sqrt(((n1-1)*sampleVariance(x) + (n2-1)*sampleVariance(y)) / (n1 + n2 - 2))

	return &sus.TestResult{
		Statistic:        r.Statistic,
		DegreesOfFreedom: []float64{r.DegreesOfFreedom},
		PValue:           r.PValue,
		Significant:      r.Significant,
		Confidence:       &sus.Interval{Min: r.ConfidenceMin, Max: r.ConfidenceMax},
		MeanDifference:   r.ObservedDifference,
		StandardError:    r.StandardError,
		SampleSize:       r.SampleSize,
		EffectSize:       standardized(r.ObservedDifference, pooledSD),
		HasEffectSize:    true,
	}, nil
}

func (e *Engine) pairedTTest(ctx context.Context, groups []sus.Group) (*sus.TestResult, error) {
	r, err := e.prims.PairedTTest(ctx, groups[0].Scores, groups[1].Scores)
	if err != nil {
		return nil, err
	}

	// StandardError is SD(differences)/sqrt(n), so this recovers SD(differences).
	sdDiff := r.StandardError * math.Sqrt(float64(r.SampleSize))

	return &sus.TestResult{
		Statistic:        r.Statistic,
		DegreesOfFreedom: []float64{r.DegreesOfFreedom},
		PValue:           r.PValue,
		Significant:      r.Significant,
		Confidence:       &sus.Interval{Min: r.ConfidenceMin, Max: r.ConfidenceMax},
		MeanDifference:   r.ObservedDifference,
		StandardError:    r.StandardError,
		SampleSize:       r.SampleSize,
		EffectSize:       standardized(r.ObservedDifference, sdDiff),
		HasEffectSize:    true,
	}, nil
}

// standardized returns |diff|/sd. A zero spread gives 0 for no difference
// and +Inf otherwise.
func standardized(diff, sd float64) float64 {
	if sd == 0 {
		if diff == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(diff) / sd
}

func (e *Engine) oneWayANOVA(ctx context.Context, groups []sus.Group) (*sus.TestResult, error) {
	samples := make([][]float64, len(groups))
	for i, g := range groups {
		samples[i] = g.Scores
	}

	f, err := e.prims.OneWayANOVA(ctx, samples)
	if err != nil {
		return nil, err
	}

	postHoc, adjusted, err := e.bonferroniPostHoc(ctx, groups)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, s := range samples {
		total += len(s)
	}

	return &sus.TestResult{
		Statistic:        f.Statistic,
		DegreesOfFreedom: []float64{f.DegreesOfFreedom1, f.DegreesOfFreedom2},
		PValue:           f.PValue,
		Significant:      f.Significant,
		SampleSize:       total,
		EffectSize:       EtaSquared(samples),
		HasEffectSize:    true,
		BonferroniAlpha:  adjusted,
		PostHoc:          postHoc,
	}, nil
}

// EtaSquared returns betweenSS / totalSS over the pooled observations, or 0
// when every observation is identical.
func EtaSquared(groups [][]float64) float64 {
	var n, sum float64
	for _, g := range groups {
		for _, v := range g {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	grand := sum / n

	var between, total float64
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		m, _ := stats.Mean(g)
		between += float64(len(g)) * (m - grand) * (m - grand)
		for _, v := range g {
			total += (v - grand) * (v - grand)
		}
	}
	if total == 0 {
		return 0
	}
	return between / total
}

// BonferroniAlpha returns 0.05 divided by the number of unordered pairs.
func BonferroniAlpha(groups int) float64 {
	pairs := groups * (groups - 1) / 2
	if pairs < 1 {
		return sus.Alpha
	}
	return sus.Alpha / float64(pairs)
}

func (e *Engine) bonferroniPostHoc(ctx context.Context, groups []sus.Group) ([]sus.PostHocResult, float64, error) {
	adjusted := BonferroniAlpha(len(groups))
	var results []sus.PostHocResult
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			r, err := e.prims.TwoSampleTTest(ctx, groups[i].Scores, groups[j].Scores)
			if err != nil {
				return nil, 0, fmt.Errorf("post-hoc %s vs %s: %w", groups[i].Name, groups[j].Name, err)
			}
			results = append(results, sus.PostHocResult{
				Group1Index:      i,
				Group2Index:      j,
				PValue:           r.PValue,
				Significant:      r.PValue < adjusted,
				MeanDifference:   r.ObservedDifference,
				Statistic:        r.Statistic,
				DegreesOfFreedom: r.DegreesOfFreedom,
				ConfidenceMin:    r.ConfidenceMin,
				ConfidenceMax:    r.ConfidenceMax,
			})
		}
	}
	return results, adjusted, nil
}

func (e *Engine) mannWhitneyU(ctx context.Context, groups []sus.Group) (*sus.TestResult, error) {
	x, y := groups[0].Scores, groups[1].Scores
	r, err := e.prims.MannWhitneyU(ctx, x, y)
	if err != nil {
		return nil, err
	}
	return &sus.TestResult{
		Statistic:   r.Statistic,
		PValue:      r.PValue,
		Significant: r.Significant,
		SampleSize:  len(x) + len(y),
		Z:           r.Z,
	}, nil
}

func (e *Engine) wilcoxon(ctx context.Context, groups []sus.Group) (*sus.TestResult, error) {
	x, y := groups[0].Scores, groups[1].Scores
	r, err := e.prims.WilcoxonSignedRank(ctx, x, y)
	if err != nil {
		return nil, err
	}
	return &sus.TestResult{
		Statistic:   r.Statistic,
		PValue:      r.PValue,
		Significant: r.Significant,
		SampleSize:  len(x),
		Z:           r.Z,
		HasTies:     r.HasTies,
		HasZeros:    r.HasZeros,
	}, nil
}

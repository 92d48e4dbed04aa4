package analysis

import (
	"context"
	"fmt"

	"gosus/domain/core"
	"gosus/domain/sus"
)

// Levene runs the median-centred Levene test across groups.
func (e *Engine) Levene(ctx context.Context, groups []sus.Group) (*sus.LeveneResult, error) {
	if len(groups) < 2 {
		return nil, core.NewInvalidArgumentError("Levene's test needs at least two groups")
	}
	samples := make([][]float64, len(groups))
	for i, g := range groups {
		if len(g.Scores) == 0 {
			return nil, core.NewInvalidArgumentError(fmt.Sprintf("group %d (%s) cannot be nil or empty", i+1, g.Name))
		}
		samples[i] = g.Scores
	}

	r, err := e.prims.Levene(ctx, samples, true)
	if err != nil {
		return nil, fmt.Errorf("levene: %w", err)
	}
	return &sus.LeveneResult{
		F:                r.Statistic,
		DegreesOfFreedom: []float64{r.DegreesOfFreedom1, r.DegreesOfFreedom2},
		PValue:           r.PValue,
		Significant:      r.PValue < sus.Alpha,
	}, nil
}

// ShapiroWilk tests one group for normality. The group is considered normal
// when p > 0.05.
func (e *Engine) ShapiroWilk(ctx context.Context, group sus.Group) (*sus.ShapiroWilkResult, error) {
	if len(group.Scores) == 0 {
		return nil, core.NewInvalidArgumentError(fmt.Sprintf("group %s cannot be nil or empty", group.Name))
	}
	r, err := e.prims.ShapiroWilk(ctx, group.Scores)
	if err != nil {
		return nil, fmt.Errorf("shapiro-wilk %s: %w", group.Name, err)
	}
	return &sus.ShapiroWilkResult{
		Name:       group.Name,
		W:          r.W,
		PValue:     r.PValue,
		SampleSize: r.SampleSize,
		IsNormal:   r.PValue > sus.Alpha,
	}, nil
}

// CheckAssumptions runs Shapiro-Wilk on every group and Levene across them.
// Groups for which normality is undefined (fewer than three scores, or all
// identical) are left out of the report and logged.
func (e *Engine) CheckAssumptions(ctx context.Context, groups []sus.Group) (*sus.AssumptionReport, error) {
	report := &sus.AssumptionReport{Normality: []sus.ShapiroWilkResult{}}
	for _, g := range groups {
		r, err := e.ShapiroWilk(ctx, g)
		if err != nil {
			if core.IsInvalidArgument(err) && len(g.Scores) > 0 {
				e.logger.Warn("normality check skipped for %s: %v", g.Name, err)
				continue
			}
			return nil, err
		}
		report.Normality = append(report.Normality, *r)
	}

	levene, err := e.Levene(ctx, groups)
	if err != nil {
		return nil, err
	}
	report.Homogeneity = levene
	return report, nil
}

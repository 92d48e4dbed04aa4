package session

import (
	"context"
	"fmt"

	"gosus/domain/core"
	"gosus/domain/sus"
	"gosus/internal"
	"gosus/internal/analysis"
	"gosus/internal/ingestion"
)

// Calculator is the per-session aggregate root. It owns every Study built
// from one upload, the analyst's active selection and the two design
// decisions. A Calculator is not safe for concurrent use; Store serialises
// access per session.
type Calculator struct {
	studies []sus.Study
	// active holds indices into studies in strictly increasing order.
	active []int

	dependence sus.Optional[sus.Dependence]
	parametric sus.Optional[sus.Parametric]

	tukeyK float64
	logger *internal.Logger
}

// Option configures a Calculator
type Option func(*Calculator)

// WithTukeyK sets the fence multiplier used for per-study outliers
func WithTukeyK(k float64) Option {
	return func(c *Calculator) {
		c.tukeyK = k
	}
}

// WithLogger sets the calculator's logger
func WithLogger(logger *internal.Logger) Option {
	return func(c *Calculator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCalculator validates and ingests content and builds one Study per
// system label. Every study starts out active.
func NewCalculator(content string, opts ...Option) (*Calculator, error) {
	c := &Calculator{
		tukeyK: analysis.DefaultTukeyK,
		logger: internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}

	groups, err := ingestion.Group(content)
	if err != nil {
		return nil, err
	}

	c.studies = make([]sus.Study, 0, len(groups))
	for _, g := range groups {
		study, err := analysis.NewStudy(g.Label, g.Rows, c.tukeyK)
		if err != nil {
			return nil, fmt.Errorf("building study %q: %w", g.Label, err)
		}
		c.studies = append(c.studies, study)
	}

	c.active = make([]int, len(c.studies))
	for i := range c.active {
		c.active[i] = i
	}

	c.logger.Debug("ingested %d studies", len(c.studies))
	return c, nil
}

// Studies returns every study in first-seen order.
func (c *Calculator) Studies() []sus.Study {
	out := make([]sus.Study, len(c.studies))
	copy(out, c.studies)
	return out
}

// ActiveStudies returns the selected studies in Studies order.
func (c *Calculator) ActiveStudies() []sus.Study {
	out := make([]sus.Study, len(c.active))
	for i, idx := range c.active {
		out[i] = c.studies[idx]
	}
	return out
}

// ActiveIndices returns the positions of the active studies in Studies.
func (c *Calculator) ActiveIndices() []int {
	return append([]int(nil), c.active...)
}

// IsActive reports whether study i is selected.
func (c *Calculator) IsActive(i int) bool {
	return c.position(i) >= 0
}

// ToggleStudy flips the selection of study i.
func (c *Calculator) ToggleStudy(i int) error {
	if i < 0 || i >= len(c.studies) {
		return core.NewStudyNotFoundError(i)
	}
	return c.SetActive(i, !c.IsActive(i))
}

// SetActive selects or deselects study i. The active list stays a
// sub-sequence of Studies.
func (c *Calculator) SetActive(i int, active bool) error {
	if i < 0 || i >= len(c.studies) {
		return core.NewStudyNotFoundError(i)
	}

	pos := c.position(i)
	switch {
	case active && pos < 0:
		insertAt := 0
		for insertAt < len(c.active) && c.active[insertAt] < i {
			insertAt++
		}
		c.active = append(c.active, 0)
		copy(c.active[insertAt+1:], c.active[insertAt:])
		c.active[insertAt] = i
	case !active && pos >= 0:
		c.active = append(c.active[:pos], c.active[pos+1:]...)
	}

	c.logger.Debug("study %d (%s) active=%t, %d selected", i, c.studies[i].Name, active, len(c.active))
	return nil
}

func (c *Calculator) position(i int) int {
	for pos, idx := range c.active {
		if idx == i {
			return pos
		}
	}
	return -1
}

// Dependence returns the sample dependence decision, if made.
func (c *Calculator) Dependence() sus.Optional[sus.Dependence] {
	return c.dependence
}

// Parametric returns the test family decision, if made.
func (c *Calculator) Parametric() sus.Optional[sus.Parametric] {
	return c.parametric
}

// ChooseDependence records the sample dependence. A dependent design is
// refused while the active studies differ in respondent count. The
// decision can be made once; repeating it is a no-op.
func (c *Calculator) ChooseDependence(d sus.Dependence) error {
	if d != sus.Independent && d != sus.Dependent {
		return core.NewInvalidArgumentError(fmt.Sprintf("unknown sample dependence %d", int(d)))
	}
	if current, ok := c.dependence.Get(); ok {
		if current == d {
			return nil
		}
		return fmt.Errorf("%w: sample dependence is already %s", core.ErrDecisionLocked, current)
	}
	if d == sus.Dependent && !c.equalActiveSizes() {
		return fmt.Errorf("%w: selected studies have different numbers of respondents", core.ErrUnequalSampleSizes)
	}

	c.dependence = sus.Some(d)
	c.logger.Info("sample dependence set to %s", d)
	return nil
}

// ChooseMethod records the test family after checking that the resulting
// design can be executed for the current selection. An unsupported design
// returns an *UnsupportedDesignError and leaves the decision unset.
func (c *Calculator) ChooseMethod(p sus.Parametric) error {
	if p != sus.ParametricTest && p != sus.NonParametricTest {
		return core.NewInvalidArgumentError(fmt.Sprintf("unknown test family %d", int(p)))
	}
	if current, ok := c.parametric.Get(); ok {
		if current == p {
			return nil
		}
		return fmt.Errorf("%w: test family is already %s", core.ErrDecisionLocked, current)
	}

	dep, ok := c.dependence.Get()
	if !ok {
		return fmt.Errorf("%w: choose the sample dependence first", core.ErrDesignIncomplete)
	}
	if _, err := Route(len(c.active), sus.Design{Dependence: dep, Parametric: p}); err != nil {
		c.logger.Warn("test family %s rejected: %v", p, err)
		return err
	}

	c.parametric = sus.Some(p)
	c.logger.Info("test family set to %s", p)
	return nil
}

// Design returns the resolved design once both decisions are made.
func (c *Calculator) Design() (sus.Design, bool) {
	return sus.ResolveDesign(c.dependence, c.parametric)
}

// Route returns the test path for the current selection and design.
func (c *Calculator) Route() (sus.TestKind, error) {
	design, ok := c.Design()
	if !ok {
		return 0, core.ErrDesignIncomplete
	}
	return Route(len(c.active), design)
}

// Run executes the routed test over the active studies.
func (c *Calculator) Run(ctx context.Context, engine *analysis.Engine) (*sus.TestResult, error) {
	if len(c.active) < 2 {
		return nil, fmt.Errorf("%w: %d selected", core.ErrInsufficientActive, len(c.active))
	}
	kind, err := c.Route()
	if err != nil {
		return nil, err
	}
	if (kind == sus.PairedTTest || kind == sus.WilcoxonSignedRank) && !c.equalActiveSizes() {
		return nil, fmt.Errorf("%w: selected studies have different numbers of respondents", core.ErrUnequalSampleSizes)
	}
	return engine.Execute(ctx, kind, c.activeGroups())
}

// CheckAssumptions runs the normality and homogeneity checks over the
// active studies. It does not depend on the design decisions.
func (c *Calculator) CheckAssumptions(ctx context.Context, engine *analysis.Engine) (*sus.AssumptionReport, error) {
	if len(c.active) < 2 {
		return nil, fmt.Errorf("%w: %d selected", core.ErrInsufficientActive, len(c.active))
	}
	return engine.CheckAssumptions(ctx, c.activeGroups())
}

func (c *Calculator) activeGroups() []sus.Group {
	groups := make([]sus.Group, len(c.active))
	for i, idx := range c.active {
		s := c.studies[idx]
		groups[i] = sus.Group{Name: s.Name, Scores: s.SUSScores}
	}
	return groups
}

func (c *Calculator) equalActiveSizes() bool {
	for _, idx := range c.active {
		if c.studies[idx].Respondents() != c.studies[c.active[0]].Respondents() {
			return false
		}
	}
	return true
}

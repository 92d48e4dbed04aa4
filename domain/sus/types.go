package sus

import (
	"fmt"
)

// Alpha is the fixed significance threshold for every test family.
const Alpha = 0.05

// ItemCount is the number of questions in a SUS questionnaire.
const ItemCount = 10

// Study holds one system's respondents and their descriptive statistics.
// Study values are built once by analysis.NewStudy and never mutated.
type Study struct {
	Name          string      `json:"name" yaml:"name"`
	RawItemScores [][]float64 `json:"raw_item_scores" yaml:"raw_item_scores"` // respondent order
	SUSScores     []float64   `json:"sus_scores" yaml:"sus_scores"`           // same order as RawItemScores

	Mean         float64 `json:"mean" yaml:"mean"`                     // rounded to 2 decimals
	SampleStdDev float64 `json:"sample_std_dev" yaml:"sample_std_dev"` // rounded to 2 decimals, NaN when n == 1
	Min          float64 `json:"min" yaml:"min"`
	Max          float64 `json:"max" yaml:"max"`
	Q1           float64 `json:"q1" yaml:"q1"`
	Median       float64 `json:"median" yaml:"median"`
	Q3           float64 `json:"q3" yaml:"q3"`

	// Outliers are the SUS scores outside the Tukey fences, in respondent order.
	Outliers []float64 `json:"outliers" yaml:"outliers"`
	// Reliability is Cronbach's alpha over the raw item matrix.
	Reliability float64 `json:"reliability" yaml:"reliability"`
}

// Respondents returns the number of questionnaires in the study.
func (s Study) Respondents() int {
	return len(s.SUSScores)
}

// Group is a named sample handed to the test engine.
type Group struct {
	Name   string
	Scores []float64
}

// Dependence describes whether compared groups share respondents.
type Dependence int

const (
	Independent Dependence = iota + 1
	Dependent
)

func (d Dependence) String() string {
	switch d {
	case Independent:
		return "independent"
	case Dependent:
		return "dependent"
	default:
		return fmt.Sprintf("dependence(%d)", int(d))
	}
}

// ParseDependence parses "independent" or "dependent".
func ParseDependence(s string) (Dependence, error) {
	switch s {
	case "independent", "independent-samples", "between":
		return Independent, nil
	case "dependent", "paired", "within":
		return Dependent, nil
	}
	return 0, fmt.Errorf("unknown sample dependence %q", s)
}

// Parametric describes the analyst's test family choice.
type Parametric int

const (
	ParametricTest Parametric = iota + 1
	NonParametricTest
)

func (p Parametric) String() string {
	switch p {
	case ParametricTest:
		return "parametric"
	case NonParametricTest:
		return "non-parametric"
	default:
		return fmt.Sprintf("parametric(%d)", int(p))
	}
}

// ParseParametric parses "parametric" or "non-parametric".
func ParseParametric(s string) (Parametric, error) {
	switch s {
	case "parametric":
		return ParametricTest, nil
	case "non-parametric", "nonparametric":
		return NonParametricTest, nil
	}
	return 0, fmt.Errorf("unknown test family %q", s)
}

// Optional is a decision that may not have been made yet.
type Optional[T comparable] struct {
	value T
	set   bool
}

// Some returns a resolved decision.
func Some[T comparable](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it has been set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the decision has been made.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Design is a fully resolved pair of decisions. It can only be obtained
// once both decisions are set, so the router never sees a partial design.
type Design struct {
	Dependence Dependence `json:"dependence" yaml:"dependence"`
	Parametric Parametric `json:"parametric" yaml:"parametric"`
}

// ResolveDesign combines two optional decisions.
func ResolveDesign(dep Optional[Dependence], par Optional[Parametric]) (Design, bool) {
	d, okD := dep.Get()
	p, okP := par.Get()
	if !okD || !okP {
		return Design{}, false
	}
	return Design{Dependence: d, Parametric: p}, true
}

// TestKind tags the five supported test paths.
type TestKind int

const (
	IndependentTTest TestKind = iota + 1
	PairedTTest
	OneWayANOVA
	MannWhitneyU
	WilcoxonSignedRank
)

func (k TestKind) String() string {
	switch k {
	case IndependentTTest:
		return "independent-samples t-test"
	case PairedTTest:
		return "paired-samples t-test"
	case OneWayANOVA:
		return "one-way ANOVA"
	case MannWhitneyU:
		return "Mann-Whitney U test"
	case WilcoxonSignedRank:
		return "Wilcoxon signed-rank test"
	default:
		return fmt.Sprintf("test(%d)", int(k))
	}
}

// Interval is a confidence interval.
type Interval struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// GroupSummary carries the per-group figures a narrative quotes, computed
// by the engine from the raw scores (unrounded).
type GroupSummary struct {
	Name   string  `json:"name" yaml:"name"`
	N      int     `json:"n" yaml:"n"`
	Mean   float64 `json:"mean" yaml:"mean"`
	SD     float64 `json:"sd" yaml:"sd"`
	Median float64 `json:"median" yaml:"median"`
	Q1     float64 `json:"q1" yaml:"q1"`
	Q3     float64 `json:"q3" yaml:"q3"`
}

// IQR returns the interquartile range.
func (g GroupSummary) IQR() float64 {
	return g.Q3 - g.Q1
}

// PostHocResult is one Bonferroni-corrected pairwise comparison.
type PostHocResult struct {
	Group1Index      int     `json:"group1_index" yaml:"group1_index"`
	Group2Index      int     `json:"group2_index" yaml:"group2_index"`
	PValue           float64 `json:"p_value" yaml:"p_value"`
	Significant      bool    `json:"significant" yaml:"significant"`
	MeanDifference   float64 `json:"mean_difference" yaml:"mean_difference"`
	Statistic        float64 `json:"statistic" yaml:"statistic"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom" yaml:"degrees_of_freedom"`
	ConfidenceMin    float64 `json:"confidence_min" yaml:"confidence_min"`
	ConfidenceMax    float64 `json:"confidence_max" yaml:"confidence_max"`
}

// TestResult is the outcome of one executed test path. Fields that a
// family does not define are left at their zero value.
type TestResult struct {
	Kind   TestKind       `json:"kind" yaml:"kind"`
	Groups []GroupSummary `json:"groups" yaml:"groups"`

	Statistic        float64   `json:"statistic" yaml:"statistic"`
	DegreesOfFreedom []float64 `json:"degrees_of_freedom,omitempty" yaml:"degrees_of_freedom,omitempty"`
	PValue           float64   `json:"p_value" yaml:"p_value"`
	Significant      bool      `json:"significant" yaml:"significant"`
	Confidence       *Interval `json:"confidence_interval,omitempty" yaml:"confidence_interval,omitempty"`

	MeanDifference float64 `json:"mean_difference,omitempty" yaml:"mean_difference,omitempty"`
	StandardError  float64 `json:"standard_error,omitempty" yaml:"standard_error,omitempty"`
	SampleSize     int     `json:"sample_size" yaml:"sample_size"`

	// EffectSize is Cohen's d for the t-tests and eta squared for ANOVA.
	EffectSize    float64 `json:"effect_size,omitempty" yaml:"effect_size,omitempty"`
	HasEffectSize bool    `json:"has_effect_size" yaml:"has_effect_size"`

	// Z is the normal approximation of a rank statistic.
	Z        float64 `json:"z,omitempty" yaml:"z,omitempty"`
	HasTies  bool    `json:"has_ties,omitempty" yaml:"has_ties,omitempty"`
	HasZeros bool    `json:"has_zeros,omitempty" yaml:"has_zeros,omitempty"`

	// ANOVA only.
	BonferroniAlpha float64         `json:"bonferroni_alpha,omitempty" yaml:"bonferroni_alpha,omitempty"`
	PostHoc         []PostHocResult `json:"post_hoc,omitempty" yaml:"post_hoc,omitempty"`
}

// LeveneResult is the homogeneity-of-variance assumption check.
type LeveneResult struct {
	F                float64   `json:"f" yaml:"f"`
	DegreesOfFreedom []float64 `json:"degrees_of_freedom" yaml:"degrees_of_freedom"`
	PValue           float64   `json:"p_value" yaml:"p_value"`
	Significant      bool      `json:"significant" yaml:"significant"`
}

// ShapiroWilkResult is the normality assumption check for one group.
type ShapiroWilkResult struct {
	Name       string  `json:"name" yaml:"name"`
	W          float64 `json:"w" yaml:"w"`
	PValue     float64 `json:"p_value" yaml:"p_value"`
	SampleSize int     `json:"sample_size" yaml:"sample_size"`
	IsNormal   bool    `json:"is_normal" yaml:"is_normal"`
}

// AssumptionReport bundles the ad hoc assumption checks for the active studies.
type AssumptionReport struct {
	Normality   []ShapiroWilkResult `json:"normality" yaml:"normality"`
	Homogeneity *LeveneResult       `json:"homogeneity,omitempty" yaml:"homogeneity,omitempty"`
}

// MarshalText renders the decision by name.
func (d Dependence) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses the decision by name.
func (d *Dependence) UnmarshalText(b []byte) error {
	v, err := ParseDependence(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalText renders the decision by name.
func (p Parametric) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the decision by name.
func (p *Parametric) UnmarshalText(b []byte) error {
	v, err := ParseParametric(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalText renders the test kind by name.
func (k TestKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

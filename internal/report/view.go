// Package report turns analysis state into plain serializable records and
// renders them as Markdown or HTML.
package report

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"gosus/domain/sus"
	"gosus/internal/narrative"
)

// Number is a float that serializes NaN and infinities as null, since
// neither JSON nor most consumers can represent them.
type Number float64

// Valid reports whether the number is finite.
func (n Number) Valid() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(n))
}

func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Number(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

func (n Number) MarshalYAML() (interface{}, error) {
	if !n.Valid() {
		return nil, nil
	}
	return float64(n), nil
}

// String formats the number with two decimals, or "n/a".
func (n Number) String() string {
	if !n.Valid() {
		return "n/a"
	}
	return strconv.FormatFloat(float64(n), 'f', 2, 64)
}

func numbers(x []float64) []Number {
	out := make([]Number, len(x))
	for i, v := range x {
		out[i] = Number(v)
	}
	return out
}

// StudyView is the serializable form of a Study
type StudyView struct {
	Index        int        `json:"index" yaml:"index"`
	Name         string     `json:"name" yaml:"name"`
	Active       bool       `json:"active" yaml:"active"`
	Respondents  int        `json:"respondents" yaml:"respondents"`
	SUSScores    []Number   `json:"sus_scores" yaml:"sus_scores"`
	Mean         Number     `json:"mean" yaml:"mean"`
	SampleStdDev Number     `json:"sample_std_dev" yaml:"sample_std_dev"`
	Min          Number     `json:"min" yaml:"min"`
	Max          Number     `json:"max" yaml:"max"`
	Q1           Number     `json:"q1" yaml:"q1"`
	Median       Number     `json:"median" yaml:"median"`
	Q3           Number     `json:"q3" yaml:"q3"`
	Outliers     []Number   `json:"outliers" yaml:"outliers"`
	Reliability  Number     `json:"cronbach_alpha" yaml:"cronbach_alpha"`
	RawItems     [][]Number `json:"raw_item_scores,omitempty" yaml:"raw_item_scores,omitempty"`
}

// NewStudyView converts a Study. Raw item matrices are only included when
// withRaw is set.
func NewStudyView(index int, s sus.Study, active, withRaw bool) StudyView {
	v := StudyView{
		Index:        index,
		Name:         s.Name,
		Active:       active,
		Respondents:  s.Respondents(),
		SUSScores:    numbers(s.SUSScores),
		Mean:         Number(s.Mean),
		SampleStdDev: Number(s.SampleStdDev),
		Min:          Number(s.Min),
		Max:          Number(s.Max),
		Q1:           Number(s.Q1),
		Median:       Number(s.Median),
		Q3:           Number(s.Q3),
		Outliers:     numbers(s.Outliers),
		Reliability:  Number(s.Reliability),
	}
	if withRaw {
		v.RawItems = make([][]Number, len(s.RawItemScores))
		for i, row := range s.RawItemScores {
			v.RawItems[i] = numbers(row)
		}
	}
	return v
}

// GroupView is a GroupSummary with NaN-safe numbers
type GroupView struct {
	Name   string `json:"name" yaml:"name"`
	N      int    `json:"n" yaml:"n"`
	Mean   Number `json:"mean" yaml:"mean"`
	SD     Number `json:"sd" yaml:"sd"`
	Median Number `json:"median" yaml:"median"`
	Q1     Number `json:"q1" yaml:"q1"`
	Q3     Number `json:"q3" yaml:"q3"`
}

// PostHocView is one pairwise comparison with group names resolved
type PostHocView struct {
	Group1           string `json:"group1" yaml:"group1"`
	Group2           string `json:"group2" yaml:"group2"`
	PValue           Number `json:"p_value" yaml:"p_value"`
	Significant      bool   `json:"significant" yaml:"significant"`
	MeanDifference   Number `json:"mean_difference" yaml:"mean_difference"`
	Statistic        Number `json:"statistic" yaml:"statistic"`
	DegreesOfFreedom Number `json:"degrees_of_freedom" yaml:"degrees_of_freedom"`
	ConfidenceMin    Number `json:"confidence_min" yaml:"confidence_min"`
	ConfidenceMax    Number `json:"confidence_max" yaml:"confidence_max"`
}

// TestView is the serializable form of a TestResult
type TestView struct {
	Kind             sus.TestKind  `json:"kind" yaml:"kind"`
	Groups           []GroupView   `json:"groups" yaml:"groups"`
	Statistic        Number        `json:"statistic" yaml:"statistic"`
	DegreesOfFreedom []Number      `json:"degrees_of_freedom,omitempty" yaml:"degrees_of_freedom,omitempty"`
	PValue           Number        `json:"p_value" yaml:"p_value"`
	Significant      bool          `json:"significant" yaml:"significant"`
	ConfidenceMin    *Number       `json:"confidence_min,omitempty" yaml:"confidence_min,omitempty"`
	ConfidenceMax    *Number       `json:"confidence_max,omitempty" yaml:"confidence_max,omitempty"`
	MeanDifference   *Number       `json:"mean_difference,omitempty" yaml:"mean_difference,omitempty"`
	SampleSize       int           `json:"sample_size" yaml:"sample_size"`
	EffectSize       *Number       `json:"effect_size,omitempty" yaml:"effect_size,omitempty"`
	EffectSizeLabel  string        `json:"effect_size_label,omitempty" yaml:"effect_size_label,omitempty"`
	Z                *Number       `json:"z,omitempty" yaml:"z,omitempty"`
	HasTies          bool          `json:"has_ties,omitempty" yaml:"has_ties,omitempty"`
	HasZeros         bool          `json:"has_zeros,omitempty" yaml:"has_zeros,omitempty"`
	BonferroniAlpha  *Number       `json:"bonferroni_alpha,omitempty" yaml:"bonferroni_alpha,omitempty"`
	PostHoc          []PostHocView `json:"post_hoc,omitempty" yaml:"post_hoc,omitempty"`
}

func ptr(v float64) *Number {
	n := Number(v)
	return &n
}

// NewTestView converts a TestResult
func NewTestView(r *sus.TestResult) *TestView {
	if r == nil {
		return nil
	}
	v := &TestView{
		Kind:             r.Kind,
		Statistic:        Number(r.Statistic),
		DegreesOfFreedom: numbers(r.DegreesOfFreedom),
		PValue:           Number(r.PValue),
		Significant:      r.Significant,
		SampleSize:       r.SampleSize,
		HasTies:          r.HasTies,
		HasZeros:         r.HasZeros,
	}
	for _, g := range r.Groups {
		v.Groups = append(v.Groups, GroupView{
			Name: g.Name, N: g.N, Mean: Number(g.Mean), SD: Number(g.SD),
			Median: Number(g.Median), Q1: Number(g.Q1), Q3: Number(g.Q3),
		})
	}
	if r.Confidence != nil {
		v.ConfidenceMin = ptr(r.Confidence.Min)
		v.ConfidenceMax = ptr(r.Confidence.Max)
	}

	switch r.Kind {
	case sus.IndependentTTest, sus.PairedTTest:
		v.MeanDifference = ptr(r.MeanDifference)
		v.EffectSize = ptr(r.EffectSize)
		v.EffectSizeLabel = narrative.DescribeCohensD(r.EffectSize)
	case sus.OneWayANOVA:
		v.EffectSize = ptr(r.EffectSize)
		v.EffectSizeLabel = narrative.DescribeEtaSquared(r.EffectSize)
		v.BonferroniAlpha = ptr(r.BonferroniAlpha)
	case sus.MannWhitneyU, sus.WilcoxonSignedRank:
		v.Z = ptr(r.Z)
	}

	for _, ph := range r.PostHoc {
		v.PostHoc = append(v.PostHoc, PostHocView{
			Group1:           groupName(r.Groups, ph.Group1Index),
			Group2:           groupName(r.Groups, ph.Group2Index),
			PValue:           Number(ph.PValue),
			Significant:      ph.Significant,
			MeanDifference:   Number(ph.MeanDifference),
			Statistic:        Number(ph.Statistic),
			DegreesOfFreedom: Number(ph.DegreesOfFreedom),
			ConfidenceMin:    Number(ph.ConfidenceMin),
			ConfidenceMax:    Number(ph.ConfidenceMax),
		})
	}
	return v
}

func groupName(groups []sus.GroupSummary, i int) string {
	if i >= 0 && i < len(groups) {
		return groups[i].Name
	}
	return strconv.Itoa(i)
}

// NormalityView is one Shapiro-Wilk check with its sentence
type NormalityView struct {
	Name       string `json:"name" yaml:"name"`
	W          Number `json:"w" yaml:"w"`
	PValue     Number `json:"p_value" yaml:"p_value"`
	SampleSize int    `json:"sample_size" yaml:"sample_size"`
	IsNormal   bool   `json:"is_normal" yaml:"is_normal"`
	Sentence   string `json:"sentence" yaml:"sentence"`
}

// HomogeneityView is the Levene check with its sentence
type HomogeneityView struct {
	F                Number   `json:"f" yaml:"f"`
	DegreesOfFreedom []Number `json:"degrees_of_freedom" yaml:"degrees_of_freedom"`
	PValue           Number   `json:"p_value" yaml:"p_value"`
	Significant      bool     `json:"significant" yaml:"significant"`
	Sentence         string   `json:"sentence" yaml:"sentence"`
}

// AssumptionsView bundles the assumption checks
type AssumptionsView struct {
	Normality   []NormalityView  `json:"normality" yaml:"normality"`
	Homogeneity *HomogeneityView `json:"homogeneity,omitempty" yaml:"homogeneity,omitempty"`
}

// NewAssumptionsView converts an AssumptionReport and renders its sentences
func NewAssumptionsView(a *sus.AssumptionReport) *AssumptionsView {
	if a == nil {
		return nil
	}
	v := &AssumptionsView{Normality: []NormalityView{}}
	for _, n := range a.Normality {
		v.Normality = append(v.Normality, NormalityView{
			Name:       n.Name,
			W:          Number(n.W),
			PValue:     Number(n.PValue),
			SampleSize: n.SampleSize,
			IsNormal:   n.IsNormal,
			Sentence:   narrative.ShapiroWilk(n),
		})
	}
	if h := a.Homogeneity; h != nil {
		v.Homogeneity = &HomogeneityView{
			F:                Number(h.F),
			DegreesOfFreedom: numbers(h.DegreesOfFreedom),
			PValue:           Number(h.PValue),
			Significant:      h.Significant,
			Sentence:         narrative.Levene(*h),
		}
	}
	return v
}

// Report is the complete, serializable outcome of one session
type Report struct {
	Title       string           `json:"title" yaml:"title"`
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
	Studies     []StudyView      `json:"studies" yaml:"studies"`
	Design      *sus.Design      `json:"design,omitempty" yaml:"design,omitempty"`
	Test        *TestView        `json:"test,omitempty" yaml:"test,omitempty"`
	Narrative   []string         `json:"narrative,omitempty" yaml:"narrative,omitempty"`
	Assumptions *AssumptionsView `json:"assumptions,omitempty" yaml:"assumptions,omitempty"`
}

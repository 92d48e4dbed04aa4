// Package narrative renders APA-style sentences from finished test results.
// Rendering is pure: it reads only the result it is given.
package narrative

import (
	"fmt"
	"math"
	"strings"

	"gosus/domain/core"
	"gosus/domain/sus"
)

// Narrative is the rendered text for one result. ANOVA produces three
// paragraphs (descriptive, omnibus, post-hoc); other tests produce one.
type Narrative struct {
	Kind       sus.TestKind `json:"kind" yaml:"kind"`
	Paragraphs []string     `json:"paragraphs" yaml:"paragraphs"`
}

// Text joins the paragraphs with blank lines.
func (n Narrative) Text() string {
	return strings.Join(n.Paragraphs, "\n\n")
}

// DescribeCohensD bands Cohen's d.
func DescribeCohensD(d float64) string {
	switch {
	case d < 0.2:
		return "very small"
	case d < 0.5:
		return "small"
	case d < 0.8:
		return "medium"
	default:
		return "large"
	}
}

// DescribeEtaSquared bands eta squared.
func DescribeEtaSquared(eta float64) string {
	switch {
	case eta < 0.06:
		return "small"
	case eta < 0.14:
		return "medium"
	default:
		return "large"
	}
}

// Render produces the narrative for r.
func Render(r *sus.TestResult) (Narrative, error) {
	if r == nil {
		return Narrative{}, core.NewInvalidArgumentError("nil test result")
	}

	var paragraphs []string
	switch r.Kind {
	case sus.IndependentTTest:
		if len(r.Groups) != 2 || r.Confidence == nil {
			return Narrative{}, incomplete(r)
		}
		paragraphs = []string{independentTTest(r)}
	case sus.PairedTTest:
		if len(r.Groups) != 2 || r.Confidence == nil {
			return Narrative{}, incomplete(r)
		}
		paragraphs = []string{pairedTTest(r)}
	case sus.MannWhitneyU:
		if len(r.Groups) != 2 {
			return Narrative{}, incomplete(r)
		}
		paragraphs = []string{mannWhitneyU(r)}
	case sus.WilcoxonSignedRank:
		if len(r.Groups) != 2 {
			return Narrative{}, incomplete(r)
		}
		paragraphs = []string{wilcoxon(r)}
	case sus.OneWayANOVA:
		if len(r.Groups) < 2 || len(r.DegreesOfFreedom) != 2 {
			return Narrative{}, incomplete(r)
		}
		for _, ph := range r.PostHoc {
			if ph.Group1Index < 0 || ph.Group2Index >= len(r.Groups) || ph.Group1Index >= ph.Group2Index {
				return Narrative{}, incomplete(r)
			}
		}
		paragraphs = anova(r)
	default:
		return Narrative{}, core.NewInvalidArgumentError(fmt.Sprintf("no narrative for %s", r.Kind))
	}

	return Narrative{Kind: r.Kind, Paragraphs: paragraphs}, nil
}

func incomplete(r *sus.TestResult) error {
	return core.NewInvalidArgumentError(fmt.Sprintf("%s result is incomplete", r.Kind))
}

func significance(significant bool) string {
	if significant {
		return "a significant"
	}
	return "no significant"
}

// f2 formats a value to two decimals; p4 formats a p-value to four. Go's
// fmt always uses '.' as the decimal separator.
func f2(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func p4(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

func df(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return f2(v)
}

func firstDF(r *sus.TestResult) float64 {
	if len(r.DegreesOfFreedom) == 0 {
		return 0
	}
	return r.DegreesOfFreedom[0]
}

func independentTTest(r *sus.TestResult) string {
	a, b := r.Groups[0], r.Groups[1]
	return "An independent-samples t-test was conducted to compare the means between the two SUS study scores. " +
		fmt.Sprintf("There was %s difference in scores for %s (M = %s, SD = %s) and %s (M = %s, SD = %s); ",
			significance(r.Significant), a.Name, f2(a.Mean), f2(a.SD), b.Name, f2(b.Mean), f2(b.SD)) +
		fmt.Sprintf("t(%s) = %s, p = %s. ", f2(firstDF(r)), f2(r.Statistic), p4(r.PValue)) +
		fmt.Sprintf("The magnitude of the differences in the means (mean difference = %s, 95%% CI: %s to %s) ",
			f2(r.MeanDifference), f2(r.Confidence.Min), f2(r.Confidence.Max)) +
		fmt.Sprintf("is considered %s (Cohen's d = %s).", DescribeCohensD(r.EffectSize), f2(r.EffectSize))
}

func pairedTTest(r *sus.TestResult) string {
	a, b := r.Groups[0], r.Groups[1]
	return fmt.Sprintf("A paired-samples t-test was conducted to compare %s and %s SUS scores. ", a.Name, b.Name) +
		fmt.Sprintf("There was %s difference in SUS scores for %s (M = %s, SD = %s) and %s (M = %s, SD = %s), ",
			significance(r.Significant), a.Name, f2(a.Mean), f2(a.SD), b.Name, f2(b.Mean), f2(b.SD)) +
		fmt.Sprintf("t(%d) = %s, p = %s. ", r.SampleSize-1, f2(r.Statistic), p4(r.PValue)) +
		fmt.Sprintf("The mean difference was %s (95%% CI: %s to %s). ",
			f2(r.MeanDifference), f2(r.Confidence.Min), f2(r.Confidence.Max)) +
		fmt.Sprintf("This would be considered a %s effect size (Cohen's d = %s).", DescribeCohensD(r.EffectSize), f2(r.EffectSize))
}

func mannWhitneyU(r *sus.TestResult) string {
	a, b := r.Groups[0], r.Groups[1]
	return "A Mann-Whitney U test was conducted to determine whether there were significant differences between SUS scores of the two systems. " +
		fmt.Sprintf("There was %s difference in scores for %s (Mdn = %s) and %s (Mdn = %s); U = %s, p = %s.",
			significance(r.Significant), a.Name, f2(a.Median), b.Name, f2(b.Median), f2(r.Statistic), p4(r.PValue))
}

func wilcoxon(r *sus.TestResult) string {
	a, b := r.Groups[0], r.Groups[1]
	verdict := "failed to reject"
	if r.Significant {
		verdict = "rejected"
	}

	var sb strings.Builder
	sb.WriteString("A Wilcoxon signed-rank test was conducted to determine whether there was a significant difference in SUS scores. ")
	fmt.Fprintf(&sb, "There was %s difference in scores for %s (Mdn = %s, IQR = %s) and %s (Mdn = %s, IQR = %s); Z = %s, p = %s. ",
		significance(r.Significant), a.Name, f2(a.Median), f2(a.IQR()), b.Name, f2(b.Median), f2(b.IQR()), f2(r.Z), p4(r.PValue))
	fmt.Fprintf(&sb, "The test %s the null hypothesis.", verdict)
	if r.HasTies {
		sb.WriteString(" The test detected ties in the data.")
	}
	if r.HasZeros {
		sb.WriteString(" The test detected pairs with zero difference in the data.")
	}
	return sb.String()
}

func anova(r *sus.TestResult) []string {
	k := len(r.Groups)

	descriptive := make([]string, k)
	for i, g := range r.Groups {
		descriptive[i] = fmt.Sprintf("The SUS study score (mean) of %s is %s (SD = %s).", g.Name, f2(g.Mean), f2(g.SD))
	}

	omnibus := fmt.Sprintf("A one-way ANOVA was conducted to compare the effect of the system/variable on SUS scores for the %d conditions. ", k) +
		fmt.Sprintf("There is %s effect of the system/variable on SUS scores at the p < .05 level for the %d conditions ", significance(r.Significant), k) +
		fmt.Sprintf("[F(%s, %s) = %s, p = %s]. ", df(r.DegreesOfFreedom[0]), df(r.DegreesOfFreedom[1]), f2(r.Statistic), p4(r.PValue)) +
		fmt.Sprintf("The effect size (η²) is %s, which is generally considered a %s effect.", f2(r.EffectSize), DescribeEtaSquared(r.EffectSize))

	postHoc := []string{"Post-hoc pairwise comparisons using Bonferroni-corrected t-tests indicated that:"}
	for _, ph := range r.PostHoc {
		a, b := r.Groups[ph.Group1Index], r.Groups[ph.Group2Index]
		verdict := "not significantly"
		if ph.Significant {
			verdict = "significantly"
		}
		postHoc = append(postHoc,
			fmt.Sprintf("The mean SUS score of %s (M = %s, SD = %s) is %s different from the mean SUS score of %s (M = %s, SD = %s), ",
				a.Name, f2(a.Mean), f2(a.SD), verdict, b.Name, f2(b.Mean), f2(b.SD))+
				fmt.Sprintf("t(%s) = %s, p = %s, 95%% CI [%s, %s]. ",
					f2(ph.DegreesOfFreedom), f2(ph.Statistic), p4(ph.PValue), f2(ph.ConfidenceMin), f2(ph.ConfidenceMax))+
				fmt.Sprintf("The mean difference in SUS scores between these two groups is %s.", f2(math.Abs(ph.MeanDifference))))
	}

	return []string{
		strings.Join(descriptive, " "),
		omnibus,
		strings.Join(postHoc, " "),
	}
}

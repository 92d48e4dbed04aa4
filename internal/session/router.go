package session

import (
	"fmt"

	"gosus/domain/core"
	"gosus/domain/sus"
)

// Notice names a design the tool recognises but does not compute
type Notice int

const (
	RepeatedMeasuresANOVA Notice = iota + 1
	KruskalWallis
	Friedman
)

func (n Notice) String() string {
	switch n {
	case RepeatedMeasuresANOVA:
		return "RepeatedMeasuresANOVA"
	case KruskalWallis:
		return "KruskalWallis"
	case Friedman:
		return "Friedman"
	default:
		return fmt.Sprintf("Notice(%d)", int(n))
	}
}

// Text is the message shown to the analyst for the notice.
func (n Notice) Text() string {
	switch n {
	case RepeatedMeasuresANOVA:
		return "A parametric comparison of more than two dependent samples requires a repeated measures ANOVA, " +
			"which is not supported. Select two studies or choose independent samples."
	case KruskalWallis:
		return "A non-parametric comparison of more than two independent samples requires the Kruskal-Wallis test, " +
			"which is not supported. Select two studies or choose a parametric test."
	case Friedman:
		return "A non-parametric comparison of more than two dependent samples requires the Friedman test, " +
			"which is not supported. Select two studies to run a Wilcoxon signed-rank test."
	default:
		return "The selected study design is not supported."
	}
}

// MarshalText renders the notice by name.
func (n Notice) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnsupportedDesignError blocks execution of a design with no implemented test
type UnsupportedDesignError struct {
	Notice Notice
	Groups int
	Design sus.Design
}

func (e *UnsupportedDesignError) Error() string {
	return e.Notice.Text()
}

func (e *UnsupportedDesignError) Unwrap() error {
	return core.ErrUnsupportedDesign
}

// Route maps the active group count and a resolved design to a test path.
// It does no numeric work.
func Route(groups int, d sus.Design) (sus.TestKind, error) {
	if groups < 2 {
		return 0, fmt.Errorf("%w: %d selected", core.ErrInsufficientActive, groups)
	}
	if !validDesign(d) {
		return 0, core.NewInvalidArgumentError(fmt.Sprintf("unknown design %s/%s", d.Dependence, d.Parametric))
	}

	if groups == 2 {
		switch {
		case d.Dependence == sus.Independent && d.Parametric == sus.ParametricTest:
			return sus.IndependentTTest, nil
		case d.Dependence == sus.Dependent && d.Parametric == sus.ParametricTest:
			return sus.PairedTTest, nil
		case d.Dependence == sus.Independent:
			return sus.MannWhitneyU, nil
		default:
			return sus.WilcoxonSignedRank, nil
		}
	}

	switch {
	case d.Dependence == sus.Independent && d.Parametric == sus.ParametricTest:
		return sus.OneWayANOVA, nil
	case d.Dependence == sus.Dependent && d.Parametric == sus.ParametricTest:
		return 0, &UnsupportedDesignError{Notice: RepeatedMeasuresANOVA, Groups: groups, Design: d}
	case d.Dependence == sus.Independent:
		return 0, &UnsupportedDesignError{Notice: KruskalWallis, Groups: groups, Design: d}
	default:
		return 0, &UnsupportedDesignError{Notice: Friedman, Groups: groups, Design: d}
	}
}

func validDesign(d sus.Design) bool {
	return (d.Dependence == sus.Independent || d.Dependence == sus.Dependent) &&
		(d.Parametric == sus.ParametricTest || d.Parametric == sus.NonParametricTest)
}

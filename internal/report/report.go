package report

import (
	"fmt"
	"strings"
	"time"

	"gosus/domain/sus"
	"gosus/internal/narrative"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const defaultTitle = "SUS Analysis Report"

// Input is everything a report can draw on. Only Studies is required.
type Input struct {
	Title         string
	Studies       []sus.Study
	ActiveIndices []int
	Design        *sus.Design
	Result        *sus.TestResult
	Assumptions   *sus.AssumptionReport
	IncludeRaw    bool
	GeneratedAt   time.Time
}

// Build assembles a Report and renders the test narrative.
func Build(in Input) (*Report, error) {
	active := make(map[int]bool, len(in.ActiveIndices))
	for _, i := range in.ActiveIndices {
		active[i] = true
	}

	title := in.Title
	if title == "" {
		title = defaultTitle
	}
	generated := in.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}

	r := &Report{
		Title:       title,
		GeneratedAt: generated,
		Studies:     make([]StudyView, len(in.Studies)),
		Design:      in.Design,
		Test:        NewTestView(in.Result),
		Assumptions: NewAssumptionsView(in.Assumptions),
	}
	for i, s := range in.Studies {
		r.Studies[i] = NewStudyView(i, s, active[i], in.IncludeRaw)
	}

	if in.Result != nil {
		n, err := narrative.Render(in.Result)
		if err != nil {
			return nil, fmt.Errorf("rendering narrative: %w", err)
		}
		r.Narrative = n.Paragraphs
	}
	return r, nil
}

// Markdown renders the report as a Markdown document.
func Markdown(r *Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", r.Title)
	fmt.Fprintf(&sb, "_Generated %s_\n\n", r.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Descriptive statistics\n\n")
	sb.WriteString("| System | Active | n | Mean | SD | Min | Q1 | Median | Q3 | Max | Outliers | Cronbach's α |\n")
	sb.WriteString("|---|---|---|---|---|---|---|---|---|---|---|---|\n")
	for _, s := range r.Studies {
		fmt.Fprintf(&sb, "| %s | %s | %d | %s | %s | %s | %s | %s | %s | %s | %d | %s |\n",
			escapeCell(s.Name), yesNo(s.Active), s.Respondents, s.Mean, s.SampleStdDev,
			s.Min, s.Q1, s.Median, s.Q3, s.Max, len(s.Outliers), s.Reliability)
	}
	sb.WriteString("\n")

	if r.Design != nil {
		sb.WriteString("## Study design\n\n")
		fmt.Fprintf(&sb, "- Samples: %s\n- Test family: %s\n\n", r.Design.Dependence, r.Design.Parametric)
	}

	if t := r.Test; t != nil {
		fmt.Fprintf(&sb, "## %s\n\n", capitalize(t.Kind.String()))
		for _, p := range r.Narrative {
			sb.WriteString(p)
			sb.WriteString("\n\n")
		}

		if len(t.PostHoc) > 0 {
			sb.WriteString("### Post-hoc comparisons\n\n")
			if t.BonferroniAlpha != nil {
				fmt.Fprintf(&sb, "Bonferroni-adjusted α = %.4f\n\n", float64(*t.BonferroniAlpha))
			}
			sb.WriteString("| Comparison | Mean difference | t | df | p | 95% CI | Significant |\n")
			sb.WriteString("|---|---|---|---|---|---|---|\n")
			for _, ph := range t.PostHoc {
				fmt.Fprintf(&sb, "| %s vs %s | %s | %s | %s | %s | [%s, %s] | %s |\n",
					escapeCell(ph.Group1), escapeCell(ph.Group2), ph.MeanDifference, ph.Statistic,
					ph.DegreesOfFreedom, pValue(ph.PValue), ph.ConfidenceMin, ph.ConfidenceMax, yesNo(ph.Significant))
			}
			sb.WriteString("\n")
		}
	}

	if a := r.Assumptions; a != nil {
		sb.WriteString("## Assumption checks\n\n")
		for _, n := range a.Normality {
			fmt.Fprintf(&sb, "- **%s**: %s\n", n.Name, n.Sentence)
		}
		if a.Homogeneity != nil {
			fmt.Fprintf(&sb, "- %s\n", a.Homogeneity.Sentence)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// HTML renders the report as a complete HTML page.
func HTML(r *Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(Markdown(r)))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: r.Title,
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
	})
	return markdown.Render(doc, renderer)
}

func pValue(n Number) string {
	if !n.Valid() {
		return n.String()
	}
	return fmt.Sprintf("%.4f", float64(n))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

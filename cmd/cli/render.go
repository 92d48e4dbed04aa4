package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gosus/internal/report"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

func renderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderStudies(w io.Writer, studies []report.StudyView) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "System", "Active", "n", "Mean", "SD", "Min", "Q1", "Median", "Q3", "Max", "Outliers", "Alpha"})
	for _, s := range studies {
		active := ""
		if s.Active {
			active = "✓"
		}
		outliers := make([]string, len(s.Outliers))
		for i, o := range s.Outliers {
			outliers[i] = o.String()
		}
		t.AppendRow(table.Row{
			s.Index, s.Name, active, s.Respondents, s.Mean, s.SampleStdDev,
			s.Min, s.Q1, s.Median, s.Q3, s.Max, strings.Join(outliers, ", "), s.Reliability,
		})
	}
	t.Render()
}

func renderTest(w io.Writer, v *report.TestView) {
	t := newTable(w)
	t.SetTitle("%s", v.Kind)
	t.AppendHeader(table.Row{"System", "n", "Mean", "SD", "Median", "Q1", "Q3"})
	for _, g := range v.Groups {
		t.AppendRow(table.Row{g.Name, g.N, g.Mean, g.SD, g.Median, g.Q1, g.Q3})
	}

	dfs := make([]string, len(v.DegreesOfFreedom))
	for i, df := range v.DegreesOfFreedom {
		dfs[i] = df.String()
	}
	t.AppendFooter(table.Row{"Statistic", v.Statistic, "df", strings.Join(dfs, ", "), "p", pValue(v.PValue), significantMark(v.Significant)})
	t.Render()

	if len(v.PostHoc) == 0 {
		return
	}
	fmt.Fprintln(w)
	ph := newTable(w)
	if v.BonferroniAlpha != nil {
		ph.SetTitle("Post-hoc (Bonferroni α = %.4f)", float64(*v.BonferroniAlpha))
	}
	ph.AppendHeader(table.Row{"Comparison", "Mean diff", "t", "df", "p", "95% CI", ""})
	for _, c := range v.PostHoc {
		ph.AppendRow(table.Row{
			c.Group1 + " vs " + c.Group2, c.MeanDifference, c.Statistic, c.DegreesOfFreedom,
			pValue(c.PValue), fmt.Sprintf("[%s, %s]", c.ConfidenceMin, c.ConfidenceMax), significantMark(c.Significant),
		})
	}
	ph.Render()
}

func renderAssumptions(w io.Writer, v *report.AssumptionsView) {
	t := newTable(w)
	t.SetTitle("Shapiro-Wilk")
	t.AppendHeader(table.Row{"System", "n", "W", "p", "Normal"})
	for _, n := range v.Normality {
		normal := "no"
		if n.IsNormal {
			normal = "yes"
		}
		t.AppendRow(table.Row{n.Name, n.SampleSize, n.W, pValue(n.PValue), normal})
	}
	t.Render()

	for _, n := range v.Normality {
		fmt.Fprintf(w, "%s: %s\n", n.Name, n.Sentence)
	}
	if v.Homogeneity != nil {
		fmt.Fprintln(w, v.Homogeneity.Sentence)
	}
}

func pValue(n report.Number) string {
	if !n.Valid() {
		return n.String()
	}
	return fmt.Sprintf("%.4f", float64(n))
}

func significantMark(significant bool) string {
	if significant {
		return "significant"
	}
	return "not significant"
}

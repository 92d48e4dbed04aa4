package report

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"gosus/adapters/stats/primitives"
	"gosus/domain/sus"
	"gosus/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func study(t *testing.T, name string, rows ...[]float64) sus.Study {
	t.Helper()
	s, err := analysis.NewStudy(name, rows, analysis.DefaultTukeyK)
	require.NoError(t, err)
	return s
}

var (
	rowNeutral = []float64{3, 3, 3, 3, 3, 3, 3, 3, 3, 3}
	rowGood    = []float64{4, 2, 4, 2, 4, 2, 4, 2, 4, 2}
	rowBest    = []float64{5, 1, 5, 1, 5, 1, 5, 1, 5, 1}
	rowMixed   = []float64{4, 2, 3, 2, 4, 3, 4, 2, 4, 2}
	rowLow     = []float64{2, 4, 2, 4, 2, 4, 2, 4, 2, 4}
)

func TestNumber_JSON(t *testing.T) {
	b, err := json.Marshal([]Number{1.5, Number(math.NaN()), Number(math.Inf(1))})
	require.NoError(t, err)
	assert.Equal(t, "[1.5,null,null]", string(b))

	var n Number
	require.NoError(t, json.Unmarshal([]byte("null"), &n))
	assert.False(t, n.Valid())
	assert.Equal(t, "n/a", n.String())
	assert.Equal(t, "42.70", Number(42.7).String())
}

func TestNumber_YAML(t *testing.T) {
	out, err := yaml.Marshal(map[string]Number{"sd": Number(math.NaN()), "mean": 50})
	require.NoError(t, err)
	assert.Contains(t, string(out), "sd: null")
	assert.Contains(t, string(out), "mean: 50")
}

func TestBuild_SingleRespondentStudySerializes(t *testing.T) {
	studies := []sus.Study{
		study(t, "Solo", rowGood),
		study(t, "Pair", rowNeutral, rowBest),
	}

	r, err := Build(Input{Studies: studies, ActiveIndices: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, defaultTitle, r.Title)
	assert.False(t, r.Studies[0].Active)
	assert.True(t, r.Studies[1].Active)
	assert.Nil(t, r.Studies[0].RawItems)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"sample_std_dev":null`)
}

func TestBuild_WithTestAndAssumptions(t *testing.T) {
	ctx := context.Background()
	engine := analysis.NewEngine(primitives.New(), nil)

	studies := []sus.Study{
		study(t, "A", rowNeutral, rowMixed, rowLow, rowGood),
		study(t, "B", rowGood, rowBest, rowBest, rowMixed),
		study(t, "C", rowLow, rowLow, rowNeutral, rowMixed),
	}
	groups := make([]sus.Group, len(studies))
	for i, s := range studies {
		groups[i] = sus.Group{Name: s.Name, Scores: s.SUSScores}
	}

	result, err := engine.Execute(ctx, sus.OneWayANOVA, groups)
	require.NoError(t, err)
	assumptions, err := engine.CheckAssumptions(ctx, groups)
	require.NoError(t, err)

	design := sus.Design{Dependence: sus.Independent, Parametric: sus.ParametricTest}
	r, err := Build(Input{
		Title:         "Checkout redesign",
		Studies:       studies,
		ActiveIndices: []int{0, 1, 2},
		Design:        &design,
		Result:        result,
		Assumptions:   assumptions,
		IncludeRaw:    true,
		GeneratedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, r.Narrative, 3)
	require.NotNil(t, r.Test)
	assert.Len(t, r.Test.PostHoc, 3)
	assert.Equal(t, "A", r.Test.PostHoc[0].Group1)
	assert.Equal(t, "B", r.Test.PostHoc[0].Group2)
	assert.Len(t, r.Studies[0].RawItems, 4)
	require.NotNil(t, r.Assumptions.Homogeneity)
	assert.True(t, strings.HasPrefix(r.Assumptions.Homogeneity.Sentence, "Levene's test"))

	md := Markdown(r)
	assert.True(t, strings.HasPrefix(md, "# Checkout redesign\n"))
	assert.Contains(t, md, "## Descriptive statistics")
	assert.Contains(t, md, "## One-way ANOVA")
	assert.Contains(t, md, "### Post-hoc comparisons")
	assert.Contains(t, md, "Bonferroni-adjusted α = 0.0167")
	assert.Contains(t, md, "## Assumption checks")
	assert.Contains(t, md, "- Samples: independent")
	assert.Contains(t, md, r.Narrative[1])

	page := string(HTML(r))
	assert.Contains(t, page, "<title>Checkout redesign</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "Post-hoc comparisons")
}

func TestBuild_RejectsIncompleteResult(t *testing.T) {
	_, err := Build(Input{Result: &sus.TestResult{Kind: sus.PairedTTest}})
	assert.Error(t, err)
}

func TestMarkdown_EscapesPipes(t *testing.T) {
	r, err := Build(Input{Studies: []sus.Study{study(t, "A|B", rowNeutral, rowGood)}})
	require.NoError(t, err)
	assert.Contains(t, Markdown(r), `| A\|B |`)
}

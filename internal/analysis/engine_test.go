package analysis

import (
	"context"
	"math"
	"testing"

	"gosus/adapters/stats/primitives"
	"gosus/domain/core"
	"gosus/domain/stats"
	"gosus/domain/sus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPrimitives feeds canned primitive outputs into the engine
type MockPrimitives struct {
	mock.Mock
}

func (m *MockPrimitives) TwoSampleTTest(ctx context.Context, x, y []float64) (stats.TTest, error) {
	args := m.Called(ctx, x, y)
	return args.Get(0).(stats.TTest), args.Error(1)
}

func (m *MockPrimitives) PairedTTest(ctx context.Context, x, y []float64) (stats.TTest, error) {
	args := m.Called(ctx, x, y)
	return args.Get(0).(stats.TTest), args.Error(1)
}

func (m *MockPrimitives) OneWayANOVA(ctx context.Context, groups [][]float64) (stats.FTest, error) {
	args := m.Called(ctx, groups)
	return args.Get(0).(stats.FTest), args.Error(1)
}

func (m *MockPrimitives) MannWhitneyU(ctx context.Context, x, y []float64) (stats.RankTest, error) {
	args := m.Called(ctx, x, y)
	return args.Get(0).(stats.RankTest), args.Error(1)
}

func (m *MockPrimitives) WilcoxonSignedRank(ctx context.Context, x, y []float64) (stats.RankTest, error) {
	args := m.Called(ctx, x, y)
	return args.Get(0).(stats.RankTest), args.Error(1)
}

func (m *MockPrimitives) Levene(ctx context.Context, groups [][]float64, median bool) (stats.FTest, error) {
	args := m.Called(ctx, groups, median)
	return args.Get(0).(stats.FTest), args.Error(1)
}

func (m *MockPrimitives) ShapiroWilk(ctx context.Context, x []float64) (stats.NormalityTest, error) {
	args := m.Called(ctx, x)
	return args.Get(0).(stats.NormalityTest), args.Error(1)
}

func twoGroups() []sus.Group {
	return []sus.Group{
		{Name: "A", Scores: []float64{2, 1, 3, 4}},
		{Name: "B", Scores: []float64{6, 5, 7, 9}},
	}
}

func TestEngine_IndependentTTestCohensD(t *testing.T) {
	engine := NewEngine(primitives.New(), nil)

	res, err := engine.Execute(context.Background(), sus.IndependentTTest, twoGroups())
	require.NoError(t, err)

	pooledSD := math.Sqrt((5.0 + 8.75) / 6.0)
	assert.Equal(t, sus.IndependentTTest, res.Kind)
	assert.InDelta(t, 4.25/pooledSD, res.EffectSize, 1e-12)
	assert.True(t, res.HasEffectSize)
	assert.InDelta(t, -3.9703446152237674, res.Statistic, 1e-9)
	assert.Equal(t, []float64{6}, res.DegreesOfFreedom)
	require.NotNil(t, res.Confidence)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "A", res.Groups[0].Name)
	assert.InDelta(t, 2.5, res.Groups[0].Mean, 1e-12)
	assert.InDelta(t, 6.75, res.Groups[1].Mean, 1e-12)
}

func TestEngine_PairedEffectSizeUsesDifferenceSD(t *testing.T) {
	prims := new(MockPrimitives)
	groups := twoGroups()
	prims.On("PairedTTest", mock.Anything, groups[0].Scores, groups[1].Scores).Return(stats.TTest{
		Statistic:          -17,
		DegreesOfFreedom:   3,
		PValue:             0.0004,
		Significant:        true,
		ObservedDifference: -4.25,
		StandardError:      0.25,
		ConfidenceMin:      -5.05,
		ConfidenceMax:      -3.45,
		SampleSize:         4,
	}, nil)

	res, err := NewEngine(prims, nil).Execute(context.Background(), sus.PairedTTest, groups)
	require.NoError(t, err)

	// 4.25 / (0.25 * sqrt(4))
	assert.InDelta(t, 8.5, res.EffectSize, 1e-12)
	assert.Equal(t, &sus.Interval{Min: -5.05, Max: -3.45}, res.Confidence)
	assert.Equal(t, 4, res.SampleSize)
	prims.AssertExpectations(t)
}

func TestEngine_ANOVAEtaSquared(t *testing.T) {
	engine := NewEngine(primitives.New(), nil)

	t.Run("identical means give zero", func(t *testing.T) {
		groups := []sus.Group{
			{Name: "A", Scores: []float64{50, 60, 70}},
			{Name: "B", Scores: []float64{60, 70, 50}},
			{Name: "C", Scores: []float64{70, 50, 60}},
		}
		res, err := engine.Execute(context.Background(), sus.OneWayANOVA, groups)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, res.EffectSize, 1e-12)
		assert.False(t, res.Significant)
	})

	t.Run("no within-group variance gives one", func(t *testing.T) {
		groups := []sus.Group{
			{Name: "A", Scores: []float64{50, 50}},
			{Name: "B", Scores: []float64{60, 60}},
			{Name: "C", Scores: []float64{70, 70}},
		}
		res, err := engine.Execute(context.Background(), sus.OneWayANOVA, groups)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, res.EffectSize, 1e-12)
		assert.Equal(t, []float64{2, 3}, res.DegreesOfFreedom)
		assert.Len(t, res.PostHoc, 3)
	})
}

func TestEngine_BonferroniPostHoc(t *testing.T) {
	prims := new(MockPrimitives)
	groups := []sus.Group{
		{Name: "A", Scores: []float64{50, 55, 60}},
		{Name: "B", Scores: []float64{60, 65, 70}},
		{Name: "C", Scores: []float64{70, 75, 80}},
		{Name: "D", Scores: []float64{80, 85, 90}},
	}

	prims.On("OneWayANOVA", mock.Anything, mock.Anything).Return(stats.FTest{
		Statistic: 9.5, DegreesOfFreedom1: 3, DegreesOfFreedom2: 8, PValue: 0.005, Significant: true,
	}, nil)
	// every raw pairwise test would be significant at 0.05 on its own
	prims.On("TwoSampleTTest", mock.Anything, mock.Anything, mock.Anything).Return(stats.TTest{
		Statistic: 3.1, DegreesOfFreedom: 4, PValue: 0.01, Significant: true, ObservedDifference: -10,
	}, nil)

	res, err := NewEngine(prims, nil).Execute(context.Background(), sus.OneWayANOVA, groups)
	require.NoError(t, err)

	assert.InDelta(t, 0.05/6, res.BonferroniAlpha, 1e-15)
	require.Len(t, res.PostHoc, 6)
	for _, ph := range res.PostHoc {
		assert.False(t, ph.Significant, "pair %d-%d", ph.Group1Index, ph.Group2Index)
		assert.Less(t, ph.Group1Index, ph.Group2Index)
	}
	assert.Equal(t, 0, res.PostHoc[0].Group1Index)
	assert.Equal(t, 1, res.PostHoc[0].Group2Index)
	assert.Equal(t, 2, res.PostHoc[5].Group1Index)
	assert.Equal(t, 3, res.PostHoc[5].Group2Index)
	prims.AssertNumberOfCalls(t, "TwoSampleTTest", 6)
}

func TestEngine_RankTestsPassThrough(t *testing.T) {
	prims := new(MockPrimitives)
	groups := twoGroups()
	prims.On("MannWhitneyU", mock.Anything, groups[0].Scores, groups[1].Scores).Return(stats.RankTest{
		Statistic: 0, Z: -2.2, PValue: 0.0286, Significant: true, HasTies: true,
	}, nil)
	prims.On("WilcoxonSignedRank", mock.Anything, groups[0].Scores, groups[1].Scores).Return(stats.RankTest{
		Statistic: 0, Z: -1.8, PValue: 0.125, HasTies: true, HasZeros: true,
	}, nil)

	engine := NewEngine(prims, nil)

	mw, err := engine.Execute(context.Background(), sus.MannWhitneyU, groups)
	require.NoError(t, err)
	assert.False(t, mw.HasEffectSize)
	assert.False(t, mw.HasTies, "tie flags are reported for the signed-rank test only")
	assert.Equal(t, 0.0286, mw.PValue)
	assert.True(t, mw.Significant)

	w, err := engine.Execute(context.Background(), sus.WilcoxonSignedRank, groups)
	require.NoError(t, err)
	assert.True(t, w.HasTies)
	assert.True(t, w.HasZeros)
	assert.Equal(t, -1.8, w.Z)
	assert.Equal(t, 4, w.SampleSize)
}

func TestEngine_InvalidArguments(t *testing.T) {
	prims := new(MockPrimitives)
	engine := NewEngine(prims, nil)
	ctx := context.Background()

	_, err := engine.Execute(ctx, sus.IndependentTTest, []sus.Group{{Name: "A"}, {Name: "B", Scores: []float64{1}}})
	assert.True(t, core.IsInvalidArgument(err))

	_, err = engine.Execute(ctx, sus.MannWhitneyU, []sus.Group{{Name: "A", Scores: []float64{1}}})
	assert.True(t, core.IsInvalidArgument(err))

	_, err = engine.Levene(ctx, nil)
	assert.True(t, core.IsInvalidArgument(err))

	_, err = engine.ShapiroWilk(ctx, sus.Group{Name: "A"})
	assert.True(t, core.IsInvalidArgument(err))

	prims.AssertNotCalled(t, "TwoSampleTTest", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_PrimitiveFailureYieldsNoResult(t *testing.T) {
	prims := new(MockPrimitives)
	groups := []sus.Group{
		{Name: "A", Scores: []float64{1, 2}},
		{Name: "B", Scores: []float64{3, 4}},
		{Name: "C", Scores: []float64{5, 6}},
	}
	prims.On("OneWayANOVA", mock.Anything, mock.Anything).Return(stats.FTest{Statistic: 16}, nil)
	prims.On("TwoSampleTTest", mock.Anything, mock.Anything, mock.Anything).
		Return(stats.TTest{}, core.NewInvalidArgumentError("boom"))

	res, err := NewEngine(prims, nil).Execute(context.Background(), sus.OneWayANOVA, groups)
	assert.Nil(t, res)
	assert.Error(t, err)
}

func TestEngine_Idempotent(t *testing.T) {
	engine := NewEngine(primitives.New(), nil)
	groups := []sus.Group{
		{Name: "A", Scores: []float64{62.5, 70, 55, 80, 67.5}},
		{Name: "B", Scores: []float64{85, 77.5, 90, 72.5, 95}},
		{Name: "C", Scores: []float64{40, 52.5, 47.5, 60, 45}},
	}

	for _, kind := range []sus.TestKind{sus.OneWayANOVA} {
		first, err := engine.Execute(context.Background(), kind, groups)
		require.NoError(t, err)
		second, err := engine.Execute(context.Background(), kind, groups)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}

	pair := groups[:2]
	for _, kind := range []sus.TestKind{sus.IndependentTTest, sus.PairedTTest, sus.MannWhitneyU, sus.WilcoxonSignedRank} {
		first, err := engine.Execute(context.Background(), kind, pair)
		require.NoError(t, err)
		second, err := engine.Execute(context.Background(), kind, pair)
		require.NoError(t, err)
		assert.Equal(t, first, second, kind.String())
	}
}

func TestEngine_CheckAssumptions(t *testing.T) {
	engine := NewEngine(primitives.New(), nil)
	groups := []sus.Group{
		{Name: "A", Scores: []float64{62.5, 70, 55, 80, 67.5}},
		{Name: "B", Scores: []float64{85, 85}},
	}

	report, err := engine.CheckAssumptions(context.Background(), groups)
	require.NoError(t, err)

	require.Len(t, report.Normality, 1, "normality is undefined for group B")
	assert.Equal(t, "A", report.Normality[0].Name)
	require.NotNil(t, report.Homogeneity)
	assert.Equal(t, []float64{1, 5}, report.Homogeneity.DegreesOfFreedom)
}

func TestBonferroniAlpha(t *testing.T) {
	assert.Equal(t, 0.05, BonferroniAlpha(2))
	assert.InDelta(t, 0.05/3, BonferroniAlpha(3), 1e-15)
	assert.InDelta(t, 0.05/6, BonferroniAlpha(4), 1e-15)
}

package session

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"gosus/adapters/stats/primitives"
	"gosus/domain/core"
	"gosus/domain/sus"
	"gosus/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Question 1;Question 2;Question 3;Question 4;Question 5;Question 6;Question 7;Question 8;Question 9;Question 10;System"

// threeSystems has 4 respondents for A and B and 3 for C.
var threeSystems = strings.Join([]string{
	header,
	"3;3;3;3;3;3;3;3;3;3;A",
	"4;2;4;2;4;2;4;2;4;2;B",
	"5;1;5;1;5;1;5;1;5;1;C",
	"4;2;3;2;4;3;4;2;4;2;A",
	"5;1;4;2;5;1;5;2;4;1;B",
	"2;4;2;4;2;4;2;4;2;4;C",
	"3;2;3;3;4;2;3;3;3;2;A",
	"4;1;5;1;4;2;5;1;4;2;B",
	"3;3;4;2;3;3;4;2;3;3;C",
	"",
	"2;3;3;3;3;4;2;3;3;3;A",
	"5;2;5;1;4;1;5;1;5;2;B",
	"",
}, "\n")

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(threeSystems)
	require.NoError(t, err)
	return calc
}

func names(studies []sus.Study) []string {
	out := make([]string, len(studies))
	for i, s := range studies {
		out[i] = s.Name
	}
	return out
}

func TestNewCalculator_AllStudiesActive(t *testing.T) {
	calc := newCalculator(t)

	assert.Equal(t, []string{"A", "B", "C"}, names(calc.Studies()))
	assert.Equal(t, names(calc.Studies()), names(calc.ActiveStudies()))
	assert.Equal(t, 4, calc.Studies()[0].Respondents())
	assert.Equal(t, 3, calc.Studies()[2].Respondents())
	assert.False(t, calc.Dependence().IsSet())
	assert.False(t, calc.Parametric().IsSet())
}

func TestNewCalculator_RejectsInvalidContent(t *testing.T) {
	_, err := NewCalculator(header + "\n3;3;3;3;3;3;3;3;3;3;A\n")
	assert.True(t, core.IsValidationError(err))
}

func TestToggleStudy_KeepsStudyOrder(t *testing.T) {
	calc := newCalculator(t)

	require.NoError(t, calc.ToggleStudy(0))
	assert.Equal(t, []string{"B", "C"}, names(calc.ActiveStudies()))

	require.NoError(t, calc.ToggleStudy(0))
	assert.Equal(t, []string{"A", "B", "C"}, names(calc.ActiveStudies()))

	require.NoError(t, calc.SetActive(1, false))
	require.NoError(t, calc.SetActive(1, false))
	assert.Equal(t, []int{0, 2}, calc.ActiveIndices())

	err := calc.ToggleStudy(3)
	assert.True(t, core.IsNotFoundError(err))
	assert.ErrorIs(t, err, core.ErrStudyNotFound)
}

func TestToggleStudy_SubsequenceProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		calc := newCalculator(t)
		for step := 0; step < 40; step++ {
			require.NoError(t, calc.ToggleStudy(rng.Intn(3)))

			indices := calc.ActiveIndices()
			for i := 1; i < len(indices); i++ {
				if indices[i-1] >= indices[i] {
					t.Fatalf("run %d step %d: active indices not increasing: %v", run, step, indices)
				}
			}
			for i, s := range calc.ActiveStudies() {
				assert.Equal(t, calc.Studies()[indices[i]].Name, s.Name)
			}
		}
	}
}

func TestChooseDependence(t *testing.T) {
	t.Run("dependent refused for unequal sizes", func(t *testing.T) {
		calc := newCalculator(t)
		err := calc.ChooseDependence(sus.Dependent)
		assert.ErrorIs(t, err, core.ErrUnequalSampleSizes)
		assert.False(t, calc.Dependence().IsSet())
	})

	t.Run("dependent accepted for equal sizes", func(t *testing.T) {
		calc := newCalculator(t)
		require.NoError(t, calc.SetActive(2, false))
		require.NoError(t, calc.ChooseDependence(sus.Dependent))
		d, ok := calc.Dependence().Get()
		assert.True(t, ok)
		assert.Equal(t, sus.Dependent, d)
	})

	t.Run("write once", func(t *testing.T) {
		calc := newCalculator(t)
		require.NoError(t, calc.ChooseDependence(sus.Independent))
		assert.NoError(t, calc.ChooseDependence(sus.Independent))
		assert.ErrorIs(t, calc.ChooseDependence(sus.Dependent), core.ErrDecisionLocked)
	})

	t.Run("unknown value", func(t *testing.T) {
		calc := newCalculator(t)
		assert.True(t, core.IsInvalidArgument(calc.ChooseDependence(sus.Dependence(9))))
	})
}

func TestChooseMethod(t *testing.T) {
	t.Run("requires dependence first", func(t *testing.T) {
		calc := newCalculator(t)
		assert.ErrorIs(t, calc.ChooseMethod(sus.ParametricTest), core.ErrDesignIncomplete)
	})

	t.Run("unsupported design is not recorded", func(t *testing.T) {
		calc := newCalculator(t)
		require.NoError(t, calc.ChooseDependence(sus.Independent))

		err := calc.ChooseMethod(sus.NonParametricTest)
		var unsupported *UnsupportedDesignError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, KruskalWallis, unsupported.Notice)
		assert.False(t, calc.Parametric().IsSet())

		require.NoError(t, calc.ChooseMethod(sus.ParametricTest))
		kind, err := calc.Route()
		require.NoError(t, err)
		assert.Equal(t, sus.OneWayANOVA, kind)
	})

	t.Run("locked after choice", func(t *testing.T) {
		calc := newCalculator(t)
		require.NoError(t, calc.ChooseDependence(sus.Independent))
		require.NoError(t, calc.ChooseMethod(sus.ParametricTest))
		assert.ErrorIs(t, calc.ChooseMethod(sus.NonParametricTest), core.ErrDecisionLocked)
	})
}

func TestCalculator_RouteBeforeDecisions(t *testing.T) {
	calc := newCalculator(t)
	_, err := calc.Route()
	assert.ErrorIs(t, err, core.ErrDesignIncomplete)

	_, ok := calc.Design()
	assert.False(t, ok)
}

func TestCalculator_Run(t *testing.T) {
	engine := analysis.NewEngine(primitives.New(), nil)
	ctx := context.Background()

	t.Run("anova over three studies", func(t *testing.T) {
		calc := newCalculator(t)
		require.NoError(t, calc.ChooseDependence(sus.Independent))
		require.NoError(t, calc.ChooseMethod(sus.ParametricTest))

		res, err := calc.Run(ctx, engine)
		require.NoError(t, err)
		assert.Equal(t, sus.OneWayANOVA, res.Kind)
		assert.Len(t, res.PostHoc, 3)
		assert.Equal(t, "C", res.Groups[2].Name)
	})

	t.Run("paired t-test over two studies", func(t *testing.T) {
		calc := newCalculator(t)
		require.NoError(t, calc.ToggleStudy(2))
		require.NoError(t, calc.ChooseDependence(sus.Dependent))
		require.NoError(t, calc.ChooseMethod(sus.ParametricTest))

		res, err := calc.Run(ctx, engine)
		require.NoError(t, err)
		assert.Equal(t, sus.PairedTTest, res.Kind)
		assert.Equal(t, 4, res.SampleSize)
	})

	t.Run("needs two active studies", func(t *testing.T) {
		calc := newCalculator(t)
		require.NoError(t, calc.ToggleStudy(0))
		require.NoError(t, calc.ToggleStudy(1))
		_, err := calc.Run(ctx, engine)
		assert.ErrorIs(t, err, core.ErrInsufficientActive)
	})

	t.Run("selection change after decisions", func(t *testing.T) {
		calc := newCalculator(t)
		require.NoError(t, calc.ToggleStudy(2))
		require.NoError(t, calc.ChooseDependence(sus.Dependent))
		require.NoError(t, calc.ChooseMethod(sus.NonParametricTest))
		require.NoError(t, calc.ToggleStudy(2))

		_, err := calc.Run(ctx, engine)
		assert.True(t, core.IsUnsupportedDesign(err))
	})

	t.Run("idempotent", func(t *testing.T) {
		first := newCalculator(t)
		second := newCalculator(t)
		for _, c := range []*Calculator{first, second} {
			require.NoError(t, c.ChooseDependence(sus.Independent))
			require.NoError(t, c.ChooseMethod(sus.ParametricTest))
		}
		a, err := first.Run(ctx, engine)
		require.NoError(t, err)
		b, err := second.Run(ctx, engine)
		require.NoError(t, err)

		assert.Equal(t, first.Studies(), second.Studies())
		assert.Equal(t, a, b)
	})
}

func TestCalculator_CheckAssumptions(t *testing.T) {
	engine := analysis.NewEngine(primitives.New(), nil)
	calc := newCalculator(t)

	report, err := calc.CheckAssumptions(context.Background(), engine)
	require.NoError(t, err)
	assert.Len(t, report.Normality, 3)
	require.NotNil(t, report.Homogeneity)
	assert.Equal(t, []float64{2, 8}, report.Homogeneity.DegreesOfFreedom)
}

func TestStore_Lifecycle(t *testing.T) {
	store := NewStore(time.Minute, nil)
	calc := newCalculator(t)

	id := store.Create(calc)
	assert.False(t, id.IsEmpty())
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Same(t, calc, got)

	err = store.With(id, func(c *Calculator) error {
		return c.ToggleStudy(0)
	})
	require.NoError(t, err)
	assert.False(t, calc.IsActive(0))

	require.NoError(t, store.Delete(id))
	_, err = store.Get(id)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	assert.True(t, core.IsNotFoundError(store.Delete(id)))
}

func TestStore_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(30*time.Minute, nil)
	store.now = func() time.Time { return now }

	stale := store.Create(newCalculator(t))
	now = now.Add(20 * time.Minute)
	fresh := store.Create(newCalculator(t))

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	_, err := store.Get(stale)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	_, err = store.Get(fresh)
	assert.NoError(t, err)

	info, err := store.Info(fresh)
	require.NoError(t, err)
	assert.Equal(t, now, info.LastAccess)
}

package narrative

import (
	"fmt"

	"gosus/domain/sus"
)

// Levene renders the homogeneity-of-variance sentence.
func Levene(r sus.LeveneResult) string {
	did := "did not indicate"
	if r.Significant {
		did = "did indicate"
	}
	var df1, df2 float64
	if len(r.DegreesOfFreedom) == 2 {
		df1, df2 = r.DegreesOfFreedom[0], r.DegreesOfFreedom[1]
	}
	return fmt.Sprintf("Levene's test %s a significant difference in variances between the provided groups, (F(%s, %s) = %s, p = %s)",
		did, df(df1), df(df2), f2(r.F), p4(r.PValue))
}

// ShapiroWilk renders the normality sentence for one group.
func ShapiroWilk(r sus.ShapiroWilkResult) string {
	did := "did indicate"
	if r.IsNormal {
		did = "did not indicate"
	}
	return fmt.Sprintf("A Shapiro-Wilk test %s a significant deviation from normality, (W(%d) = %s, p = %s)",
		did, r.SampleSize, f2(r.W), p4(r.PValue))
}

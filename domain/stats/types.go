package stats

// Outputs of the statistics-primitives collaborator. Every value is computed
// from raw samples; the significance flags use the fixed 0.05 threshold.

// TTest is the result of a two-sample or paired Student t-test.
type TTest struct {
	Statistic          float64 `json:"statistic"`
	DegreesOfFreedom   float64 `json:"degrees_of_freedom"`
	PValue             float64 `json:"p_value"`
	Significant        bool    `json:"significant"`
	ObservedDifference float64 `json:"observed_difference"` // mean(x) - mean(y)
	StandardError      float64 `json:"standard_error"`
	ConfidenceMin      float64 `json:"confidence_min"` // 95% interval around ObservedDifference
	ConfidenceMax      float64 `json:"confidence_max"`
	SampleSize         int     `json:"sample_size"` // pairs for paired tests, n1+n2 otherwise
}

// FTest is the result of an F-based test (one-way ANOVA, Levene).
type FTest struct {
	Statistic         float64 `json:"statistic"`
	DegreesOfFreedom1 float64 `json:"degrees_of_freedom_1"`
	DegreesOfFreedom2 float64 `json:"degrees_of_freedom_2"`
	PValue            float64 `json:"p_value"`
	Significant       bool    `json:"significant"`
	BetweenSS         float64 `json:"between_ss"`
	WithinSS          float64 `json:"within_ss"`
}

// RankTest is the result of a rank-based two-sample test.
type RankTest struct {
	Statistic   float64 `json:"statistic"`
	Z           float64 `json:"z"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
	Exact       bool    `json:"exact"` // p-value from the exact null distribution
	HasTies     bool    `json:"has_ties"`
	HasZeros    bool    `json:"has_zeros"`
}

// NormalityTest is the result of a Shapiro-Wilk test.
type NormalityTest struct {
	W          float64 `json:"w"`
	PValue     float64 `json:"p_value"`
	SampleSize int     `json:"sample_size"`
}

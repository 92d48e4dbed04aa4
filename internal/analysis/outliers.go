package analysis

import "gosus/domain/core"

// DefaultTukeyK is the conventional fence multiplier.
const DefaultTukeyK = 1.5

// TukeyFences returns (Q1 - k*IQR, Q3 + k*IQR).
func TukeyFences(data []float64, k float64) (lower, upper float64, err error) {
	if k < 0 {
		return 0, 0, core.NewInvalidArgumentError("fence multiplier cannot be negative")
	}
	q1, _, q3, err := Quartiles(data)
	if err != nil {
		return 0, 0, err
	}
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr, nil
}

// IdentifyOutliers returns the values strictly outside the Tukey fences,
// in input order.
func IdentifyOutliers(data []float64, k float64) ([]float64, error) {
	lower, upper, err := TukeyFences(data, k)
	if err != nil {
		return nil, err
	}
	outliers := []float64{}
	for _, v := range data {
		if v < lower || v > upper {
			outliers = append(outliers, v)
		}
	}
	return outliers, nil
}

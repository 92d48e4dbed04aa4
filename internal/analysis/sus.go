package analysis

import (
	"fmt"
	"math"

	"gosus/domain/core"
	"gosus/domain/sus"

	"github.com/montanaflynn/stats"
)

// itemContribution maps one 1..5 rating to its 0..4 contribution. Items at
// even indices (questions 1, 3, 5, ...) are positively worded.
func itemContribution(index int, rating float64) float64 {
	if index%2 == 0 {
		return rating - 1
	}
	return 5 - rating
}

// SUSScore converts one respondent's ten ratings into the 0..100 composite.
func SUSScore(items []float64) float64 {
	var sum float64
	for i, v := range items {
		sum += itemContribution(i, v)
	}
	return sum * 2.5
}

// NewStudy scores every respondent of one system and computes its
// descriptive statistics. raw is kept in respondent order; quartiles and
// fences are taken from a sorted copy of the scores. k is the Tukey fence
// multiplier.
func NewStudy(name string, raw [][]float64, k float64) (sus.Study, error) {
	if len(raw) == 0 {
		return sus.Study{}, core.NewInvalidArgumentError(fmt.Sprintf("study %q has no respondents", name))
	}

	items := make([][]float64, len(raw))
	scores := make([]float64, len(raw))
	for i, row := range raw {
		if len(row) != sus.ItemCount {
			return sus.Study{}, core.NewInvalidArgumentError(
				fmt.Sprintf("study %q respondent %d has %d ratings, want %d", name, i+1, len(row), sus.ItemCount))
		}
		items[i] = append([]float64(nil), row...)
		scores[i] = SUSScore(row)
	}

	mean, err := stats.Mean(scores)
	if err != nil {
		return sus.Study{}, err
	}
	roundedMean, _ := stats.Round(mean, 2)

	sd := math.NaN()
	if len(scores) > 1 {
		dev, err := stats.StandardDeviationSample(scores)
		if err != nil {
			return sus.Study{}, err
		}
		sd, _ = stats.Round(dev, 2)
	}

	lowest, _ := stats.Min(scores)
	highest, _ := stats.Max(scores)

	q1, median, q3, err := Quartiles(scores)
	if err != nil {
		return sus.Study{}, err
	}

	outliers, err := IdentifyOutliers(scores, k)
	if err != nil {
		return sus.Study{}, err
	}

	return sus.Study{
		Name:          name,
		RawItemScores: items,
		SUSScores:     scores,
		Mean:          roundedMean,
		SampleStdDev:  sd,
		Min:           lowest,
		Max:           highest,
		Q1:            q1,
		Median:        median,
		Q3:            q3,
		Outliers:      outliers,
		Reliability:   CronbachAlpha(items),
	}, nil
}

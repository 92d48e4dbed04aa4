package ingestion

import (
	"strings"
)

// RawGroup is one system's raw rating matrix in respondent order
type RawGroup struct {
	Label string
	Rows  [][]float64
}

// Group validates content and collects the rating vectors per system label,
// in first-seen label order.
func Group(content string) ([]RawGroup, error) {
	if err := Check(content); err != nil {
		return nil, err
	}

	var groups []RawGroup
	index := make(map[string]int)

	lines := strings.Split(content, "\n")
	for _, raw := range lines[1:] {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ";")

		row := make([]float64, labelField)
		for q := 0; q < labelField; q++ {
			rating, _ := parseRating(fields[q])
			row[q] = float64(rating)
		}

		label := strings.TrimSpace(fields[labelField])
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, RawGroup{Label: label})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups, nil
}

package testkit

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"gosus/domain/core"
	"gosus/domain/sus"
)

// SystemProfile describes one synthetic system under test
type SystemProfile struct {
	Name        string  `json:"name" yaml:"name"`
	Respondents int     `json:"respondents" yaml:"respondents"`
	Quality     float64 `json:"quality" yaml:"quality"` // 0 = worst possible, 1 = best possible
}

// SUSGeneratorConfig configures the SUS questionnaire generator
type SUSGeneratorConfig struct {
	Systems []SystemProfile `json:"systems" yaml:"systems"`
	Noise   float64         `json:"noise" yaml:"noise"` // rating standard deviation
	Seed    int64           `json:"seed" yaml:"seed"`
}

// DefaultSUSConfig returns three systems of twelve respondents each
func DefaultSUSConfig() SUSGeneratorConfig {
	return SUSGeneratorConfig{
		Systems: []SystemProfile{
			{Name: "Legacy", Respondents: 12, Quality: 0.45},
			{Name: "Redesign", Respondents: 12, Quality: 0.7},
			{Name: "Prototype", Respondents: 12, Quality: 0.55},
		},
		Noise: 0.8,
		Seed:  42,
	}
}

// SUSDataGenerator produces questionnaire files in the semicolon format
type SUSDataGenerator struct {
	config SUSGeneratorConfig
	rng    *rand.Rand
}

// NewSUSDataGenerator creates a generator; equal configs give equal output
func NewSUSDataGenerator(config SUSGeneratorConfig) *SUSDataGenerator {
	return &SUSDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Header is the questionnaire header line
func Header() string {
	fields := make([]string, 0, sus.ItemCount+1)
	for q := 1; q <= sus.ItemCount; q++ {
		fields = append(fields, fmt.Sprintf("Question %d", q))
	}
	return strings.Join(append(fields, "System"), ";")
}

// Generate returns the full file content. Systems are written one after the
// other so the first-seen order matches the config.
func (g *SUSDataGenerator) Generate() (string, error) {
	if len(g.config.Systems) == 0 {
		return "", core.NewInvalidArgumentError("at least one system is required")
	}

	lines := []string{Header()}
	for _, system := range g.config.Systems {
		if strings.TrimSpace(system.Name) == "" || strings.Contains(system.Name, ";") {
			return "", core.NewInvalidArgumentError(fmt.Sprintf("invalid system name %q", system.Name))
		}
		if system.Respondents < 1 {
			return "", core.NewInvalidArgumentError(fmt.Sprintf("system %s needs at least one respondent", system.Name))
		}
		if system.Quality < 0 || system.Quality > 1 {
			return "", core.NewInvalidArgumentError(fmt.Sprintf("system %s quality must be within [0, 1]", system.Name))
		}

		for i := 0; i < system.Respondents; i++ {
			lines = append(lines, g.respondentLine(system))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// respondentLine draws ten ratings around the profile's quality. Odd
// numbered questions are positively worded, even numbered ones negatively.
func (g *SUSDataGenerator) respondentLine(system SystemProfile) string {
	fields := make([]string, 0, sus.ItemCount+1)
	agreement := 1 + 4*system.Quality
	for item := 0; item < sus.ItemCount; item++ {
		target := agreement
		if item%2 == 1 {
			target = 6 - agreement
		}
		rating := clampRating(target + g.rng.NormFloat64()*g.config.Noise)
		fields = append(fields, strconv.Itoa(rating))
	}
	return strings.Join(append(fields, system.Name), ";")
}

func clampRating(v float64) int {
	r := int(v + 0.5)
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}

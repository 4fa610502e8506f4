// Package filter applies preset criteria to scenario lists client-side.
// All functions are pure: scenarios in, scenarios out.
package filter

import (
	"strings"

	"github.com/negwatch/negwatch/internal/model"
)

// ByCriteria keeps the scenarios a preset's criteria select. Zero-valued
// bounds are unset. Tags live only server-side, so they are not evaluated
// here; the server applies them when it resolves a preset itself.
func ByCriteria(scenarios []model.Scenario, c model.Criteria) []model.Scenario {
	result := make([]model.Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		if Matches(s, c) {
			result = append(result, s)
		}
	}
	return result
}

// Matches reports whether a single scenario satisfies the criteria.
func Matches(s model.Scenario, c model.Criteria) bool {
	if c.MinIssues > 0 && s.NIssues < c.MinIssues {
		return false
	}
	if c.MaxIssues > 0 && s.NIssues > c.MaxIssues {
		return false
	}
	if c.MinOutcomes > 0 && s.Outcomes < c.MinOutcomes {
		return false
	}
	if c.MaxOutcomes > 0 && s.Outcomes > c.MaxOutcomes {
		return false
	}
	if len(c.PathPrefixes) > 0 && !hasAnyPrefix(s.Path, c.PathPrefixes) {
		return false
	}
	return true
}

// DefaultPreset returns the preset flagged as default, or nil.
func DefaultPreset(presets []model.FilterPreset) *model.FilterPreset {
	for i := range presets {
		if presets[i].IsDefault {
			return &presets[i]
		}
	}
	return nil
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

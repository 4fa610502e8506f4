// Package match joins streamed live-negotiation events to grid cells.
//
// Execution engines decorate competitor names with per-instance suffixes
// ("Atlas3@0") while the grid axes carry bare names, so the join is a
// heuristic rather than an exact ID lookup. The heuristic sits behind
// NameMatcher so it can be replaced with a stable-ID join if the server ever
// emits instance identifiers.
package match

import (
	"path"
	"strings"

	"github.com/negwatch/negwatch/internal/logging"
	"github.com/negwatch/negwatch/internal/model"
)

// NameMatcher decides whether a live negotiation belongs to a grid cell.
// scenario may be empty to match any scenario.
type NameMatcher interface {
	Matches(live model.Negotiation, competitor, opponent, scenario string) bool
}

// PrefixMatcher matches names exactly first, then by bidirectional prefix
// with the "@" and "-" instance separators.
//
// Known fragility: competitor names that legitimately contain "@" or "-" can
// be misassigned. Fuzzy (non-exact) matches are logged at debug level so
// misassignment is observable rather than silent.
type PrefixMatcher struct{}

var _ NameMatcher = PrefixMatcher{}

// Matches reports whether the live event belongs to the given cell.
func (PrefixMatcher) Matches(live model.Negotiation, competitor, opponent, scenario string) bool {
	if live.Competitor == "" || live.Opponent == "" {
		return false
	}
	if !nameMatches(live.Competitor, competitor) || !nameMatches(live.Opponent, opponent) {
		return false
	}
	if scenario != "" && !scenarioMatches(live.Scenario, scenario) {
		return false
	}
	if live.Competitor != competitor || live.Opponent != opponent {
		logging.Debug("fuzzy name match",
			"live_competitor", live.Competitor, "grid_competitor", competitor,
			"live_opponent", live.Opponent, "grid_opponent", opponent)
	}
	return true
}

// nameMatches compares a live name with a grid name: exact, then prefix in
// either direction up to an instance separator.
func nameMatches(live, grid string) bool {
	if live == grid {
		return true
	}
	for _, sep := range []string{"@", "-"} {
		if strings.HasPrefix(live, grid+sep) {
			return true
		}
		if strings.HasPrefix(grid, live+sep) {
			return true
		}
	}
	return false
}

// scenarioMatches compares the live event's scenario path or basename with
// the target by equality or containment.
func scenarioMatches(live, target string) bool {
	if live == "" {
		return false
	}
	if live == target || path.Base(live) == target {
		return true
	}
	return strings.Contains(live, target)
}

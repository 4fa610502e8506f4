package filter

import (
	"testing"

	"github.com/negwatch/negwatch/internal/model"
)

var scenarios = []model.Scenario{
	{Path: "scenarios/laptop", NIssues: 3, Outcomes: 27},
	{Path: "scenarios/housing", NIssues: 5, Outcomes: 3125},
	{Path: "anac/2019/jobs", NIssues: 2, Outcomes: 11},
}

func paths(scenarios []model.Scenario) []string {
	out := make([]string, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.Path
	}
	return out
}

func TestByCriteria(t *testing.T) {
	cases := []struct {
		name     string
		criteria model.Criteria
		want     []string
	}{
		{"empty criteria keeps all", model.Criteria{},
			[]string{"scenarios/laptop", "scenarios/housing", "anac/2019/jobs"}},
		{"min issues", model.Criteria{MinIssues: 3},
			[]string{"scenarios/laptop", "scenarios/housing"}},
		{"issue range", model.Criteria{MinIssues: 2, MaxIssues: 3},
			[]string{"scenarios/laptop", "anac/2019/jobs"}},
		{"max outcomes", model.Criteria{MaxOutcomes: 100},
			[]string{"scenarios/laptop", "anac/2019/jobs"}},
		{"path prefix", model.Criteria{PathPrefixes: []string{"anac/"}},
			[]string{"anac/2019/jobs"}},
		{"multiple prefixes", model.Criteria{PathPrefixes: []string{"anac/", "scenarios/laptop"}},
			[]string{"scenarios/laptop", "anac/2019/jobs"}},
		{"combined", model.Criteria{MinIssues: 3, PathPrefixes: []string{"scenarios/"}, MaxOutcomes: 100},
			[]string{"scenarios/laptop"}},
		{"nothing matches", model.Criteria{MinIssues: 10}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := paths(ByCriteria(scenarios, tc.criteria))
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestDefaultPreset(t *testing.T) {
	presets := []model.FilterPreset{
		{ID: "a"},
		{ID: "b", IsDefault: true},
	}
	if p := DefaultPreset(presets); p == nil || p.ID != "b" {
		t.Errorf("expected preset b, got %+v", p)
	}
	if p := DefaultPreset(presets[:1]); p != nil {
		t.Errorf("expected nil without a default, got %+v", p)
	}
}

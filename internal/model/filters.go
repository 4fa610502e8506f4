package model

import "time"

// FilterPreset is a saved scenario-selection preset, stored server-side as a
// JSON document and cached locally for offline display.
type FilterPreset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsDefault   bool      `json:"is_default"`
	Criteria    Criteria  `json:"criteria"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Criteria restricts which scenarios a preset selects.
type Criteria struct {
	MinIssues    int      `json:"min_issues,omitempty"`
	MaxIssues    int      `json:"max_issues,omitempty"`
	MinOutcomes  int      `json:"min_outcomes,omitempty"`
	MaxOutcomes  int      `json:"max_outcomes,omitempty"`
	PathPrefixes []string `json:"path_prefixes,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

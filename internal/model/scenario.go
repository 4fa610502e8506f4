package model

// Scenario is one entry from the server's scenario enumeration.
type Scenario struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	Name     string `json:"name"`
	NIssues  int    `json:"n_issues"`
	Outcomes int    `json:"n_outcomes"`
	Cached   bool   `json:"cached"`
}

// Negotiator is one entry from the server's negotiator enumeration.
type Negotiator struct {
	TypeName string `json:"type_name"`
	Name     string `json:"name"`
	Source   string `json:"source,omitempty"`
}

// ScenarioStats holds server-computed solution concepts for a scenario.
// The solvers live server-side; these values are display-only here.
type ScenarioStats struct {
	ScenarioID    string      `json:"scenario_id"`
	Computed      bool        `json:"computed"`
	ParetoOutline [][]float64 `json:"pareto_frontier,omitempty"`
	NashPoint     []float64   `json:"nash_point,omitempty"`
	KalaiPoint    []float64   `json:"kalai_point,omitempty"`
	OutcomeCount  int         `json:"outcome_count"`
}

// CacheStatus describes the server's scenario-cache state.
type CacheStatus struct {
	Total    int  `json:"total"`
	Cached   int  `json:"cached"`
	Building bool `json:"building"`
}

// BuildProgress is one message from the cache build stream. Unlike the
// tournament stream, these arrive as data-only SSE messages with a type tag.
type BuildProgress struct {
	Type    string `json:"type"` // "progress", "complete" or "error"
	Done    int    `json:"done"`
	Total   int    `json:"total"`
	Message string `json:"message,omitempty"`
}

// Terminal reports whether the message ends the build stream.
func (p BuildProgress) Terminal() bool {
	return p.Type == "complete" || p.Type == "error"
}

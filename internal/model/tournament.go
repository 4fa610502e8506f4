package model

import "time"

// TournamentConfig is the request body for starting a tournament.
// Field names follow the server API contract.
type TournamentConfig struct {
	Competitors    []string       `json:"competitors"`
	Opponents      []string       `json:"opponents,omitempty"`
	Scenarios      []string       `json:"scenarios"`
	NRepetitions   int            `json:"n_repetitions"`
	RotateUfuns    bool           `json:"rotate_ufuns"`
	SelfPlay       bool           `json:"self_play"`
	NormalizeUfuns string         `json:"normalize_ufuns,omitempty"`
	TimeLimit      float64        `json:"time_limit,omitempty"`
	NSteps         int            `json:"n_steps,omitempty"`
	Mechanism      map[string]any `json:"mechanism_params,omitempty"`
	PlottingFrac   float64        `json:"plotting_fraction,omitempty"`
	SaveLogs       bool           `json:"save_logs,omitempty"`
}

// GridInit describes the tournament axes, sent once when a session starts.
type GridInit struct {
	TournamentID string   `json:"tournament_id"`
	Competitors  []string `json:"competitors"`
	Opponents    []string `json:"opponents"`
	Scenarios    []string `json:"scenarios"`
	NRepetitions int      `json:"n_repetitions"`
	RotateUfuns  bool     `json:"rotate_ufuns"`
	SelfPlay     bool     `json:"self_play"`
}

// CellUpdate carries incremental counters for one grid cell.
type CellUpdate struct {
	Competitor string `json:"competitor"`
	Opponent   string `json:"opponent"`
	Scenario   string `json:"scenario"`
	Total      int    `json:"total"`
	Completed  int    `json:"completed"`
	Agreements int    `json:"agreements"`
	Errors     int    `json:"errors"`
	Timeouts   int    `json:"timeouts"`
	Running    int    `json:"running"`
	Status     string `json:"status"`
}

// TournamentEventKind identifies a tournament stream event.
type TournamentEventKind string

const (
	EventGridInit        TournamentEventKind = "grid_init"
	EventCellUpdate      TournamentEventKind = "negotiation_update"
	EventLiveNegotiation TournamentEventKind = "live_negotiation"
	EventComplete        TournamentEventKind = "complete"
	EventError           TournamentEventKind = "error"
)

// TournamentEvent is one message from the tournament SSE stream.
// Exactly one payload field is set, selected by Kind.
type TournamentEvent struct {
	Kind     TournamentEventKind
	Init     *GridInit
	Cell     *CellUpdate
	Live     *Negotiation
	Message  string
	Received time.Time
}

// Terminal reports whether the event ends the stream.
func (e TournamentEvent) Terminal() bool {
	return e.Kind == EventComplete || e.Kind == EventError
}

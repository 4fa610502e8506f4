// Package model provides the domain records shared across negwatch.
//
// The tournament server emits live-negotiation events in two schemas: newer
// servers send explicit `competitor`/`opponent` keys, older ones send a
// two-element `partners` array. Normalization happens here, at the ingestion
// boundary, so downstream code (matcher, grid, export) only ever sees one
// shape.
package model

import (
	"encoding/json"
	"time"
)

// Negotiation is a normalized live-negotiation record from the stream.
type Negotiation struct {
	Competitor string
	Opponent   string
	Scenario   string
	RunID      string
	Result     string
	EndReason  string
	Utilities  []float64
	Observed   time.Time
}

// negotiationWire mirrors both wire schemas for a live negotiation.
type negotiationWire struct {
	Competitor string    `json:"competitor"`
	Opponent   string    `json:"opponent"`
	Partners   []string  `json:"partners"`
	Scenario   string    `json:"scenario"`
	RunID      string    `json:"run_id"`
	Result     string    `json:"result"`
	EndReason  string    `json:"end_reason"`
	Utilities  []float64 `json:"utilities"`
}

// UnmarshalJSON decodes either wire schema into a normalized Negotiation.
// The partners array is only consulted when the explicit keys are absent.
func (n *Negotiation) UnmarshalJSON(data []byte) error {
	var w negotiationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = normalize(w)
	return nil
}

// normalize collapses the dual wire schema into one record.
func normalize(w negotiationWire) Negotiation {
	n := Negotiation{
		Competitor: w.Competitor,
		Opponent:   w.Opponent,
		Scenario:   w.Scenario,
		RunID:      w.RunID,
		Result:     w.Result,
		EndReason:  w.EndReason,
		Utilities:  w.Utilities,
	}
	if n.Competitor == "" && len(w.Partners) > 0 {
		n.Competitor = w.Partners[0]
	}
	if n.Opponent == "" && len(w.Partners) > 1 {
		n.Opponent = w.Partners[1]
	}
	if n.Result == "" {
		n.Result = w.EndReason
	}
	return n
}

// Finished reports whether the negotiation reached a terminal result.
func (n Negotiation) Finished() bool {
	switch n.Result {
	case "", "running", "started":
		return false
	default:
		return true
	}
}

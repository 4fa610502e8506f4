package store

import (
	"encoding/json"
	"fmt"

	"github.com/negwatch/negwatch/internal/grid"
	"github.com/negwatch/negwatch/internal/logging"
	"github.com/negwatch/negwatch/internal/model"
)

// Fixed settings keys.
const (
	displayModesKey   = "grid.display_modes"
	lastTournamentKey = "tournament.last"
)

// DisplayModes loads the persisted display-mode set. Any failure (missing
// row, corrupt value, read error) falls back to the default set; persistence
// here is best-effort and never surfaces to the user.
func (s *Store) DisplayModes() grid.ModeSet {
	value, err := s.GetSetting(displayModesKey)
	if err != nil {
		logging.Warn("failed to load display modes", "error", err)
		return grid.DefaultModeSet()
	}
	if value == "" {
		return grid.DefaultModeSet()
	}
	return grid.DecodeModeSet([]byte(value))
}

// SaveDisplayModes persists the display-mode set under the fixed key.
func (s *Store) SaveDisplayModes(modes grid.ModeSet) error {
	data, err := json.Marshal(modes)
	if err != nil {
		return err
	}
	return s.SetSetting(displayModesKey, string(data))
}

// lastTournament pairs a tournament id with its grid axes so a finished
// tournament can be rebuilt from the stored negotiation history.
type lastTournament struct {
	ID   string         `json:"id"`
	Init model.GridInit `json:"init"`
}

// SaveLastTournament records the most recently followed tournament.
func (s *Store) SaveLastTournament(tournamentID string, init model.GridInit) error {
	data, err := json.Marshal(lastTournament{ID: tournamentID, Init: init})
	if err != nil {
		return err
	}
	return s.SetSetting(lastTournamentKey, string(data))
}

// LastTournament returns the most recently followed tournament's id and grid
// axes, or an error when none has been recorded.
func (s *Store) LastTournament() (string, *model.GridInit, error) {
	value, err := s.GetSetting(lastTournamentKey)
	if err != nil {
		return "", nil, err
	}
	if value == "" {
		return "", nil, fmt.Errorf("no tournament recorded yet")
	}
	var last lastTournament
	if err := json.Unmarshal([]byte(value), &last); err != nil {
		return "", nil, fmt.Errorf("decode last tournament: %w", err)
	}
	return last.ID, &last.Init, nil
}

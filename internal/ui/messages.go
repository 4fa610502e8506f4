// Package ui provides the Bubble Tea TUI for negwatch.
package ui

import (
	"github.com/negwatch/negwatch/internal/grid"
	"github.com/negwatch/negwatch/internal/model"
	"github.com/negwatch/negwatch/internal/work"
)

// TournamentMsg carries one event from a followed tournament stream.
type TournamentMsg struct {
	TournamentID string
	Event        model.TournamentEvent
}

// StreamClosedMsg is sent when a tournament stream ends for any reason.
type StreamClosedMsg struct {
	TournamentID string
}

// TournamentStartedMsg reports the outcome of a start request.
type TournamentStartedMsg struct {
	TournamentID string
	Err          error
}

// CacheStatusMsg carries a cache status poll result.
type CacheStatusMsg struct {
	Status *model.CacheStatus
	Err    error
}

// CacheActionMsg reports a build or clear request finishing.
type CacheActionMsg struct {
	Action string // "build" or "clear"
	Err    error
}

// PresetsMsg carries the filter presets. Stale marks a cached copy served
// because the server was unreachable.
type PresetsMsg struct {
	Presets []model.FilterPreset
	Stale   bool
	Err     error
}

// PresetActionMsg reports a preset mutation (delete, set default) finishing.
type PresetActionMsg struct {
	Action string
	ID     string
	Err    error
}

// ScenariosMsg carries the scenario enumeration for the wizard.
type ScenariosMsg struct {
	Scenarios []model.Scenario
	Err       error
}

// NegotiatorsMsg carries the negotiator enumeration for the wizard.
type NegotiatorsMsg struct {
	Negotiators []model.Negotiator
	Err         error
}

// ModesLoadedMsg delivers the persisted display modes at startup.
type ModesLoadedMsg struct {
	Modes grid.ModeSet
}

// HistoryMsg carries a saved tournament loaded from the local store.
type HistoryMsg struct {
	TournamentID string
	Init         *model.GridInit
	Negotiations []model.Negotiation
	Err          error
}

// StatsMsg reports a scenario stats recalculation finishing.
type StatsMsg struct {
	ScenarioID string
	Stats      *model.ScenarioStats
	Err        error
}

// SettingsBackupMsg reports a server settings backup finishing.
type SettingsBackupMsg struct {
	Path string
	Err  error
}

// SettingsResetMsg reports a server settings reset finishing.
type SettingsResetMsg struct {
	Err error
}

// ExportedMsg reports a grid export finishing.
type ExportedMsg struct {
	Path string
	Err  error
}

// JobEventMsg carries one background-job event from the pool's subscriber
// channel.
type JobEventMsg struct {
	Job    *work.Job
	Change string
}

// jobsTickMsg drives the periodic jobs view refresh while it is open.
type jobsTickMsg struct{}

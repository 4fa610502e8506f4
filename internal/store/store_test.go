package store

import (
	"testing"
	"time"

	"github.com/negwatch/negwatch/internal/grid"
	"github.com/negwatch/negwatch/internal/model"
)

// SettingsRepository is used ONLY for testing UI components.
// It defines the subset of Store methods the UI layer needs.
type SettingsRepository interface {
	DisplayModes() grid.ModeSet
	SaveDisplayModes(modes grid.ModeSet) error
}

// Verify Store implements SettingsRepository at compile time.
var _ SettingsRepository = (*Store)(nil)

func TestOpen(t *testing.T) {
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	var name string
	err = st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='settings'").Scan(&name)
	if err != nil {
		t.Fatalf("settings table not created: %v", err)
	}
	if name != "settings" {
		t.Errorf("expected table name 'settings', got %q", name)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	if err := st.SetSetting("theme", "dark"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	got, err := st.GetSetting("theme")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if got != "dark" {
		t.Errorf("expected 'dark', got %q", got)
	}

	// Upsert replaces the old value.
	if err := st.SetSetting("theme", "light"); err != nil {
		t.Fatalf("SetSetting (upsert) failed: %v", err)
	}
	got, _ = st.GetSetting("theme")
	if got != "light" {
		t.Errorf("expected 'light' after upsert, got %q", got)
	}

	// Missing key returns empty without error.
	got, err = st.GetSetting("missing")
	if err != nil || got != "" {
		t.Errorf("missing key: expected empty/nil, got %q/%v", got, err)
	}
}

func TestDisplayModesDefaultAndRoundTrip(t *testing.T) {
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	// No row yet: default set.
	modes := st.DisplayModes()
	if modes.Len() != 1 || !modes.Enabled(grid.ModeCompletion) {
		t.Errorf("expected default mode set, got %v", modes.Active())
	}

	modes.Toggle(grid.ModeError)
	modes.Toggle(grid.ModeTimeout)
	if err := st.SaveDisplayModes(modes); err != nil {
		t.Fatalf("SaveDisplayModes failed: %v", err)
	}

	loaded := st.DisplayModes()
	if loaded.Len() != 3 || !loaded.Enabled(grid.ModeError) || !loaded.Enabled(grid.ModeTimeout) {
		t.Errorf("round trip lost modes: %v", loaded.Active())
	}
}

func TestDisplayModesCorruptValueFallsBack(t *testing.T) {
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	if err := st.SetSetting("grid.display_modes", "{{{not json"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	modes := st.DisplayModes()
	if modes.Len() != 1 || !modes.Enabled(grid.ModeCompletion) {
		t.Errorf("corrupt value should fall back to default, got %v", modes.Active())
	}
}

func TestSaveNegotiations(t *testing.T) {
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	now := time.Now().UTC()
	negs := []model.Negotiation{
		{
			RunID:      "r-1",
			Competitor: "Atlas3@0",
			Opponent:   "Boulware",
			Scenario:   "scenarios/laptop",
			Result:     "agreement",
			Utilities:  []float64{0.8, 0.6},
			Observed:   now,
		},
		{
			RunID:      "r-2",
			Competitor: "Conceder",
			Opponent:   "Boulware",
			Scenario:   "scenarios/party",
			Result:     "timeout",
			Observed:   now.Add(-time.Minute),
		},
	}

	count, err := st.SaveNegotiations("t1", negs)
	if err != nil {
		t.Fatalf("SaveNegotiations failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 new rows, got %d", count)
	}

	// Duplicate run_id is ignored.
	count, err = st.SaveNegotiations("t1", negs[:1])
	if err != nil {
		t.Fatalf("SaveNegotiations (dup) failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 new rows for duplicate, got %d", count)
	}

	got, err := st.GetNegotiations("t1", 10)
	if err != nil {
		t.Fatalf("GetNegotiations failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 negotiations, got %d", len(got))
	}
	// Newest first.
	if got[0].RunID != "r-1" {
		t.Errorf("expected r-1 first, got %s", got[0].RunID)
	}
	if len(got[0].Utilities) != 2 || got[0].Utilities[1] != 0.6 {
		t.Errorf("utilities did not round trip: %v", got[0].Utilities)
	}

	// Other tournaments are isolated.
	other, err := st.GetNegotiations("t2", 10)
	if err != nil {
		t.Fatalf("GetNegotiations (t2) failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no rows for t2, got %d", len(other))
	}
}

func TestSaveNegotiationsSkipsMissingRunID(t *testing.T) {
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	count, err := st.SaveNegotiations("t1", []model.Negotiation{{Competitor: "A", Opponent: "B"}})
	if err != nil {
		t.Fatalf("SaveNegotiations failed: %v", err)
	}
	if count != 0 {
		t.Errorf("rows without run_id must be skipped, got %d", count)
	}
}

func TestLastTournamentRoundTrip(t *testing.T) {
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	if _, _, err := st.LastTournament(); err == nil {
		t.Error("expected error when no tournament recorded")
	}

	init := model.GridInit{
		TournamentID: "t1",
		Competitors:  []string{"Atlas3", "Boulware"},
		Scenarios:    []string{"scenarios/laptop"},
		NRepetitions: 3,
		RotateUfuns:  true,
	}
	if err := st.SaveLastTournament("t1", init); err != nil {
		t.Fatalf("SaveLastTournament failed: %v", err)
	}

	id, got, err := st.LastTournament()
	if err != nil {
		t.Fatalf("LastTournament failed: %v", err)
	}
	if id != "t1" || got == nil {
		t.Fatalf("unexpected record: id %q, init %+v", id, got)
	}
	if len(got.Competitors) != 2 || got.NRepetitions != 3 || !got.RotateUfuns {
		t.Errorf("init did not round trip: %+v", got)
	}

	// A second save overwrites the first.
	init.TournamentID = "t2"
	if err := st.SaveLastTournament("t2", init); err != nil {
		t.Fatalf("SaveLastTournament (overwrite) failed: %v", err)
	}
	id, _, _ = st.LastTournament()
	if id != "t2" {
		t.Errorf("expected the latest tournament, got %q", id)
	}
}

func TestPresetCache(t *testing.T) {
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	presets := []model.FilterPreset{
		{ID: "p1", Name: "Big domains", Criteria: model.Criteria{MinOutcomes: 1000}},
		{ID: "p2", Name: "Default", IsDefault: true},
	}
	if err := st.CachePresets(presets); err != nil {
		t.Fatalf("CachePresets failed: %v", err)
	}

	got, err := st.CachedPresets()
	if err != nil {
		t.Fatalf("CachedPresets failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(got))
	}
	// Ordered by name.
	if got[0].Name != "Big domains" {
		t.Errorf("expected name ordering, got %s first", got[0].Name)
	}

	// Re-caching replaces, not appends.
	if err := st.CachePresets(presets[:1]); err != nil {
		t.Fatalf("CachePresets (replace) failed: %v", err)
	}
	got, _ = st.CachedPresets()
	if len(got) != 1 {
		t.Errorf("expected cache replacement, got %d rows", len(got))
	}
}

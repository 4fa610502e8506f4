package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/negwatch/negwatch/internal/grid"
	"github.com/negwatch/negwatch/internal/model"
	"github.com/negwatch/negwatch/internal/work"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// testApp returns a ready app and a pointer to the modes captured by the
// SaveModes command factory.
func testApp() (App, *[]grid.Mode) {
	var saved []grid.Mode
	app := NewApp(AppConfig{
		SaveModes: func(modes grid.ModeSet) tea.Cmd {
			saved = modes.Active()
			return nil
		},
	})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App), &saved
}

func startTournament(t *testing.T, app App) App {
	t.Helper()
	m, _ := app.Update(TournamentMsg{
		TournamentID: "t1",
		Event: model.TournamentEvent{
			Kind: model.EventGridInit,
			Init: &model.GridInit{
				TournamentID: "t1",
				Competitors:  []string{"Atlas3", "Boulware"},
				Scenarios:    []string{"s1"},
				NRepetitions: 2,
			},
		},
	})
	return m.(App)
}

func TestToggleModePersists(t *testing.T) {
	app, saved := testApp()
	app = startTournament(t, app)

	m, _ := app.Update(key("2"))
	app = m.(App)

	want := []grid.Mode{grid.ModeCompletion, grid.ModeAgreement}
	if len(*saved) != len(want) {
		t.Fatalf("expected modes %v saved, got %v", want, *saved)
	}
	for i, mode := range want {
		if (*saved)[i] != mode {
			t.Errorf("saved[%d]: expected %s, got %s", i, mode, (*saved)[i])
		}
	}
}

func TestToggleLastModeNotPersisted(t *testing.T) {
	app, saved := testApp()
	app = startTournament(t, app)

	// Only completion is active; toggling it off is a no-op and nothing
	// should be written.
	m, _ := app.Update(key("1"))
	_ = m.(App)

	if *saved != nil {
		t.Errorf("no-op toggle must not persist, saved %v", *saved)
	}
}

func TestTournamentCompleteBanner(t *testing.T) {
	app, _ := testApp()
	app = startTournament(t, app)

	m, _ := app.Update(TournamentMsg{
		TournamentID: "t1",
		Event:        model.TournamentEvent{Kind: model.EventComplete},
	})
	app = m.(App)

	if app.bannerLevel != bannerSuccess {
		t.Errorf("expected success banner, got level %d text %q", app.bannerLevel, app.bannerText)
	}

	// Any key clears the banner.
	m, _ = app.Update(key("j"))
	app = m.(App)
	if app.bannerLevel != bannerNone {
		t.Error("banner should clear on key press")
	}
}

func TestDeletePresetNeedsConfirmation(t *testing.T) {
	var deleted string
	app := NewApp(AppConfig{
		DeletePreset: func(id string) tea.Cmd {
			deleted = id
			return nil
		},
	})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = m.(App)

	m, _ = app.Update(PresetsMsg{Presets: []model.FilterPreset{{ID: "p1", Name: "Big"}}})
	app = m.(App)

	// Enter filters view, press d once: armed but not deleted.
	m, _ = app.Update(key("f"))
	app = m.(App)
	m, _ = app.Update(key("d"))
	app = m.(App)
	if deleted != "" {
		t.Fatal("delete must not fire on first press")
	}

	m, _ = app.Update(key("d"))
	_ = m.(App)
	if deleted != "p1" {
		t.Errorf("expected p1 deleted after confirmation, got %q", deleted)
	}
}

func TestWizardStartsTournament(t *testing.T) {
	var started *model.TournamentConfig
	app := NewApp(AppConfig{
		StartTournament: func(cfg model.TournamentConfig) tea.Cmd {
			started = &cfg
			return nil
		},
	})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = m.(App)

	m, _ = app.Update(NegotiatorsMsg{Negotiators: []model.Negotiator{{TypeName: "Atlas3"}, {TypeName: "Boulware"}}})
	app = m.(App)
	m, _ = app.Update(ScenariosMsg{Scenarios: []model.Scenario{{Path: "scenarios/laptop"}}})
	app = m.(App)

	press := func(s string) {
		t.Helper()
		m, _ := app.Update(key(s))
		app = m.(App)
	}

	press("n") // open wizard
	press(" ") // pick Atlas3
	press("j")
	press(" ")     // pick Boulware
	press("enter") // to scenarios
	press(" ")     // pick the scenario
	press("enter") // to params
	press("enter") // to confirm
	press("enter") // start

	if started == nil {
		t.Fatal("StartTournament was never invoked")
	}
	if len(started.Competitors) != 2 || started.Competitors[0] != "Atlas3" {
		t.Errorf("unexpected competitors: %v", started.Competitors)
	}
	if len(started.Scenarios) != 1 || started.Scenarios[0] != "scenarios/laptop" {
		t.Errorf("unexpected scenarios: %v", started.Scenarios)
	}
	if started.NRepetitions != 3 || !started.RotateUfuns {
		t.Errorf("unexpected defaults: %+v", started)
	}
}

func TestWizardRecalcStats(t *testing.T) {
	var recalced string
	app := NewApp(AppConfig{
		RecalcStats: func(scenarioID string) tea.Cmd {
			recalced = scenarioID
			return nil
		},
	})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = m.(App)

	m, _ = app.Update(NegotiatorsMsg{Negotiators: []model.Negotiator{{TypeName: "Atlas3"}}})
	app = m.(App)
	m, _ = app.Update(ScenariosMsg{Scenarios: []model.Scenario{{Path: "scenarios/laptop"}}})
	app = m.(App)

	press := func(s string) {
		t.Helper()
		m, _ := app.Update(key(s))
		app = m.(App)
	}

	press("n") // open wizard
	// Not on the scenario page yet; s must do nothing.
	press("s")
	if recalced != "" {
		t.Fatal("stats recalc must not fire on the competitors page")
	}

	press(" ")     // pick Atlas3
	press("enter") // to scenarios
	press("s")
	if recalced != "scenarios/laptop" {
		t.Errorf("expected recalc for the highlighted scenario, got %q", recalced)
	}
}

func TestResetSettingsNeedsConfirmation(t *testing.T) {
	calls := 0
	app := NewApp(AppConfig{
		ResetSettings: func() tea.Cmd {
			calls++
			return nil
		},
	})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = m.(App)

	press := func(s string) {
		t.Helper()
		m, _ := app.Update(key(s))
		app = m.(App)
	}

	press("c") // config view
	press("R")
	if calls != 0 {
		t.Fatal("reset must not fire on first press")
	}
	press("R")
	if calls != 1 {
		t.Errorf("expected reset after confirmation, got %d calls", calls)
	}

	// A different key disarms the confirmation.
	press("R")
	press("j")
	press("R")
	if calls != 1 {
		t.Errorf("stray key must disarm the confirmation, got %d calls", calls)
	}
}

func TestExportPresetsKey(t *testing.T) {
	exports := 0
	app := NewApp(AppConfig{
		ExportPresets: func() tea.Cmd {
			exports++
			return nil
		},
	})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = m.(App)

	m, _ = app.Update(key("f"))
	app = m.(App)
	m, _ = app.Update(key("e"))
	_ = m.(App)
	if exports != 1 {
		t.Errorf("expected one preset export, got %d", exports)
	}
}

func TestReopenSavedTournament(t *testing.T) {
	loads := 0
	app := NewApp(AppConfig{
		LoadHistory: func() tea.Cmd {
			loads++
			return nil
		},
	})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = m.(App)

	m, _ = app.Update(key("r"))
	app = m.(App)
	if loads != 1 {
		t.Fatalf("expected history load on r, got %d calls", loads)
	}

	m, _ = app.Update(HistoryMsg{
		TournamentID: "t1",
		Init: &model.GridInit{
			TournamentID: "t1",
			Competitors:  []string{"Atlas3", "Boulware"},
			Scenarios:    []string{"s1"},
			NRepetitions: 2,
		},
		Negotiations: []model.Negotiation{
			{RunID: "r1", Competitor: "Atlas3@0", Opponent: "Boulware-0", Scenario: "s1", Result: "agreement"},
		},
	})
	app = m.(App)
	if app.bannerLevel != bannerSuccess {
		t.Errorf("expected success banner, got %d %q", app.bannerLevel, app.bannerText)
	}

	// While a tournament is live, r must not clobber the grid.
	app = startTournament(t, app)
	m, _ = app.Update(key("r"))
	_ = m.(App)
	if loads != 1 {
		t.Errorf("history load must be refused while running, got %d calls", loads)
	}
}

func TestJobFailureBanner(t *testing.T) {
	app, _ := testApp()
	m, _ := app.Update(JobEventMsg{
		Job:    &work.Job{Description: "Building scenario cache", Err: errors.New("server down")},
		Change: "failed",
	})
	app = m.(App)
	if app.bannerLevel != bannerError {
		t.Fatalf("expected error banner, got %d %q", app.bannerLevel, app.bannerText)
	}

	// Non-failure events must not banner.
	app, _ = testApp()
	m, _ = app.Update(JobEventMsg{
		Job:    &work.Job{Description: "Exporting grid"},
		Change: "completed",
	})
	app = m.(App)
	if app.bannerLevel != bannerNone {
		t.Errorf("completed event must not banner, got %q", app.bannerText)
	}
}

func TestExportWithoutTournamentWarns(t *testing.T) {
	app, _ := testApp()
	m, _ := app.Update(key("e"))
	app = m.(App)
	if app.bannerLevel != bannerWarning {
		t.Errorf("expected warning banner, got %d", app.bannerLevel)
	}
}

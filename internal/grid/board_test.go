package grid

import (
	"testing"

	"github.com/negwatch/negwatch/internal/model"
)

func testInit() model.GridInit {
	return model.GridInit{
		TournamentID: "t1",
		Competitors:  []string{"Atlas3", "Boulware", "Conceder"},
		Scenarios:    []string{"scenarios/laptop", "scenarios/party"},
		NRepetitions: 3,
		RotateUfuns:  true,
		SelfPlay:     false,
	}
}

func TestNewBoardDefaultsOpponents(t *testing.T) {
	b := NewBoard(testInit())
	init := b.Init()
	if len(init.Opponents) != 3 {
		t.Fatalf("expected opponents to default to competitors, got %v", init.Opponents)
	}
	if init.Opponents[0] != "Atlas3" {
		t.Errorf("expected first opponent Atlas3, got %s", init.Opponents[0])
	}
}

func TestExpectedCellTotal(t *testing.T) {
	b := NewBoard(testInit())
	if got := b.ExpectedCellTotal(); got != 6 {
		t.Errorf("rotate_ufuns doubles repetitions: expected 6, got %d", got)
	}

	init := testInit()
	init.RotateUfuns = false
	b = NewBoard(init)
	if got := b.ExpectedCellTotal(); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestApplyCreatesCellLazily(t *testing.T) {
	b := NewBoard(testInit())
	key := Key{Competitor: "Atlas3", Opponent: "Boulware", Scenario: "scenarios/laptop"}

	if b.Cell(key) != nil {
		t.Fatal("cell should not exist before first event")
	}

	b.Apply(model.CellUpdate{
		Competitor: "Atlas3",
		Opponent:   "Boulware",
		Scenario:   "scenarios/laptop",
		Completed:  2,
		Agreements: 1,
		Running:    1,
		Status:     "running",
	})

	cell := b.Cell(key)
	if cell == nil {
		t.Fatal("cell not created by Apply")
	}
	if cell.Completed != 2 || cell.Agreements != 1 || cell.Running != 1 {
		t.Errorf("unexpected counters: %+v", cell)
	}
	// Total omitted by the server falls back to the expected total.
	if cell.Total != 6 {
		t.Errorf("expected fallback total 6, got %d", cell.Total)
	}
	if !cell.Active() {
		t.Error("cell with running>0 should be active")
	}
}

func TestApplyKeepsStatusWhenOmitted(t *testing.T) {
	b := NewBoard(testInit())
	b.Apply(model.CellUpdate{Competitor: "Atlas3", Opponent: "Boulware", Scenario: "scenarios/laptop", Status: "running"})
	b.Apply(model.CellUpdate{Competitor: "Atlas3", Opponent: "Boulware", Scenario: "scenarios/laptop", Completed: 1})

	cell := b.Cell(Key{Competitor: "Atlas3", Opponent: "Boulware", Scenario: "scenarios/laptop"})
	if cell.Status != StatusRunning {
		t.Errorf("status should persist across updates that omit it, got %s", cell.Status)
	}
}

func TestRecordRebuildsFromResults(t *testing.T) {
	b := NewBoard(testInit())
	key := Key{Competitor: "Atlas3", Opponent: "Boulware", Scenario: "scenarios/laptop"}

	for _, result := range []string{"agreement", "agreement", "error", "timeout", "no_agreement", "agreement"} {
		b.Record(key, result)
	}

	cell := b.Cell(key)
	if cell == nil {
		t.Fatal("record must create the cell")
	}
	if cell.Total != 6 {
		t.Errorf("total must come from the expected per-cell count, got %d", cell.Total)
	}
	if cell.Completed != 6 || cell.Agreements != 3 || cell.Errors != 1 || cell.Timeouts != 1 {
		t.Errorf("unexpected counters: %+v", cell)
	}
	if cell.Status != StatusComplete {
		t.Errorf("full cell must read complete, got %s", cell.Status)
	}
}

func TestSummaryTotalIndependentOfReportedCells(t *testing.T) {
	b := NewBoard(testInit())

	// No cells reported at all: total is still scenarios × expected.
	agg := b.Summary("Atlas3", "Boulware")
	if agg == nil {
		t.Fatal("expected aggregate for non-self-play pairing")
	}
	if agg.Total != 12 { // 2 scenarios × 3 reps × 2 (rotate)
		t.Errorf("expected total 12, got %d", agg.Total)
	}
	if agg.Completed != 0 {
		t.Errorf("expected no completions, got %d", agg.Completed)
	}

	// One scenario reports; total must not change.
	b.Apply(model.CellUpdate{
		Competitor: "Atlas3", Opponent: "Boulware", Scenario: "scenarios/laptop",
		Total: 6, Completed: 4, Agreements: 2, Errors: 1, Timeouts: 1,
	})
	agg = b.Summary("Atlas3", "Boulware")
	if agg.Total != 12 {
		t.Errorf("total must stay 12 after partial reports, got %d", agg.Total)
	}
	if agg.Completed != 4 || agg.Agreements != 2 {
		t.Errorf("unexpected aggregate: %+v", agg)
	}
}

func TestSummaryClampsPerScenario(t *testing.T) {
	b := NewBoard(testInit())
	// Overshooting counters are clamped per scenario before summing.
	b.Apply(model.CellUpdate{
		Competitor: "Atlas3", Opponent: "Boulware", Scenario: "scenarios/laptop",
		Total: 6, Completed: 2, Agreements: 9, Errors: 8, Timeouts: 7,
	})
	agg := b.Summary("Atlas3", "Boulware")
	if agg.Agreements != 2 || agg.Errors != 2 || agg.Timeouts != 2 {
		t.Errorf("expected clamped aggregates of 2, got %+v", agg)
	}
}

func TestSummarySelfPlayExcluded(t *testing.T) {
	b := NewBoard(testInit())
	// Even with stored data, a disabled self-play pairing yields nothing.
	b.Apply(model.CellUpdate{
		Competitor: "Atlas3", Opponent: "Atlas3", Scenario: "scenarios/laptop",
		Completed: 5, Agreements: 5,
	})
	if agg := b.Summary("Atlas3", "Atlas3"); agg != nil {
		t.Errorf("self-play disabled: expected nil aggregate, got %+v", agg)
	}
	if !b.SelfPlayDisabled("Atlas3", "Atlas3") {
		t.Error("expected self-play pairing to be disabled")
	}
	if b.SelfPlayDisabled("Atlas3", "Boulware") {
		t.Error("mixed pairing must not be disabled")
	}
}

func TestSummarySelfPlayEnabled(t *testing.T) {
	init := testInit()
	init.SelfPlay = true
	b := NewBoard(init)
	if agg := b.Summary("Atlas3", "Atlas3"); agg == nil {
		t.Error("self-play enabled: expected aggregate")
	}
}

func TestSummaryStatus(t *testing.T) {
	b := NewBoard(testInit())
	b.Apply(model.CellUpdate{
		Competitor: "Atlas3", Opponent: "Boulware", Scenario: "scenarios/laptop",
		Completed: 1, Running: 2,
	})
	if agg := b.Summary("Atlas3", "Boulware"); agg.Status != StatusRunning {
		t.Errorf("expected running status, got %s", agg.Status)
	}

	for _, scenario := range []string{"scenarios/laptop", "scenarios/party"} {
		b.Apply(model.CellUpdate{
			Competitor: "Atlas3", Opponent: "Boulware", Scenario: scenario,
			Completed: 6, Running: 0,
		})
	}
	if agg := b.Summary("Atlas3", "Boulware"); agg.Status != StatusComplete {
		t.Errorf("expected complete status, got %s", agg.Status)
	}
}

package grid

import (
	"github.com/negwatch/negwatch/internal/logging"
	"github.com/negwatch/negwatch/internal/model"
)

// Board accumulates cell states for one tournament session.
//
// Not safe for concurrent use: the Bubble Tea update loop is the only writer,
// mirroring the single event-handling thread of the original client.
type Board struct {
	init  model.GridInit
	cells map[Key]*CellState

	// overshootSeen limits the counter-inconsistency debug log to once per
	// cell so a noisy stream cannot flood the log.
	overshootSeen map[Key]bool
}

// NewBoard creates a Board for the given tournament axes. Opponents default
// to the competitor list when the server omits them.
func NewBoard(init model.GridInit) *Board {
	if len(init.Opponents) == 0 {
		init.Opponents = append([]string(nil), init.Competitors...)
	}
	return &Board{
		init:          init,
		cells:         make(map[Key]*CellState),
		overshootSeen: make(map[Key]bool),
	}
}

// Init returns the immutable tournament axes.
func (b *Board) Init() model.GridInit {
	return b.init
}

// ExpectedCellTotal is the expected number of negotiations per cell.
func (b *Board) ExpectedCellTotal() int {
	factor := 1
	if b.init.RotateUfuns {
		factor = 2
	}
	return b.init.NRepetitions * factor
}

// Cell returns the state for a key, or nil if no event has arrived for it.
func (b *Board) Cell(key Key) *CellState {
	return b.cells[key]
}

// SelfPlayDisabled reports whether the given pairing is an excluded
// self-play cell.
func (b *Board) SelfPlayDisabled(competitor, opponent string) bool {
	return competitor == opponent && !b.init.SelfPlay
}

// Apply folds a streamed cell update into the board, creating the cell on
// first contact.
func (b *Board) Apply(update model.CellUpdate) {
	key := Key{
		Competitor: update.Competitor,
		Opponent:   update.Opponent,
		Scenario:   update.Scenario,
	}
	cell := b.cells[key]
	if cell == nil {
		cell = &CellState{Status: StatusPending}
		b.cells[key] = cell
	}

	if update.Total > 0 {
		cell.Total = update.Total
	} else if cell.Total == 0 {
		cell.Total = b.ExpectedCellTotal()
	}
	cell.Completed = update.Completed
	cell.Agreements = update.Agreements
	cell.Errors = update.Errors
	cell.Timeouts = update.Timeouts
	cell.Running = update.Running
	if update.Status != "" {
		cell.Status = Status(update.Status)
	}

	if !b.overshootSeen[key] &&
		(cell.Agreements > cell.Completed || cell.Errors > cell.Completed || cell.Timeouts > cell.Completed) {
		b.overshootSeen[key] = true
		logging.Debug("cell counters overshoot completed",
			"cell", key.String(),
			"completed", cell.Completed,
			"agreements", cell.Agreements,
			"errors", cell.Errors,
			"timeouts", cell.Timeouts)
	}
}

// Record folds one finished negotiation result into a cell. Streamed updates
// carry absolute counters and go through Apply; Record increments, for
// rebuilding a board from persisted history where only individual results
// survive.
func (b *Board) Record(key Key, result string) {
	cell := b.cells[key]
	if cell == nil {
		cell = &CellState{Status: StatusPending}
		b.cells[key] = cell
	}
	if cell.Total == 0 {
		cell.Total = b.ExpectedCellTotal()
	}
	cell.Completed++
	switch result {
	case "agreement":
		cell.Agreements++
	case "error":
		cell.Errors++
	case "timeout":
		cell.Timeouts++
	}
	if cell.Total > 0 && cell.Completed >= cell.Total {
		cell.Status = StatusComplete
	}
}

// Summary folds the per-scenario cells of a pairing into one aggregate state
// for the Summary tab.
//
// The aggregate Total is recomputed from the expected per-cell total rather
// than summed from cell totals: cells that have not reported yet carry a zero
// total, and the completion percentage must stay meaningful regardless.
func (b *Board) Summary(competitor, opponent string) *CellState {
	if b.SelfPlayDisabled(competitor, opponent) {
		return nil
	}

	agg := &CellState{
		Total:  len(b.init.Scenarios) * b.ExpectedCellTotal(),
		Status: StatusPending,
	}
	for _, scenario := range b.init.Scenarios {
		cell := b.cells[Key{Competitor: competitor, Opponent: opponent, Scenario: scenario}]
		if cell == nil {
			continue
		}
		completed := cell.Completed
		agg.Completed += completed
		agg.Agreements += clamp(cell.Agreements, completed)
		agg.Errors += clamp(cell.Errors, completed)
		agg.Timeouts += clamp(cell.Timeouts, completed)
		agg.Running += cell.Running
	}

	switch {
	case agg.Running > 0:
		agg.Status = StatusRunning
	case agg.Completed >= agg.Total && agg.Total > 0:
		agg.Status = StatusComplete
	}
	return agg
}

// CellCount returns the number of cells that have reported at least once.
func (b *Board) CellCount() int {
	return len(b.cells)
}

// Package grid holds the competition-grid state for a tournament session:
// per-cell counters streamed from the server, the derived percentage metrics,
// and the cross-scenario summary aggregation.
//
// A Board is owned by the UI update loop and is not safe for concurrent use.
// Writers deliver events as messages; everything derived is a pure function
// over the counters.
package grid

// Status is the latest coarse cell status reported by the server. It may lag
// the counters, so consumers treat the Running count, not Status, as
// authoritative for whether a cell is active.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
	StatusTimeout  Status = "timeout"
)

// Key identifies one competitor × opponent × scenario cell.
type Key struct {
	Competitor string
	Opponent   string
	Scenario   string
}

// String renders the composite key used for map storage and export.
func (k Key) String() string {
	return k.Competitor + "::" + k.Opponent + "::" + k.Scenario
}

// CellState holds raw counters for one cell. Created lazily when the first
// event for the triple arrives; never deleted while the session lives.
type CellState struct {
	Total      int
	Completed  int
	Agreements int
	Errors     int
	Timeouts   int
	Running    int
	Status     Status
}

// Active reports whether negotiations are currently running in this cell.
func (c *CellState) Active() bool {
	return c != nil && c.Running > 0
}

// Package export renders a tournament grid as CSV. Everything here is
// in-memory formatting; the only I/O is the final file write under the data
// directory.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/negwatch/negwatch/internal/grid"
	"github.com/negwatch/negwatch/internal/logging"
)

// Scope selects how much of the grid an export covers.
type Scope string

const (
	// ScopeCurrent exports only the metrics currently toggled visible.
	ScopeCurrent Scope = "current"
	// ScopeAll exports the full counter and percentage set per cell.
	ScopeAll Scope = "all"
)

// TabSummary is the tab name for the cross-scenario aggregate view. Every
// other tab name is a scenario path.
const TabSummary = "Summary"

var allHeader = []string{
	"Competitor", "Opponent", "Scenario",
	"Total", "Completed", "Completion%",
	"Agreements", "Agreement%", "Success%",
	"Timeouts", "Timeout%",
	"Errors", "Error%",
}

// GridCSV renders the board to CSV text for the given tab and scope.
func GridCSV(board *grid.Board, tab string, scope Scope, modes grid.ModeSet) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	switch scope {
	case ScopeAll:
		writeAll(w, board, tab)
	case ScopeCurrent:
		writeCurrent(w, board, tab, modes)
	default:
		return "", fmt.Errorf("unknown export scope %q", scope)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("render csv: %w", err)
	}
	return buf.String(), nil
}

// writeAll emits the fixed detailed column set. On the Summary tab the rows
// expand over every scenario; on a scenario tab only that scenario appears.
func writeAll(w *csv.Writer, board *grid.Board, tab string) {
	w.Write(allHeader)

	init := board.Init()
	scenarios := init.Scenarios
	if tab != TabSummary {
		scenarios = []string{tab}
	}

	for _, competitor := range init.Competitors {
		for _, opponent := range init.Opponents {
			if board.SelfPlayDisabled(competitor, opponent) {
				continue
			}
			for _, scenario := range scenarios {
				cell := board.Cell(grid.Key{
					Competitor: competitor,
					Opponent:   opponent,
					Scenario:   scenario,
				})
				w.Write(allRow(competitor, opponent, scenario, cell, board.ExpectedCellTotal()))
			}
		}
	}
}

func allRow(competitor, opponent, scenario string, cell *grid.CellState, expectedTotal int) []string {
	m := grid.Metrics(cell)

	total := expectedTotal
	var completed, agreements, timeouts, errors int
	if cell != nil {
		if cell.Total > 0 {
			total = cell.Total
		}
		completed = cell.Completed
		agreements = cell.Agreements
		timeouts = cell.Timeouts
		errors = cell.Errors
	}

	return []string{
		competitor, opponent, scenario,
		strconv.Itoa(total),
		strconv.Itoa(completed), strconv.Itoa(m.Completion),
		strconv.Itoa(agreements), strconv.Itoa(m.Agreement), strconv.Itoa(m.Success),
		strconv.Itoa(timeouts), strconv.Itoa(m.Timeout),
		strconv.Itoa(errors), strconv.Itoa(m.Error),
	}
}

// writeCurrent emits one percentage column per visible display mode.
func writeCurrent(w *csv.Writer, board *grid.Board, tab string, modes grid.ModeSet) {
	active := modes.Active()

	header := []string{"Competitor", "Opponent"}
	for _, mode := range active {
		header = append(header, modeLabel(mode)+" %")
	}
	w.Write(header)

	init := board.Init()
	for _, competitor := range init.Competitors {
		for _, opponent := range init.Opponents {
			if board.SelfPlayDisabled(competitor, opponent) {
				continue
			}

			var m grid.MetricSet
			if tab == TabSummary {
				m = grid.Metrics(board.Summary(competitor, opponent))
			} else {
				m = grid.Metrics(board.Cell(grid.Key{
					Competitor: competitor,
					Opponent:   opponent,
					Scenario:   tab,
				}))
			}

			row := []string{competitor, opponent}
			for _, mode := range active {
				row = append(row, strconv.Itoa(m.ByMode(mode)))
			}
			w.Write(row)
		}
	}
}

func modeLabel(mode grid.Mode) string {
	switch mode {
	case grid.ModeCompletion:
		return "Completion"
	case grid.ModeAgreement:
		return "Agreement"
	case grid.ModeSuccess:
		return "Success"
	case grid.ModeTimeout:
		return "Timeout"
	case grid.ModeError:
		return "Error"
	}
	return string(mode)
}

// filenameReplacer strips characters that are awkward in filenames; colons in
// the timestamp become hyphens.
var filenameReplacer = strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")

// Filename builds the export filename from the tab, scope and timestamp.
func Filename(tab string, scope Scope, now time.Time) string {
	stamp := now.Format("2006-01-02T15-04-05")
	return fmt.Sprintf("grid-%s-%s-%s.csv", filenameReplacer.Replace(tab), scope, stamp)
}

// WriteGrid renders the board and writes the CSV under dir, returning the
// full path of the written file.
func WriteGrid(dir string, board *grid.Board, tab string, scope Scope, modes grid.ModeSet) (string, error) {
	text, err := GridCSV(board, tab, scope, modes)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename(tab, scope, time.Now()))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	logging.Info("exported grid", "path", path, "tab", tab, "scope", scope)
	return path, nil
}

package grid

import "math"

// MetricSet holds the derived percentages for one cell, each in [0,100].
type MetricSet struct {
	Completion int
	Agreement  int
	Success    int
	Timeout    int
	Error      int
}

// Metrics derives percentage metrics from raw counters. Pure.
//
// Agreements, Errors and Timeouts are clamped to Completed before dividing,
// and Completion is clamped to 100 after: streamed partial updates can
// briefly overshoot while the server is writing concurrently, and the
// display absorbs that rather than erroring.
func Metrics(state *CellState) MetricSet {
	if state == nil || state.Completed == 0 {
		return MetricSet{}
	}

	total := state.Total
	if total <= 0 {
		total = 1
	}

	completed := state.Completed
	agreements := clamp(state.Agreements, completed)
	errors := clamp(state.Errors, completed)
	timeouts := clamp(state.Timeouts, completed)

	return MetricSet{
		Completion: clamp(pct(completed, total), 100),
		Agreement:  pct(agreements, completed),
		Success:    pct(completed-errors, completed),
		Timeout:    pct(timeouts, completed),
		Error:      pct(errors, completed),
	}
}

// ByMode returns the metric value for a display mode.
func (m MetricSet) ByMode(mode Mode) int {
	switch mode {
	case ModeCompletion:
		return m.Completion
	case ModeAgreement:
		return m.Agreement
	case ModeSuccess:
		return m.Success
	case ModeTimeout:
		return m.Timeout
	case ModeError:
		return m.Error
	}
	return 0
}

func pct(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func clamp(n, limit int) int {
	if n > limit {
		return limit
	}
	return n
}

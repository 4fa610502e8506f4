package grid

import "testing"

func TestMetricsNilAndEmpty(t *testing.T) {
	if got := Metrics(nil); got != (MetricSet{}) {
		t.Errorf("nil state: expected all-zero metrics, got %+v", got)
	}

	// Completed == 0 zeroes everything, regardless of other counters.
	state := &CellState{Total: 10, Agreements: 5, Errors: 3, Timeouts: 2, Running: 4}
	if got := Metrics(state); got != (MetricSet{}) {
		t.Errorf("completed=0: expected all-zero metrics, got %+v", got)
	}
}

func TestMetricsBasic(t *testing.T) {
	state := &CellState{
		Total:      10,
		Completed:  4,
		Agreements: 2,
		Errors:     1,
		Timeouts:   1,
	}
	got := Metrics(state)

	if got.Completion != 40 {
		t.Errorf("completion: expected 40, got %d", got.Completion)
	}
	if got.Agreement != 50 {
		t.Errorf("agreement: expected 50, got %d", got.Agreement)
	}
	if got.Success != 75 {
		t.Errorf("success: expected 75, got %d", got.Success)
	}
	if got.Timeout != 25 {
		t.Errorf("timeout: expected 25, got %d", got.Timeout)
	}
	if got.Error != 25 {
		t.Errorf("error: expected 25, got %d", got.Error)
	}
}

func TestMetricsZeroTotalDefaultsToOne(t *testing.T) {
	// Total unset must not divide by zero; it defaults to 1 and the
	// completion percentage caps at 100.
	state := &CellState{Completed: 3, Agreements: 3}
	got := Metrics(state)
	if got.Completion != 100 {
		t.Errorf("completion with total=0: expected 100, got %d", got.Completion)
	}
}

func TestMetricsCompletionCapped(t *testing.T) {
	// Completed can transiently exceed Total on streamed updates; the
	// completion percentage must still land in [0,100].
	cases := []CellState{
		{Completed: 3},
		{Total: 2, Completed: 5},
	}
	for _, state := range cases {
		got := Metrics(&state)
		if got.Completion < 0 || got.Completion > 100 {
			t.Errorf("completion for %+v: expected [0,100], got %d", state, got.Completion)
		}
	}
}

func TestMetricsClampOvershoot(t *testing.T) {
	// Streamed counters can briefly exceed Completed; every derived
	// percentage must still land in [0,100].
	cases := []struct {
		name  string
		state CellState
	}{
		{"agreements overshoot", CellState{Total: 10, Completed: 2, Agreements: 7}},
		{"errors overshoot", CellState{Total: 10, Completed: 2, Errors: 9}},
		{"timeouts overshoot", CellState{Total: 10, Completed: 2, Timeouts: 5}},
		{"all overshoot", CellState{Total: 1, Completed: 1, Agreements: 3, Errors: 3, Timeouts: 3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Metrics(&tc.state)
			for name, v := range map[string]int{
				"agreement": got.Agreement,
				"success":   got.Success,
				"timeout":   got.Timeout,
				"error":     got.Error,
			} {
				if v < 0 || v > 100 {
					t.Errorf("%s out of range: %d", name, v)
				}
			}
		})
	}
}

func TestMetricsAgreementSuccessIndependent(t *testing.T) {
	// Agreement measures agreements/completed; success measures
	// (completed-errors)/completed. They are not complements.
	state := &CellState{
		Total:      10,
		Completed:  10,
		Agreements: 3,
		Errors:     2,
	}
	got := Metrics(state)
	if got.Agreement != 30 {
		t.Errorf("agreement: expected 30, got %d", got.Agreement)
	}
	if got.Success != 80 {
		t.Errorf("success: expected 80, got %d", got.Success)
	}
	if got.Agreement+got.Success == 100 {
		t.Errorf("agreement and success summed to 100 by accident; adjust test data")
	}
}

func TestMetricsByMode(t *testing.T) {
	m := MetricSet{Completion: 1, Agreement: 2, Success: 3, Timeout: 4, Error: 5}
	cases := []struct {
		mode Mode
		want int
	}{
		{ModeCompletion, 1},
		{ModeAgreement, 2},
		{ModeSuccess, 3},
		{ModeTimeout, 4},
		{ModeError, 5},
		{Mode("bogus"), 0},
	}
	for _, tc := range cases {
		if got := m.ByMode(tc.mode); got != tc.want {
			t.Errorf("ByMode(%s): expected %d, got %d", tc.mode, tc.want, got)
		}
	}
}

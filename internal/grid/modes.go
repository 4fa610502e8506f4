package grid

import "encoding/json"

// Mode is one of the toggleable display metrics.
type Mode string

const (
	ModeCompletion Mode = "completion"
	ModeAgreement  Mode = "agreement"
	ModeSuccess    Mode = "success"
	ModeTimeout    Mode = "timeout"
	ModeError      Mode = "error"
)

// AllModes lists the defined modes in display order.
var AllModes = []Mode{ModeCompletion, ModeAgreement, ModeSuccess, ModeTimeout, ModeError}

// ModeSet is the set of simultaneously visible metrics. At least one mode is
// always active.
type ModeSet struct {
	active map[Mode]bool
}

// DefaultModeSet returns the single default mode, completion.
func DefaultModeSet() ModeSet {
	return ModeSet{active: map[Mode]bool{ModeCompletion: true}}
}

// Toggle flips a mode. Removing the last active mode is a silent no-op.
func (s *ModeSet) Toggle(mode Mode) {
	if !validMode(mode) {
		return
	}
	if s.active == nil {
		s.active = map[Mode]bool{}
	}
	if s.active[mode] {
		if len(s.active) == 1 {
			return
		}
		delete(s.active, mode)
		return
	}
	s.active[mode] = true
}

// Enabled reports whether a mode is visible.
func (s ModeSet) Enabled(mode Mode) bool {
	return s.active[mode]
}

// Active returns the enabled modes in display order.
func (s ModeSet) Active() []Mode {
	var out []Mode
	for _, mode := range AllModes {
		if s.active[mode] {
			out = append(out, mode)
		}
	}
	return out
}

// Len returns the number of active modes.
func (s ModeSet) Len() int {
	return len(s.active)
}

// MarshalJSON encodes the set as an ordered mode list.
func (s ModeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Active())
}

// DecodeModeSet parses a persisted mode list. Anything unparseable or empty
// falls back to the default set so a corrupt settings row never breaks the
// grid.
func DecodeModeSet(data []byte) ModeSet {
	var modes []Mode
	if err := json.Unmarshal(data, &modes); err != nil {
		return DefaultModeSet()
	}
	set := ModeSet{active: map[Mode]bool{}}
	for _, mode := range modes {
		if validMode(mode) {
			set.active[mode] = true
		}
	}
	if len(set.active) == 0 {
		return DefaultModeSet()
	}
	return set
}

func validMode(mode Mode) bool {
	for _, m := range AllModes {
		if m == mode {
			return true
		}
	}
	return false
}

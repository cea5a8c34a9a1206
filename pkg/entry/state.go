package entry

import (
	"strings"

	"github.com/newtron-network/rosctl/pkg/util"
)

// State is the desired lifecycle state of an entry.
type State string

const (
	StatePresent  State = "present"
	StateAbsent   State = "absent"
	StateEnabled  State = "enabled"
	StateDisabled State = "disabled"
)

// States lists every desired state in decision-table order.
var States = []State{StatePresent, StateAbsent, StateEnabled, StateDisabled}

// ParseState parses a desired state. The empty string means present.
func ParseState(s string) (State, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StatePresent, nil
	}
	for _, st := range States {
		if string(st) == s {
			return st, nil
		}
	}
	return "", util.NewValidationError("state must be one of present, absent, enabled, disabled (got " + s + ")")
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	for _, st := range States {
		if st == s {
			return true
		}
	}
	return false
}

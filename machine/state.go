package machine

import (
	"fmt"

	"github.com/mastercactapus/tubecut/coord"
)

// State is the run state reported by the controller.
type State int

const (
	StateIdle State = iota
	StateRun
	StateHold
	StateJog
	StateAlarm
	StateDoor
	StateCheck
	StateHome
	StateSleep
	StateTool
)

var stateNames = [...]string{
	StateIdle:  "Idle",
	StateRun:   "Run",
	StateHold:  "Hold",
	StateJog:   "Jog",
	StateAlarm: "Alarm",
	StateDoor:  "Door",
	StateCheck: "Check",
	StateHome:  "Home",
	StateSleep: "Sleep",
	StateTool:  "Tool",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState maps a report identifier to a State. Matching is case-sensitive.
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return StateIdle, false
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(data []byte) error {
	st, ok := ParseState(string(data))
	if !ok {
		return fmt.Errorf("unknown machine state %q", data)
	}
	*s = st
	return nil
}

// Status is the latest known machine snapshot.
type Status struct {
	State State       `json:"state"`
	MPos  coord.Point `json:"mpos"`
}

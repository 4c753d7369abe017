package framework

import "strconv"

// Priority is the level controllers are invoked at, lower runs first.
type Priority int

// PriorityLevels is the number of levels.
const PriorityLevels Priority = 16

// Priorities
const (
	PrLvTop    Priority = 0
	PrLvHigh   Priority = 4
	PrLvNormal Priority = 8
	PrLvLow    Priority = 12
	PrLvIdle   Priority = PriorityLevels - 1

	// PrLvSense is where sensors publish readings.
	PrLvSense = PrLvHigh
	// PrLvControl is where commands and state changes are handled.
	PrLvControl = PrLvNormal
	// PrLvActuate is where outputs are driven.
	PrLvActuate = PrLvLow
	// PrLvPostProc is where changes are reported.
	PrLvPostProc = PrLvIdle - 1
)

// IsValid indicates the level is in range.
func (p Priority) IsValid() bool {
	return p >= 0 && p < PriorityLevels
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	switch p {
	case PrLvTop:
		return "top"
	case PrLvSense:
		return "sense"
	case PrLvControl:
		return "control"
	case PrLvActuate:
		return "actuate"
	case PrLvPostProc:
		return "post-proc"
	case PrLvIdle:
		return "idle"
	}
	return "level-" + strconv.Itoa(int(p))
}

package state

// RoomState is the occupancy/activity state of the room.
type RoomState string

// Room occupancy states.
const (
	// StateEmpty means no one is in the room.
	StateEmpty RoomState = "empty"

	// StateOccupied means someone is present and awake.
	StateOccupied RoomState = "occupied"

	// StateSleep means the occupant is sleeping.
	StateSleep RoomState = "sleep"

	// StateWake means a wake-up routine (alarm) is active.
	StateWake RoomState = "wake"
)

// AllStates returns every valid room state.
func AllStates() []RoomState {
	return []RoomState{StateEmpty, StateOccupied, StateSleep, StateWake}
}

// Valid reports whether s is a known room state.
func (s RoomState) Valid() bool {
	switch s {
	case StateEmpty, StateOccupied, StateSleep, StateWake:
		return true
	default:
		return false
	}
}

// String returns the lowercase wire form of the state.
func (s RoomState) String() string { return string(s) }

// validTransitions is the fixed occupancy transition graph.
// Key: from state. Value: allowed target states.
var validTransitions = map[RoomState][]RoomState{
	StateEmpty:    {StateOccupied},
	StateOccupied: {StateEmpty, StateSleep},
	StateSleep:    {StateWake, StateOccupied},
	StateWake:     {StateOccupied, StateSleep},
}

// CanTransition reports whether moving from one state to another is
// allowed by the transition graph. A same-state transition is always
// allowed (it is a no-op).
func CanTransition(from, to RoomState) bool {
	if from == to {
		return true
	}
	for _, target := range validTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

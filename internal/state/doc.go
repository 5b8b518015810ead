// Package state owns the room occupancy state machine for Arvis Core.
//
// The room is always in exactly one of four states: empty, occupied,
// sleep, or wake. Mutation happens only through Manager.Transition,
// which enforces the fixed transition graph:
//
//	empty    → occupied
//	occupied → empty, sleep
//	sleep    → wake, occupied
//	wake     → occupied, sleep
//
// A same-state transition is always a legal no-op and never publishes a
// notification. Actual changes publish a "room.state_changed" event on
// the bus carrying the old and new state.
//
// Invalid transitions are reported as a boolean rejection, never an
// error value; an out-of-graph request leaves the state untouched.
//
// # Thread Safety
//
// Manager is safe for concurrent use; the current value is guarded by a
// mutex and the change event is published after the lock is released.
// Callers that need strict event ordering should serialise their own
// Transition calls, as the presence agent does.
package state

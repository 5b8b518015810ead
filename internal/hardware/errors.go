package hardware

import "errors"

// Domain-specific errors for hardware adapters.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownPlug is returned when a plug ID is not in the configured set.
	ErrUnknownPlug = errors.New("hardware: unknown plug")

	// ErrCommandFailed is returned when a device command cannot be delivered.
	ErrCommandFailed = errors.New("hardware: command failed")
)

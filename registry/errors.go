package registry

import "errors"

var (
	// ErrUnnamedTool is returned when registering a tool with an empty name.
	ErrUnnamedTool = errors.New("tool has no name")

	// ErrToolNotFound is returned for operations on an unknown tool.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolNotReady is returned by AcquireSlot when readiness enforcement is
	// on and the tool has not reached the ready state.
	ErrToolNotReady = errors.New("tool not ready")

	// ErrTimeout is returned when InitializeAll or WaitUntilReady run out of time.
	ErrTimeout = errors.New("timed out")

	// ErrNilListener is returned when subscribing a nil listener.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrInvalidPoolSize is returned for a listener pool size below 1.
	ErrInvalidPoolSize = errors.New("pool size must be at least 1")
)

package registry

// Event names delivered to listeners.
const (
	EventToolRegistered   = "tool_registered"
	EventToolUnregistered = "tool_unregistered"
	EventToolReady        = "tool_ready"
	EventToolNotReady     = "tool_not_ready"
	EventCallStarted      = "call_started"
	EventCallFinished     = "call_finished"
	EventCallCancelled    = "call_cancelled"
)

// Listener receives registry events. Listeners run on a shared worker pool:
// they never block the operation that emitted the event, and a panicking
// listener is logged, not propagated.
type Listener func(event string, payload map[string]any)

package registry

import "context"

// Tool is the single adapter interface every registered tool satisfies.
// No runtime introspection: a tool with nothing to set up returns nil from
// Initialize and is ready immediately after InitializeAll.
type Tool interface {
	// Name identifies the tool in the registry. Must be non-empty.
	Name() string

	// Description is the human-readable catalog entry.
	Description() string

	// Initialize prepares the tool for use. It must honor ctx cancellation:
	// InitializeAll cancels still-pending initializers on the first failure.
	Initialize(ctx context.Context) error

	// Run executes one invocation with the given argument map.
	Run(ctx context.Context, args map[string]any) (any, error)
}

// ToolState is the explicit lifecycle state of a registry entry.
// It is never inferred from the tool's own fields.
type ToolState int

const (
	// StateRegistered means the tool is known but not yet initialized.
	StateRegistered ToolState = iota + 1
	// StateInitializing means the tool's initializer is running.
	StateInitializing
	// StateReady means the tool initialized successfully.
	StateReady
	// StateFailed means initialization failed; the entry stays queryable.
	StateFailed
)

// MarshalText renders the state name in JSON and text output.
func (s ToolState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// String returns the state name.
func (s ToolState) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

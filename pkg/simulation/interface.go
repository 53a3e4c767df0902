package simulation

import "context"

// Engine advances an intersection simulation in discrete steps
type Engine interface {
	// Step advances simulated time by dt seconds
	Step(dt float64) error

	// Time returns the current simulated time in seconds
	Time() float64

	// Map returns the road network the engine is running on
	Map() DataMap
}

// DataMap is the road network of a running engine
type DataMap interface {
	// WriteDataCollectionLines writes the measurements of every
	// data-collection line to a CSV file at path
	WriteDataCollectionLines(path string) error
}

// DebugBuffer holds diagnostics that only live for a single step
type DebugBuffer interface {
	// Add records a point for the current step
	Add(p DebugPoint)

	// Clear drops every short-term point
	Clear()

	// Len returns the number of points recorded since the last Clear
	Len() int
}

// Snapshotter is implemented by engines that can describe their state
type Snapshotter interface {
	Snapshot() Snapshot
}

// EngineFactory builds an engine for a run configuration. The globals are
// frozen before the factory is invoked.
type EngineFactory func(cfg *RunConfiguration, g *Globals, debug DebugBuffer) (Engine, error)

// Launcher creates engines on behalf of a viewer
type Launcher func(ctx context.Context) (Engine, error)

// Viewer drives and renders a run interactively. Show owns stepping and
// returns only when the viewer is closed.
type Viewer interface {
	Show(ctx context.Context, cfg *RunConfiguration, launch Launcher) error
}

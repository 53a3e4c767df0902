package simulation

import (
	"errors"
	"fmt"
	"math"
)

// GeometryParameters describes the intersection grid a run is built on
type GeometryParameters struct {
	Columns         int     `yaml:"columns"`
	Rows            int     `yaml:"rows"`
	LaneWidth       float64 `yaml:"lane_width"`       // meters
	SpeedLimit      float64 `yaml:"speed_limit"`      // meters per second
	LanesPerRoad    int     `yaml:"lanes_per_road"`   // per direction
	MedianSize      float64 `yaml:"median_size"`      // meters
	DistanceBetween float64 `yaml:"distance_between"` // meters between intersections
	TrafficLevel    float64 `yaml:"traffic_level"`
	StopDistance    float64 `yaml:"stop_distance"` // meters before the intersection
}

// DefaultGeometry returns the two-intersection corridor used by the experiments
func DefaultGeometry() GeometryParameters {
	return GeometryParameters{
		Columns:         2,
		Rows:            1,
		LaneWidth:       4,
		SpeedLimit:      25.0,
		LanesPerRoad:    2,
		MedianSize:      1,
		DistanceBetween: 150,
		TrafficLevel:    0.28,
		StopDistance:    1.0,
	}
}

// Validate checks that the geometry describes a buildable grid
func (g GeometryParameters) Validate() error {
	if g.Columns < 1 {
		return fmt.Errorf("columns must be at least 1, got %d", g.Columns)
	}
	if g.Rows < 1 {
		return fmt.Errorf("rows must be at least 1, got %d", g.Rows)
	}
	if g.LanesPerRoad < 1 {
		return fmt.Errorf("lanes_per_road must be at least 1, got %d", g.LanesPerRoad)
	}

	reals := []struct {
		name  string
		value float64
	}{
		{"lane_width", g.LaneWidth},
		{"speed_limit", g.SpeedLimit},
		{"median_size", g.MedianSize},
		{"distance_between", g.DistanceBetween},
		{"traffic_level", g.TrafficLevel},
		{"stop_distance", g.StopDistance},
	}
	for _, r := range reals {
		if !(r.value > 0) || math.IsInf(r.value, 0) {
			return fmt.Errorf("%s must be positive, got %g", r.name, r.value)
		}
	}
	return nil
}

// Intersections returns the number of intersections in the grid
func (g GeometryParameters) Intersections() int {
	return g.Columns * g.Rows
}

// TimeBudget bounds a headless run in simulated seconds
type TimeBudget struct {
	Total float64
	Step  float64
}

// DefaultTimeStep is the fixed step of the simulator in seconds
const DefaultTimeStep = 0.02

// DefaultTotalTime is one simulated hour
const DefaultTotalTime = 3600.0

// DefaultTimeBudget returns one simulated hour at the default step
func DefaultTimeBudget() TimeBudget {
	return TimeBudget{Total: DefaultTotalTime, Step: DefaultTimeStep}
}

// Validate checks the budget can be stepped through
func (b TimeBudget) Validate() error {
	if !(b.Step > 0) || math.IsInf(b.Step, 0) {
		return fmt.Errorf("time step must be positive, got %g", b.Step)
	}
	if math.IsNaN(b.Total) || math.IsInf(b.Total, 0) {
		return fmt.Errorf("total time must be finite, got %g", b.Total)
	}
	return nil
}

// ErrGlobalsFrozen is returned when shared settings change after an engine exists
var ErrGlobalsFrozen = errors.New("simulation globals are frozen")

// Globals carries the settings every engine component reads during a run.
// They are written while the run is configured and frozen once an engine is
// created from them.
type Globals struct {
	// BaselineMode runs the reservation policy without any buffers
	BaselineMode bool
	// ShowVehicleColorByMsgState colours vehicles by their V2I message state
	ShowVehicleColorByMsgState bool
	// MustStopBeforeIntersection forces a full stop at the stop line
	MustStopBeforeIntersection bool
	// DefaultStopDistance is how far before the intersection pilots stop, in meters
	DefaultStopDistance float64

	frozen bool
}

// NewGlobals returns the settings in effect before any policy is configured
func NewGlobals() *Globals {
	return &Globals{
		ShowVehicleColorByMsgState: true,
		DefaultStopDistance:        1.0,
	}
}

// Freeze marks the settings read-only
func (g *Globals) Freeze() {
	g.frozen = true
}

// Frozen reports whether an engine has been created from the settings
func (g *Globals) Frozen() bool {
	return g.frozen
}

// Set applies fn unless the settings are frozen
func (g *Globals) Set(fn func(*Globals)) error {
	if g.frozen {
		return ErrGlobalsFrozen
	}
	fn(g)
	return nil
}

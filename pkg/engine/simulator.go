// Package engine is a queue-based intersection simulator. Every intersection
// of the grid receives the same approach volumes; vehicles queue at the stop
// line of their approach and enter when the intersection's controller
// grants them a slot. Each entry is recorded on the approach's
// data-collection line.
package engine

import (
	"fmt"
	"math"

	"github.com/picogrid/intersection-simulations/pkg/simulation"
	"github.com/picogrid/intersection-simulations/pkg/trafficdata"
)

// nominalTrafficLevel replays the volume file unscaled
const nominalTrafficLevel = 0.28

// Simulator advances every intersection of a grid in lockstep
type Simulator struct {
	kind          simulation.Kind
	now           float64
	intersections []*intersection
	control       controller
	basicMap      *BasicMap
	debug         simulation.DebugBuffer
}

func init() {
	for _, kind := range simulation.Kinds {
		if err := simulation.DefaultRegistry.Register(kind, New); err != nil {
			panic(err)
		}
	}
}

// New builds a simulator for any policy, reading the data files named by
// the configuration.
func New(cfg *simulation.RunConfiguration, g *simulation.Globals, debug simulation.DebugBuffer) (simulation.Engine, error) {
	volumes, err := trafficdata.LoadVolumes(simulation.VolumePath(cfg.Params))
	if err != nil {
		return nil, err
	}

	kin := newKinematics(cfg.Geometry)

	var control controller
	switch p := cfg.Params.(type) {
	case simulation.ReservationParams:
		control = &reservation{kin: kin, params: p, stopDistance: cfg.Geometry.StopDistance}
	case simulation.SignalParams:
		phases, err := trafficdata.LoadPhases(p.PhasePath)
		if err != nil {
			return nil, err
		}
		control = newSignal(kin, phases)
	case simulation.StopSignParams:
		control = &stopSign{kin: kin, mustStop: g.MustStopBeforeIntersection, stopDistance: cfg.Geometry.StopDistance}
	default:
		return nil, fmt.Errorf("unsupported policy parameters %T", cfg.Params)
	}

	return newSimulator(cfg.Kind, cfg.Geometry, volumes, control, debug), nil
}

func newSimulator(kind simulation.Kind, geo simulation.GeometryParameters, volumes trafficdata.Volumes, control controller, debug simulation.DebugBuffer) *Simulator {
	scale := geo.TrafficLevel / nominalTrafficLevel
	var rates [4][3]float64
	for a, m := range volumes {
		rates[a] = [3]float64{
			m.Left / 3600 * scale,
			m.Through / 3600 * scale,
			m.Right / 3600 * scale,
		}
	}

	capacity := geo.LanesPerRoad * int(geo.DistanceBetween/(vehicleLength+vehicleGap))
	if capacity < 1 {
		capacity = 1
	}

	s := &Simulator{
		kind:     kind,
		control:  control,
		basicMap: &BasicMap{},
		debug:    debug,
	}
	for row := 0; row < geo.Rows; row++ {
		for col := 0; col < geo.Columns; col++ {
			ix := newIntersection(fmt.Sprintf("I%d_%d", col, row), capacity, rates)
			s.intersections = append(s.intersections, ix)
			s.basicMap.lines = append(s.basicMap.lines, ix.lines[:]...)
		}
	}
	return s
}

// Step advances the simulation by dt seconds
func (s *Simulator) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("invalid time step %g at t=%.2f", dt, s.now)
	}

	for _, ix := range s.intersections {
		ix.expire(s.now)
		ix.generate(s.now, dt)
		s.control.admit(ix, s.now, dt, s.debug)
	}
	s.now += dt
	return nil
}

// Time returns the current simulated time in seconds
func (s *Simulator) Time() float64 {
	return s.now
}

// Map returns the road network
func (s *Simulator) Map() simulation.DataMap {
	return s.basicMap
}

// BasicMap returns the concrete road network
func (s *Simulator) BasicMap() *BasicMap {
	return s.basicMap
}

// Snapshot describes the queues and counters of every intersection
func (s *Simulator) Snapshot() simulation.Snapshot {
	snap := simulation.Snapshot{Time: s.now}
	control := s.control.describe(s.now)
	for _, ix := range s.intersections {
		snap.Intersections = append(snap.Intersections, ix.state(control))
	}
	return snap
}

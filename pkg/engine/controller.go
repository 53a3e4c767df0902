package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/picogrid/intersection-simulations/pkg/simulation"
	"github.com/picogrid/intersection-simulations/pkg/trafficdata"
)

const (
	vehicleLength     = 5.0 // meters
	vehicleGap        = 2.5 // standstill gap, meters
	maxAcceleration   = 2.5 // m/s^2
	saturationHeadway = 2.0 // seconds per lane at a green signal
	minStopTime       = 1.0 // seconds at rest before a stop sign
)

// controller decides which waiting vehicles may enter an intersection
type controller interface {
	admit(ix *intersection, now, dt float64, debug simulation.DebugBuffer)
	describe(now float64) string
}

// kinematics holds the crossing times derived from the geometry
type kinematics struct {
	speed  float64
	lanes  int
	box    float64 // distance through the intersection, meters
	follow float64 // minimum entry spacing on one approach, seconds
}

func newKinematics(g simulation.GeometryParameters) kinematics {
	return kinematics{
		speed:  g.SpeedLimit,
		lanes:  g.LanesPerRoad,
		box:    2*float64(g.LanesPerRoad)*g.LaneWidth + g.MedianSize,
		follow: (vehicleLength + vehicleGap) / g.SpeedLimit / float64(g.LanesPerRoad),
	}
}

// cruising is the time to clear the box at the speed limit
func (k kinematics) cruising() float64 {
	return (k.box + vehicleLength) / k.speed
}

// fromRest is the time to clear the box after stopping stopDistance short of it
func (k kinematics) fromRest(stopDistance float64) float64 {
	d := k.box + vehicleLength + stopDistance
	// distance covered while reaching the speed limit
	accelDist := k.speed * k.speed / (2 * maxAcceleration)
	if d <= accelDist {
		return math.Sqrt(2 * d / maxAcceleration)
	}
	return k.speed/maxAcceleration + (d-accelDist)/k.speed
}

// reservation grants slots first-come-first-served, padding each slot with
// the configured buffers
type reservation struct {
	kin          kinematics
	params       simulation.ReservationParams
	stopDistance float64
}

func (r *reservation) hold(v *Vehicle, now, dt float64) float64 {
	t := r.kin.cruising()
	// a vehicle refused for longer than one step has come to rest
	if now-v.headSince > dt {
		t = r.kin.fromRest(r.stopDistance)
	}
	if !r.params.BaselineMode {
		t += r.params.StaticBuffer + r.params.InternalBuffer
		if r.params.EdgeBufferEnabled {
			t += 2 * r.params.EdgeBuffer
		}
	}
	if q := r.params.Granularity * dt; q > 0 {
		t = math.Ceil(t/q-1e-9) * q
	}
	return t
}

func (r *reservation) admit(ix *intersection, now, dt float64, debug simulation.DebugBuffer) {
	for _, v := range ix.heads() {
		if now < ix.lastEntry[v.From]+r.kin.follow {
			continue
		}
		if !ix.free(now, v.From, v.Turn) {
			continue
		}
		ix.enter(v, now, r.hold(v, now, dt), debug)
	}
}

func (r *reservation) describe(float64) string {
	if r.params.BaselineMode {
		return "FCFS baseline"
	}
	return fmt.Sprintf("FCFS buffers %.2f/%.2f/%.2f", r.params.StaticBuffer, r.params.InternalBuffer, r.params.EdgeBuffer)
}

// signal discharges the approaches that are green in the current phase
type signal struct {
	kin    kinematics
	phases []trafficdata.Phase
	cycle  float64
}

func newSignal(kin kinematics, phases []trafficdata.Phase) *signal {
	s := &signal{kin: kin, phases: phases}
	for _, p := range phases {
		s.cycle += p.Length()
	}
	return s
}

// phaseAt returns the active phase and whether it is in its green interval
func (s *signal) phaseAt(t float64) (int, bool) {
	offset := math.Mod(t, s.cycle)
	for i, p := range s.phases {
		if offset < p.Duration {
			return i, true
		}
		if offset < p.Length() {
			return i, false
		}
		offset -= p.Length()
	}
	return len(s.phases) - 1, false
}

func (s *signal) admit(ix *intersection, now, dt float64, debug simulation.DebugBuffer) {
	idx, green := s.phaseAt(now)
	if !green {
		return
	}
	phase := s.phases[idx]
	headway := saturationHeadway / float64(s.kin.lanes)

	for _, v := range ix.heads() {
		if !phase.IsGreen(v.From) {
			continue
		}
		if now < ix.lastEntry[v.From]+headway {
			continue
		}
		if !ix.free(now, v.From, v.Turn) {
			continue
		}
		hold := s.kin.cruising()
		if now-v.headSince > dt {
			hold = s.kin.fromRest(0)
		}
		ix.enter(v, now, hold, debug)
	}
}

func (s *signal) describe(now float64) string {
	idx, green := s.phaseAt(now)
	p := s.phases[idx]
	if !green {
		return fmt.Sprintf("phase %d/%d clearance", idx+1, len(s.phases))
	}
	names := make([]string, len(p.Green))
	for i, a := range p.Green {
		names[i] = a.String()
	}
	return fmt.Sprintf("phase %d/%d green %s", idx+1, len(s.phases), strings.Join(names, " "))
}

// stopSign serves vehicles in the order they reached the stop line
type stopSign struct {
	kin          kinematics
	mustStop     bool
	stopDistance float64
}

func (s *stopSign) admit(ix *intersection, now, dt float64, debug simulation.DebugBuffer) {
	for _, v := range ix.heads() {
		if s.mustStop && now < v.headSince+minStopTime {
			continue
		}
		if !ix.free(now, v.From, v.Turn) {
			continue
		}
		hold := s.kin.cruising()
		if s.mustStop {
			hold = s.kin.fromRest(s.stopDistance)
		}
		ix.enter(v, now, hold, debug)
	}
}

func (s *stopSign) describe(float64) string {
	if s.mustStop {
		return "all-way stop"
	}
	return "yield"
}

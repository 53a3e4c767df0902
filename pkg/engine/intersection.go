package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/picogrid/intersection-simulations/pkg/simulation"
	"github.com/picogrid/intersection-simulations/pkg/trafficdata"
)

// occupancy is a granted slot through the intersection box
type occupancy struct {
	from  trafficdata.Approach
	turn  Turn
	until float64
}

type intersection struct {
	name     string
	queues   [4][]*Vehicle
	capacity int // per approach
	spawn    [4][3]float64
	rates    [4][3]float64 // vehicles per second

	occupants []occupancy
	lastEntry [4]float64
	lines     [4]*DataCollectionLine

	arrived, departed, dropped int
	totalDelay                 float64
}

func newIntersection(name string, capacity int, rates [4][3]float64) *intersection {
	ix := &intersection{
		name:     name,
		capacity: capacity,
		rates:    rates,
	}
	for _, a := range trafficdata.Approaches {
		ix.lastEntry[a] = math.Inf(-1)
		ix.lines[a] = &DataCollectionLine{Name: fmt.Sprintf("%s-%s", name, a)}
	}
	return ix
}

// generate adds the vehicles arriving during the next dt seconds
func (ix *intersection) generate(now, dt float64) {
	for _, a := range trafficdata.Approaches {
		for turn := Left; turn <= Right; turn++ {
			ix.spawn[a][turn] += ix.rates[a][turn] * dt
			n := math.Floor(ix.spawn[a][turn])
			if n < 1 {
				continue
			}
			ix.spawn[a][turn] -= n

			// arrivals beyond the free queue space are dropped without
			// visiting each vehicle
			room := float64(ix.capacity - len(ix.queues[a]))
			if n > room {
				ix.dropped += int(math.Min(n-room, math.MaxInt32))
				n = room
			}
			for i := 0; i < int(n); i++ {
				ix.arrive(a, turn, now)
			}
		}
	}
}

func (ix *intersection) arrive(a trafficdata.Approach, turn Turn, now float64) {
	if len(ix.queues[a]) >= ix.capacity {
		ix.dropped++
		return
	}
	v := &Vehicle{VIN: uuid.New(), From: a, Turn: turn, Arrived: now, headSince: now}
	ix.queues[a] = append(ix.queues[a], v)
	ix.arrived++
}

// heads returns the vehicle at each stop line, earliest arrival at the line first
func (ix *intersection) heads() []*Vehicle {
	heads := make([]*Vehicle, 0, 4)
	for _, q := range ix.queues {
		if len(q) > 0 {
			heads = append(heads, q[0])
		}
	}
	sort.SliceStable(heads, func(i, j int) bool {
		if heads[i].headSince != heads[j].headSince {
			return heads[i].headSince < heads[j].headSince
		}
		return heads[i].Arrived < heads[j].Arrived
	})
	return heads
}

// free reports whether a movement fits alongside the current occupants
func (ix *intersection) free(now float64, from trafficdata.Approach, turn Turn) bool {
	for _, o := range ix.occupants {
		if o.until > now && !compatible(from, turn, o.from, o.turn) {
			return false
		}
	}
	return true
}

// enter moves the head of v's queue into the intersection for hold seconds
func (ix *intersection) enter(v *Vehicle, now, hold float64, debug simulation.DebugBuffer) {
	q := ix.queues[v.From]
	ix.queues[v.From] = q[1:]
	if len(ix.queues[v.From]) > 0 {
		ix.queues[v.From][0].headSince = now
	}

	ix.occupants = append(ix.occupants, occupancy{from: v.From, turn: v.Turn, until: now + hold})
	ix.lastEntry[v.From] = now

	delay := now - v.Arrived
	ix.departed++
	ix.totalDelay += delay
	ix.lines[v.From].record(Crossing{Time: now, VIN: v.VIN, Turn: v.Turn, Delay: delay})

	if debug != nil {
		debug.Add(simulation.DebugPoint{
			Time:     now,
			Location: ix.lines[v.From].Name,
			Label:    "enter " + v.Turn.String(),
		})
	}
}

// expire drops occupants that have cleared the intersection
func (ix *intersection) expire(now float64) {
	kept := ix.occupants[:0]
	for _, o := range ix.occupants {
		if o.until > now {
			kept = append(kept, o)
		}
	}
	ix.occupants = kept
}

func (ix *intersection) state(control string) simulation.IntersectionState {
	s := simulation.IntersectionState{
		Name:     ix.name,
		Control:  control,
		Arrived:  ix.arrived,
		Departed: ix.departed,
		Dropped:  ix.dropped,
	}
	for a, q := range ix.queues {
		s.Queues[a] = len(q)
	}
	if ix.departed > 0 {
		s.MeanDelay = ix.totalDelay / float64(ix.departed)
	}
	return s
}

package engine

import (
	"github.com/google/uuid"

	"github.com/picogrid/intersection-simulations/pkg/trafficdata"
)

// Turn is the movement a vehicle makes through the intersection
type Turn int

const (
	Left Turn = iota
	Through
	Right
)

var turnNames = [...]string{"left", "through", "right"}

func (t Turn) String() string {
	if t < Left || t > Right {
		return "unknown"
	}
	return turnNames[t]
}

// Vehicle is a car waiting at or passing through an intersection
type Vehicle struct {
	VIN     uuid.UUID
	From    trafficdata.Approach
	Turn    Turn
	Arrived float64 // time the vehicle joined the queue

	// headSince is when the vehicle reached the stop line
	headSince float64
}

// compatible reports whether two movements can share the intersection.
// Vehicles from the same approach use separate lanes and are spaced by a
// headway instead.
func compatible(a trafficdata.Approach, at Turn, b trafficdata.Approach, bt Turn) bool {
	switch {
	case a == b:
		return true
	case a.Opposite() == b:
		return at != Left && bt != Left
	default:
		return at == Right && bt == Right
	}
}

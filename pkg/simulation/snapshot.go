package simulation

// Snapshot is a point-in-time view of a running engine
type Snapshot struct {
	Time          float64
	Intersections []IntersectionState
}

// IntersectionState summarises one intersection
type IntersectionState struct {
	Name string
	// Queues holds the waiting vehicles per approach, clockwise from north
	Queues [4]int
	// Control describes the controller state, e.g. the active signal phase
	Control  string
	Arrived  int
	Departed int
	Dropped  int
	// MeanDelay is the average seconds departed vehicles spent queued
	MeanDelay float64
}

// Totals sums arrivals, departures and drops over every intersection
func (s Snapshot) Totals() (arrived, departed, dropped int) {
	for _, ix := range s.Intersections {
		arrived += ix.Arrived
		departed += ix.Departed
		dropped += ix.Dropped
	}
	return arrived, departed, dropped
}

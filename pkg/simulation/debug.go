package simulation

import "sync"

// DebugPoint marks something worth highlighting during one step
type DebugPoint struct {
	Time     float64
	Location string
	Label    string
}

// DebugPoints is the short-term debug buffer shared by the driver and an engine
type DebugPoints struct {
	mu     sync.Mutex
	points []DebugPoint
}

// NewDebugPoints returns an empty buffer
func NewDebugPoints() *DebugPoints {
	return &DebugPoints{}
}

// A nil buffer discards points.
func (d *DebugPoints) Add(p DebugPoint) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.points = append(d.points, p)
	d.mu.Unlock()
}

func (d *DebugPoints) Clear() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.points = d.points[:0]
	d.mu.Unlock()
}

func (d *DebugPoints) Len() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.points)
}

// Points returns a copy of the points recorded since the last Clear
func (d *DebugPoints) Points() []DebugPoint {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DebugPoint(nil), d.points...)
}

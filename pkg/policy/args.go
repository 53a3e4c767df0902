package policy

import (
	"fmt"

	"github.com/picogrid/intersection-simulations/pkg/simulation"
)

// DefaultArgs are used when a run is started without positional arguments
var DefaultArgs = []string{"SIGNAL", "data/2phases", ".25", "0.10", "0.25"}

// ArgNames names the positional run arguments
var ArgNames = []string{"policy", "data directory", "static buffer size", "internal time buffer size", "edge time buffer size"}

// ParseArgs maps positional arguments onto a request. No arguments selects
// DefaultArgs; otherwise all five are required.
func ParseArgs(args []string) (Request, error) {
	if len(args) == 0 {
		args = DefaultArgs
	}
	if len(args) != len(ArgNames) {
		return Request{}, fmt.Errorf("expected %d arguments (%v), got %d", len(ArgNames), ArgNames, len(args))
	}

	return Request{
		Policy:         args[0],
		DataDir:        args[1],
		StaticBuffer:   args[2],
		InternalBuffer: args[3],
		EdgeBuffer:     args[4],
	}, nil
}

// ForceBaseline switches a request to the reservation policy and marks the
// globals for a buffer-free baseline run.
func ForceBaseline(req Request, g *simulation.Globals) (Request, error) {
	if err := g.Set(func(g *simulation.Globals) { g.BaselineMode = true }); err != nil {
		return req, err
	}
	req.Policy = simulation.KindReservationFCFS.Token()
	return req, nil
}

// Package policy turns a policy token and its raw run arguments into a
// validated run configuration.
//
// Two of the three policies also adjust the shared simulation globals:
// SIGNAL and STOP switch off message-state vehicle colouring, and STOP
// requires every vehicle to halt before entering the intersection. Those
// writes happen here, before any engine exists, and are rejected once the
// globals are frozen.
package policy

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/picogrid/intersection-simulations/pkg/simulation"
)

// Data file names expected inside a data directory
const (
	PhaseFileName  = "AIM4Phases.csv"
	VolumeFileName = "AIM4Volumes.csv"
)

// Fixed reservation settings that are not exposed on the command line
const (
	defaultEdgeBufferEnabled = true
	defaultGranularity       = 1.0
)

// Request holds the raw arguments of a run
type Request struct {
	Policy         string
	DataDir        string
	StaticBuffer   string
	InternalBuffer string
	EdgeBuffer     string

	// Geometry overrides the default grid when set
	Geometry *simulation.GeometryParameters
}

// Args returns the request as positional arguments
func (r Request) Args() []string {
	return []string{r.Policy, r.DataDir, r.StaticBuffer, r.InternalBuffer, r.EdgeBuffer}
}

// Build creates the run configuration for a request and applies the
// policy's settings to g.
func Build(req Request, g *simulation.Globals) (*simulation.RunConfiguration, error) {
	kind, ok := simulation.ParseKind(req.Policy)
	if !ok {
		return nil, &TokenError{Token: req.Policy}
	}

	// the geometry is the single source of the stop distance; without one
	// it comes from the globals
	geometry := simulation.DefaultGeometry()
	geometry.StopDistance = g.DefaultStopDistance
	if req.Geometry != nil {
		geometry = *req.Geometry
	}
	if err := geometry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}

	volumePath := dataPath(req.DataDir, VolumeFileName)

	var params simulation.PolicyParameters
	var apply func(*simulation.Globals)

	switch kind {
	case simulation.KindReservationFCFS:
		buffers, err := parseBuffers(req)
		if err != nil {
			return nil, err
		}
		params = simulation.ReservationParams{
			StaticBuffer:      buffers[0],
			InternalBuffer:    buffers[1],
			EdgeBuffer:        buffers[2],
			EdgeBufferEnabled: defaultEdgeBufferEnabled,
			Granularity:       defaultGranularity,
			BaselineMode:      g.BaselineMode,
			VolumePath:        volumePath,
		}
	case simulation.KindApproxMultiPhaseSignal:
		params = simulation.SignalParams{
			PhasePath:  dataPath(req.DataDir, PhaseFileName),
			VolumePath: volumePath,
		}
		apply = func(g *simulation.Globals) {
			g.ShowVehicleColorByMsgState = false
		}
	case simulation.KindApproxStopSign:
		params = simulation.StopSignParams{
			VolumePath: volumePath,
		}
		apply = func(g *simulation.Globals) {
			g.MustStopBeforeIntersection = true
			g.ShowVehicleColorByMsgState = false
		}
	default:
		return nil, &TokenError{Token: req.Policy}
	}

	if apply != nil {
		if err := g.Set(apply); err != nil {
			return nil, fmt.Errorf("failed to configure %s: %w", kind, err)
		}
	}

	return &simulation.RunConfiguration{
		Kind:     kind,
		Geometry: geometry,
		Params:   params,
		Args:     req.Args(),
	}, nil
}

// dataPath joins with a forward slash so artifact names stay stable across platforms
func dataPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimSuffix(filepath.ToSlash(dir), "/") + "/" + name
}

var errNotFinite = errors.New("not a finite number")

func parseBuffers(req Request) ([3]float64, error) {
	var out [3]float64
	raw := []struct {
		name  string
		value string
	}{
		{"static buffer size", req.StaticBuffer},
		{"internal time buffer size", req.InternalBuffer},
		{"edge time buffer size", req.EdgeBuffer},
	}

	for i, r := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(r.value), 64)
		if err != nil {
			return out, &ParameterError{Position: i + 2, Name: r.name, Value: r.value, Err: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return out, &ParameterError{Position: i + 2, Name: r.name, Value: r.value, Err: errNotFinite}
		}
		out[i] = v
	}
	return out, nil
}

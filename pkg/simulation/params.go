package simulation

import (
	"errors"
	"fmt"
)

// PolicyParameters is the policy-specific part of a run configuration.
// The variants are ReservationParams, SignalParams and StopSignParams.
type PolicyParameters interface {
	// Kind returns the policy the parameters belong to
	Kind() Kind
	isPolicyParameters()
}

// ReservationParams configures the first-come-first-served reservation policy
type ReservationParams struct {
	StaticBuffer      float64 // seconds-equivalent safety margin around the vehicle
	InternalBuffer    float64 // time buffer on tiles inside the intersection
	EdgeBuffer        float64 // time buffer on tiles along the intersection edge
	EdgeBufferEnabled bool
	Granularity       float64
	BaselineMode      bool
	VolumePath        string
}

// SignalParams configures the approximated multi-phase traffic signal
type SignalParams struct {
	PhasePath  string
	VolumePath string
}

// StopSignParams configures the approximated stop sign
type StopSignParams struct {
	VolumePath string
}

func (ReservationParams) Kind() Kind { return KindReservationFCFS }
func (SignalParams) Kind() Kind      { return KindApproxMultiPhaseSignal }
func (StopSignParams) Kind() Kind    { return KindApproxStopSign }

func (ReservationParams) isPolicyParameters() {}
func (SignalParams) isPolicyParameters()      {}
func (StopSignParams) isPolicyParameters()    {}

// VolumePath returns the traffic volume file every policy variant carries
func VolumePath(p PolicyParameters) string {
	switch v := p.(type) {
	case ReservationParams:
		return v.VolumePath
	case SignalParams:
		return v.VolumePath
	case StopSignParams:
		return v.VolumePath
	}
	return ""
}

// RunConfiguration is everything needed to create an engine for one run
type RunConfiguration struct {
	Kind     Kind
	Geometry GeometryParameters
	Params   PolicyParameters
	// Args are the raw run arguments the output artifact is named after
	Args []string
}

// Validate checks the configuration is internally consistent
func (c *RunConfiguration) Validate() error {
	if c.Params == nil {
		return errors.New("policy parameters are missing")
	}
	if c.Params.Kind() != c.Kind {
		return fmt.Errorf("policy parameters for %s do not match policy %s", c.Params.Kind(), c.Kind)
	}
	if err := c.Geometry.Validate(); err != nil {
		return fmt.Errorf("invalid geometry: %w", err)
	}
	return nil
}

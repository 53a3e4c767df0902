package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picogrid/intersection-simulations/pkg/simulation"
)

func request(args ...string) Request {
	req, err := ParseArgs(args)
	if err != nil {
		panic(err)
	}
	return req
}

func TestBuildMatchesKind(t *testing.T) {
	tests := []struct {
		token string
		kind  simulation.Kind
		want  simulation.PolicyParameters
	}{
		{"FCFS", simulation.KindReservationFCFS, simulation.ReservationParams{}},
		{"SIGNAL", simulation.KindApproxMultiPhaseSignal, simulation.SignalParams{}},
		{"STOP", simulation.KindApproxStopSign, simulation.StopSignParams{}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			cfg, err := Build(request(tt.token, "data/2phases", ".25", "0.10", "0.25"), simulation.NewGlobals())
			require.NoError(t, err)
			assert.Equal(t, tt.kind, cfg.Kind)
			assert.IsType(t, tt.want, cfg.Params)
			assert.Equal(t, tt.kind, cfg.Params.Kind())
			assert.NoError(t, cfg.Validate())
			assert.Equal(t, "data/2phases/AIM4Volumes.csv", simulation.VolumePath(cfg.Params))
		})
	}
}

func TestBuildInvalidToken(t *testing.T) {
	for _, token := range []string{"LIGHT", "fcfs", "", "SIGNALS"} {
		g := simulation.NewGlobals()
		cfg, err := Build(request(token, "data/2phases", ".25", "0.10", "0.25"), g)
		assert.ErrorIs(t, err, ErrInvalidPolicyIdentifier, token)
		assert.Nil(t, cfg)
		assert.Equal(t, simulation.NewGlobals(), g, "globals untouched for %q", token)
	}
}

func TestBuildReservation(t *testing.T) {
	cfg, err := Build(request("FCFS", "data/2phases", "0.25", "0.10", "0.25"), simulation.NewGlobals())
	require.NoError(t, err)

	p, ok := cfg.Params.(simulation.ReservationParams)
	require.True(t, ok)
	assert.Equal(t, 0.25, p.StaticBuffer)
	assert.Equal(t, 0.10, p.InternalBuffer)
	assert.Equal(t, 0.25, p.EdgeBuffer)
	assert.True(t, p.EdgeBufferEnabled)
	assert.Equal(t, 1.0, p.Granularity)
	assert.False(t, p.BaselineMode)
	assert.Equal(t, "data/2phases/AIM4Volumes.csv", p.VolumePath)
}

func TestBuildReservationMalformedBuffer(t *testing.T) {
	tests := []struct {
		args     []string
		position int
	}{
		{[]string{"FCFS", "d", "abc", "0.10", "0.25"}, 2},
		{[]string{"FCFS", "d", ".25", "", "0.25"}, 3},
		{[]string{"FCFS", "d", ".25", "0.10", "1,5"}, 4},
		{[]string{"FCFS", "d", ".25", "0.10", "NaN"}, 4},
	}

	for _, tt := range tests {
		_, err := Build(request(tt.args...), simulation.NewGlobals())
		require.ErrorIs(t, err, ErrMalformedNumericParameter)

		var perr *ParameterError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, tt.position, perr.Position)
	}
}

func TestBuildSignal(t *testing.T) {
	g := simulation.NewGlobals()
	require.True(t, g.ShowVehicleColorByMsgState)

	cfg, err := Build(request("SIGNAL", "data/2phases", ".25", "0.10", "0.25"), g)
	require.NoError(t, err)

	p := cfg.Params.(simulation.SignalParams)
	assert.Equal(t, "data/2phases/AIM4Phases.csv", p.PhasePath)
	assert.Equal(t, "data/2phases/AIM4Volumes.csv", p.VolumePath)
	assert.False(t, g.ShowVehicleColorByMsgState)
	assert.False(t, g.MustStopBeforeIntersection)
}

func TestBuildStopSign(t *testing.T) {
	g := simulation.NewGlobals()
	cfg, err := Build(request("STOP", "data/2phases", ".25", "0.10", "0.25"), g)
	require.NoError(t, err)

	assert.Equal(t, simulation.StopSignParams{VolumePath: "data/2phases/AIM4Volumes.csv"}, cfg.Params)
	assert.True(t, g.MustStopBeforeIntersection)
	assert.False(t, g.ShowVehicleColorByMsgState)
}

func TestBuildIgnoresBuffersOutsideReservation(t *testing.T) {
	_, err := Build(request("STOP", "data/2phases", "x", "y", "z"), simulation.NewGlobals())
	assert.NoError(t, err)
}

func TestBuildRejectsFrozenGlobals(t *testing.T) {
	g := simulation.NewGlobals()
	g.Freeze()

	_, err := Build(request("STOP", "data/2phases", ".25", "0.10", "0.25"), g)
	assert.ErrorIs(t, err, simulation.ErrGlobalsFrozen)
	assert.False(t, g.MustStopBeforeIntersection)
}

func TestBuildGeometry(t *testing.T) {
	req := request("FCFS", "data", "1", "1", "1")

	cfg, err := Build(req, simulation.NewGlobals())
	require.NoError(t, err)
	assert.Equal(t, simulation.DefaultGeometry(), cfg.Geometry)

	custom := simulation.DefaultGeometry()
	custom.Columns = 3
	custom.Rows = 3
	req.Geometry = &custom
	cfg, err = Build(req, simulation.NewGlobals())
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Geometry.Intersections())

	custom.Rows = 0
	_, err = Build(req, simulation.NewGlobals())
	assert.Error(t, err)
}

func TestBuildBaselineMode(t *testing.T) {
	g := simulation.NewGlobals()
	req, err := ForceBaseline(request("SIGNAL", "data/2phases", ".25", "0.10", "0.25"), g)
	require.NoError(t, err)
	assert.Equal(t, "FCFS", req.Policy)

	cfg, err := Build(req, g)
	require.NoError(t, err)
	assert.True(t, cfg.Params.(simulation.ReservationParams).BaselineMode)
	assert.Equal(t, []string{"FCFS", "data/2phases", ".25", "0.10", "0.25"}, cfg.Args)
}

func TestParseArgs(t *testing.T) {
	req, err := ParseArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultArgs, req.Args())

	_, err = ParseArgs([]string{"FCFS", "data"})
	assert.Error(t, err)

	req, err = ParseArgs([]string{"STOP", "d", "1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, "STOP", req.Policy)
	assert.Equal(t, "3", req.EdgeBuffer)
}

func TestDataPath(t *testing.T) {
	assert.Equal(t, "data/2phases/AIM4Phases.csv", dataPath("data/2phases/", PhaseFileName))
	assert.Equal(t, "AIM4Volumes.csv", dataPath("", VolumeFileName))
}

func TestBuildStopDistanceFromGlobals(t *testing.T) {
	g := simulation.NewGlobals()
	g.DefaultStopDistance = 2.5

	cfg, err := Build(request("STOP", "data", "0", "0", "0"), g)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Geometry.StopDistance)

	custom := simulation.DefaultGeometry()
	custom.StopDistance = 4
	req := request("STOP", "data", "0", "0", "0")
	req.Geometry = &custom
	cfg, err = Build(req, simulation.NewGlobals())
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.Geometry.StopDistance, "an explicit geometry wins")
}

package engine

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picogrid/intersection-simulations/pkg/simulation"
	"github.com/picogrid/intersection-simulations/pkg/trafficdata"
)

func writeData(t *testing.T, volumes, phases string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AIM4Volumes.csv"), []byte(volumes), 0644))
	if phases != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "AIM4Phases.csv"), []byte(phases), 0644))
	}
	return dir
}

func runFor(t *testing.T, e simulation.Engine, seconds, dt float64) {
	t.Helper()
	for e.Time() < seconds {
		require.NoError(t, e.Step(dt))
	}
}

func TestCompatible(t *testing.T) {
	n, e, s := trafficdata.North, trafficdata.East, trafficdata.South

	assert.True(t, compatible(n, Left, n, Through), "same approach")
	assert.True(t, compatible(n, Through, s, Through))
	assert.True(t, compatible(n, Right, s, Through))
	assert.False(t, compatible(n, Left, s, Through))
	assert.False(t, compatible(n, Through, e, Through))
	assert.True(t, compatible(n, Right, e, Right))
}

func TestKinematics(t *testing.T) {
	k := newKinematics(simulation.DefaultGeometry())
	// 2 lanes * 2 directions * 4m + 1m median
	assert.Equal(t, 17.0, k.box)
	assert.InDelta(t, 22.0/25.0, k.cruising(), 1e-9)
	assert.Greater(t, k.fromRest(1), k.cruising())
	assert.InDelta(t, 0.15, k.follow, 1e-9)
}

func TestReservationHold(t *testing.T) {
	kin := newKinematics(simulation.DefaultGeometry())
	params := simulation.ReservationParams{
		StaticBuffer:      0.25,
		InternalBuffer:    0.10,
		EdgeBuffer:        0.25,
		EdgeBufferEnabled: true,
		Granularity:       1.0,
	}
	r := &reservation{kin: kin, params: params, stopDistance: 1}
	v := &Vehicle{headSince: 10}

	hold := r.hold(v, 10, 0.02)
	// 1.73 rounded up to the 0.02 step quantum
	assert.InDelta(t, 1.74, hold, 1e-9)

	r.params.BaselineMode = true
	assert.InDelta(t, 0.88, r.hold(v, 10, 0.02), 1e-9)

	assert.InDelta(t, 1.0, r.hold(v, 10, 0.5), 1e-9, "rounded up to the step quantum")

	assert.InDelta(t, kin.fromRest(1), r.hold(v, 11, 0.02), 0.02, "refused vehicles start from rest")
}

func TestSignalPhaseAt(t *testing.T) {
	s := newSignal(newKinematics(simulation.DefaultGeometry()), []trafficdata.Phase{
		{Duration: 30, Green: []trafficdata.Approach{trafficdata.North, trafficdata.South}, Clearance: 5},
		{Duration: 20, Green: []trafficdata.Approach{trafficdata.East, trafficdata.West}},
	})
	require.Equal(t, 55.0, s.cycle)

	tests := []struct {
		t     float64
		idx   int
		green bool
	}{
		{0, 0, true},
		{29.9, 0, true},
		{31, 0, false},
		{35, 1, true},
		{54.9, 1, true},
		{55, 0, true},
		{110 + 32, 0, false},
	}
	for _, tt := range tests {
		idx, green := s.phaseAt(tt.t)
		assert.Equal(t, tt.idx, idx, "t=%g", tt.t)
		assert.Equal(t, tt.green, green, "t=%g", tt.t)
	}
	assert.Equal(t, "phase 1/2 green N S", s.describe(0))
	assert.Equal(t, "phase 1/2 clearance", s.describe(32))
}

func TestReservationRun(t *testing.T) {
	dir := writeData(t, "Approach,Left,Through,Right\nN,0,360,0\nE,0,360,0\n", "")
	cfg := &simulation.RunConfiguration{
		Kind:     simulation.KindReservationFCFS,
		Geometry: simulation.DefaultGeometry(),
		Params: simulation.ReservationParams{
			StaticBuffer: 0.25, InternalBuffer: 0.10, EdgeBuffer: 0.25,
			EdgeBufferEnabled: true, Granularity: 1, VolumePath: filepath.Join(dir, "AIM4Volumes.csv"),
		},
	}
	debug := simulation.NewDebugPoints()
	e, err := New(cfg, simulation.NewGlobals(), debug)
	require.NoError(t, err)

	runFor(t, e, 600, 0.1)

	snap := e.(*Simulator).Snapshot()
	require.Len(t, snap.Intersections, 2)
	for _, ix := range snap.Intersections {
		assert.InDelta(t, 120, ix.Arrived, 2)
		assert.Greater(t, ix.Departed, 110)
		assert.LessOrEqual(t, ix.Departed, ix.Arrived)
		assert.Zero(t, ix.Dropped)
		assert.Zero(t, ix.Queues[trafficdata.South])
	}
	assert.Positive(t, debug.Len())

	var crossings int
	for _, l := range e.(*Simulator).BasicMap().DataCollectionLines() {
		crossings += len(l.Crossings)
	}
	_, departed, _ := snap.Totals()
	assert.Equal(t, departed, crossings)
}

func TestSignalRedApproachWaits(t *testing.T) {
	dir := writeData(t,
		"Approach,Left,Through,Right\nN,0,720,0\nE,0,720,0\n",
		"Duration,Green\n60,N S\n")
	cfg := &simulation.RunConfiguration{
		Kind:     simulation.KindApproxMultiPhaseSignal,
		Geometry: simulation.DefaultGeometry(),
		Params: simulation.SignalParams{
			PhasePath:  filepath.Join(dir, "AIM4Phases.csv"),
			VolumePath: filepath.Join(dir, "AIM4Volumes.csv"),
		},
	}
	e, err := New(cfg, simulation.NewGlobals(), nil)
	require.NoError(t, err)

	runFor(t, e, 120, 0.5)

	ix := e.(*Simulator).Snapshot().Intersections[0]
	assert.Positive(t, ix.Departed)
	assert.InDelta(t, 24, ix.Queues[trafficdata.East], 1, "east never turns green")
	assert.Zero(t, ix.Queues[trafficdata.North])
}

func TestStopSignMustStop(t *testing.T) {
	dir := writeData(t, "Approach,Left,Through,Right\nN,0,1800,0\nW,0,1800,0\n", "")
	cfg := &simulation.RunConfiguration{
		Kind:     simulation.KindApproxStopSign,
		Geometry: simulation.DefaultGeometry(),
		Params:   simulation.StopSignParams{VolumePath: filepath.Join(dir, "AIM4Volumes.csv")},
	}

	g := simulation.NewGlobals()
	g.MustStopBeforeIntersection = true
	e, err := New(cfg, g, nil)
	require.NoError(t, err)
	runFor(t, e, 300, 0.5)

	lines := e.(*Simulator).BasicMap().DataCollectionLines()
	var crossings int
	for _, l := range lines {
		for _, c := range l.Crossings {
			crossings++
			assert.GreaterOrEqual(t, c.Delay, minStopTime-1e-9)
		}
	}
	assert.Positive(t, crossings)
	assert.Equal(t, "all-way stop", e.(*Simulator).control.describe(0))

	g = simulation.NewGlobals()
	e, err = New(cfg, g, nil)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, e.Step(0.5))
	}
	first := e.(*Simulator).BasicMap().DataCollectionLines()[0].Crossings
	require.Len(t, first, 1)
	assert.Zero(t, first[0].Delay, "without the stop requirement vehicles roll through")
}

func TestStepRejectsInvalidDelta(t *testing.T) {
	s := newSimulator(simulation.KindApproxStopSign, simulation.DefaultGeometry(), nil, &stopSign{kin: newKinematics(simulation.DefaultGeometry())}, nil)
	assert.Error(t, s.Step(0))
	assert.Error(t, s.Step(-1))
	assert.NoError(t, s.Step(1))
	assert.Equal(t, 1.0, s.Time())
}

func TestNewMissingData(t *testing.T) {
	cfg := &simulation.RunConfiguration{
		Kind:     simulation.KindApproxMultiPhaseSignal,
		Geometry: simulation.DefaultGeometry(),
		Params:   simulation.SignalParams{PhasePath: "missing/p.csv", VolumePath: "missing/v.csv"},
	}
	_, err := New(cfg, simulation.NewGlobals(), nil)
	assert.Error(t, err)
}

func TestQueueCapacityDropsVehicles(t *testing.T) {
	geo := simulation.DefaultGeometry()
	geo.Columns = 1
	geo.DistanceBetween = 15 // two vehicles per lane
	s := newSimulator(simulation.KindApproxMultiPhaseSignal, geo,
		trafficdata.Volumes{trafficdata.North: {Through: 3600}},
		newSignal(newKinematics(geo), []trafficdata.Phase{{Duration: 10, Green: []trafficdata.Approach{trafficdata.East}}}),
		nil)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Step(1))
	}
	ix := s.Snapshot().Intersections[0]
	assert.Equal(t, 4, ix.Queues[trafficdata.North])
	assert.Equal(t, 6, ix.Dropped)
}

func TestWriteDataCollectionLines(t *testing.T) {
	dir := writeData(t, "Approach,Left,Through,Right\nS,3600,0,0\n", "")
	cfg := &simulation.RunConfiguration{
		Kind:     simulation.KindApproxStopSign,
		Geometry: simulation.DefaultGeometry(),
		Params:   simulation.StopSignParams{VolumePath: filepath.Join(dir, "AIM4Volumes.csv")},
	}
	e, err := New(cfg, simulation.NewGlobals(), nil)
	require.NoError(t, err)
	runFor(t, e, 10, 1)

	out := filepath.Join(t.TempDir(), "dcl.csv")
	require.NoError(t, e.Map().WriteDataCollectionLines(out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Greater(t, len(records), 1)
	assert.Equal(t, DCLHeader, records[0])
	assert.Equal(t, "I0_0-S", records[1][0])
	assert.Equal(t, "left", records[1][3])

	assert.Error(t, e.Map().WriteDataCollectionLines(filepath.Join(dir, "no", "such", "dir.csv")))
}

func TestDefaultRegistryHasEveryPolicy(t *testing.T) {
	assert.Equal(t, simulation.Kinds, simulation.DefaultRegistry.List())
}

func TestHugeVolumeStepsInBoundedTime(t *testing.T) {
	geo := simulation.DefaultGeometry()
	geo.Columns = 1
	s := newSimulator(simulation.KindApproxStopSign, geo,
		trafficdata.Volumes{trafficdata.West: {Through: 1e300}},
		&stopSign{kin: newKinematics(geo)}, nil)

	require.NoError(t, s.Step(0.02))

	ix := s.Snapshot().Intersections[0]
	capacity := geo.LanesPerRoad * int(geo.DistanceBetween/(vehicleLength+vehicleGap))
	assert.Equal(t, capacity, ix.Arrived)
	assert.Positive(t, ix.Dropped)
}

func TestNewRejectsNonFiniteVolumes(t *testing.T) {
	dir := writeData(t, "Approach,Left,Through,Right\nN,0,Inf,0\n", "")
	cfg := &simulation.RunConfiguration{
		Kind:     simulation.KindApproxStopSign,
		Geometry: simulation.DefaultGeometry(),
		Params:   simulation.StopSignParams{VolumePath: filepath.Join(dir, "AIM4Volumes.csv")},
	}
	_, err := New(cfg, simulation.NewGlobals(), nil)
	assert.ErrorContains(t, err, "not finite")
}

func TestControllersShareGeometryStopDistance(t *testing.T) {
	dir := writeData(t, "Approach,Left,Through,Right\nN,0,60,0\n", "")
	geo := simulation.DefaultGeometry()
	geo.StopDistance = 3

	g := simulation.NewGlobals()
	g.DefaultStopDistance = 9

	e, err := New(&simulation.RunConfiguration{
		Kind:     simulation.KindReservationFCFS,
		Geometry: geo,
		Params:   simulation.ReservationParams{Granularity: 1, VolumePath: filepath.Join(dir, "AIM4Volumes.csv")},
	}, g, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, e.(*Simulator).control.(*reservation).stopDistance)

	e, err = New(&simulation.RunConfiguration{
		Kind:     simulation.KindApproxStopSign,
		Geometry: geo,
		Params:   simulation.StopSignParams{VolumePath: filepath.Join(dir, "AIM4Volumes.csv")},
	}, g, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, e.(*Simulator).control.(*stopSign).stopDistance)
}

package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/picogrid/intersection-simulations/pkg/logger"
	"github.com/picogrid/intersection-simulations/pkg/simulation"
)

// ErrNoViewer is returned when interactive mode is requested without a viewer
var ErrNoViewer = errors.New("interactive mode requires a viewer")

// Handle is an engine created for a viewer. Step clears the short-term debug
// buffer before advancing, the same as the headless loop does.
type Handle struct {
	simulation.Engine
	Debug *simulation.DebugPoints
}

// Step clears the debug buffer and advances the engine
func (h *Handle) Step(dt float64) error {
	h.Debug.Clear()
	return h.Engine.Step(dt)
}

// Snapshot describes the engine, or just its clock when it cannot
func (h *Handle) Snapshot() simulation.Snapshot {
	if s, ok := h.Engine.(simulation.Snapshotter); ok {
		return s.Snapshot()
	}
	return simulation.Snapshot{Time: h.Engine.Time()}
}

// Launch returns the capability a viewer uses to create the engine of a run
func Launch(reg *simulation.Registry, cfg *simulation.RunConfiguration, g *simulation.Globals) simulation.Launcher {
	return func(ctx context.Context) (simulation.Engine, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		debug := simulation.NewDebugPoints()
		engine, err := reg.New(cfg, g, debug)
		if err != nil {
			return nil, err
		}
		return &Handle{Engine: engine, Debug: debug}, nil
	}
}

// Runner dispatches a configured run to the viewer or runs it headless
type Runner struct {
	Registry  *simulation.Registry
	Viewer    simulation.Viewer
	Budget    simulation.TimeBudget
	Suffix    string
	OutputDir string

	// Progress, when set, creates the per-step progress callback of a headless run
	Progress func(budget simulation.TimeBudget) (update func(elapsed float64), done func())
	Logger   logger.Logger

	// Out receives the completion marker of a headless run, whatever the log
	// level. Defaults to stdout.
	Out io.Writer
}

// Result describes a completed headless run
type Result struct {
	Stats    Stats
	Artifact string
	Snapshot simulation.Snapshot
}

// Run executes cfg. In interactive mode the viewer owns the run and Run
// returns once the viewer is closed, with a nil result.
func (r *Runner) Run(ctx context.Context, cfg *simulation.RunConfiguration, g *simulation.Globals, interactive bool) (*Result, error) {
	registry := r.Registry
	if registry == nil {
		registry = simulation.DefaultRegistry
	}

	if interactive {
		if r.Viewer == nil {
			return nil, ErrNoViewer
		}
		return nil, r.Viewer.Show(ctx, cfg, Launch(registry, cfg, g))
	}

	log := r.Logger
	if log == nil {
		log = logger.Default()
	}
	log = log.WithField("policy", cfg.Kind.Token())

	debug := simulation.NewDebugPoints()
	engine, err := registry.New(cfg, g, debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	log.Infof("Stepping %.0fs of simulated time in %gs steps", r.Budget.Total, r.Budget.Step)

	var update func(float64)
	if r.Progress != nil {
		var done func()
		update, done = r.Progress(r.Budget)
		defer done()
	}

	stats, err := Step(ctx, engine, r.Budget, debug, update)
	if err != nil {
		return nil, err
	}
	log.Debugf("Completed %d steps, t=%.2f", stats.Steps, stats.Elapsed)

	path, err := Export(engine.Map(), r.OutputDir, ArtifactName(cfg.Args, r.Suffix))
	if err != nil {
		return nil, err
	}
	log.Infof("Wrote data-collection lines to %s", path)

	res := &Result{Stats: stats, Artifact: path}
	if s, ok := engine.(simulation.Snapshotter); ok {
		res.Snapshot = s.Snapshot()
	}

	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	_, _ = fmt.Fprintln(out, "Done.")
	return res, nil
}

// Package viewer renders intersection runs in a terminal. The terminal viewer
// owns stepping while it is shown: every tick it advances the engine by as
// much simulated time as the configured speed allows and redraws the
// per-intersection queues.
package viewer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/picogrid/intersection-simulations/pkg/logger"
	"github.com/picogrid/intersection-simulations/pkg/simulation"
)

// Config holds the pacing of a terminal viewer
type Config struct {
	// Step is the simulated time advanced per engine step
	Step float64
	// Speed is simulated seconds per wall-clock second
	Speed float64
	// UpdateInterval is the wall-clock time between frames
	UpdateInterval time.Duration
	// Duration stops the viewer after this much simulated time; zero runs
	// until the context is cancelled
	Duration float64
}

// DefaultConfig returns real-time pacing at ten frames per second
func DefaultConfig() Config {
	return Config{
		Step:           simulation.DefaultTimeStep,
		Speed:          1,
		UpdateInterval: 100 * time.Millisecond,
	}
}

// Validate checks the viewer can make progress
func (c Config) Validate() error {
	if !(c.Step > 0) {
		return fmt.Errorf("step must be positive, got %g", c.Step)
	}
	if !(c.Speed > 0) {
		return fmt.Errorf("speed must be positive, got %g", c.Speed)
	}
	if c.UpdateInterval <= 0 {
		return fmt.Errorf("update interval must be positive, got %s", c.UpdateInterval)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %g", c.Duration)
	}
	return nil
}

// stepsPerFrame is the number of engine steps that cover one frame
func (c Config) stepsPerFrame() int {
	n := int(c.Speed * c.UpdateInterval.Seconds() / c.Step)
	if n < 1 {
		return 1
	}
	return n
}

// Terminal draws snapshots of a running engine to a writer
type Terminal struct {
	config  Config
	out     io.Writer
	globals *simulation.Globals
	noColor bool
	width   int
	clear   bool
	frames  int
}

// New creates a terminal viewer writing to out. Colour and screen clearing
// are only used when out is a terminal.
func New(cfg Config, out io.Writer, g *simulation.Globals) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	t := &Terminal{config: cfg, out: out, globals: g, noColor: true}

	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.noColor = false
		t.clear = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			t.width = w
		}
	}
	return t
}

// SetNoColor forces plain output
func (t *Terminal) SetNoColor(noColor bool) {
	t.noColor = noColor
}

// Frames returns the number of frames drawn so far
func (t *Terminal) Frames() int {
	return t.frames
}

// Show creates the engine through launch and drives it until the context
// is cancelled or the configured duration elapses. Cancellation closes the
// viewer and is not an error.
func (t *Terminal) Show(ctx context.Context, cfg *simulation.RunConfiguration, launch simulation.Launcher) error {
	if err := t.config.Validate(); err != nil {
		return fmt.Errorf("invalid viewer config: %w", err)
	}

	engine, err := launch(ctx)
	if err != nil {
		return fmt.Errorf("failed to launch engine: %w", err)
	}

	logger.Debugf("Viewer stepping %d x %gs per frame", t.config.stepsPerFrame(), t.config.Step)

	ticker := time.NewTicker(t.config.UpdateInterval)
	defer ticker.Stop()

	t.draw(cfg, engine)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for i := 0; i < t.config.stepsPerFrame(); i++ {
				if t.config.Duration > 0 && engine.Time() >= t.config.Duration {
					break
				}
				if err := engine.Step(t.config.Step); err != nil {
					return fmt.Errorf("engine failed at t=%.2f: %w", engine.Time(), err)
				}
			}
			t.draw(cfg, engine)

			if t.config.Duration > 0 && engine.Time() >= t.config.Duration {
				return nil
			}
		}
	}
}

func (t *Terminal) draw(cfg *simulation.RunConfiguration, engine simulation.Engine) {
	snap := simulation.Snapshot{Time: engine.Time()}
	if s, ok := engine.(simulation.Snapshotter); ok {
		snap = s.Snapshot()
	}

	if t.clear {
		_, _ = io.WriteString(t.out, "\033[H\033[2J")
	}

	r := renderer{
		noColor:   t.noColor,
		width:     t.width,
		byMessage: t.globals == nil || t.globals.ShowVehicleColorByMsgState,
	}
	_, _ = io.WriteString(t.out, r.frame(cfg, snap))
	t.frames++
}

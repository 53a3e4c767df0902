package driver

import (
	"context"

	"github.com/picogrid/intersection-simulations/pkg/simulation"
)

// Stats summarises a completed stepping loop
type Stats struct {
	Steps   int
	Elapsed float64
}

// Step advances the engine by budget.Step until the elapsed simulated time
// exceeds budget.Total. Elapsed time is accumulated by repeated addition, and
// a step still runs when elapsed equals the total exactly. The debug buffer
// is cleared before every step. An engine error ends the loop immediately.
//
// progress, when set, is called after every step with the elapsed time.
func Step(ctx context.Context, engine simulation.Engine, budget simulation.TimeBudget, debug simulation.DebugBuffer, progress func(elapsed float64)) (Stats, error) {
	var stats Stats
	if err := budget.Validate(); err != nil {
		return stats, err
	}

	for stats.Elapsed <= budget.Total {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if debug != nil {
			debug.Clear()
		}
		if err := engine.Step(budget.Step); err != nil {
			return stats, &StepError{Step: stats.Steps, Elapsed: stats.Elapsed, Err: err}
		}
		stats.Steps++
		stats.Elapsed += budget.Step

		if progress != nil {
			progress(stats.Elapsed)
		}
	}

	return stats, nil
}

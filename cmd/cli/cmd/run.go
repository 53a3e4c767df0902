package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/intersection-simulations/pkg/config"
	"github.com/picogrid/intersection-simulations/pkg/driver"
	"github.com/picogrid/intersection-simulations/pkg/logger"
	"github.com/picogrid/intersection-simulations/pkg/policy"
	"github.com/picogrid/intersection-simulations/pkg/simulation"
	"github.com/picogrid/intersection-simulations/pkg/utils"
	"github.com/picogrid/intersection-simulations/pkg/viewer"

	// Import engines to register them
	_ "github.com/picogrid/intersection-simulations/pkg/engine"
)

var runCmd = &cobra.Command{
	Use:   "run [POLICY DATA_DIR STATIC_BUFFER INTERNAL_BUFFER EDGE_BUFFER]",
	Short: "Run an experiment",
	Long: `Run an intersection policy experiment.

POLICY is one of FCFS, SIGNAL or STOP. DATA_DIR holds AIM4Volumes.csv and,
for SIGNAL, AIM4Phases.csv. The three buffers are seconds and only apply to
FCFS. Without arguments the run uses: SIGNAL data/2phases .25 0.10 0.25`,
	Example: `  aim-sim run FCFS data/2phases .25 0.10 0.25
  aim-sim run --baseline --suffix trial1
  aim-sim run -i STOP data/2phases 0 0 0`,
	Args: cobra.RangeArgs(0, 5),
	RunE: runSimulation,
}

func init() {
	flags := runCmd.Flags()
	flags.BoolP("interactive", "i", false, "show the run in the terminal viewer instead of running headless")
	flags.Float64("duration", simulation.DefaultTotalTime, "simulated seconds of a headless run")
	flags.Float64("step", simulation.DefaultTimeStep, "simulated seconds per engine step")
	flags.Float64("speed", 1, "simulated seconds per wall-clock second in the viewer")
	flags.Bool("baseline", false, "run the buffer-free FCFS baseline regardless of POLICY")
	flags.StringP("geometry", "g", "", "geometry descriptor (YAML)")
	flags.String("suffix", "", "suffix of the exported file name (default is a random id)")
	flags.String("output-dir", ".", "directory the data-collection lines are written to")
	flags.String("profile", "", "use the arguments of a saved profile")
	flags.Bool("prompt", false, "prompt for the run arguments")

	bind := map[string]string{
		"interactive": "interactive",
		"duration":    "duration",
		"step":        "step",
		"speed":       "speed",
		"baseline":    "baseline",
		"geometry":    "geometry",
		"run_suffix":  "suffix",
		"output_dir":  "output-dir",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	args, err := resolveArgs(cmd, args)
	if err != nil {
		return err
	}

	req, err := policy.ParseArgs(args)
	if err != nil {
		return err
	}

	geometry, err := config.LoadGeometryOrDefault(viper.GetString("geometry"))
	if err != nil {
		return fmt.Errorf("failed to load geometry: %w", err)
	}
	req.Geometry = geometry

	g := simulation.NewGlobals()
	if viper.GetBool("baseline") {
		if req, err = policy.ForceBaseline(req, g); err != nil {
			return err
		}
	}

	cfg, err := policy.Build(req, g)
	if err != nil {
		return fmt.Errorf("failed to configure run: %w", err)
	}

	budget := simulation.TimeBudget{
		Total: viper.GetFloat64("duration"),
		Step:  viper.GetFloat64("step"),
	}
	if err := budget.Validate(); err != nil {
		return err
	}

	suffix := viper.GetString("run_suffix")
	if suffix == "" {
		suffix = uuid.NewString()[:8]
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			logger.Warn("Received interrupt signal, stopping run...")
			cancel()
		case <-ctx.Done():
		}
	}()

	interactive := viper.GetBool("interactive")

	logger.LogSection(fmt.Sprintf("%s Starting %s", kindIcon(cfg.Kind), cfg.Kind))
	logger.LogKeyValues(map[string]interface{}{
		"Arguments":     fmt.Sprintf("%v", cfg.Args),
		"Intersections": cfg.Geometry.Intersections(),
		"Traffic level": cfg.Geometry.TrafficLevel,
		"Step":          fmt.Sprintf("%gs", budget.Step),
		"Mode":          modeName(interactive),
	})

	runner := &driver.Runner{
		Viewer:    newViewer(budget, g),
		Budget:    budget,
		Suffix:    suffix,
		OutputDir: viper.GetString("output_dir"),
		Progress: func(b simulation.TimeBudget) (func(float64), func()) {
			bar := logger.NewProgressBar(b.Total, "Simulating")
			return bar.Update, bar.Finish
		},
		Logger: logger.WithPrefix("driver"),
	}

	if interactive {
		logger.Progress("Opening viewer, press Ctrl+C to close")
	}
	res, err := runner.Run(ctx, cfg, g, interactive)
	if err != nil {
		return runError(err)
	}

	if res != nil {
		printSummary(res)
		logger.Successf("Exported %s", res.Artifact)
	}
	return nil
}

// resolveArgs picks the positional arguments from the command line, a saved
// profile or the interactive prompts
func resolveArgs(cmd *cobra.Command, args []string) ([]string, error) {
	profileName, _ := cmd.Flags().GetString("profile")
	if profileName != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("--profile cannot be combined with positional arguments")
		}
		profiles, err := config.LoadProfiles()
		if err != nil {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
		profile, ok := profiles.Find(profileName)
		if !ok {
			return nil, fmt.Errorf("profile %s not found", profileName)
		}
		args = profile.Args
	}

	if prompt, _ := cmd.Flags().GetBool("prompt"); prompt {
		sets, err := utils.DiscoverDataSets(dataRoot())
		if err != nil {
			logger.Debugf("No data sets discovered: %v", err)
		}
		return utils.PromptForArgs(args, sets)
	}

	return args, nil
}

func newViewer(budget simulation.TimeBudget, g *simulation.Globals) simulation.Viewer {
	v := viewer.New(viewer.Config{
		Step:           budget.Step,
		Speed:          viper.GetFloat64("speed"),
		UpdateInterval: 100 * time.Millisecond,
	}, os.Stdout, g)
	if noColor {
		v.SetNoColor(true)
	}
	return v
}

func kindIcon(k simulation.Kind) string {
	switch k {
	case simulation.KindApproxMultiPhaseSignal:
		return logger.IconSignal
	case simulation.KindApproxStopSign:
		return logger.IconStop
	default:
		return logger.IconCar
	}
}

func modeName(interactive bool) string {
	if interactive {
		return "interactive"
	}
	return "headless"
}

func printSummary(res *driver.Result) {
	logger.LogSubSection("Summary")

	table := logger.NewTable("INTERSECTION", "ARRIVED", "DEPARTED", "DROPPED", "MEAN DELAY")
	for _, ix := range res.Snapshot.Intersections {
		table.AddRow(
			ix.Name,
			fmt.Sprintf("%d", ix.Arrived),
			fmt.Sprintf("%d", ix.Departed),
			fmt.Sprintf("%d", ix.Dropped),
			fmt.Sprintf("%.2fs", ix.MeanDelay),
		)
	}
	table.Print()

	logger.LogKeyValue("Steps", res.Stats.Steps)
	logger.LogKeyValue("Simulated", fmt.Sprintf("%.2fs", res.Stats.Elapsed))
}

// runError keeps the cause of a failed run visible to errors.Is
func runError(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("run interrupted before export: %w", err)
	}
	return fmt.Errorf("run failed: %w", err)
}

// cmd/bumpmap/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-bumpmap/pkg/config"
	"github.com/opd-ai/go-bumpmap/pkg/engine"
	"github.com/opd-ai/go-bumpmap/pkg/health"
	"github.com/opd-ai/go-bumpmap/pkg/logging"
	"github.com/opd-ai/go-bumpmap/pkg/render"
	engorender "github.com/opd-ai/go-bumpmap/pkg/render/engo"
	"github.com/opd-ai/go-bumpmap/pkg/storage"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "bumpmap.toml", "Path to configuration file (.toml or .json)")
	createDefault := flag.Bool("default", false, "Create default configuration file and exit")
	layout := flag.String("layout", "", "Arena layout template (overrides config)")
	listLayouts := flag.Bool("layouts", false, "List layout templates and exit")
	ticks := flag.Int("ticks", -1, "Ticks to run, 0 for unbounded (overrides config)")
	rendererName := flag.String("renderer", "null", "Renderer: 'null', 'terminal' or 'engo'")
	cols := flag.Int("cols", 96, "Terminal width in columns (terminal renderer)")
	dbPath := flag.String("db", "", "Checkpoint database path (overrides config)")
	resume := flag.String("resume", "", "Resume the latest checkpoint of this run ID")
	listRuns := flag.Bool("runs", false, "List run IDs stored in the checkpoint database and exit")
	heatmapPath := flag.String("heatmap", "", "Write the final belief heat map to this file")
	healthAddr := flag.String("health", "", "Serve /health and /ready on this address")
	flag.Parse()

	if *listLayouts {
		for _, name := range config.LayoutNames() {
			fmt.Printf("%-14s %s\n", name, config.GetLayoutTemplate(name).Description)
		}
		return
	}

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg, err := loadConfig(ctx, logger, *configPath, *layout)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}
	if *ticks >= 0 {
		cfg.Run.Ticks = *ticks
	}
	if *dbPath != "" {
		cfg.Checkpoint.Path = *dbPath
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}

	if err := run(ctx, logger, cfg, options{
		renderer:   *rendererName,
		cols:       *cols,
		resume:     *resume,
		listRuns:   *listRuns,
		heatmap:    *heatmapPath,
		healthAddr: *healthAddr,
	}); err != nil {
		logger.Error(ctx, "Simulation failed", err)
		os.Exit(1)
	}
}

type options struct {
	renderer   string
	cols       int
	resume     string
	listRuns   bool
	heatmap    string
	healthAddr string
}

func loadConfig(ctx context.Context, logger *logging.Logger, path, layout string) (*config.SimConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
	}
	if layout != "" {
		return config.LoadConfigWithTemplate(path, layout)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

func run(ctx context.Context, logger *logging.Logger, cfg *config.SimConfig, opts options) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	simOpts := []engine.Option{engine.WithLogger(logger)}
	hc := health.NewHealthChecker()

	var store *storage.Store
	var cp *storage.Checkpointer
	if cfg.Checkpoint.Path != "" {
		var err error
		store, err = storage.Open(cfg.Checkpoint.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if opts.listRuns {
			return printRuns(ctx, store)
		}

		cp, err = storage.NewCheckpointer(store, cfg.Checkpoint, cfg.Belief, logger)
		if err != nil {
			return err
		}
		simOpts = append(simOpts, engine.WithCheckpointer(cp, cfg.Checkpoint.Every))
		hc.AddCheck(health.NewStorageHealthCheck(store.Ping))
		hc.AddCheck(health.NewCheckpointHealthCheck(cp))
	} else if opts.listRuns || opts.resume != "" {
		return errors.New("a checkpoint database is required (-db or BUMPMAP_CHECKPOINT_PATH)")
	}

	if opts.resume != "" {
		simOpts = append(simOpts, engine.WithRunID(opts.resume))
	}

	var r render.Renderer
	switch opts.renderer {
	case "null":
		r = render.NewNullRenderer(logger)
	case "terminal":
		tr := render.FitTerminalRenderer(os.Stdout, cfg.Arena.Width, cfg.Arena.Height, opts.cols)
		tr.SetClearScreen(true)
		r = tr
	case "engo":
		// The window drives the frame loop itself.
	default:
		return fmt.Errorf("unknown renderer %q", opts.renderer)
	}
	if r != nil {
		simOpts = append(simOpts, engine.WithRenderer(r))
	}

	sim, err := engine.NewSimulation(cfg, simOpts...)
	if err != nil {
		return err
	}

	if opts.resume != "" {
		if err := resumeRun(ctx, logger, sim, store, opts.resume); err != nil {
			return err
		}
	}

	hc.AddCheck(health.NewSimulationHealthCheck(sim, stallLimit(cfg)))
	hc.AddCheck(health.NewBeliefHealthCheck(sim))
	hc.AddCheck(health.NewMemoryHealthCheck(500, nil))
	if opts.healthAddr != "" {
		go func() {
			if err := hc.Serve(ctx, opts.healthAddr, logger); err != nil {
				logger.Error(ctx, "Health check server failed", err)
			}
		}()
	}

	if opts.renderer == "engo" {
		sceneOpts := engorender.DefaultSceneOptions()
		sceneOpts.TickLimit = uint64(cfg.Run.Ticks)
		engorender.Run(ctx, sim, sceneOpts, logger)
	} else if err := sim.Run(ctx, cfg.Run.Ticks); err != nil {
		return err
	}

	state := sim.State()
	logger.Info(sim.Context(ctx), "Run complete",
		"ticks", state.Tick,
		"collisions", state.TotalCollisions,
		"mean_belief", sim.Belief.Mean(),
	)

	if opts.heatmap != "" {
		hm := render.DefaultHeatmapOptions()
		hm.Title = fmt.Sprintf("Belief after %d ticks", state.Tick)
		if err := render.WriteHeatmap(opts.heatmap, state.Belief, hm); err != nil {
			return err
		}
		logger.Info(ctx, "Heat map written", "path", opts.heatmap)
	}
	return nil
}

// resumeRun loads the newest checkpoint of runID into sim.
func resumeRun(ctx context.Context, logger *logging.Logger, sim *engine.Simulation, store *storage.Store, runID string) error {
	snap, err := store.LatestSnapshot(ctx, runID)
	if err != nil {
		return fmt.Errorf("resume %s: %w", runID, err)
	}
	values, err := snap.Values()
	if err != nil {
		return fmt.Errorf("resume %s: %w", runID, err)
	}
	if err := sim.Restore(snap.Tick, snap.Width, snap.Height, values); err != nil {
		return err
	}
	logger.Info(sim.Context(ctx), "Resumed from checkpoint",
		"snapshot_id", *snap.SnapshotID,
		"tick", snap.Tick,
		"mean_belief", snap.MeanBelief,
	)
	return nil
}

func printRuns(ctx context.Context, store *storage.Store) error {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	for _, id := range runs {
		snaps, err := store.ListSnapshots(ctx, id)
		if err != nil {
			return err
		}
		var last uint64
		if len(snaps) > 0 {
			last = snaps[len(snaps)-1].Tick
		}
		fmt.Printf("%s  snapshots=%d  last_tick=%d\n", id, len(snaps), last)
	}
	return nil
}

// stallLimit is how long the readiness probe tolerates no completed tick.
func stallLimit(cfg *config.SimConfig) time.Duration {
	return max(10*cfg.Run.TickInterval.Duration, 5*time.Second)
}

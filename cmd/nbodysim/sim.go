package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/logging"
	"github.com/san-kum/nbodysim/internal/metrics"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
	"github.com/san-kum/nbodysim/internal/sink"
	"github.com/san-kum/nbodysim/internal/storage"
	"github.com/san-kum/nbodysim/internal/stream"
	"github.com/san-kum/nbodysim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// boundFactor scales the initial extent of a system into the radius used by
// the bound metric.
const boundFactor = 10

// resolveConfig layers defaults, the preset, the config file and finally the
// flags the user actually set.
func resolveConfig(cmd *cobra.Command, presetName string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if presetName != "" {
		p := config.GetPreset(presetName)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = input
		cfg.Scenario = ""
	}
	if flags.Changed("scenario") {
		cfg.Scenario = scenarioN
	}
	if flags.Changed("output") {
		cfg.Output = output
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("dt") {
		cfg.TimeStep = dt
	}
	if flags.Changed("interval") {
		cfg.SnapshotInterval = interval
	}
	if flags.Changed("g") {
		cfg.GravitationalConstant = gconst
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("bodies") {
		cfg.Random.Count = numBodies
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runName(cfg *config.Config, presetName string) string {
	switch {
	case presetName != "":
		return presetName
	case cfg.Scenario != "":
		return cfg.Scenario
	default:
		return cfg.Input
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.LogLevel, devLog)
}

// boundRadius is boundFactor times the largest initial distance from the
// centre of mass.
func boundRadius(bodies []*physics.Body) float64 {
	copies := make([]physics.Body, len(bodies))
	for i, b := range bodies {
		copies[i] = *b
	}
	com := physics.CenterOfMass(copies)

	var r float64
	for _, b := range copies {
		r = max(r, b.Position.Sub(com).Len())
	}
	return boundFactor * r
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, preset)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	bodies, err := cfg.Bodies(rand.New(rand.NewSource(cfg.Seed)), logger)
	if err != nil {
		return err
	}

	st := storage.New(dataDir, logger)
	if err := st.Init(); err != nil {
		return err
	}
	rec, err := st.Create()
	if err != nil {
		return err
	}

	mrec := metrics.NewRecorder(metrics.Defaults(cfg.GravitationalConstant, boundRadius(bodies))...)
	fan := sink.Multi{rec, mrec}
	if cfg.Output != "" {
		fan = append(fan, storage.NewTextFile(cfg.Output))
	}
	async := sink.NewAsync(fan, bufferSize, logger)

	engine, err := sim.New(bodies, cfg.SimConfig(), sim.WithLogger(logger), sim.WithSink(async))
	if err != nil {
		async.Close()
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	name := runName(cfg, preset)
	fmt.Printf("running %s simulation with %d bodies...\n", name, len(bodies))

	result, runErr := engine.Run(ctx)
	if err := async.Close(); err != nil && runErr == nil {
		runErr = err
	}

	meta, err := rec.Close(storage.RunMetadata{
		Name:             name,
		Seed:             cfg.Seed,
		Bodies:           len(bodies),
		G:                engine.Config().G,
		TimeStep:         cfg.TimeStep,
		Duration:         cfg.Duration,
		SnapshotInterval: cfg.SnapshotInterval,
		Steps:            result.Steps,
		Snapshots:        result.Snapshots,
		Collisions:       result.Collisions,
		SimulatedTime:    result.SimulatedTime,
		WallTime:         result.WallTime.Seconds(),
		Metrics:          mrec.Values(),
	})
	if err != nil {
		return errors.Join(runErr, err)
	}

	fmt.Printf("completed in %v\n", result.WallTime)
	fmt.Printf("run id: %s\n", meta.ID)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("snapshots: %d\n", result.Snapshots)
	fmt.Printf("collisions: %d\n", result.Collisions)
	if result.DegeneratePairs > 0 {
		fmt.Printf("degenerate pairs: %d\n", result.DegeneratePairs)
	}
	fmt.Println("\nmetrics:")
	for k, val := range meta.Metrics {
		fmt.Printf("  %s: %.6g\n", k, val)
	}

	if errors.Is(runErr, context.Canceled) {
		fmt.Println("\ninterrupted")
		return nil
	}
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	var loggers []*zap.Logger
	defer func() {
		for _, l := range loggers {
			l.Sync()
		}
	}()

	build := func(name string) (viz.Model, error) {
		cfg, err := resolveConfig(cmd, name)
		if err != nil {
			return viz.Model{}, err
		}
		// Logs would corrupt the full screen view.
		logger := zap.NewNop()
		if logLevel != "" {
			if logger, err = newLogger(cfg); err != nil {
				return viz.Model{}, err
			}
			loggers = append(loggers, logger)
		}

		bodies, err := cfg.Bodies(rand.New(rand.NewSource(cfg.Seed)), logger)
		if err != nil {
			return viz.Model{}, err
		}
		plotter := viz.NewPlotter(trailLength)
		engine, err := sim.New(bodies, cfg.SimConfig(), sim.WithLogger(logger), sim.WithSink(plotter))
		if err != nil {
			return viz.Model{}, err
		}
		return viz.NewModel(ctx, runName(cfg, name), engine, plotter, stepsPerTick), nil
	}

	if len(args) == 0 && preset == "" && configFile == "" {
		return viz.RunPicker(config.ListPresets(), build)
	}

	name := preset
	if len(args) > 0 {
		name = args[0]
	}
	m, err := build(name)
	if err != nil {
		return err
	}
	return viz.RunLive(m)
}

func serveSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, preset)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	bodies, err := cfg.Bodies(rand.New(rand.NewSource(cfg.Seed)), logger)
	if err != nil {
		return err
	}

	hub := stream.NewHub(stream.DefaultBufferSize, logger)
	delay := time.Duration(frameDelay) * time.Millisecond
	paced := sim.SinkFunc(func(ctx context.Context, s sim.Snapshot) error {
		if err := hub.WriteSnapshot(ctx, s); err != nil {
			return err
		}
		select {
		case <-time.After(delay):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	engine, err := sim.New(bodies, cfg.SimConfig(),
		sim.WithLogger(logger), sim.WithSink(paced), sim.WithEventHandler(hub))
	if err != nil {
		return err
	}

	sigCtx, stop := signalContext(cmd)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return stream.Serve(gctx, addr, hub, logger)
	})
	g.Go(func() error {
		defer cancel()
		if err := waitForClients(gctx, hub, waitClients); err != nil {
			return err
		}
		fmt.Printf("streaming %s simulation with %d bodies\n", runName(cfg, preset), len(bodies))
		result, err := engine.Run(gctx)
		if err != nil {
			return err
		}
		fmt.Printf("completed: %d steps, %d snapshots, %d collisions\n", result.Steps, result.Snapshots, result.Collisions)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func waitForClients(ctx context.Context, hub *stream.Hub, n int) error {
	if n <= 0 {
		return nil
	}
	fmt.Printf("listening on %s, waiting for %d client(s)\n", addr, n)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for hub.Clients() < n {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

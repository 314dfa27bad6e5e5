package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/rescount/config"
	"github.com/pthm-cable/rescount/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop at tick N (0 = use config)")
	dbPath := flag.String("db", "", "SQLite database for run history and checkpoints")
	resume := flag.String("resume", "", "Resume a stored run by ID, or \"latest\" (requires --db)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Run.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	s, err := sim.New(sim.Options{
		Seed:        rngSeed,
		LogStats:    *logStats,
		StatsWindow: *statsWindow,
		OutputDir:   *outputDir,
		DBPath:      *dbPath,
		ResumeRun:   *resume,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"max_ticks", *maxTicks,
		"output_dir", *outputDir,
		"run", s.RunID(),
		"start_tick", s.Tick(),
	)

	start := time.Now()
	runErr := s.Run(ctx, *maxTicks)
	if err := s.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}

	slog.Info("simulation finished",
		"tick", s.Tick(),
		"total", s.Grid().SumAll(),
		"elapsed", time.Since(start).String(),
	)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("simulation failed", "error", runErr)
		os.Exit(1)
	}
}

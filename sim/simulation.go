// Package sim drives a resource grid through its per-step update sequence.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rescount/config"
	"github.com/pthm-cable/rescount/persistence"
	"github.com/pthm-cable/rescount/resource"
	"github.com/pthm-cable/rescount/systems"
	"github.com/pthm-cable/rescount/telemetry"
)

// Options configures a Simulation.
type Options struct {
	Seed        int64 // 0 = config run.seed
	LogStats    bool
	StatsWindow int    // Ticks per stats window (0 = config)
	OutputDir   string // Empty disables CSV output

	// DBPath enables SQLite run history and checkpoints when set.
	DBPath string
	// ResumeRun continues a stored run ("latest" or a run ID); requires DBPath.
	ResumeRun string

	// Config overrides the global config when set.
	Config *config.Config

	// StatsCallback receives every flushed window.
	StatsCallback func(telemetry.WindowStats)
}

// Simulation owns a grid, the forager world, and telemetry.
type Simulation struct {
	cfg  *config.Config
	grid *resource.Grid
	rng  *rand.Rand

	world    *ecs.World
	foraging *systems.ForagingSystem

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool

	// Persistence
	db    *persistence.DB
	runID string

	tick int32
}

// New creates a simulation, builds its grid, seeds it, and spawns foragers.
func New(opts Options) (*Simulation, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Run.Seed
	}

	statsWindow := opts.StatsWindow
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(seed))

	s := &Simulation{
		cfg:              cfg,
		grid:             cfg.NewGrid(),
		rng:              rng,
		world:            world,
		foraging:         systems.NewForagingSystem(world, rng, cfg.Foragers.MoveChance),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
	}

	if cfg.Seeding.Enabled {
		systems.SeedNoise(s.grid, cfg.Seeding, seed)
		// Listed cells add their initial amount on top of the noise
		if len(cfg.Resource.Cells) > 0 {
			s.grid.SetCellList(cfg.Resource.Cells)
		}
	}

	if cfg.Foragers.Count > 0 {
		s.foraging.Spawn(s.grid, cfg.Foragers.Count, cfg.Foragers.IntakeRate)
	}

	if opts.DBPath != "" {
		if err := s.openStore(opts.DBPath, opts.ResumeRun, seed); err != nil {
			return nil, err
		}
	} else if opts.ResumeRun != "" {
		return nil, fmt.Errorf("resume %q requires a database", opts.ResumeRun)
	}

	s.collector = telemetry.NewCollector(statsWindow, s.grid.SumAll())
	if s.tick > 0 {
		s.collector.StartAt(s.tick, s.collector.StartTotal())
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		s.closeStore()
		return nil, fmt.Errorf("creating output: %w", err)
	}
	s.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		s.closeStore()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	slog.Info("simulation created",
		"resource", cfg.Resource.Name,
		"width", s.grid.Width(),
		"height", s.grid.Height(),
		"geometry", s.grid.Geometry().String(),
		"cells", s.grid.Size(),
		"foragers", cfg.Foragers.Count,
		"seed", seed,
		"total", s.collector.StartTotal(),
		"run", s.runID,
		"tick", s.tick,
	)

	return s, nil
}

// Step advances the grid by one tick. Every exchange is staged as a pending
// delta before flow is computed, and all deltas commit together at the end.
func (s *Simulation) Step() {
	r := s.cfg.Resource
	g := s.grid
	pc := s.perfCollector

	pc.StartTick()

	pc.StartPhase(telemetry.PhaseSource)
	d0 := g.SumDelta()
	g.Source(r.Inflow)
	d1 := g.SumDelta()
	s.collector.RecordInflow(d1 - d0)

	pc.StartPhase(telemetry.PhaseSink)
	g.Sink(r.Outflow)
	d2 := g.SumDelta()
	s.collector.RecordOutflow(d1 - d2)

	pc.StartPhase(telemetry.PhaseCellFlow)
	g.CellInflow()
	d3 := g.SumDelta()
	s.collector.RecordInflow(d3 - d2)
	g.CellOutflow()
	s.collector.RecordOutflow(d3 - g.SumDelta())

	pc.StartPhase(telemetry.PhaseForaging)
	s.collector.RecordConsumed(s.foraging.Update(g))

	pc.StartPhase(telemetry.PhaseFlow)
	g.FlowAll()

	pc.StartPhase(telemetry.PhaseState)
	g.StateAll()

	s.tick++

	pc.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	pc.EndTick()
}

// Run steps until maxTicks is reached or ctx is cancelled.
// maxTicks <= 0 uses the configured run length; if that is also zero the
// run continues until ctx is done.
func (s *Simulation) Run(ctx context.Context, maxTicks int) error {
	if maxTicks <= 0 {
		maxTicks = s.cfg.Run.Ticks
	}

	for maxTicks <= 0 || int(s.tick) < maxTicks {
		select {
		case <-ctx.Done():
			slog.Info("simulation stopped", "tick", s.tick, "reason", ctx.Err())
			return ctx.Err()
		default:
		}
		s.Step()
	}

	slog.Info("max ticks reached", "tick", s.tick)
	return nil
}

// Close checkpoints the grid, writes the final snapshot, and closes output files.
func (s *Simulation) Close() error {
	var firstErr error
	if s.db != nil {
		if err := s.db.SaveGridState(s.runID, s.tick, s.grid); err != nil {
			firstErr = fmt.Errorf("checkpointing grid: %w", err)
		}
	}
	if err := s.closeStore(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.outputManager.WriteSnapshot("final_amounts.csv", s.grid.Amounts(), s.grid.Width()); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.outputManager.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// RunID returns the stored run's ID, or "" without a database.
func (s *Simulation) RunID() string {
	return s.runID
}

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// Grid returns the simulated grid.
func (s *Simulation) Grid() *resource.Grid {
	return s.grid
}

// ForagerCount returns the number of live foragers.
func (s *Simulation) ForagerCount() int {
	return s.foraging.Count()
}

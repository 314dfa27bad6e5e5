package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/rescount/config"
	"github.com/pthm-cable/rescount/sim"
	"github.com/pthm-cable/rescount/telemetry"
)

// FitnessEvaluator runs headless simulations and scores how close the
// steady-state mean level lands to a target.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int
	seeds       []int64
	baseConfig  *config.Config
	target      float64
	statsWindow int

	mu        sync.Mutex
	lastLevel float64 // mean level from most recent Evaluate call
	lastCV    float64 // coefficient of variation of that level across windows
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config, target float64) *FitnessEvaluator {
	statsWindow := maxTicks / 20
	if statsWindow < 1 {
		statsWindow = 1
	}
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		target:      target,
		statsWindow: statsWindow,
	}
}

// LastLevel returns the mean level and its window CV from the most recent evaluation.
func (fe *FitnessEvaluator) LastLevel() (level, cv float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastLevel, fe.lastCV
}

// Evaluate computes fitness for a raw parameter vector (lower = better):
// the squared distance between the seed-averaged steady-state mean level
// and the target.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	levels := make([]float64, len(fe.seeds))
	cvs := make([]float64, len(fe.seeds))

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows := fe.runSimulation(x, s)
			levels[idx], cvs[idx] = steadyLevel(windows)
		}(i, seed)
	}
	wg.Wait()

	level := stat.Mean(levels, nil)

	fe.mu.Lock()
	fe.lastLevel = level
	fe.lastCV = stat.Mean(cvs, nil)
	fe.mu.Unlock()

	if math.IsNaN(level) {
		return math.Inf(1)
	}
	d := level - fe.target
	return d * d
}

// runSimulation executes a single headless run and returns its windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) []telemetry.WindowStats {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	var windows []telemetry.WindowStats
	s, err := sim.New(sim.Options{
		Seed:        seed,
		StatsWindow: fe.statsWindow,
		Config:      cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil
	}
	defer s.Close()

	for int(s.Tick()) < fe.maxTicks {
		s.Step()
	}
	return windows
}

// copyConfig returns a copy of the base config safe to modify per run.
// Only scalar fields are changed by ApplyToConfig, so a shallow copy suffices.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// steadyLevel averages the per-cell mean over the second half of the
// windows and reports its coefficient of variation.
// Returns NaN when there are no windows.
func steadyLevel(windows []telemetry.WindowStats) (level, cv float64) {
	if len(windows) == 0 {
		return math.NaN(), 0
	}

	tail := windows[len(windows)/2:]
	means := make([]float64, len(tail))
	for i, w := range tail {
		means[i] = w.Mean
	}

	level, std := stat.PopMeanStdDev(means, nil)
	if level != 0 {
		cv = std / level
	}
	return level, cv
}

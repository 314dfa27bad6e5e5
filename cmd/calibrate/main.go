// Package main calibrates sink and diffusion coefficients so that a resource
// grid settles at a target mean level per cell.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/rescount/config"
)

// EvalRecord is one row of calibrate_log.csv.
type EvalRecord struct {
	Eval      int     `csv:"eval"`
	Fitness   float64 `csv:"fitness"`
	MeanLevel float64 `csv:"mean_level"`
	LevelCV   float64 `csv:"level_cv"`
	Outflow   float64 `csv:"outflow"`
	Diffuse   float64 `csv:"diffuse"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	target := flag.Float64("target", 1.0, "Target steady-state mean amount per cell")
	maxTicks := flag.Int("max-ticks", 2000, "Simulation length per evaluation in ticks")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Per-run lifecycle logs are noise here
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector(baseCfg)

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *maxTicks, evalSeeds, baseCfg, *target)

	initX := params.Normalize(params.DefaultVector())

	logPath := filepath.Join(*outputDir, "calibrate_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	headerWritten := false

	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			level, cv := evaluator.LastLevel()
			records := []EvalRecord{{
				Eval:      evalCount,
				Fitness:   fitness,
				MeanLevel: level,
				LevelCV:   cv,
				Outflow:   clamped[0],
				Diffuse:   clamped[1],
			}}
			if !headerWritten {
				err = gocsv.Marshal(records, logFile)
				headerWritten = true
			} else {
				err = gocsv.MarshalWithoutHeaders(records, logFile)
			}
			if err != nil {
				log.Printf("failed to write log row: %v", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

			fmt.Printf("Eval %d/%d: level=%.4f cv=%.3f fitness=%.6f (best=%.6f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, level, cv, fitness, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; seeds run in parallel inside Evaluate
	}

	fmt.Printf("Starting Nelder-Mead calibration with %d parameters, target=%.4f, max_evals=%d\n",
		params.Dim(), *target, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %s\n", *seeds, humanize.Comma(int64(*maxTicks)))

	result, err := optimize.Minimize(problem, initX, settings, &optimize.NelderMead{})
	if err != nil {
		log.Printf("calibration ended: %v", err)
	}

	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nCalibration complete after %d evaluations (%s simulated ticks) in %s\n",
		evalCount, humanize.Comma(int64(evalCount*(*seeds)*(*maxTicks))), formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.6f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s (%s): %.6f\n", spec.Name, spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}

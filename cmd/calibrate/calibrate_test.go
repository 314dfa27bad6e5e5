package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/rescount/config"
	"github.com/pthm-cable/rescount/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	base, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	pv := NewParamVector(base)

	if pv.Dim() != 2 {
		t.Fatalf("dim = %d, want 2", pv.Dim())
	}

	def := pv.DefaultVector()
	if def[0] != base.Resource.Outflow || def[1] != base.Resource.XDiffuse {
		t.Errorf("defaults = %v, want config values", def)
	}

	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-12 {
			t.Errorf("param %d: %v round-tripped to %v", i, def[i], back[i])
		}
	}
}

func TestParamVectorApplyClamps(t *testing.T) {
	base, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	pv := NewParamVector(base)

	pv.ApplyToConfig(base, []float64{10, 0.5})

	if base.Resource.Outflow != pv.Specs[0].Max {
		t.Errorf("outflow = %v, want clamped to %v", base.Resource.Outflow, pv.Specs[0].Max)
	}
	if base.Resource.XDiffuse != 0.5 || base.Resource.YDiffuse != 0.5 {
		t.Errorf("diffuse = %v/%v, want 0.5/0.5", base.Resource.XDiffuse, base.Resource.YDiffuse)
	}
}

func TestSteadyLevelUsesSecondHalf(t *testing.T) {
	windows := []telemetry.WindowStats{
		{Mean: 10}, {Mean: 10}, {Mean: 2}, {Mean: 2},
	}
	level, cv := steadyLevel(windows)
	if level != 2 {
		t.Errorf("level = %v, want 2", level)
	}
	if cv != 0 {
		t.Errorf("cv = %v, want 0", cv)
	}

	if level, _ := steadyLevel(nil); !math.IsNaN(level) {
		t.Errorf("empty windows level = %v, want NaN", level)
	}
}

func TestEvaluateScoresDistanceToTarget(t *testing.T) {
	// Closed uniform field: only the sink changes the level
	path := filepath.Join(t.TempDir(), "base.yaml")
	yaml := `
world: {width: 6, height: 6, geometry: torus}
resource:
  initial: 3
  inflow: 0
  inflow_rect: null
  outflow_rect: {x1: 0, y1: 0, x2: 5, y2: 5}
foragers: {count: 0}
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	base, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	pv := NewParamVector(base)
	fe := NewFitnessEvaluator(pv, 40, []int64{1, 2}, base, 2)

	// Outflow is clamped to its lower bound, so expect a slight drain
	fitness := fe.Evaluate([]float64{0, 1})
	level, _ := fe.LastLevel()

	if level >= 3 || level < 2.8 {
		t.Errorf("level = %v, want just under 3", level)
	}
	if want := (level - 2) * (level - 2); math.Abs(fitness-want) > 1e-12 {
		t.Errorf("fitness = %v, want %v", fitness, want)
	}
}

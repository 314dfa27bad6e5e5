package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/rescount/resource"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.World.Width != 60 || cfg.World.Height != 60 {
		t.Errorf("expected 60x60 world, got %dx%d", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Derived.Geometry != resource.GeometryTorus {
		t.Errorf("expected torus geometry, got %v", cfg.Derived.Geometry)
	}
	if cfg.Derived.Box != resource.FullBox(60, 60) {
		t.Errorf("expected full-world placement, got %+v", cfg.Derived.Box)
	}
	want := resource.Rect{X1: 25, Y1: 25, X2: 34, Y2: 34}
	if cfg.Derived.InflowRect != want {
		t.Errorf("inflow rect = %+v, want %+v", cfg.Derived.InflowRect, want)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cells.csv", "cell_id,initial,inflow,outflow\n5,2.5,0.1,0.05\n7,1,0,0.5\n")
	path := writeFile(t, dir, "run.yaml", `
world:
  width: 10
  height: 8
  geometry: bounded
placement:
  x: 2
  y: 1
  width: 5
  height: 4
resource:
  outflow_rect: null
  x_gravity: 0.25
  cells_file: cells.csv
  cells:
    - cell_id: 1
      initial: 3
      inflow: 0.5
      outflow: 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Derived.Geometry != resource.GeometryGrid {
		t.Errorf("expected grid geometry, got %v", cfg.Derived.Geometry)
	}
	wantBox := resource.Box{X: 2, Y: 1, Width: 5, Height: 4, WorldX: 10}
	if cfg.Derived.Box != wantBox {
		t.Errorf("box = %+v, want %+v", cfg.Derived.Box, wantBox)
	}
	if cfg.Derived.OutflowRect.IsSet() {
		t.Errorf("expected outflow rect to be unset, got %+v", cfg.Derived.OutflowRect)
	}
	if cfg.Resource.XGravity != 0.25 {
		t.Errorf("x_gravity = %v, want 0.25", cfg.Resource.XGravity)
	}
	// Unspecified fields keep their defaults
	if cfg.Resource.XDiffuse != 1.0 {
		t.Errorf("x_diffuse = %v, want default 1.0", cfg.Resource.XDiffuse)
	}

	if len(cfg.Resource.Cells) != 3 {
		t.Fatalf("expected 3 cells (1 inline + 2 csv), got %d", len(cfg.Resource.Cells))
	}
	if c := cfg.Resource.Cells[1]; c.ID != 5 || c.Initial != 2.5 || c.Outflow != 0.05 {
		t.Errorf("unexpected csv cell %+v", c)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad geometry", "world:\n  geometry: hex\n", "geometry"},
		{"bad size", "world:\n  width: 0\n", "world size"},
		{"placement overflow", "placement:\n  x: 50\n  width: 20\n  height: 5\n", "placement"},
		{"bad yaml", "world: [\n", "parsing config file"},
		{"missing cells file", "resource:\n  cells_file: nope.csv\n", "cell list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "cfg.yaml", tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadCellList(t *testing.T) {
	cells, err := LoadCellList(strings.NewReader("cell_id,initial,inflow,outflow\n0,1,2,0.5\n"))
	if err != nil {
		t.Fatalf("LoadCellList: %v", err)
	}
	want := resource.CellResource{ID: 0, Initial: 1, Inflow: 2, Outflow: 0.5}
	if len(cells) != 1 || cells[0] != want {
		t.Errorf("cells = %+v, want [%+v]", cells, want)
	}

	if _, err := LoadCellList(strings.NewReader("cell_id,initial\nx,1\n")); err == nil {
		t.Error("expected parse error for non-numeric id")
	}
}

func TestNewGrid(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	cfg.Resource.Initial = 0.5
	cfg.Resource.Cells = []resource.CellResource{{ID: 0, Initial: 2}}

	g := cfg.NewGrid()
	if g.Size() != 3600 {
		t.Fatalf("expected 3600 cells, got %d", g.Size())
	}
	if got := g.GetAmount(0); got != 2.5 {
		t.Errorf("cell 0 = %v, want baseline 0.5 + listed 2", got)
	}
	if got := g.GetAmount(1); got != 0.5 {
		t.Errorf("cell 1 = %v, want baseline 0.5", got)
	}
	if g.Inflow() != cfg.Derived.InflowRect {
		t.Errorf("inflow = %+v, want %+v", g.Inflow(), cfg.Derived.InflowRect)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	cfg.Resource.YGravity = -0.5

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if loaded.Resource.YGravity != -0.5 {
		t.Errorf("y_gravity = %v, want -0.5", loaded.Resource.YGravity)
	}
	if loaded.Derived != cfg.Derived {
		t.Errorf("derived mismatch: %+v vs %+v", loaded.Derived, cfg.Derived)
	}
}

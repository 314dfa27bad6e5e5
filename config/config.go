// Package config provides configuration loading and access for a resource run.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/rescount/resource"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all run configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Placement PlacementConfig `yaml:"placement"`
	Resource  ResourceConfig  `yaml:"resource"`
	Seeding   SeedingConfig   `yaml:"seeding"`
	Foragers  ForagerConfig   `yaml:"foragers"`
	Run       RunConfig       `yaml:"run"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world dimensions and boundary topology.
type WorldConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Geometry string `yaml:"geometry"` // global, grid (bounded), torus (wrapping)
}

// PlacementConfig is the sub-rectangle of the world the resource occupies.
// Zero width or height means the full world.
type PlacementConfig struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// RectConfig is an inclusive rectangle; x2 < x1 or y2 < y1 wraps.
type RectConfig struct {
	X1 int `yaml:"x1"`
	Y1 int `yaml:"y1"`
	X2 int `yaml:"x2"`
	Y2 int `yaml:"y2"`
}

// ResourceConfig describes the single spatial resource.
type ResourceConfig struct {
	Name        string      `yaml:"name"`
	Initial     float64     `yaml:"initial"`      // Baseline amount per cell
	Inflow      float64     `yaml:"inflow"`       // Total spread over inflow_rect per step
	Outflow     float64     `yaml:"outflow"`      // Fraction removed from outflow_rect per step
	InflowRect  *RectConfig `yaml:"inflow_rect"`  // nil disables Source
	OutflowRect *RectConfig `yaml:"outflow_rect"` // nil disables Sink
	XDiffuse    float64     `yaml:"x_diffuse"`
	YDiffuse    float64     `yaml:"y_diffuse"`
	XGravity    float64     `yaml:"x_gravity"`
	YGravity    float64     `yaml:"y_gravity"`

	// Individually configured cells. CellsFile is a CSV with columns
	// cell_id, initial, inflow, outflow; its rows follow the inline Cells.
	CellsFile string                  `yaml:"cells_file"`
	Cells     []resource.CellResource `yaml:"cells"`
}

// SeedingConfig holds noise parameters for the initial distribution.
type SeedingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Scale       float64 `yaml:"scale"`       // Cells per noise period
	Octaves     int     `yaml:"octaves"`     // fBm octaves
	Persistence float64 `yaml:"persistence"` // Amplitude multiplier per octave
	Amplitude   float64 `yaml:"amplitude"`   // Maximum seeded amount per cell
}

// ForagerConfig holds parameters for agents drawing resource from cells.
type ForagerConfig struct {
	Count      int     `yaml:"count"`
	IntakeRate float64 `yaml:"intake_rate"` // Amount requested per step
	MoveChance float64 `yaml:"move_chance"` // Probability of stepping to a neighbor each step
}

// RunConfig holds run length and RNG seed.
type RunConfig struct {
	Ticks int   `yaml:"ticks"`
	Seed  int64 `yaml:"seed"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Ticks per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Geometry    resource.Geometry
	Box         resource.Box
	InflowRect  resource.Rect
	OutflowRect resource.Rect
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.Resource.CellsFile != "" {
		cellsPath := cfg.Resource.CellsFile
		if !filepath.IsAbs(cellsPath) && path != "" {
			cellsPath = filepath.Join(filepath.Dir(path), cellsPath)
		}
		cells, err := LoadCellListFile(cellsPath)
		if err != nil {
			return nil, err
		}
		cfg.Resource.Cells = append(cfg.Resource.Cells, cells...)
		cfg.Resource.CellsFile = ""
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// computeDerived validates the loaded config and fills Derived.
func (c *Config) computeDerived() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size %dx%d must be positive", c.World.Width, c.World.Height)
	}

	geom, err := resource.ParseGeometry(c.World.Geometry)
	if err != nil {
		return fmt.Errorf("world geometry: %w", err)
	}
	c.Derived.Geometry = geom

	// Placement defaults to the whole world
	p := c.Placement
	if p.Width == 0 || p.Height == 0 {
		p = PlacementConfig{Width: c.World.Width, Height: c.World.Height}
	}
	if p.X < 0 || p.Y < 0 || p.Width < 0 || p.Height < 0 ||
		p.X+p.Width > c.World.Width || p.Y+p.Height > c.World.Height {
		return fmt.Errorf("placement %+v does not fit world %dx%d", c.Placement, c.World.Width, c.World.Height)
	}
	c.Derived.Box = resource.Box{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height, WorldX: c.World.Width}

	c.Derived.InflowRect = c.Resource.InflowRect.rect()
	c.Derived.OutflowRect = c.Resource.OutflowRect.rect()

	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 1
	}
	return nil
}

// rect converts to a resource.Rect; nil yields the unset sentinel.
func (r *RectConfig) rect() resource.Rect {
	if r == nil {
		return resource.UnsetRect()
	}
	return resource.Rect{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2}
}

// NewGrid builds a resource grid from the resource and world sections.
// The grid borrows c.Resource.Cells as its descriptor list.
func (c *Config) NewGrid() *resource.Grid {
	r := c.Resource
	g := resource.NewGridWithFlow(c.World.Width, c.World.Height, c.Derived.Geometry,
		r.XDiffuse, r.YDiffuse, r.XGravity, r.YGravity)
	g.ResizeClear(c.World.Width, c.World.Height, c.Derived.Geometry, c.Derived.Box)
	g.SetInflow(c.Derived.InflowRect)
	g.SetOutflow(c.Derived.OutflowRect)
	g.SetInitial(r.Initial)
	g.ResetResourceCounts()
	if len(r.Cells) > 0 {
		g.SetCellList(r.Cells)
	}
	return g
}

// YAML returns the configuration serialized as YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

package systems

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/rescount/config"
	"github.com/pthm-cable/rescount/resource"
)

// SeedNoise overwrites every cell in the grid's placement box with fractal
// OpenSimplex noise scaled to [0, Amplitude). Cells outside the box are
// left alone.
func SeedNoise(g *resource.Grid, cfg config.SeedingConfig, seed int64) {
	noise := opensimplex.NewNormalized(seed)

	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	octaves := cfg.Octaves
	if octaves < 1 {
		octaves = 1
	}

	box := g.Box()
	for yy := 0; yy < box.Height; yy++ {
		for xx := 0; xx < box.Width; xx++ {
			v := octaveNoise(noise, float64(box.X+xx), float64(box.Y+yy), octaves, 1/scale, cfg.Persistence)
			g.SetCellAmount(box.Index(xx, yy), v*cfg.Amplitude)
		}
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rescount/components"
	"github.com/pthm-cable/rescount/resource"
)

// ForagingSystem moves foragers along the grid's neighbor links and stages
// their consumption as negative rates on the cells they occupy.
type ForagingSystem struct {
	filter ecs.Filter2[components.Position, components.Forager]
	mapper *ecs.Map2[components.Position, components.Forager]

	rng        *rand.Rand
	moveChance float64

	// Per-cell amount already claimed this step
	claimed []float64
}

// NewForagingSystem creates a new foraging system.
func NewForagingSystem(w *ecs.World, rng *rand.Rand, moveChance float64) *ForagingSystem {
	return &ForagingSystem{
		filter:     *ecs.NewFilter2[components.Position, components.Forager](w),
		mapper:     ecs.NewMap2[components.Position, components.Forager](w),
		rng:        rng,
		moveChance: moveChance,
	}
}

// SpawnAt creates a forager at world coordinate (x, y).
func (s *ForagingSystem) SpawnAt(x, y int, intakeRate float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	f := components.Forager{IntakeRate: intakeRate}
	return s.mapper.NewEntity(&pos, &f)
}

// Spawn scatters n foragers uniformly over the grid's placement box.
func (s *ForagingSystem) Spawn(g *resource.Grid, n int, intakeRate float64) {
	box := g.Box()
	for i := 0; i < n; i++ {
		x := box.X + s.rng.Intn(box.Width)
		y := box.Y + s.rng.Intn(box.Height)
		s.SpawnAt(x, y, intakeRate)
	}
}

// Update moves every forager, then stages its intake on the grid.
// Intake is limited to what the cell holds after removals already pending
// this step (sink, cell outflow, other foragers), so consumption never
// drives a cell below zero. Returns the total amount staged for removal.
func (s *ForagingSystem) Update(g *resource.Grid) float64 {
	if len(s.claimed) != g.Size() {
		s.claimed = make([]float64, g.Size())
	} else {
		clear(s.claimed)
	}

	var consumed float64
	query := s.filter.Query()
	for query.Next() {
		pos, f := query.Get()

		if s.moveChance > 0 && s.rng.Float64() < s.moveChance {
			s.move(g, pos)
		}

		i := pos.Y*g.Width() + pos.X
		avail := g.GetAmount(i) - s.claimed[i]
		if d := g.Cell(i).Delta() + s.claimed[i]; d < 0 {
			avail += d
		}
		take := f.IntakeRate
		if take > avail {
			take = avail
		}
		if take < 0 {
			take = 0
		}

		s.claimed[i] += take
		g.Rate(i, -take)

		f.Intake = take
		f.Total += take
		consumed += take
	}
	return consumed
}

// move steps pos along a random adjacency slot. Severed slots keep the
// forager in place, so bounded grids hold foragers at their edges.
func (s *ForagingSystem) move(g *resource.Grid, pos *components.Position) {
	i := pos.Y*g.Width() + pos.X
	l := g.Cell(i).Link(s.rng.Intn(resource.NumLinks))
	if !l.Valid() {
		return
	}
	pos.X = l.Target % g.Width()
	pos.Y = l.Target / g.Width()
}

// Count returns the number of foragers.
func (s *ForagingSystem) Count() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

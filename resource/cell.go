// Package resource implements a spatially-resolved diffusible resource on a
// 2-D lattice: cells linked to their 8 neighbors, two-phase rate/state
// updates, diffusion and gravity flow, and rectangular or per-cell inflow
// and outflow.
package resource

import "math"

// None is the sentinel returned by GetAmount for coordinates outside the
// grid, and the marker for unset rectangle corners.
const None = -99

// NoNeighbor marks an adjacency slot that has no target cell.
const NoNeighbor = -1

// NumLinks is the number of adjacency slots per cell.
const NumLinks = 8

// Adjacency slots, clockwise from up-left.
//
//	0 1 2
//	7   3
//	6 5 4
const (
	SlotUpLeft = iota
	SlotUp
	SlotUpRight
	SlotRight
	SlotDownRight
	SlotDown
	SlotDownLeft
	SlotLeft
)

var sqrt2 = math.Sqrt(2)

// slotOffsets holds the fixed column/row offset and distance weight of each slot.
var slotOffsets = [NumLinks]struct {
	dx, dy int
	dist   float64
}{
	SlotUpLeft:    {-1, -1, sqrt2},
	SlotUp:        {0, -1, 1},
	SlotUpRight:   {+1, -1, sqrt2},
	SlotRight:     {+1, 0, 1},
	SlotDownRight: {+1, +1, sqrt2},
	SlotDown:      {0, +1, 1},
	SlotDownLeft:  {-1, +1, sqrt2},
	SlotLeft:      {-1, 0, 1},
}

// Link is a directed adjacency from one cell to a neighbor.
// DX is the column offset, DY the row offset.
type Link struct {
	Target int
	DX, DY int
	Dist   float64
}

// noLink is the severed slot: sentinel target, all other fields absent.
var noLink = Link{Target: NoNeighbor}

// Valid reports whether the link points at a cell.
func (l Link) Valid() bool {
	return l.Target >= 0
}

// Cell is a single lattice site.
// Changes accumulate in delta and only reach amount on state.
type Cell struct {
	amount  float64
	delta   float64
	initial float64
	links   [NumLinks]Link
}

// Amount returns the committed resource quantity.
func (c Cell) Amount() float64 { return c.amount }

// Delta returns the pending change not yet folded into Amount.
func (c Cell) Delta() float64 { return c.delta }

// Initial returns the cell's reset target.
func (c Cell) Initial() float64 { return c.initial }

// Link returns adjacency slot k.
func (c Cell) Link(k int) Link { return c.links[k] }

func (c *Cell) rate(d float64) {
	c.delta += d
}

// state folds the pending delta into amount, clamping at zero.
func (c *Cell) state() {
	c.amount += c.delta
	if c.amount < 0 {
		c.amount = 0
	}
	c.delta = 0
}

func (c *Cell) setLink(k, target int) {
	o := slotOffsets[k]
	c.links[k] = Link{Target: target, DX: o.dx, DY: o.dy, Dist: o.dist}
}

func (c *Cell) clearLink(k int) {
	c.links[k] = noLink
}

func (c *Cell) clearLinks() {
	for k := range c.links {
		c.links[k] = noLink
	}
}

func (c *Cell) reset(initial float64) {
	c.amount = initial
	c.delta = 0
}

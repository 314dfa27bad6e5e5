package resource

import "fmt"

// Grid owns every cell of one spatial resource and the adjacency graph
// between them. It is not safe for concurrent use: callers must serialize
// ResizeClear against per-step updates.
type Grid struct {
	worldX, worldY int
	numCells       int
	geometry       Geometry
	box            Box

	cells []Cell

	xdiffuse, ydiffuse float64
	xgravity, ygravity float64

	// Rectangles as supplied, and normalized against the current world.
	inflowRaw, outflowRaw Rect
	inflow, outflow       Rect

	// initial is the baseline restored by ResetResourceCounts.
	initial float64

	// cellList is borrowed from the caller; the grid never mutates it.
	cellList []CellResource
}

// NewGrid creates a grid covering the whole world with the default flow
// coefficients (diffusion 1 on both axes, no gravity).
func NewGrid(worldX, worldY int, geometry Geometry) *Grid {
	return NewGridWithFlow(worldX, worldY, geometry, 1.0, 1.0, 0.0, 0.0)
}

// NewGridWithFlow creates a grid covering the whole world with explicit
// diffusion and gravity coefficients.
func NewGridWithFlow(worldX, worldY int, geometry Geometry, xdiffuse, ydiffuse, xgravity, ygravity float64) *Grid {
	g := &Grid{
		xdiffuse: xdiffuse,
		ydiffuse: ydiffuse,
		xgravity: xgravity,
		ygravity: ygravity,
		inflowRaw:  unsetRect,
		outflowRaw: unsetRect,
	}
	g.ResizeClear(worldX, worldY, geometry, FullBox(worldX, worldY))
	return g
}

// ResizeClear discards every cell and rebuilds the grid for new world
// dimensions, topology, and placement box. A zero Box means the full world.
// Rectangles, flow coefficients, and the cell list survive; the rectangles
// are renormalized from their supplied corners against the new world size.
func (g *Grid) ResizeClear(worldX, worldY int, geometry Geometry, box Box) {
	if worldX <= 0 || worldY <= 0 {
		panic(fmt.Sprintf("resource: invalid world size %dx%d", worldX, worldY))
	}
	if box == (Box{}) {
		box = FullBox(worldX, worldY)
	}
	if box.WorldX == 0 {
		box.WorldX = worldX
	}
	if box.X < 0 || box.Y < 0 || box.Width <= 0 || box.Height <= 0 ||
		box.WorldX != worldX || box.X+box.Width > worldX || box.Y+box.Height > worldY {
		panic(fmt.Sprintf("resource: placement box %+v does not fit world %dx%d", box, worldX, worldY))
	}

	g.worldX = worldX
	g.worldY = worldY
	g.numCells = worldX * worldY
	g.geometry = geometry
	g.box = box
	g.cells = make([]Cell, g.numCells)

	g.inflow = g.normalizeRect(g.inflowRaw)
	g.outflow = g.normalizeRect(g.outflowRaw)

	g.setLinks()
}

// SetFlow replaces the diffusion and gravity coefficients.
func (g *Grid) SetFlow(xdiffuse, ydiffuse, xgravity, ygravity float64) {
	g.xdiffuse = xdiffuse
	g.ydiffuse = ydiffuse
	g.xgravity = xgravity
	g.ygravity = ygravity
}

// Flow returns the diffusion and gravity coefficients.
func (g *Grid) Flow() (xdiffuse, ydiffuse, xgravity, ygravity float64) {
	return g.xdiffuse, g.ydiffuse, g.xgravity, g.ygravity
}

// SetInitial sets the baseline used by ResetResourceCounts.
func (g *Grid) SetInitial(initial float64) { g.initial = initial }

// Initial returns the baseline used by ResetResourceCounts.
func (g *Grid) Initial() float64 { return g.initial }

// Size returns the number of cells.
func (g *Grid) Size() int { return g.numCells }

// Width returns the world width.
func (g *Grid) Width() int { return g.worldX }

// Height returns the world height.
func (g *Grid) Height() int { return g.worldY }

// Geometry returns the boundary topology.
func (g *Grid) Geometry() Geometry { return g.geometry }

// Box returns the placement box.
func (g *Grid) Box() Box { return g.box }

// Cell returns a copy of cell i. It panics if i is out of range.
func (g *Grid) Cell(i int) Cell {
	g.mustIndex("Cell", i)
	return g.cells[i]
}

// Amounts returns a snapshot of every cell's committed amount.
func (g *Grid) Amounts() []float64 {
	out := make([]float64, g.numCells)
	for i := range g.cells {
		out[i] = g.cells[i].amount
	}
	return out
}

func (g *Grid) validIndex(i int) bool {
	return i >= 0 && i < g.numCells
}

func (g *Grid) validXY(x, y int) bool {
	return x >= 0 && x < g.worldX && y >= 0 && y < g.worldY
}

func (g *Grid) mustIndex(op string, i int) {
	if !g.validIndex(i) {
		panic(fmt.Sprintf("resource: %s: cell index %d out of range [0,%d)", op, i, g.numCells))
	}
}

func (g *Grid) mustXY(op string, x, y int) int {
	if !g.validXY(x, y) {
		panic(fmt.Sprintf("resource: %s: coordinate (%d,%d) outside %dx%d world", op, x, y, g.worldX, g.worldY))
	}
	return y*g.worldX + x
}

func modInt(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

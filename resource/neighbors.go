package resource

// gridNeighbor returns the index of the cell (dx, dy) away from id,
// wrapping around the full world.
func gridNeighbor(id, worldX, worldY, dx, dy int) int {
	x := modInt(id%worldX+dx, worldX)
	y := modInt(id/worldX+dy, worldY)
	return y*worldX + x
}

// setLinks rebuilds every adjacency slot from scratch. It is idempotent.
func (g *Grid) setLinks() {
	for i := range g.cells {
		g.cells[i].clearLinks()
	}

	// A well-mixed resource has no spatial connectivity.
	if g.geometry == GeometryGlobal {
		return
	}

	b := g.box
	for yy := 0; yy < b.Height; yy++ {
		for xx := 0; xx < b.Width; xx++ {
			id := b.Index(xx, yy)
			c := &g.cells[id]
			for k := 0; k < NumLinks; k++ {
				o := slotOffsets[k]
				c.setLink(k, gridNeighbor(id, g.worldX, g.worldY, o.dx, o.dy))
			}
		}
	}

	top := []int{SlotUpLeft, SlotUp, SlotUpRight}
	bottom := []int{SlotDownLeft, SlotDown, SlotDownRight}
	left := []int{SlotUpLeft, SlotLeft, SlotDownLeft}
	right := []int{SlotUpRight, SlotRight, SlotDownRight}

	for xx := 0; xx < b.Width; xx++ {
		g.fixEdge(xx, 0, top)
		g.fixEdge(xx, b.Height-1, bottom)
	}
	for yy := 0; yy < b.Height; yy++ {
		g.fixEdge(0, yy, left)
		g.fixEdge(b.Width-1, yy, right)
	}
}

// fixEdge severs or rewraps the given slots of the box-relative cell (xx, yy).
func (g *Grid) fixEdge(xx, yy int, slots []int) {
	c := &g.cells[g.box.Index(xx, yy)]
	for _, k := range slots {
		if g.geometry == GeometryGrid {
			c.clearLink(k)
			continue
		}
		o := slotOffsets[k]
		c.setLink(k, g.boxNeighbor(xx, yy, o.dx, o.dy))
	}
}

// boxNeighbor returns the index of the cell (dx, dy) away from box-relative
// (xx, yy), wrapping around the edges of the placement box.
func (g *Grid) boxNeighbor(xx, yy, dx, dy int) int {
	b := g.box
	return b.Index(modInt(xx+dx, b.Width), modInt(yy+dy, b.Height))
}

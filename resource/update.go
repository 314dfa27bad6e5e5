package resource

// Rate adds d to the pending delta of cell i. It panics if i is out of range.
func (g *Grid) Rate(i int, d float64) {
	g.mustIndex("Rate", i)
	g.cells[i].rate(d)
}

// RateXY adds d to the pending delta of the cell at (x, y).
// It panics if the coordinate is outside the world.
func (g *Grid) RateXY(x, y int, d float64) {
	g.cells[g.mustXY("RateXY", x, y)].rate(d)
}

// RateAll adds d to the pending delta of every cell.
func (g *Grid) RateAll(d float64) {
	for i := range g.cells {
		g.cells[i].rate(d)
	}
}

// State folds the pending delta of cell i into its amount.
// It panics if i is out of range.
func (g *Grid) State(i int) {
	g.mustIndex("State", i)
	g.cells[i].state()
}

// StateXY folds the pending delta of the cell at (x, y) into its amount.
func (g *Grid) StateXY(x, y int) {
	g.cells[g.mustXY("StateXY", x, y)].state()
}

// StateAll folds every pending delta into its cell's amount.
func (g *Grid) StateAll() {
	for i := range g.cells {
		g.cells[i].state()
	}
}

// GetAmount returns the committed amount of cell i, or None when i is out
// of range.
func (g *Grid) GetAmount(i int) float64 {
	if !g.validIndex(i) {
		return None
	}
	return g.cells[i].amount
}

// GetAmountXY returns the committed amount at (x, y), or None when the
// coordinate is outside the world.
func (g *Grid) GetAmountXY(x, y int) float64 {
	if !g.validXY(x, y) {
		return None
	}
	return g.cells[y*g.worldX+x].amount
}

// SetCellAmount overwrites the amount of cell i. Invalid ids are ignored.
func (g *Grid) SetCellAmount(i int, amount float64) {
	if g.validIndex(i) {
		g.cells[i].amount = amount
	}
}

// SumAll returns the total committed amount across all cells.
func (g *Grid) SumAll() float64 {
	var sum float64
	for i := 0; i < g.numCells; i++ {
		if a := g.GetAmount(i); a != None {
			sum += a
		}
	}
	return sum
}

// SumDelta returns the total of pending deltas not yet committed by State.
func (g *Grid) SumDelta() float64 {
	var sum float64
	for i := range g.cells {
		sum += g.cells[i].delta
	}
	return sum
}

// ResetResourceCounts restores every cell in the placement box to the
// baseline and discards pending deltas.
func (g *Grid) ResetResourceCounts() {
	b := g.box
	for yy := 0; yy < b.Height; yy++ {
		for xx := 0; xx < b.Width; xx++ {
			g.cells[b.Index(xx, yy)].reset(g.initial)
		}
	}
}

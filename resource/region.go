package resource

// Rect is an inclusive axis-aligned region given by two corners. The second
// corner may be smaller than the first, in which case the region wraps past
// the world edge.
type Rect struct {
	X1, Y1 int
	X2, Y2 int
}

var unsetRect = Rect{X1: None, Y1: None, X2: None, Y2: None}

// UnsetRect returns the sentinel rectangle that disables Source or Sink.
func UnsetRect() Rect { return unsetRect }

// IsSet reports whether no corner carries the None sentinel.
func (r Rect) IsSet() bool {
	return r.X1 != None && r.Y1 != None && r.X2 != None && r.Y2 != None
}

// Cells returns the number of cells the rectangle covers.
func (r Rect) Cells() int {
	if !r.IsSet() {
		return 0
	}
	return (r.Y2 - r.Y1 + 1) * (r.X2 - r.X1 + 1)
}

// SetInflow sets the region Source spreads over.
func (g *Grid) SetInflow(r Rect) {
	g.inflowRaw = r
	g.inflow = g.normalizeRect(r)
}

// SetOutflow sets the region Sink drains.
func (g *Grid) SetOutflow(r Rect) {
	g.outflowRaw = r
	g.outflow = g.normalizeRect(r)
}

// Inflow returns the normalized inflow rectangle.
func (g *Grid) Inflow() Rect { return g.inflow }

// Outflow returns the normalized outflow rectangle.
func (g *Grid) Outflow() Rect { return g.outflow }

// normalizeRect clamps each corner into [0, world] and unwraps a second
// corner that lies before the first by adding the world extent.
func (g *Grid) normalizeRect(r Rect) Rect {
	if !r.IsSet() {
		return unsetRect
	}
	r.X1 = clampInt(r.X1, 0, g.worldX)
	r.X2 = clampInt(r.X2, 0, g.worldX)
	r.Y1 = clampInt(r.Y1, 0, g.worldY)
	r.Y2 = clampInt(r.Y2, 0, g.worldY)

	if r.X2 < r.X1 {
		r.X2 += g.worldX
	}
	if r.Y2 < r.Y1 {
		r.Y2 += g.worldY
	}
	return r
}

// eachInRect calls fn with the cell index of every covered coordinate,
// reduced modulo the world size.
func (g *Grid) eachInRect(r Rect, fn func(i int)) {
	for y := r.Y1; y <= r.Y2; y++ {
		for x := r.X1; x <= r.X2; x++ {
			fn(modInt(y, g.worldY)*g.worldX + modInt(x, g.worldX))
		}
	}
}

// Source spreads amount evenly over the inflow rectangle as pending deltas.
// It does nothing when the inflow rectangle is unset.
func (g *Grid) Source(amount float64) {
	if !g.inflow.IsSet() {
		return
	}
	share := amount / float64(g.inflow.Cells())
	g.eachInRect(g.inflow, func(i int) {
		g.Rate(i, share)
	})
}

// Sink stages removal of the fraction decay of each cell's current amount
// inside the outflow rectangle. Removal never exceeds the amount present.
// It does nothing when the outflow rectangle is unset.
func (g *Grid) Sink(decay float64) {
	if !g.outflow.IsSet() {
		return
	}
	g.eachInRect(g.outflow, func(i int) {
		g.Rate(i, -removal(g.GetAmount(i), decay))
	})
}

// removal is the share of amount taken by fraction, clamped to [0, amount].
func removal(amount, fraction float64) float64 {
	d := amount * fraction
	if d < 0 {
		return 0
	}
	if d > amount {
		return amount
	}
	return d
}

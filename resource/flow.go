package resource

import "math"

// FlowAll stages diffusion and gravity transfers between every pair of
// linked cells. Only slots right through down-left are visited so each
// undirected edge is counted once. Results land in the delta buffer and
// need a StateAll to become visible.
func (g *Grid) FlowAll() {
	if g.xdiffuse == 0 && g.ydiffuse == 0 && g.xgravity == 0 && g.ygravity == 0 {
		return
	}

	for i := 0; i < g.numCells; i++ {
		for k := SlotRight; k <= SlotDownLeft; k++ {
			l := g.cells[i].links[k]
			if !l.Valid() {
				continue
			}
			g.flowMatter(&g.cells[i], &g.cells[l.Target], l)
		}
	}
}

// flowMatter moves matter from a toward b along link l. The flow equalizes
// concentration (diffusion), biases along the gravity vector, and is scaled
// down by the number of axes crossed and the link distance. Whatever leaves
// a enters b.
func (g *Grid) flowMatter(a, b *Cell, l Link) {
	if a.amount == 0 && b.amount == 0 {
		return
	}
	diff := a.amount - b.amount

	var xdiffuse, xgravity float64
	if l.DX != 0 {
		xgravity = gravityTerm(l.DX, g.xgravity, a.amount, b.amount)
		// Half the difference, spread over four directions.
		xdiffuse = g.xdiffuse * diff / 16.0
	}

	var ydiffuse, ygravity float64
	if l.DY != 0 {
		ygravity = gravityTerm(l.DY, g.ygravity, a.amount, b.amount)
		ydiffuse = g.ydiffuse * diff / 16.0
	}

	axes := math.Abs(float64(l.DX)) + math.Abs(float64(l.DY))
	flow := ((xdiffuse + ydiffuse + xgravity + ygravity) / axes) / l.Dist

	a.rate(-flow)
	b.rate(flow)
}

// gravityTerm pulls matter out of a when the link points along the gravity
// direction, and out of b otherwise.
func gravityTerm(dist int, gravity, a, b float64) float64 {
	if (dist > 0 && gravity > 0) || (dist < 0 && gravity < 0) {
		return a * math.Abs(gravity) / 3.0
	}
	return -b * math.Abs(gravity) / 3.0
}

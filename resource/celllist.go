package resource

// CellResource configures one individually placed cell of a resource.
type CellResource struct {
	ID      int     `csv:"cell_id" yaml:"cell_id"`
	Initial float64 `csv:"initial" yaml:"initial"`
	Inflow  float64 `csv:"inflow" yaml:"inflow"`
	Outflow float64 `csv:"outflow" yaml:"outflow"`
}

// SetCellList borrows list for CellInflow and CellOutflow and seeds every
// listed cell with its initial amount. The grid keeps the slice without
// copying and never modifies it; the caller must not resize it while set.
// Records whose id is outside [0, Size()) are skipped.
func (g *Grid) SetCellList(list []CellResource) {
	g.cellList = list
	for _, cr := range list {
		if !g.validIndex(cr.ID) {
			continue
		}
		g.Rate(cr.ID, cr.Initial)
		g.State(cr.ID)
		g.cells[cr.ID].initial = cr.Initial
	}
}

// CellList returns the borrowed descriptor list.
func (g *Grid) CellList() []CellResource { return g.cellList }

// CellInflow stages each listed cell's inflow rate.
func (g *Grid) CellInflow() {
	for _, cr := range g.cellList {
		if !g.validIndex(cr.ID) {
			continue
		}
		g.Rate(cr.ID, cr.Inflow)
	}
}

// CellOutflow stages removal of each listed cell's outflow fraction of its
// current amount.
func (g *Grid) CellOutflow() {
	for _, cr := range g.cellList {
		if !g.validIndex(cr.ID) {
			continue
		}
		g.Rate(cr.ID, -removal(g.GetAmount(cr.ID), cr.Outflow))
	}
}

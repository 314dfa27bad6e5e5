package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridBoundedSeversEdges(t *testing.T) {
	g := NewGrid(4, 3, GeometryGrid)

	for x := 0; x < 4; x++ {
		top := g.Cell(x)
		for _, k := range []int{SlotUpLeft, SlotUp, SlotUpRight} {
			assert.False(t, top.Link(k).Valid(), "top cell %d slot %d", x, k)
			assert.Equal(t, noLink, top.Link(k))
		}
		bottom := g.Cell(2*4 + x)
		for _, k := range []int{SlotDownLeft, SlotDown, SlotDownRight} {
			assert.False(t, bottom.Link(k).Valid(), "bottom cell %d slot %d", x, k)
		}
	}
	for y := 0; y < 3; y++ {
		left := g.Cell(y * 4)
		for _, k := range []int{SlotUpLeft, SlotLeft, SlotDownLeft} {
			assert.False(t, left.Link(k).Valid(), "left cell row %d slot %d", y, k)
		}
		right := g.Cell(y*4 + 3)
		for _, k := range []int{SlotUpRight, SlotRight, SlotDownRight} {
			assert.False(t, right.Link(k).Valid(), "right cell row %d slot %d", y, k)
		}
	}
}

func TestGridBoundedSubBoxSeversBoxEdges(t *testing.T) {
	const w, h = 7, 6
	box := Box{X: 2, Y: 1, Width: 4, Height: 3, WorldX: w}
	g := NewGrid(w, h, GeometryGrid)
	g.ResizeClear(w, h, GeometryGrid, box)

	for i := 0; i < g.Size(); i++ {
		x, y := i%w, i/w
		c := g.Cell(i)
		if !box.Contains(x, y) {
			for k := 0; k < NumLinks; k++ {
				assert.Equal(t, noLink, c.Link(k), "cell %d outside box slot %d", i, k)
			}
			continue
		}

		xx, yy := x-box.X, y-box.Y
		for k := 0; k < NumLinks; k++ {
			o := slotOffsets[k]
			nx, ny := xx+o.dx, yy+o.dy
			if nx < 0 || nx >= box.Width || ny < 0 || ny >= box.Height {
				assert.Equal(t, noLink, c.Link(k), "box edge cell (%d,%d) slot %d", xx, yy, k)
				continue
			}
			l := c.Link(k)
			require.True(t, l.Valid(), "cell (%d,%d) slot %d", xx, yy, k)
			assert.Equal(t, box.Index(nx, ny), l.Target, "cell (%d,%d) slot %d", xx, yy, k)
		}
	}

	// Interior box cells keep their full neighborhood
	for _, xx := range []int{1, 2} {
		c := g.Cell(box.Index(xx, 1))
		for k := 0; k < NumLinks; k++ {
			assert.True(t, c.Link(k).Valid(), "interior cell (%d,1) slot %d", xx, k)
		}
	}
}

func TestGridInteriorLinks(t *testing.T) {
	g := NewGrid(4, 3, GeometryGrid)

	// Cell (1,1) has index 5 and a full neighborhood.
	c := g.Cell(5)
	want := [NumLinks]Link{
		{Target: 0, DX: -1, DY: -1, Dist: sqrt2},
		{Target: 1, DX: 0, DY: -1, Dist: 1},
		{Target: 2, DX: 1, DY: -1, Dist: sqrt2},
		{Target: 6, DX: 1, DY: 0, Dist: 1},
		{Target: 10, DX: 1, DY: 1, Dist: sqrt2},
		{Target: 9, DX: 0, DY: 1, Dist: 1},
		{Target: 8, DX: -1, DY: 1, Dist: sqrt2},
		{Target: 4, DX: -1, DY: 0, Dist: 1},
	}
	for k := 0; k < NumLinks; k++ {
		assert.Equal(t, want[k], c.Link(k), "slot %d", k)
	}
}

func TestGridTorusReciprocal(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		box    Box
	}{
		{"2x2", 2, 2, Box{}},
		{"3x3", 3, 3, Box{}},
		{"5x4", 5, 4, Box{}},
		{"single row", 5, 1, Box{}},
		{"placement box", 6, 5, Box{X: 1, Y: 1, Width: 3, Height: 3, WorldX: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(tt.w, tt.h, GeometryTorus)
			g.ResizeClear(tt.w, tt.h, GeometryTorus, tt.box)
			box := g.Box()

			for i := 0; i < g.Size(); i++ {
				x, y := i%tt.w, i/tt.w
				c := g.Cell(i)
				if !box.Contains(x, y) {
					for k := 0; k < NumLinks; k++ {
						assert.False(t, c.Link(k).Valid(), "cell %d outside box is linked", i)
					}
					continue
				}
				for k := 0; k < NumLinks; k++ {
					l := c.Link(k)
					require.True(t, l.Valid(), "cell %d slot %d", i, k)
					assert.True(t, box.Contains(l.Target%tt.w, l.Target/tt.w), "cell %d slot %d leaves box", i, k)
					back := g.Cell(l.Target).Link((k + 4) % NumLinks)
					assert.Equal(t, i, back.Target, "cell %d slot %d reciprocal", i, k)
				}
			}
		})
	}
}

func TestGridTorusCornerWrapsDiagonally(t *testing.T) {
	g := NewGrid(3, 3, GeometryTorus)

	assert.Equal(t, 8, g.Cell(0).Link(SlotUpLeft).Target)
	assert.Equal(t, 6, g.Cell(2).Link(SlotUpRight).Target)
	assert.Equal(t, 0, g.Cell(8).Link(SlotDownRight).Target)
	assert.Equal(t, 2, g.Cell(6).Link(SlotDownLeft).Target)
	assert.Equal(t, 2, g.Cell(0).Link(SlotLeft).Target)
	assert.Equal(t, 6, g.Cell(0).Link(SlotUp).Target)
}

func TestGridRewiringIsIdempotent(t *testing.T) {
	box := Box{X: 1, Y: 0, Width: 3, Height: 2, WorldX: 5}
	for _, geom := range []Geometry{GeometryGrid, GeometryTorus} {
		g := NewGrid(5, 3, geom)
		g.ResizeClear(5, 3, geom, box)
		first := make([]Cell, g.Size())
		for i := range first {
			first[i] = g.Cell(i)
		}

		g.setLinks()
		g.ResizeClear(5, 3, geom, box)
		for i := range first {
			assert.Equal(t, first[i].links, g.Cell(i).links, "%s cell %d", geom, i)
		}
	}
}

func TestGridGlobalHasNoLinks(t *testing.T) {
	g := NewGrid(3, 3, GeometryGlobal)
	for i := 0; i < g.Size(); i++ {
		for k := 0; k < NumLinks; k++ {
			assert.False(t, g.Cell(i).Link(k).Valid())
		}
	}
}

func TestResizeClear(t *testing.T) {
	g := NewGrid(3, 3, GeometryGrid)
	g.SetCellAmount(4, 7)

	g.ResizeClear(5, 2, GeometryTorus, Box{})
	assert.Equal(t, 10, g.Size())
	assert.Equal(t, 5, g.Width())
	assert.Equal(t, 2, g.Height())
	assert.Equal(t, GeometryTorus, g.Geometry())
	assert.Equal(t, FullBox(5, 2), g.Box())
	assert.Zero(t, g.SumAll())

	assert.Panics(t, func() { g.ResizeClear(0, 3, GeometryGrid, Box{}) })
	assert.Panics(t, func() {
		g.ResizeClear(4, 4, GeometryGrid, Box{X: 2, Y: 0, Width: 3, Height: 4, WorldX: 4})
	})
}

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		in   string
		want Geometry
		err  bool
	}{
		{"global", GeometryGlobal, false},
		{"grid", GeometryGrid, false},
		{"Bounded", GeometryGrid, false},
		{"torus", GeometryTorus, false},
		{" wrap ", GeometryTorus, false},
		{"hex", GeometryGlobal, true},
	}
	for _, tt := range tests {
		got, err := ParseGeometry(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, mustParse(t, got.String()))
	}
}

func mustParse(t *testing.T, s string) Geometry {
	t.Helper()
	g, err := ParseGeometry(s)
	require.NoError(t, err)
	return g
}

package resource

import (
	"fmt"
	"strings"
)

// Geometry is the boundary topology of a grid.
type Geometry int

const (
	// GeometryGlobal is a single well-mixed compartment; cells are not linked.
	GeometryGlobal Geometry = iota
	// GeometryGrid is a bounded lattice; edge-crossing links are severed.
	GeometryGrid
	// GeometryTorus wraps opposite edges of the placement box.
	GeometryTorus
)

func (g Geometry) String() string {
	switch g {
	case GeometryGlobal:
		return "global"
	case GeometryGrid:
		return "grid"
	case GeometryTorus:
		return "torus"
	}
	return fmt.Sprintf("Geometry(%d)", int(g))
}

// ParseGeometry maps a configuration name to a Geometry.
// "bounded" and "wrap" are accepted as aliases.
func ParseGeometry(s string) (Geometry, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "global":
		return GeometryGlobal, nil
	case "grid", "bounded":
		return GeometryGrid, nil
	case "torus", "wrap", "wrapping":
		return GeometryTorus, nil
	}
	return GeometryGlobal, fmt.Errorf("unknown geometry %q", s)
}

// Box is the placement rectangle a grid occupies inside a possibly larger
// world. WorldX is the row stride of the shared coordinate space.
type Box struct {
	X, Y          int
	Width, Height int
	WorldX        int
}

// FullBox returns a box covering the whole world.
func FullBox(worldX, worldY int) Box {
	return Box{Width: worldX, Height: worldY, WorldX: worldX}
}

// Index returns the linear cell index of box-relative coordinates (xx, yy).
func (b Box) Index(xx, yy int) int {
	return (b.Y+yy)*b.WorldX + b.X + xx
}

// Contains reports whether world coordinates (x, y) lie inside the box.
func (b Box) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

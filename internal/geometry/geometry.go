// Package geometry converts grid cells and paths into display units, for whatever draws them.
package geometry

import (
	"github.com/chewxy/math32"
	"github.com/janpfeifer/wavepath/internal/flowfield"
	"github.com/janpfeifer/wavepath/internal/grid"
)

// Point in display units.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Rect in display units: top-left corner and size.
type Rect struct {
	X, Y, W, H float32
}

// Layout maps cells to display units, given the size of one cell and the width of the grid lines.
type Layout struct {
	CellSize    float32
	BorderWidth float32
}

// CellRect returns the rectangle covering the cell, inset by the border width.
func (l Layout) CellRect(c grid.Cell) Rect {
	return Rect{
		X: float32(c.X())*l.CellSize + l.BorderWidth,
		Y: float32(c.Y())*l.CellSize + l.BorderWidth,
		W: l.CellSize - l.BorderWidth,
		H: l.CellSize - l.BorderWidth,
	}
}

// CellCenter returns the center of the cell.
func (l Layout) CellCenter(c grid.Cell) Point {
	return Point{
		X: (float32(c.X()) + 0.5) * l.CellSize,
		Y: (float32(c.Y()) + 0.5) * l.CellSize,
	}
}

// ScreenSize returns the display size of a width x height grid.
func (l Layout) ScreenSize(width, height int) (w, h float32) {
	return float32(width) * l.CellSize, float32(height) * l.CellSize
}

// CellAt returns the cell under the given display point, and whether it lies within a
// width x height grid. This is what an input layer uses to translate clicks into cells.
func (l Layout) CellAt(p Point, width, height int) (grid.Cell, bool) {
	if p.X < 0 || p.Y < 0 {
		return grid.Cell{}, false
	}
	c := grid.Cell{int(p.X / l.CellSize), int(p.Y / l.CellSize)}
	return c, c.X() < width && c.Y() < height
}

// Polyline is a sequence of connected points.
type Polyline []Point

// Length returns the total length of the segments.
func (pl Polyline) Length() float32 {
	var length float32
	for ii := 1; ii < len(pl); ii++ {
		length += math32.Hypot(pl[ii].X-pl[ii-1].X, pl[ii].Y-pl[ii-1].Y)
	}
	return length
}

// PathPolyline returns the polyline through the centers of the cells of the path.
func (l Layout) PathPolyline(path flowfield.Path) Polyline {
	pl := make(Polyline, len(path.Cells))
	for ii, c := range path.Cells {
		pl[ii] = l.CellCenter(c)
	}
	return pl
}

package flowfield

import (
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/wavepath/internal/grid"
	"k8s.io/klog/v2"
)

// Sentinel distances. Real distances start at GoalDistance and grow by one per orthogonal step.
const (
	// Blocked marks cells that can never be entered: obstacles and the grid border.
	Blocked int32 = -1

	// Unvisited marks open cells the wave never reached. It is never a valid distance.
	Unvisited int32 = 0

	// GoalDistance is the distance assigned to the goal itself.
	GoalDistance int32 = 1
)

// DistanceField maps every cell of a grid to its number of orthogonal steps to the goal, plus one.
// See the Blocked and Unvisited sentinels.
type DistanceField struct {
	width, height int
	distances     []int32
	maxDistance   int32
}

// NewDistanceField returns a field of the given dimensions with every cell Unvisited.
func NewDistanceField(width, height int) *DistanceField {
	return &DistanceField{
		width:     width,
		height:    height,
		distances: make([]int32, width*height),
	}
}

// Build creates the distance field for the grid's current obstacles and goal.
func Build(g *grid.Grid) *DistanceField {
	f := NewDistanceField(g.Width(), g.Height())
	f.Rebuild(g, nil)
	return f
}

// Width of the field, in cells.
func (f *DistanceField) Width() int { return f.width }

// Height of the field, in cells.
func (f *DistanceField) Height() int { return f.height }

// InBounds returns whether the cell lies within the field.
func (f *DistanceField) InBounds(c grid.Cell) bool {
	return c.X() >= 0 && c.X() < f.width && c.Y() >= 0 && c.Y() < f.height
}

func (f *DistanceField) index(c grid.Cell) int {
	return c.Y()*f.width + c.X()
}

// At returns the raw value of the cell, including the Blocked and Unvisited sentinels.
// It panics if the cell is out of bounds.
func (f *DistanceField) At(c grid.Cell) int32 {
	if !f.InBounds(c) {
		exceptions.Panicf("DistanceField.At(%s): cell out of bounds for a %dx%d field", c, f.width, f.height)
	}
	return f.distances[f.index(c)]
}

// Lookup returns the distance of the cell to the goal, and whether the cell was reached at all.
// Blocked, unvisited and out-of-bounds cells return (0, false).
func (f *DistanceField) Lookup(c grid.Cell) (distance int32, ok bool) {
	if !f.InBounds(c) {
		return 0, false
	}
	distance = f.distances[f.index(c)]
	if distance < GoalDistance {
		return 0, false
	}
	return distance, true
}

// IsReachable returns whether the wave reached the cell.
func (f *DistanceField) IsReachable(c grid.Cell) bool {
	_, ok := f.Lookup(c)
	return ok
}

// MaxDistance returns the largest distance in the field, or Unvisited if the goal was blocked.
func (f *DistanceField) MaxDistance() int32 { return f.maxDistance }

// Rows returns a copy of the field as one slice per row, for display and serialization.
func (f *DistanceField) Rows() [][]int32 {
	rows := make([][]int32, f.height)
	for y := range f.height {
		rows[y] = append([]int32(nil), f.distances[y*f.width:(y+1)*f.width]...)
	}
	return rows
}

// Equal returns whether both fields have the same dimensions and values.
func (f *DistanceField) Equal(f2 *DistanceField) bool {
	if f.width != f2.width || f.height != f2.height {
		return false
	}
	for ii, d := range f.distances {
		if f2.distances[ii] != d {
			return false
		}
	}
	return true
}

// LayerFn is called once per wave layer, with the layer's distance and the cells assigned to it.
// The cells slice is reused after the call returns.
type LayerFn func(distance int32, cells []grid.Cell)

// Rebuild recomputes the field from scratch for the grid's current obstacles and goal. If onLayer
// is not nil it is called for each layer of the wave, in increasing distance.
//
// The grid must have the same dimensions as the field, and it is not retained.
func (f *DistanceField) Rebuild(g *grid.Grid, onLayer LayerFn) {
	if g.Width() != f.width || g.Height() != f.height {
		exceptions.Panicf("DistanceField.Rebuild: grid is %dx%d, field is %dx%d",
			g.Width(), g.Height(), f.width, f.height)
	}

	// Encode impassable terrain, so the wave only needs to test for Unvisited.
	f.maxDistance = Unvisited
	for y := range f.height {
		for x := range f.width {
			c := grid.Cell{x, y}
			if g.IsBlocked(c) {
				f.distances[f.index(c)] = Blocked
			} else {
				f.distances[f.index(c)] = Unvisited
			}
		}
	}

	goal := g.Goal()
	if f.distances[f.index(goal)] == Blocked {
		klog.V(2).Infof("DistanceField.Rebuild: goal %s is blocked, nothing is reachable", goal)
		return
	}

	// Wave propagation, one layer at a time. Cells are assigned their distance as soon as they are
	// discovered, so a cell shared by two frontier cells enters the next layer only once.
	frontier := make([]grid.Cell, 0, f.width+f.height)
	next := make([]grid.Cell, 0, f.width+f.height)
	distance := GoalDistance
	f.distances[f.index(goal)] = distance
	frontier = append(frontier, goal)
	for len(frontier) > 0 {
		f.maxDistance = distance
		if onLayer != nil {
			onLayer(distance, frontier)
		}
		for _, c := range frontier {
			for n := range c.NeighboursIter(grid.OrthogonalDirections[:]) {
				if !f.InBounds(n) {
					continue
				}
				idx := f.index(n)
				if f.distances[idx] != Unvisited {
					continue
				}
				f.distances[idx] = distance + 1
				next = append(next, n)
			}
		}
		frontier, next = next, frontier[:0]
		distance++
	}
}

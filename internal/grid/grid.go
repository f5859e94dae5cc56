// Package grid holds the state fed to the wave propagation: the fixed size grid, its blocked cells,
// the goal and the ordered list of agent start cells.
//
// The outer border of the grid is always blocked, modelling a bounding wall. Cells are addressed by
// their (x, y) coordinates; the flat storage used internally is never exposed.
package grid

import (
	"cmp"
	"fmt"
	"iter"
	"math/rand/v2"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/wavepath/internal/generics"
)

// Cell packages the x, y coordinates of a grid cell.
type Cell [2]int

// X coordinate of the cell.
func (c Cell) X() int {
	return c[0]
}

// Y coordinate of the cell.
func (c Cell) Y() int {
	return c[1]
}

// Add returns the cell displaced by delta.
func (c Cell) Add(delta Cell) Cell {
	return Cell{c[0] + delta[0], c[1] + delta[1]}
}

// String returns a text representation of Cell.
func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c[0], c[1])
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Distance returns the manhattan distance of two cells.
func (c Cell) Distance(c2 Cell) int {
	return absInt(c[0]-c2[0]) + absInt(c[1]-c2[1])
}

// IsAdjacent returns whether c2 is one of the 8 neighbours of c.
func (c Cell) IsAdjacent(c2 Cell) bool {
	dx, dy := absInt(c[0]-c2[0]), absInt(c[1]-c2[1])
	return max(dx, dy) == 1
}

// CompareCells orders cells by y first and then x, the order in which they are displayed.
func CompareCells(a, b Cell) int {
	if a[1] != b[1] {
		return cmp.Compare(a[1], b[1])
	}
	return cmp.Compare(a[0], b[0])
}

// Relative positions of the neighbours of a cell. Y grows downwards, so North is y-1.
var (
	North     = Cell{0, -1}
	South     = Cell{0, 1}
	East      = Cell{1, 0}
	West      = Cell{-1, 0}
	NorthWest = Cell{-1, -1}
	NorthEast = Cell{1, -1}
	SouthWest = Cell{-1, 1}
	SouthEast = Cell{1, 1}
)

// OrthogonalDirections lists the 4-connected neighbours, in the order the wave expands them.
var OrthogonalDirections = [4]Cell{North, South, East, West}

// DescentDirections lists the 8-connected neighbours in the fixed order used to break ties during path
// descent: the 4 orthogonal ones clockwise from North, followed by the diagonals.
//
// Paths are only reproducible if this order never changes.
var DescentDirections = [8]Cell{North, East, South, West, NorthWest, NorthEast, SouthWest, SouthEast}

// NeighboursIter iterates over the cells displaced from c by each of the given directions, in order.
// It doesn't check bounds.
func (c Cell) NeighboursIter(directions []Cell) iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for _, delta := range directions {
			if !yield(c.Add(delta)) {
				return
			}
		}
	}
}

// Grid is the mutable state of the pathfinding world. It is owned by a single driver, and
// it is only read (never retained) by the flow field computation.
type Grid struct {
	width, height int

	// blocked holds explicitly toggled obstacles, indexed by y*width+x. The border is blocked
	// regardless of its value here.
	blocked []bool

	goal   Cell
	starts []Cell
}

// New creates an empty grid of the given dimensions with the given goal and no starts.
// Dimensions can't change after creation.
func New(width, height int, goal Cell) *Grid {
	if width <= 0 || height <= 0 {
		exceptions.Panicf("grid.New: invalid dimensions %dx%d", width, height)
	}
	g := &Grid{
		width:   width,
		height:  height,
		blocked: make([]bool, width*height),
	}
	g.SetGoal(goal)
	return g
}

// Clone makes a deep copy of the grid. Mutations on the clone don't affect g.
func (g *Grid) Clone() *Grid {
	newG := &Grid{}
	*newG = *g
	newG.blocked = append([]bool(nil), g.blocked...)
	newG.starts = append([]Cell(nil), g.starts...)
	return newG
}

// Width of the grid, in cells.
func (g *Grid) Width() int { return g.width }

// Height of the grid, in cells.
func (g *Grid) Height() int { return g.height }

// Size returns the total number of cells.
func (g *Grid) Size() int { return g.width * g.height }

// InBounds returns whether the cell lies within the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c[0] >= 0 && c[0] < g.width && c[1] >= 0 && c[1] < g.height
}

func (g *Grid) index(c Cell) int {
	return c[1]*g.width + c[0]
}

// mustBeInBounds panics for cells outside the grid: callers are required to validate user input
// before it reaches the grid.
func (g *Grid) mustBeInBounds(method string, c Cell) {
	if !g.InBounds(c) {
		exceptions.Panicf("Grid.%s(%s): cell out of bounds for a %dx%d grid", method, c, g.width, g.height)
	}
}

// IsBorder returns whether the cell is on the outer wall of the grid.
func (g *Grid) IsBorder(c Cell) bool {
	g.mustBeInBounds("IsBorder", c)
	return c[0] == 0 || c[1] == 0 || c[0] == g.width-1 || c[1] == g.height-1
}

// IsBlocked returns whether an agent may not occupy the cell. Border cells are always blocked.
func (g *Grid) IsBlocked(c Cell) bool {
	return g.IsBorder(c) || g.blocked[g.index(c)]
}

// ToggleBlocked flips an interior cell between blocked and open. It is a no-op on border cells.
func (g *Grid) ToggleBlocked(c Cell) {
	if g.IsBorder(c) {
		return
	}
	idx := g.index(c)
	g.blocked[idx] = !g.blocked[idx]
}

// SetBlocked sets whether an interior cell is blocked. It is a no-op on border cells.
func (g *Grid) SetBlocked(c Cell, blocked bool) {
	if g.IsBorder(c) {
		return
	}
	g.blocked[g.index(c)] = blocked
}

// Obstacles returns the set of explicitly blocked interior cells (the border is not included).
func (g *Grid) Obstacles() generics.Set[Cell] {
	obstacles := generics.MakeSet[Cell]()
	for idx, blocked := range g.blocked {
		if blocked {
			obstacles.Insert(Cell{idx % g.width, idx / g.width})
		}
	}
	return obstacles
}

// AddRandomObstacles blocks each open interior cell with the given probability, leaving the goal
// and the starts open. It returns the number of cells blocked.
func (g *Grid) AddRandomObstacles(rng *rand.Rand, density float64) (count int) {
	reserved := generics.SetWith(g.starts...)
	reserved.Insert(g.goal)
	for y := 1; y < g.height-1; y++ {
		for x := 1; x < g.width-1; x++ {
			c := Cell{x, y}
			idx := g.index(c)
			if g.blocked[idx] || reserved.Has(c) {
				continue
			}
			if rng.Float64() < density {
				g.blocked[idx] = true
				count++
			}
		}
	}
	return
}

// Goal returns the current goal cell.
func (g *Grid) Goal() Cell { return g.goal }

// SetGoal replaces the goal unconditionally. A blocked goal is accepted: it simply leaves every cell
// unreachable when the field is computed.
func (g *Grid) SetGoal(c Cell) {
	g.mustBeInBounds("SetGoal", c)
	g.goal = c
}

// NumStarts returns the number of agents.
func (g *Grid) NumStarts() int { return len(g.starts) }

// Starts returns a copy of the agent start cells, in insertion order.
func (g *Grid) Starts() []Cell {
	return append([]Cell(nil), g.starts...)
}

// StartsIter iterates over the agent start cells, in insertion order.
func (g *Grid) StartsIter() iter.Seq2[int, Cell] {
	return func(yield func(int, Cell) bool) {
		for ii, start := range g.starts {
			if !yield(ii, start) {
				return
			}
		}
	}
}

// AddStart appends a new agent start.
func (g *Grid) AddStart(c Cell) {
	g.mustBeInBounds("AddStart", c)
	g.starts = append(g.starts, c)
}

// ReplaceLastStart moves the most recently added start to c. If there are no starts, c is added as
// the first one.
func (g *Grid) ReplaceLastStart(c Cell) {
	g.mustBeInBounds("ReplaceLastStart", c)
	if len(g.starts) == 0 {
		g.starts = append(g.starts, c)
		return
	}
	g.starts[len(g.starts)-1] = c
}

// RemoveLastStart pops the most recently added start. It returns false if there were none.
func (g *Grid) RemoveLastStart() bool {
	if len(g.starts) == 0 {
		return false
	}
	g.starts = g.starts[:len(g.starts)-1]
	return true
}

// Layout symbols used by String and by grid test helpers.
const (
	SymbolOpen    = '.'
	SymbolBlocked = '#'
	SymbolGoal    = 'G'
	SymbolStart   = 'S'
)

// String renders the grid as one line of symbols per row. Goal takes precedence over starts, and both
// over obstacles.
func (g *Grid) String() string {
	isStart := generics.SetWith(g.starts...)
	var sb strings.Builder
	for y := range g.height {
		for x := range g.width {
			c := Cell{x, y}
			switch {
			case c == g.goal:
				sb.WriteByte(SymbolGoal)
			case isStart.Has(c):
				sb.WriteByte(SymbolStart)
			case g.IsBlocked(c):
				sb.WriteByte(SymbolBlocked)
			default:
				sb.WriteByte(SymbolOpen)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

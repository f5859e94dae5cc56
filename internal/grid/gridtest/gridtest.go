// Package gridtest provides helper functions to create tests using grids.
package gridtest

import (
	"strings"

	"github.com/gomlx/exceptions"
	. "github.com/janpfeifer/wavepath/internal/grid"
)

// Build a grid from a layout, one string per row, using the symbols SymbolOpen, SymbolBlocked,
// SymbolGoal and SymbolStart. Starts are added in reading order (row by row, left to right).
//
// Blocked symbols on the border are accepted but redundant: the border is always blocked.
// If the layout has no goal, the goal is left at (0, 0), which is on the border and hence
// unreachable.
func Build(layout ...string) *Grid {
	if len(layout) == 0 {
		exceptions.Panicf("gridtest.Build: empty layout")
	}
	width, height := len(layout[0]), len(layout)
	g := New(width, height, Cell{0, 0})
	for y, row := range layout {
		if len(row) != width {
			exceptions.Panicf("gridtest.Build: row %d has width %d, expected %d", y, len(row), width)
		}
		for x, symbol := range []byte(row) {
			c := Cell{x, y}
			switch symbol {
			case SymbolBlocked:
				g.SetBlocked(c, true)
			case SymbolGoal:
				g.SetGoal(c)
			case SymbolStart:
				g.AddStart(c)
			case SymbolOpen:
			default:
				exceptions.Panicf("gridtest.Build: unknown symbol %q at %s", symbol, c)
			}
		}
	}
	return g
}

// Empty returns a width x height grid with only the border blocked, and the given goal.
func Empty(width, height int, goal Cell) *Grid {
	return New(width, height, goal)
}

// Layout returns the rows of g.String(), in the same format accepted by Build.
func Layout(g *Grid) []string {
	return strings.Split(strings.TrimSuffix(g.String(), "\n"), "\n")
}

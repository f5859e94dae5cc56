package flowfield

import (
	"fmt"

	"github.com/janpfeifer/wavepath/internal/grid"
)

// State of the reconstruction of one agent's path. TracePath only returns paths in a terminal
// state, StateReached or StateStuck; StatePending is the zero value of a Path not traced yet.
type State uint8

const (
	// StatePending: the path was not traced yet.
	StatePending State = iota

	// StateAdvancing: the path is being traced.
	StateAdvancing

	// StateReached: the last cell of the path is the goal.
	StateReached

	// StateStuck: no neighbour of the last cell is reachable, so the goal can't be reached from the start.
	StateStuck
)

var stateNames = []string{"Pending", "Advancing", "Reached", "Stuck"}

// String returns the name of the state.
func (s State) String() string {
	if int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", uint8(s))
	}
	return stateNames[s]
}

// Path is the sequence of cells an agent walks from its start, ending at the goal if State is
// StateReached, or at the cell where it got stuck otherwise.
type Path struct {
	Cells []grid.Cell
	State State
}

// Start returns the first cell of the path.
func (p Path) Start() grid.Cell { return p.Cells[0] }

// Last returns the cell where the path ends.
func (p Path) Last() grid.Cell { return p.Cells[len(p.Cells)-1] }

// Steps returns the number of moves in the path.
func (p Path) Steps() int { return len(p.Cells) - 1 }

// Reached returns whether the path ends at the goal.
func (p Path) Reached() bool { return p.State == StateReached }

// String returns a text representation of the path, for logging.
func (p Path) String() string {
	return fmt.Sprintf("%s%v", p.State, p.Cells)
}

// TracePath reconstructs the path from start to goal by greedy descent over the distance field: at
// each step it moves to the reachable neighbour (8-connected) with the lowest distance.
//
// If no neighbour is reachable the path stops there with StateStuck.
func TracePath(field *DistanceField, start, goal grid.Cell) Path {
	path := Path{Cells: []grid.Cell{start}, State: StateAdvancing}
	current := start
	for current != goal {
		next, found := field.lowestNeighbour(current)
		if !found {
			path.State = StateStuck
			return path
		}
		current = next
		path.Cells = append(path.Cells, current)
	}
	path.State = StateReached
	return path
}

// lowestNeighbour returns the reachable neighbour of c with the lowest distance. Ties go to the one
// listed first in grid.DescentDirections.
//
// Every accepted move strictly decreases the distance: a reached cell at distance d always has an
// orthogonal neighbour at d-1. So descent always terminates.
func (f *DistanceField) lowestNeighbour(c grid.Cell) (best grid.Cell, found bool) {
	bestDistance := int32(0)
	for n := range c.NeighboursIter(grid.DescentDirections[:]) {
		distance, ok := f.Lookup(n)
		if !ok {
			continue
		}
		if !found || distance < bestDistance {
			best, bestDistance, found = n, distance, true
		}
	}
	return
}

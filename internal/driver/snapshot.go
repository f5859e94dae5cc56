package driver

import (
	"encoding/json"
	"io"
	"slices"

	"github.com/janpfeifer/wavepath/internal/generics"
	"github.com/janpfeifer/wavepath/internal/geometry"
	"github.com/janpfeifer/wavepath/internal/grid"
	"github.com/pkg/errors"
)

// Snapshot of the last tick, for external tools. Cells are [x, y] pairs.
type Snapshot struct {
	Tick      int         `json:"tick"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Goal      grid.Cell   `json:"goal"`
	Obstacles []grid.Cell `json:"obstacles"`
	Distances [][]int32   `json:"distances,omitempty"`
	Agents    []Agent     `json:"agents"`
}

// Agent in a Snapshot.
type Agent struct {
	Start    grid.Cell         `json:"start"`
	State    string            `json:"state"`
	Path     []grid.Cell       `json:"path"`
	Polyline geometry.Polyline `json:"polyline"`
}

// Snapshot of the last recompute. Distances are only included if includeDistances is set.
// Obstacles reflect the grid at the time of the call.
func (d *Driver) Snapshot(includeDistances bool) *Snapshot {
	s := &Snapshot{
		Tick:      d.numTicks,
		Width:     d.grid.Width(),
		Height:    d.grid.Height(),
		Goal:      d.result.Goal,
		Obstacles: slices.Collect(generics.SortedFunc(d.grid.Obstacles(), grid.CompareCells)),
		Agents:    make([]Agent, len(d.result.Paths)),
	}
	if includeDistances {
		s.Distances = d.result.Field.Rows()
	}
	for ii, path := range d.result.Paths {
		s.Agents[ii] = Agent{
			Start:    path.Start(),
			State:    path.State.String(),
			Path:     path.Cells,
			Polyline: d.paths[ii],
		}
	}
	return s
}

// WriteJSON encodes the snapshot, indented, to w.
func (s *Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return errors.Wrapf(err, "failed to encode snapshot of tick %d", s.Tick)
	}
	return nil
}

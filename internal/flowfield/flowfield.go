// Package flowfield implements wave-propagation pathfinding on a grid: a breadth-first wave from the
// goal builds a DistanceField, and each agent then greedily descends the field to trace its Path.
//
// A single field is shared by all agents, so the cost of a recompute is dominated by the wave,
// O(width*height), regardless of the number of agents.
package flowfield

import (
	"time"

	"github.com/janpfeifer/wavepath/internal/grid"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Options defines parameters for the recompute.
type Options struct {
	// NumWorkers tracing paths in parallel. Values <= 1 trace them sequentially.
	NumWorkers int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers specifies how many goroutines trace agent paths in parallel, once the field is built.
func WithWorkers(numWorkers int) Option {
	return func(options *Options) { options.NumWorkers = numWorkers }
}

// FlowField computes distance fields and agent paths from grid snapshots. It holds no reference to
// the grids it is given.
type FlowField struct {
	options       Options
	numRecomputes int
}

// New creates a FlowField. By default paths are traced sequentially.
func New(options ...Option) *FlowField {
	ff := &FlowField{options: Options{NumWorkers: 1}}
	for _, option := range options {
		option(&ff.options)
	}
	return ff
}

// NumWorkers used to trace paths.
func (ff *FlowField) NumWorkers() int { return ff.options.NumWorkers }

// NumRecomputes returns how many times Recompute was called.
func (ff *FlowField) NumRecomputes() int { return ff.numRecomputes }

// Result of one recompute: the distance field and one path per agent start, in the grid's start order.
type Result struct {
	Goal  grid.Cell
	Field *DistanceField
	Paths []Path
}

// NumStuck returns the number of agents that can't reach the goal.
func (r *Result) NumStuck() int {
	count := 0
	for _, path := range r.Paths {
		if path.State == StateStuck {
			count++
		}
	}
	return count
}

// Recompute builds a fresh distance field for the grid and traces the path of every agent.
//
// The grid must not be mutated until Recompute returns.
func (ff *FlowField) Recompute(g *grid.Grid) *Result {
	startTime := time.Now()
	ff.numRecomputes++
	r := &Result{
		Goal:  g.Goal(),
		Field: Build(g),
	}

	// From here on the field is frozen and shared read-only by the path tracing.
	r.Paths = make([]Path, g.NumStarts())
	if ff.options.NumWorkers <= 1 || len(r.Paths) <= 1 {
		for ii, start := range g.StartsIter() {
			r.Paths[ii] = TracePath(r.Field, start, r.Goal)
		}
	} else {
		var wg errgroup.Group
		wg.SetLimit(ff.options.NumWorkers)
		for ii, start := range g.StartsIter() {
			wg.Go(func() error {
				r.Paths[ii] = TracePath(r.Field, start, r.Goal)
				return nil
			})
		}
		_ = wg.Wait()
	}

	if numStuck := r.NumStuck(); numStuck > 0 {
		klog.V(1).Infof("Recompute #%d: %d of %d agents can't reach goal %s",
			ff.numRecomputes, numStuck, len(r.Paths), r.Goal)
	}
	klog.V(2).Infof("Recompute #%d: goal=%s, max distance=%d, %d paths, elapsed %s",
		ff.numRecomputes, r.Goal, r.Field.MaxDistance(), len(r.Paths), time.Since(startTime))
	return r
}

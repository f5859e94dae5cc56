// Package driver owns the simulation state and runs it: it applies input events to the grid and,
// at a fixed tick rate, recomputes the flow field and the geometry of the agents' paths.
//
// Everything happens in the goroutine calling the Driver methods (or Run), so the grid is never
// mutated during a recompute.
package driver

import (
	"context"
	"time"

	"github.com/janpfeifer/wavepath/internal/config"
	"github.com/janpfeifer/wavepath/internal/flowfield"
	"github.com/janpfeifer/wavepath/internal/generics"
	"github.com/janpfeifer/wavepath/internal/geometry"
	"github.com/janpfeifer/wavepath/internal/grid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Driver of a simulation.
type Driver struct {
	grid   *grid.Grid
	flow   *flowfield.FlowField
	layout geometry.Layout

	tickInterval time.Duration
	lastTick     time.Time
	numTicks     int

	// version is incremented on every event that changes the grid.
	version, resultVersion int

	result *flowfield.Result
	paths  []geometry.Polyline
}

// New creates a driver for the configuration, and runs a first recompute so a Result is always
// available.
func New(cfg config.Config) *Driver {
	d := &Driver{
		grid:         cfg.NewGrid(),
		flow:         flowfield.New(flowfield.WithWorkers(cfg.Workers)),
		layout:       cfg.Layout(),
		tickInterval: time.Second / time.Duration(cfg.TicksPerSecond),
	}
	d.ForceTick()
	return d
}

// Grid returns a copy of the current grid.
func (d *Driver) Grid() *grid.Grid { return d.grid.Clone() }

// Layout used to generate the geometry.
func (d *Driver) Layout() geometry.Layout { return d.layout }

// Handle applies an input event to the grid. Events with cells outside the grid are rejected with
// an error, and leave the grid untouched.
//
// The effect is only visible in Result after the next tick.
func (d *Driver) Handle(e grid.Event) error {
	if e.Kind != grid.EventRemoveLastStart && !d.grid.InBounds(e.Cell) {
		return errors.Errorf("event %s: cell out of the %dx%d grid", e, d.grid.Width(), d.grid.Height())
	}
	if !d.grid.Apply(e) {
		klog.V(1).Infof("Driver: event %s had no effect", e)
		return nil
	}
	klog.V(1).Infof("Driver: event %s", e)
	d.version++
	return nil
}

// Tick recomputes the flow field if at least one tick interval passed since the last recompute.
// Calls in between are ignored. It returns whether a recompute happened.
func (d *Driver) Tick(now time.Time) bool {
	if !d.lastTick.IsZero() && now.Sub(d.lastTick) < d.tickInterval {
		return false
	}
	d.recompute(now)
	return true
}

// ForceTick recomputes immediately, regardless of the tick rate.
func (d *Driver) ForceTick() {
	d.recompute(time.Now())
}

func (d *Driver) recompute(now time.Time) {
	d.lastTick = now
	d.numTicks++
	d.result = d.flow.Recompute(d.grid)
	d.resultVersion = d.version
	d.paths = generics.SliceMap(d.result.Paths, d.layout.PathPolyline)
}

// TickInterval is the minimum time between recomputes.
func (d *Driver) TickInterval() time.Duration { return d.tickInterval }

// NumTicks returns the number of recomputes so far.
func (d *Driver) NumTicks() int { return d.numTicks }

// Stale returns whether events were applied after the last recompute.
func (d *Driver) Stale() bool { return d.version != d.resultVersion }

// Version is incremented every time an event changes the grid.
func (d *Driver) Version() int { return d.version }

// Result of the last recompute.
func (d *Driver) Result() *flowfield.Result { return d.result }

// PathPolylines returns the display geometry of the paths of the last recompute, one per agent.
func (d *Driver) PathPolylines() []geometry.Polyline { return d.paths }

// Run is the event loop: it applies events as they arrive and ticks on every value of ticks, calling
// onTick after each recompute. It returns when ctx is cancelled or events is closed.
//
// Events with invalid cells are logged and dropped.
func (d *Driver) Run(ctx context.Context, ticks <-chan time.Time, events <-chan grid.Event, onTick func(d *Driver)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if err := d.Handle(e); err != nil {
				klog.Warningf("Driver: dropping event: %v", err)
			}
		case now := <-ticks:
			if d.Tick(now) && onTick != nil {
				onTick(d)
			}
		}
	}
}

// wavebench measures recomputes of the flow field over random grids.
//
// Each grid gets a random goal, random agents and random obstacles, and is then edited by a stream
// of random obstacle toggles, with one recompute after each toggle.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/janpfeifer/must"
	"github.com/janpfeifer/wavepath/internal/config"
	"github.com/janpfeifer/wavepath/internal/driver"
	"github.com/janpfeifer/wavepath/internal/generics"
	"github.com/janpfeifer/wavepath/internal/grid"
	"github.com/janpfeifer/wavepath/internal/profilers"
	"github.com/janpfeifer/wavepath/internal/ui/spinning"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

var (
	flagConfig = flag.String("config", "width=64,height=64",
		"Comma separated key=value pairs with the grid dimensions and the number of path workers.")
	flagNumGrids    = flag.Int("num_grids", 100, "Number of random grids.")
	flagNumAgents   = flag.Int("num_agents", 16, "Number of agents per grid.")
	flagDensity     = flag.Float64("density", 0.25, "Probability of each interior cell starting blocked.")
	flagNumEdits    = flag.Int("num_edits", 20, "Number of random obstacle toggles per grid, each followed by a recompute.")
	flagSeed        = flag.Uint64("seed", 42, "Seed for the random grids.")
	flagParallelism = flag.Int("parallelism", 0, "If > 0 ignore GOMAXPROCS and run "+
		"these many grids simultaneously.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagNumGrids <= 0 || *flagNumAgents < 0 || *flagNumEdits < 0 {
		klog.Exitf("Invalid -num_grids=%d, -num_agents=%d or -num_edits=%d", *flagNumGrids, *flagNumAgents, *flagNumEdits)
	}

	// Capture Control+C
	ctx, cancel := context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 5*time.Second)
	defer cancel()

	p := must.M1(profilers.Setup(ctx))
	defer p.OnQuit()

	cfg := config.Default()
	cfg.Starts = nil
	must.M(cfg.ApplyConfigString(*flagConfig))

	s := spinning.New(ctx, os.Stderr, fmt.Sprintf("Running %d grids", *flagNumGrids))
	st, err := runGrids(ctx, cfg)
	s.Done()
	must.M(err)
	fmt.Println(st)
	if ctx.Err() != nil {
		fmt.Printf("Interrupted: %s\n", ctx.Err())
	}
}

// Stats accumulated over all grids.
type Stats struct {
	mu                       sync.Mutex
	width, height            int
	grids, recomputes        int
	agentPaths, stuck, steps int
	elapsed, wall            time.Duration
}

func (st *Stats) String() string {
	perRecompute := time.Duration(0)
	if st.recomputes > 0 {
		perRecompute = st.elapsed / time.Duration(st.recomputes)
	}
	return fmt.Sprintf("%d grids of %dx%d: %d recomputes, %s per recompute (%s wall time)\n"+
		"%d agent paths traced, %d stuck, %d steps in total",
		st.grids, st.width, st.height, st.recomputes, perRecompute, st.wall,
		st.agentPaths, st.stuck, st.steps)
}

func getParallelism() int {
	if *flagParallelism > 0 {
		return *flagParallelism
	}
	return runtime.GOMAXPROCS(0)
}

func runGrids(ctx context.Context, cfg config.Config) (*Stats, error) {
	st := &Stats{width: cfg.Width, height: cfg.Height}
	start := time.Now()
	var wg errgroup.Group
	wg.SetLimit(getParallelism())
	for gridIdx := range *flagNumGrids {
		wg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			return runGrid(ctx, gridIdx, cfg, st)
		})
	}
	err := wg.Wait()
	st.wall = time.Since(start)
	return st, err
}

func randomInteriorCell(rng *rand.Rand, cfg config.Config) grid.Cell {
	return grid.Cell{1 + rng.IntN(cfg.Width-2), 1 + rng.IntN(cfg.Height-2)}
}

// runGrid creates a random grid and feeds the random edits to a driver, ticking after each one.
func runGrid(ctx context.Context, gridIdx int, cfg config.Config, st *Stats) error {
	rng := rand.New(rand.NewPCG(*flagSeed, uint64(gridIdx)))
	cfg.Goal = randomInteriorCell(rng, cfg)
	cfg.Starts = make([]grid.Cell, *flagNumAgents)
	for ii := range cfg.Starts {
		cfg.Starts[ii] = randomInteriorCell(rng, cfg)
	}
	d := driver.New(cfg)

	obstacles := cfg.NewGrid()
	obstacles.AddRandomObstacles(rng, *flagDensity)
	edits := slices.Collect(generics.SortedFunc(obstacles.Obstacles(), grid.CompareCells))
	for range *flagNumEdits {
		edits = append(edits, randomInteriorCell(rng, cfg))
	}

	events := make(chan grid.Event)
	ticks := make(chan time.Time)
	go func() {
		defer close(events)
		numObstacles := len(edits) - *flagNumEdits
		now := time.Now()
		for ii, c := range edits {
			select {
			case events <- grid.ToggleObstacle(c):
			case <-ctx.Done():
				return
			}
			if ii < numObstacles-1 {
				// Initial obstacles are applied in one go.
				continue
			}
			now = now.Add(d.TickInterval())
			select {
			case ticks <- now:
			case <-ctx.Done():
				return
			}
		}
	}()

	start := time.Now()
	if err := d.Run(ctx, ticks, events, nil); err != nil {
		// Interrupted.
		return nil
	}
	elapsed := time.Since(start)
	r := d.Result()
	klog.V(1).Infof("Grid #%d: %d ticks, %d of %d agents stuck", gridIdx, d.NumTicks(), r.NumStuck(), len(r.Paths))

	st.mu.Lock()
	defer st.mu.Unlock()
	st.grids++
	st.recomputes += d.NumTicks()
	st.elapsed += elapsed
	st.agentPaths += len(r.Paths)
	st.stuck += r.NumStuck()
	for _, path := range r.Paths {
		st.steps += path.Steps()
	}
	return nil
}

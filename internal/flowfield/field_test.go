package flowfield_test

import (
	"math/rand/v2"
	"testing"

	. "github.com/janpfeifer/wavepath/internal/flowfield"
	"github.com/janpfeifer/wavepath/internal/generics"
	"github.com/janpfeifer/wavepath/internal/grid"
	"github.com/janpfeifer/wavepath/internal/grid/gridtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomGrid returns a grid with random obstacles and starts, reproducible for the given seed.
func randomGrid(seed uint64, width, height, numStarts int, density float64) *grid.Grid {
	rng := rand.New(rand.NewPCG(seed, 0x5eed))
	randomInterior := func() grid.Cell {
		return grid.Cell{1 + rng.IntN(width-2), 1 + rng.IntN(height-2)}
	}
	g := grid.New(width, height, randomInterior())
	for range numStarts {
		g.AddStart(randomInterior())
	}
	g.AddRandomObstacles(rng, density)
	return g
}

func TestEmptyGridDistances(t *testing.T) {
	goal := grid.Cell{4, 5}
	g := gridtest.Empty(16, 16, goal)
	f := Build(g)
	require.Equal(t, 16, f.Width())
	require.Equal(t, 16, f.Height())

	// With no interior obstacles the distance is the manhattan distance plus one.
	for y := range 16 {
		for x := range 16 {
			c := grid.Cell{x, y}
			if g.IsBlocked(c) {
				assert.Equal(t, Blocked, f.At(c), "At%s", c)
				continue
			}
			assert.Equal(t, int32(c.Distance(goal)+1), f.At(c), "At%s", c)
		}
	}
	assert.Equal(t, GoalDistance, f.At(goal))
	assert.Equal(t, int32(grid.Cell{14, 14}.Distance(goal)+1), f.MaxDistance())
}

func TestSentinels(t *testing.T) {
	for seed := range uint64(20) {
		g := randomGrid(seed, 24, 18, 0, 0.3)
		f := Build(g)
		assert.Equal(t, GoalDistance, f.At(g.Goal()))
		for y := range g.Height() {
			for x := range g.Width() {
				c := grid.Cell{x, y}
				if g.IsBlocked(c) {
					assert.Equal(t, Blocked, f.At(c), "seed=%d, At%s", seed, c)
				} else {
					assert.GreaterOrEqual(t, f.At(c), Unvisited, "seed=%d, At%s", seed, c)
				}
			}
		}
	}
}

func TestLayerProperty(t *testing.T) {
	for seed := range uint64(20) {
		g := randomGrid(seed, 30, 20, 0, 0.35)
		f := Build(g)
		for y := range g.Height() {
			for x := range g.Width() {
				c := grid.Cell{x, y}
				d, ok := f.Lookup(c)
				if !ok {
					continue
				}
				for _, delta := range []grid.Cell{grid.East, grid.South} {
					d2, ok2 := f.Lookup(c.Add(delta))
					if !ok2 {
						continue
					}
					diff := d - d2
					assert.True(t, diff >= -1 && diff <= 1,
						"seed=%d: cells %s (%d) and %s (%d) differ by more than 1", seed, c, d, c.Add(delta), d2)
				}
			}
		}
	}
}

func TestUnreachablePocket(t *testing.T) {
	g := gridtest.Build(
		"#########",
		"#G..#...#",
		"#...#.S.#",
		"#...#...#",
		"#########",
	)
	f := Build(g)
	for y := 1; y < 4; y++ {
		for x := 5; x < 8; x++ {
			c := grid.Cell{x, y}
			assert.Equal(t, Unvisited, f.At(c), "At%s", c)
			assert.False(t, f.IsReachable(c))
		}
	}
	assert.Equal(t, int32(5), f.At(grid.Cell{3, 3}))
	assert.True(t, f.IsReachable(grid.Cell{3, 3}))
}

func TestBlockedGoal(t *testing.T) {
	g := gridtest.Empty(16, 16, grid.Cell{4, 5})
	g.ToggleBlocked(g.Goal())
	f := Build(g)
	for y := range 16 {
		for x := range 16 {
			c := grid.Cell{x, y}
			if g.IsBlocked(c) {
				assert.Equal(t, Blocked, f.At(c))
			} else {
				assert.Equal(t, Unvisited, f.At(c))
			}
		}
	}
	assert.Equal(t, Unvisited, f.MaxDistance())
}

func TestRebuildResets(t *testing.T) {
	g := randomGrid(3, 20, 20, 0, 0.2)
	f := Build(g)

	// Change obstacles and goal: rebuilding the same field must give the same as a fresh build.
	g.SetBlocked(g.Goal(), true)
	g.SetGoal(grid.Cell{18, 18})
	g.SetBlocked(g.Goal(), false)
	f.Rebuild(g, nil)
	assert.True(t, f.Equal(Build(g)))

	// And a blocked goal must clear every previous distance.
	g.SetBlocked(g.Goal(), true)
	f.Rebuild(g, nil)
	for _, row := range f.Rows() {
		for _, d := range row {
			assert.LessOrEqual(t, d, Unvisited)
		}
	}

	assert.Panics(t, func() { f.Rebuild(gridtest.Empty(10, 20, grid.Cell{1, 1}), nil) })
}

func TestRebuildLayers(t *testing.T) {
	g := randomGrid(11, 25, 25, 0, 0.25)
	f := NewDistanceField(g.Width(), g.Height())
	seen := generics.MakeSet[grid.Cell]()
	wantDistance := GoalDistance
	f.Rebuild(g, func(distance int32, cells []grid.Cell) {
		assert.Equal(t, wantDistance, distance)
		wantDistance++
		assert.NotEmpty(t, cells)
		for _, c := range cells {
			assert.False(t, seen.Has(c), "cell %s in more than one layer", c)
			seen.Insert(c)
			assert.Equal(t, distance, f.At(c))
		}
	})
	assert.Equal(t, f.MaxDistance(), wantDistance-1)

	// Every reachable cell was reported in exactly one layer.
	numReachable := 0
	for y := range g.Height() {
		for x := range g.Width() {
			if f.IsReachable(grid.Cell{x, y}) {
				numReachable++
			}
		}
	}
	assert.Len(t, seen, numReachable)
}

func TestLookup(t *testing.T) {
	g := gridtest.Empty(8, 8, grid.Cell{3, 3})
	f := Build(g)
	d, ok := f.Lookup(grid.Cell{3, 4})
	assert.True(t, ok)
	assert.Equal(t, int32(2), d)

	_, ok = f.Lookup(grid.Cell{0, 0})
	assert.False(t, ok)
	_, ok = f.Lookup(grid.Cell{-1, 3})
	assert.False(t, ok)
	assert.Panics(t, func() { f.At(grid.Cell{8, 0}) })

	rows := f.Rows()
	require.Len(t, rows, 8)
	assert.Equal(t, []int32{-1, 4, 3, 2, 3, 4, 5, -1}, rows[2])
}

package geometry

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/janpfeifer/wavepath/internal/flowfield"
	"github.com/janpfeifer/wavepath/internal/grid"
	"github.com/stretchr/testify/assert"
)

func TestLayout(t *testing.T) {
	l := Layout{CellSize: 45, BorderWidth: 1}
	assert.Equal(t, Rect{X: 91, Y: 136, W: 44, H: 44}, l.CellRect(grid.Cell{2, 3}))
	assert.Equal(t, Point{X: 112.5, Y: 157.5}, l.CellCenter(grid.Cell{2, 3}))
	w, h := l.ScreenSize(16, 16)
	assert.Equal(t, float32(720), w)
	assert.Equal(t, float32(720), h)

	c, ok := l.CellAt(Point{X: 100, Y: 44.9}, 16, 16)
	assert.True(t, ok)
	assert.Equal(t, grid.Cell{2, 0}, c)
	_, ok = l.CellAt(Point{X: 720, Y: 10}, 16, 16)
	assert.False(t, ok)
	_, ok = l.CellAt(Point{X: -1, Y: 10}, 16, 16)
	assert.False(t, ok)
}

func TestPathPolyline(t *testing.T) {
	l := Layout{CellSize: 10}
	path := flowfield.Path{
		Cells: []grid.Cell{{3, 3}, {2, 2}, {1, 2}},
		State: flowfield.StateReached,
	}
	pl := l.PathPolyline(path)
	assert.Equal(t, Polyline{{35, 35}, {25, 25}, {15, 25}}, pl)
	assert.InDelta(t, 10*math32.Sqrt(2)+10, pl.Length(), 1e-4)
	assert.Equal(t, float32(0), Polyline{{1, 1}}.Length())
}

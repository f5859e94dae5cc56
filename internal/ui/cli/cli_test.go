package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/janpfeifer/wavepath/internal/config"
	"github.com/janpfeifer/wavepath/internal/driver"
	"github.com/janpfeifer/wavepath/internal/flowfield"
	"github.com/janpfeifer/wavepath/internal/grid"
	"github.com/janpfeifer/wavepath/internal/grid/gridtest"
	. "github.com/janpfeifer/wavepath/internal/ui/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		text string
		want Command
	}{
		{"t 3 4", Command{Kind: CommandEvent, Event: grid.ToggleObstacle(grid.Cell{3, 4})}},
		{"  G 0, 15 ", Command{Kind: CommandEvent, Event: grid.SetGoal(grid.Cell{0, 15})}},
		{"a 1 1", Command{Kind: CommandEvent, Event: grid.AddStart(grid.Cell{1, 1})}},
		{"s,2,3", Command{Kind: CommandEvent, Event: grid.ReplaceLastStart(grid.Cell{2, 3})}},
		{"q", Command{Kind: CommandEvent, Event: grid.RemoveLastStart()}},
		{"d", Command{Kind: CommandToggleDistances}},
		{"W", Command{Kind: CommandWave}},
		{"j", Command{Kind: CommandDumpJSON}},
		{"h", Command{Kind: CommandHelp}},
		{" x", Command{Kind: CommandExit}},
	}
	for _, tc := range testCases {
		got, err := ParseCommand(tc.text, 16, 16)
		require.NoError(t, err, "parsing %q", tc.text)
		assert.Equal(t, tc.want, got, "parsing %q", tc.text)
	}

	for _, text := range []string{"", "z", "t 3", "t 3 4 5", "q 1 1", "t a b", "t 16 0", "g 0 -1"} {
		_, err := ParseCommand(text, 16, 16)
		assert.Error(t, err, "parsing %q should fail", text)
	}
}

func TestRenderGrid(t *testing.T) {
	g := gridtest.Build(
		"#####",
		"#G..#",
		"#.#S#",
		"#####",
	)
	ff := flowfield.New()
	r := ff.Recompute(g)
	ui := New(nil, nil, false, false)
	lines := strings.Split(strings.TrimRight(ui.RenderGrid(g, r.Field, r), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "    0  1  2  3  4 ", lines[0])
	assert.Equal(t, " 0 ###############", lines[1])
	assert.Equal(t, " 1 ### G  *  . ###", lines[2])
	assert.Equal(t, " 2 ### . ### S ###", lines[3])

	ui.ShowDistances = true
	lines = strings.Split(ui.RenderGrid(g, r.Field, nil), "\n")
	assert.Equal(t, " 1 ### G   2  3###", lines[2])
	assert.Equal(t, " 2 ###  2### S ###", lines[3])
}

func TestRenderStuck(t *testing.T) {
	g := gridtest.Build(
		"#####",
		"#G#S#",
		"#####",
	)
	r := flowfield.New().Recompute(g)
	ui := New(nil, nil, false, false)
	lines := strings.Split(ui.RenderGrid(g, r.Field, r), "\n")
	assert.Equal(t, " 1 ### G ### X ###", lines[2])
}

func TestRun(t *testing.T) {
	d := driver.New(config.Default())
	in := strings.NewReader("a 2 2\nt 99 1\nfoo\nh\nq\nj\nx\nt 3 3\n")
	var out bytes.Buffer
	ui := New(in, &out, false, false)
	require.NoError(t, ui.Run(context.Background(), d))

	g := d.Grid()
	assert.Equal(t, []grid.Cell{{11, 5}}, g.Starts())
	assert.False(t, g.IsBlocked(grid.Cell{3, 3}), "commands after exit must not be executed")
	text := out.String()
	assert.Contains(t, text, "out of the 16x16 grid")
	assert.Contains(t, text, `failed to parse "foo"`)
	assert.Contains(t, text, "animate the wave")
	assert.Contains(t, text, `"agents"`)
}

func TestRunBorderToggle(t *testing.T) {
	d := driver.New(config.Default())
	var out bytes.Buffer
	ui := New(strings.NewReader("t 0 4\nq\nq\nx\n"), &out, false, false)
	require.NoError(t, ui.Run(context.Background(), d))
	text := out.String()
	assert.Contains(t, text, "(0, 4) is on the border, it is always blocked")
	assert.Contains(t, text, "RemoveLastStart had no effect")
	assert.Equal(t, 1, d.Version())
}

func TestRunEndOfInput(t *testing.T) {
	d := driver.New(config.Default())
	var out bytes.Buffer
	ui := New(strings.NewReader("g 2 2\n"), &out, false, false)
	require.NoError(t, ui.Run(context.Background(), d))
	assert.Equal(t, grid.Cell{2, 2}, d.Grid().Goal())
}

func TestAnimateWave(t *testing.T) {
	g := gridtest.Build(
		"#####",
		"#G..#",
		"#####",
	)
	var out bytes.Buffer
	ui := New(nil, &out, false, false)
	ui.WaveDelay = 0
	ui.AnimateWave(context.Background(), g)
	text := out.String()
	assert.Contains(t, text, "Wave layer 1: 1 cells")
	assert.Contains(t, text, "Wave layer 3: 1 cells")
	assert.NotContains(t, text, "Wave layer 4")
	assert.False(t, ui.ShowDistances)
}

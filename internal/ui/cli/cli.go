// Package cli implements a terminal UI for the simulation: it draws the grid, the agents' paths and
// optionally the distance field, and translates typed commands into events for the driver.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/janpfeifer/wavepath/internal/driver"
	"github.com/janpfeifer/wavepath/internal/flowfield"
	"github.com/janpfeifer/wavepath/internal/generics"
	"github.com/janpfeifer/wavepath/internal/grid"
	"github.com/pkg/errors"
	"golang.org/x/term"
	"k8s.io/klog/v2"
)

// CharsPerColumn is the width of one cell on the screen.
const CharsPerColumn = 3

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// displayWidth of s removes its color/control sequences and returns the length of what is left.
func displayWidth(s string) int {
	return len(ansiFilter.ReplaceAllString(s, ""))
}

var (
	blockedStyle = lipgloss.NewStyle().Background(lipgloss.Color("8")).Foreground(lipgloss.Color("7"))
	goalStyle    = lipgloss.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("15")).Bold(true)
	startStyle   = lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0")).Bold(true)
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	stuckStyle   = lipgloss.NewStyle().Background(lipgloss.Color("13")).Foreground(lipgloss.Color("0"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	promptStyle  = lipgloss.NewStyle().Background(lipgloss.Color("5")).Foreground(lipgloss.Color("0"))
)

// UI for the terminal.
type UI struct {
	in  io.Reader
	out io.Writer

	color, clearScreen bool

	// ShowDistances draws the distance of each cell instead of the open cell symbol.
	ShowDistances bool

	// WaveDelay between the layers of the wave animation.
	WaveDelay time.Duration
}

// New creates a UI reading commands from in and drawing to out.
func New(in io.Reader, out io.Writer, color, clearScreen bool) *UI {
	return &UI{
		in:          in,
		out:         out,
		color:       color,
		clearScreen: clearScreen,
		WaveDelay:   100 * time.Millisecond,
	}
}

func (ui *UI) style(s lipgloss.Style, text string) string {
	if !ui.color {
		return text
	}
	return s.Render(text)
}

// terminalWidth returns the width of out if it is a terminal, or 0 otherwise.
func (ui *UI) terminalWidth() int {
	f, ok := ui.out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func (ui *UI) printCentered(block string) {
	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	blockWidth := 0
	for _, line := range lines {
		blockWidth = max(blockWidth, displayWidth(line))
	}
	indent := max((ui.terminalWidth()-blockWidth)/2, 0)
	for _, line := range lines {
		if len(line) == 0 {
			_, _ = fmt.Fprintln(ui.out)
			continue
		}
		_, _ = fmt.Fprintf(ui.out, "%s%s\n", strings.Repeat(" ", indent), line)
	}
}

func centerString(s string, fit int) string {
	if len(s) >= fit {
		return s
	}
	marginLeft := (fit - len(s)) / 2
	marginRight := fit - len(s) - marginLeft
	return strings.Repeat(" ", marginLeft) + s + strings.Repeat(" ", marginRight)
}

// RenderGrid draws the grid with the paths of the result on top. If ShowDistances is set, open cells
// show their distance from field. Result may be nil, and field may be nil if ShowDistances is false.
func (ui *UI) RenderGrid(g *grid.Grid, field *flowfield.DistanceField, result *flowfield.Result) string {
	starts := generics.SetWith(g.Starts()...)
	onPath := generics.MakeSet[grid.Cell]()
	stuck := generics.MakeSet[grid.Cell]()
	if result != nil {
		for _, path := range result.Paths {
			if path.State == flowfield.StateStuck {
				stuck.Insert(path.Last())
			}
			for _, c := range path.Cells {
				onPath.Insert(c)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", CharsPerColumn))
	for x := range g.Width() {
		sb.WriteString(ui.style(faintStyle, centerString(fmt.Sprintf("%d", x), CharsPerColumn)))
	}
	sb.WriteByte('\n')
	for y := range g.Height() {
		sb.WriteString(ui.style(faintStyle, fmt.Sprintf("%2d ", y)))
		for x := range g.Width() {
			sb.WriteString(ui.renderCell(g, field, grid.Cell{x, y}, starts, onPath, stuck))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (ui *UI) renderCell(g *grid.Grid, field *flowfield.DistanceField, c grid.Cell,
	starts, onPath, stuck generics.Set[grid.Cell]) string {
	switch {
	case c == g.Goal():
		return ui.style(goalStyle, centerString(string(grid.SymbolGoal), CharsPerColumn))
	case stuck.Has(c):
		return ui.style(stuckStyle, centerString("X", CharsPerColumn))
	case starts.Has(c):
		return ui.style(startStyle, centerString(string(grid.SymbolStart), CharsPerColumn))
	case g.IsBlocked(c):
		return ui.style(blockedStyle, strings.Repeat(string(grid.SymbolBlocked), CharsPerColumn))
	case onPath.Has(c):
		return ui.style(pathStyle, centerString("*", CharsPerColumn))
	case ui.ShowDistances && field != nil:
		if d, ok := field.Lookup(c); ok {
			return fmt.Sprintf("%*d", CharsPerColumn, d)
		}
		return ui.style(faintStyle, centerString("?", CharsPerColumn))
	default:
		return ui.style(faintStyle, centerString(string(grid.SymbolOpen), CharsPerColumn))
	}
}

// Print the current state of the driver: the grid, the paths and one status line per agent.
func (ui *UI) Print(d *driver.Driver) {
	if ui.clearScreen {
		_, _ = fmt.Fprint(ui.out, "\033c")
	}
	r := d.Result()
	g := d.Grid()
	_, _ = fmt.Fprintf(ui.out, "\nTick #%d: %d agents, %d stuck, goal at %s, farthest cell at distance %d\n\n",
		d.NumTicks(), len(r.Paths), r.NumStuck(), r.Goal, r.Field.MaxDistance())
	ui.printCentered(ui.RenderGrid(g, r.Field, r))
	_, _ = fmt.Fprintln(ui.out)
	for ii, polyline := range d.PathPolylines() {
		path := r.Paths[ii]
		_, _ = fmt.Fprintf(ui.out, "  Agent #%d from %s: %s after %d steps at %s (%.1f display units)\n",
			ii, path.Start(), path.State, path.Steps(), path.Last(), polyline.Length())
	}
}

func (ui *UI) prompt() {
	_, _ = fmt.Fprintf(ui.out, "\n    %s ", ui.style(promptStyle, " command > "))
}

// AnimateWave draws the wave spreading from the goal of g, one layer at a time.
func (ui *UI) AnimateWave(ctx context.Context, g *grid.Grid) {
	field := flowfield.NewDistanceField(g.Width(), g.Height())
	showDistances := ui.ShowDistances
	ui.ShowDistances = true
	defer func() { ui.ShowDistances = showDistances }()
	field.Rebuild(g, func(distance int32, cells []grid.Cell) {
		if ctx.Err() != nil {
			return
		}
		if ui.clearScreen {
			_, _ = fmt.Fprint(ui.out, "\033c")
		}
		_, _ = fmt.Fprintf(ui.out, "\nWave layer %d: %d cells\n\n", distance, len(cells))
		ui.printCentered(ui.RenderGrid(g, field, nil))
		if ui.WaveDelay > 0 {
			time.Sleep(ui.WaveDelay)
		}
	})
}

// execute runs one line typed by the user. It returns true if the user asked to exit.
func (ui *UI) execute(ctx context.Context, d *driver.Driver, line string) (exit bool) {
	g := d.Grid()
	cmd, err := ParseCommand(line, g.Width(), g.Height())
	if err != nil {
		_, _ = fmt.Fprintf(ui.out, "    * %v\n", err)
		ui.prompt()
		return false
	}
	switch cmd.Kind {
	case CommandEvent:
		version := d.Version()
		if err := d.Handle(cmd.Event); err != nil {
			_, _ = fmt.Fprintf(ui.out, "    * %v\n", err)
		} else if d.Version() == version {
			if cmd.Event.Kind == grid.EventToggleObstacle {
				_, _ = fmt.Fprintf(ui.out, "    * %s is on the border, it is always blocked\n", cmd.Event.Cell)
			} else {
				_, _ = fmt.Fprintf(ui.out, "    * %s had no effect\n", cmd.Event)
			}
		}
		if !d.Stale() {
			ui.prompt()
		}
		// Otherwise the prompt is printed after the next tick redraws the grid.
		return false
	case CommandToggleDistances:
		ui.ShowDistances = !ui.ShowDistances
		ui.Print(d)
	case CommandWave:
		ui.AnimateWave(ctx, g)
		ui.Print(d)
	case CommandDumpJSON:
		if err := d.Snapshot(true).WriteJSON(ui.out); err != nil {
			klog.Errorf("Failed to dump snapshot: %+v", err)
		}
	case CommandHelp:
		_, _ = fmt.Fprint(ui.out, HelpText)
	case CommandExit:
		return true
	}
	ui.prompt()
	return false
}

// Run reads commands until the user exits, the input ends or ctx is cancelled. Events are applied
// to the driver as they are typed, and the grid is redrawn on the first tick after a change.
func (ui *UI) Run(ctx context.Context, d *driver.Driver) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(ui.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- scanner.Err()
	}()

	ticker := time.NewTicker(d.TickInterval())
	defer ticker.Stop()
	ui.Print(d)
	_, _ = fmt.Fprint(ui.out, "\n", HelpText)
	ui.prompt()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if d.Stale() && d.Tick(now) {
				ui.Print(d)
				ui.prompt()
			}
		case line, ok := <-lines:
			if !ok {
				_, _ = fmt.Fprintln(ui.out)
				return errors.WithMessage(<-readErr, "failed to read commands")
			}
			if ui.execute(ctx, d, line) {
				_, _ = fmt.Fprintln(ui.out)
				return nil
			}
		}
	}
}

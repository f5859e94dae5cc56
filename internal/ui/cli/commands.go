package cli

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/janpfeifer/wavepath/internal/grid"
	"github.com/pkg/errors"
)

// CommandKind enumerates what a typed line can ask for.
type CommandKind uint8

const (
	// CommandEvent lines carry a grid.Event for the driver.
	CommandEvent CommandKind = iota
	CommandToggleDistances
	CommandWave
	CommandDumpJSON
	CommandHelp
	CommandExit
)

// Command parsed from one line typed by the user.
type Command struct {
	Kind CommandKind

	// Event is only set for CommandEvent.
	Event grid.Event
}

var (
	cellCommandParser   = regexp.MustCompile(`^\s*([tgas])[\s,]+(-?\d+)[\s,]+(-?\d+)[\s,]*$`)
	simpleCommandParser = regexp.MustCompile(`^\s*([qdwjhx])\s*$`)

	cellEvents = map[string]func(grid.Cell) grid.Event{
		"t": grid.ToggleObstacle,
		"g": grid.SetGoal,
		"a": grid.AddStart,
		"s": grid.ReplaceLastStart,
	}
	simpleCommands = map[string]Command{
		"q": {Kind: CommandEvent, Event: grid.RemoveLastStart()},
		"d": {Kind: CommandToggleDistances},
		"w": {Kind: CommandWave},
		"j": {Kind: CommandDumpJSON},
		"h": {Kind: CommandHelp},
		"x": {Kind: CommandExit},
	}
)

// HelpText lists the commands accepted by ParseCommand.
const HelpText = `Commands:
  t x y   toggle obstacle at (x, y)
  g x y   set goal at (x, y)
  a x y   add an agent starting at (x, y)
  s x y   move the last agent's start to (x, y)
  q       remove the last agent
  d       show/hide distances
  w       animate the wave from the goal
  j       dump the last tick as JSON
  h       this help
  x       exit
`

// ParseCommand parses one line of user input. Cells are validated against a width x height grid, so
// the events returned can be handed to the driver as they are.
func ParseCommand(text string, width, height int) (Command, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if matches := simpleCommandParser.FindStringSubmatch(text); len(matches) == 2 {
		return simpleCommands[matches[1]], nil
	}
	matches := cellCommandParser.FindStringSubmatch(text)
	if len(matches) != 4 {
		return Command{}, errors.Errorf("failed to parse %q, type 'h' for help", text)
	}
	var c grid.Cell
	for ii := range 2 {
		v, err := strconv.Atoi(matches[2+ii])
		if err != nil {
			return Command{}, errors.Wrapf(err, "failed to parse coordinate %q in %q", matches[2+ii], text)
		}
		c[ii] = v
	}
	if c.X() < 0 || c.X() >= width || c.Y() < 0 || c.Y() >= height {
		return Command{}, errors.Errorf("cell %s is out of the %dx%d grid", c, width, height)
	}
	return Command{Kind: CommandEvent, Event: cellEvents[matches[1]](c)}, nil
}

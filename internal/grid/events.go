package grid

import "fmt"

// EventKind enumerates the discrete input events that mutate a Grid.
type EventKind uint8

const (
	EventToggleObstacle EventKind = iota
	EventSetGoal
	EventAddStart
	EventReplaceLastStart
	EventRemoveLastStart
	lastEventKind
)

var eventKindNames = [lastEventKind]string{
	"ToggleObstacle", "SetGoal", "AddStart", "ReplaceLastStart", "RemoveLastStart",
}

// String returns the name of the event kind.
func (k EventKind) String() string {
	if k >= lastEventKind {
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
	return eventKindNames[k]
}

// Event is one input action, already translated to grid coordinates by the input layer.
// Cell is ignored for EventRemoveLastStart.
type Event struct {
	Kind EventKind
	Cell Cell
}

// String returns a text representation of the event, for logging.
func (e Event) String() string {
	if e.Kind == EventRemoveLastStart {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s%s", e.Kind, e.Cell)
}

// ToggleObstacle creates the event that flips whether c is blocked.
func ToggleObstacle(c Cell) Event { return Event{Kind: EventToggleObstacle, Cell: c} }

// SetGoal creates the event that moves the goal to c.
func SetGoal(c Cell) Event { return Event{Kind: EventSetGoal, Cell: c} }

// AddStart creates the event that appends a new agent at c.
func AddStart(c Cell) Event { return Event{Kind: EventAddStart, Cell: c} }

// ReplaceLastStart creates the event that moves the last agent to c.
func ReplaceLastStart(c Cell) Event { return Event{Kind: EventReplaceLastStart, Cell: c} }

// RemoveLastStart creates the event that drops the last agent.
func RemoveLastStart() Event { return Event{Kind: EventRemoveLastStart} }

// Apply mutates the grid according to the event. It returns false if the event had no effect:
// toggling a border cell, or removing a start when there are none.
func (g *Grid) Apply(e Event) bool {
	switch e.Kind {
	case EventToggleObstacle:
		if g.IsBorder(e.Cell) {
			return false
		}
		g.ToggleBlocked(e.Cell)
	case EventSetGoal:
		g.SetGoal(e.Cell)
	case EventAddStart:
		g.AddStart(e.Cell)
	case EventReplaceLastStart:
		g.ReplaceLastStart(e.Cell)
	case EventRemoveLastStart:
		return g.RemoveLastStart()
	default:
		return false
	}
	return true
}

package interaction

import "image"

// PointerKind enumerates the pointer actions delivered by a display backend.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	default:
		return "unknown"
	}
}

// PointerEvent is a primary-button pointer action at a frame coordinate.
type PointerEvent struct {
	Kind PointerKind
	Pos  image.Point
}

// Key is an operator key signal. Only commit and quit carry meaning.
type Key int

const (
	KeyNone Key = iota
	KeyCommit
	KeyQuit
)

func (k Key) String() string {
	switch k {
	case KeyCommit:
		return "commit"
	case KeyQuit:
		return "quit"
	default:
		return "none"
	}
}

// Event is one item from the display's input stream: either a pointer action
// or a key signal.
type Event struct {
	Pointer *PointerEvent
	Key     Key
}

// PointerAt builds a pointer Event.
func PointerAt(kind PointerKind, x, y int) Event {
	return Event{Pointer: &PointerEvent{Kind: kind, Pos: image.Pt(x, y)}}
}

// KeyEvent builds a key Event.
func KeyEvent(k Key) Event { return Event{Key: k} }

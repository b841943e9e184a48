package muon

import "time"

// RawEvent is a single low-level input event as delivered by the rendering
// loop (or read from a bridge input channel). The core only consumes raw
// events; it never generates them from hardware itself.
type RawEvent struct {
	Kind      RawKind
	X, Y      float64 // pointer position in root coordinates
	Button    MouseButton
	Key       int  // platform key code (valid for RawKeyDown/RawKeyUp)
	Rune      rune // typed character, if any
	Modifiers KeyModifiers
	Time      time.Time
	Seq       uint64 // assigned by the producer; used for bridge coalesce/drop detection
}

// Event is a semantically typed event produced by the translator (or pushed
// directly by attribute mutation) and dispatched to a target node's receivers.
type Event struct {
	Category Category
	Raw      RawEvent // originating raw event; zero for PropertyChange
	Target   *Node

	// Drag fields (valid for CategoryDragStart, CategoryDragMove, CategoryDragEnd).
	StartX, StartY float64 // origin point of the drag, root coordinates
	DeltaX, DeltaY float64 // delta from the drag origin
	MoveX, MoveY   float64 // delta from the previous drag event
	Cancelled      bool    // true when the drag ended because the origin node was removed

	// Property-change fields (valid for CategoryPropertyChange).
	Attr string
	Old  any
	New  any
}

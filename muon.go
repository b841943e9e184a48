package muon

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is opaque white.
var ColorWhite = Color{1, 1, 1, 1}

// ColorClear is fully transparent black, the default node background.
var ColorClear = Color{0, 0, 0, 0}

// Vec2 is a 2D vector used for positions, offsets, and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Category identifies a semantic event category. Receivers are attached to a
// node under exactly one category.
type Category uint8

const (
	CategoryClick          Category = iota // press then release over the same node, within thresholds
	CategoryDragStart                      // movement exceeded the drag distance threshold
	CategoryDragMove                       // fires for each pointer move while dragging
	CategoryDragEnd                        // pointer released after dragging (or drag cancelled)
	CategoryPropertyChange                 // a node attribute was mutated
	CategoryRaw                            // unprocessed input event, delivered as-is
)

// String returns the category name for logging.
func (c Category) String() string {
	switch c {
	case CategoryClick:
		return "click"
	case CategoryDragStart:
		return "drag-start"
	case CategoryDragMove:
		return "drag-move"
	case CategoryDragEnd:
		return "drag-end"
	case CategoryPropertyChange:
		return "property-change"
	case CategoryRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// RawKind identifies the kind of a raw input event as produced by the
// rendering-loop collaborator (or read from the bridge input channel).
type RawKind uint8

const (
	RawPointerDown RawKind = iota // a pointer button was pressed
	RawPointerUp                  // a pointer button was released
	RawPointerMove                // the pointer position changed
	RawKeyDown                    // a key was pressed
	RawKeyUp                      // a key was released
	RawQuit                       // the application was asked to terminate
)

// String returns the raw kind name for logging.
func (k RawKind) String() string {
	switch k {
	case RawPointerDown:
		return "pointer-down"
	case RawPointerUp:
		return "pointer-up"
	case RawPointerMove:
		return "pointer-move"
	case RawKeyDown:
		return "key-down"
	case RawKeyUp:
		return "key-up"
	case RawQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

package muon

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// nodeIDCounter is a plain counter (node construction is main-thread only).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the fundamental element of the UI hierarchy. A single flat struct
// is used for all node kinds to avoid interface dispatch on the hot path;
// concrete components express their variant through bounds, the custom image,
// attached receivers, and (for proxy nodes) a bridge session.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	Parent   *Node
	children []*Node

	// Bounds in parent-local coordinates.
	X, Y          float64
	Width, Height float64

	// Visibility & input
	Visible bool
	Focused bool

	// Paint
	Background  Color
	customImage *ebiten.Image // user-provided canvas drawn over the background

	// Receivers, bucketed by category. Insertion order is dispatch order.
	receivers map[Category][]*Receiver

	// Observed attribute store. Mutation via Set pushes a property-change event.
	attrs map[string]any

	// Proxy fields: a node with a session renders a nested app's frames and
	// forwards input into it instead of dispatching locally.
	session  *Session
	frameImg *ebiten.Image
	frameSeq uint64

	// Internal
	st       *Stage // set on the stage root only
	disposed bool
}

// NewNode creates a node with the given name and bounds.
func NewNode(name string, x, y, w, h float64) *Node {
	n := &Node{Name: name, X: x, Y: y, Width: w, Height: h}
	n.ID = nextNodeID()
	n.Visible = true
	n.Background = ColorClear
	return n
}

// SetCustomImage sets a user-provided *ebiten.Image drawn in place of the
// node's background fill. Components render their visuals into this canvas.
func (n *Node) SetCustomImage(img *ebiten.Image) {
	n.customImage = img
}

// CustomImage returns the user-provided image, or nil if not set.
func (n *Node) CustomImage() *ebiten.Image {
	return n.customImage
}

// --- Tree manipulation ---

// Add appends child to this node's children. The child becomes the topmost
// sibling for paint and hit-test priority.
//
// Returns a *StructureError if child already has a parent (detach it first)
// or if the attach would create a cycle. The tree is left unchanged on error.
func (n *Node) Add(child *Node) error {
	if child == nil {
		return &StructureError{Op: "add", Node: n.Name, Reason: "child is nil"}
	}
	if child.Parent != nil {
		return &StructureError{Op: "add", Node: child.Name, Reason: "already has a parent"}
	}
	if isAncestor(child, n) {
		return &StructureError{Op: "add", Node: child.Name, Reason: "attach would create a cycle"}
	}
	child.Parent = n
	n.children = append(n.children, child)
	return nil
}

// RemoveChild detaches child from this node and recursively detaches the
// receivers of child and all its descendants, so no dispatch target dangles.
// No-op if child is not a child of this node.
//
// A detached proxy keeps its bridge session running so the subtree can be
// re-attached; Dispose it (or close its Session) to terminate the worker.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.Parent != n {
		return
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	clearReceivers(child)
}

// RemoveFromParent detaches this node (and its subtree's receivers) from its
// parent. No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children and their subtree receivers.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.Parent = nil
		clearReceivers(child)
	}
	n.children = n.children[:0]
}

// Dispose removes this node from its parent, marks it as disposed, and
// recursively disposes all descendants. Disposed nodes must not be reused.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.receivers = nil
	n.attrs = nil
	n.customImage = nil
	n.frameImg = nil
	if n.session != nil {
		n.session.Close()
		n.session = nil
	}
	n.st = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// Children returns the child list, bottom-most first. The returned slice MUST
// NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Root returns the topmost ancestor of this node (itself if detached).
func (n *Node) Root() *Node {
	r := n
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// stage returns the Stage owning this node's tree, or nil if the node is not
// attached under a stage root.
func (n *Node) stage() *Stage {
	return n.Root().st
}

// --- Geometry ---

// Bounds returns the node's rectangle in parent-local coordinates.
func (n *Node) Bounds() Rect {
	return Rect{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}

// AbsolutePosition returns the node's position in root coordinates, composed
// from the ancestor chain's translations.
func (n *Node) AbsolutePosition() (float64, float64) {
	x, y := n.X, n.Y
	for p := n.Parent; p != nil; p = p.Parent {
		x += p.X
		y += p.Y
	}
	return x, y
}

// ToLocal converts a point from root coordinates to this node's local space.
func (n *Node) ToLocal(x, y float64) (float64, float64) {
	ax, ay := n.AbsolutePosition()
	return x - ax, y - ay
}

// ToAbsolute converts a point from this node's local space to root coordinates.
func (n *Node) ToAbsolute(x, y float64) (float64, float64) {
	ax, ay := n.AbsolutePosition()
	return x + ax, y + ay
}

// SetPosition sets the node's local position and pushes property-change
// events for the "x" and "y" attributes.
func (n *Node) SetPosition(x, y float64) {
	oldX, oldY := n.X, n.Y
	n.X = x
	n.Y = y
	if oldX != x {
		n.emitPropertyChange("x", oldX, x)
	}
	if oldY != y {
		n.emitPropertyChange("y", oldY, y)
	}
}

// SetSize sets the node's dimensions and pushes property-change events for
// the "width" and "height" attributes.
func (n *Node) SetSize(w, h float64) {
	oldW, oldH := n.Width, n.Height
	n.Width = w
	n.Height = h
	if oldW != w {
		n.emitPropertyChange("width", oldW, w)
	}
	if oldH != h {
		n.emitPropertyChange("height", oldH, h)
	}
}

// --- Attributes ---

// Set stores an attribute value and pushes a property-change event carrying
// the attribute name, old value, and new value, targeting this node. This is
// the push model: property-change events are never derived from raw input.
func (n *Node) Set(attr string, value any) {
	if n.attrs == nil {
		n.attrs = make(map[string]any)
	}
	old := n.attrs[attr]
	n.attrs[attr] = value
	n.emitPropertyChange(attr, old, value)
}

// Attr returns the stored attribute value, or nil if never set.
func (n *Node) Attr(attr string) any {
	return n.attrs[attr]
}

func (n *Node) emitPropertyChange(attr string, old, value any) {
	evt := Event{
		Category: CategoryPropertyChange,
		Target:   n,
		Attr:     attr,
		Old:      old,
		New:      value,
	}
	if st := n.stage(); st != nil {
		st.dispatch(evt)
	} else {
		deliver(evt)
	}
}

// --- Hit testing ---

// HitTest returns the deepest, most-recently-added visible node whose bounds
// contain the point, walking depth-first with later siblings (topmost) tested
// first. x and y are in this node's parent space. Returns nil on miss.
func (n *Node) HitTest(x, y float64) *Node {
	if !n.Visible {
		return nil
	}
	lx, ly := x-n.X, y-n.Y
	for i := len(n.children) - 1; i >= 0; i-- {
		if hit := n.children[i].HitTest(lx, ly); hit != nil {
			return hit
		}
	}
	if lx >= 0 && lx <= n.Width && ly >= 0 && ly <= n.Height {
		return n
	}
	return nil
}

// --- Helpers ---

// isAncestor reports whether candidate is node or an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// clearReceivers drops all receivers of node and its descendants.
func clearReceivers(node *Node) {
	node.receivers = nil
	for _, child := range node.children {
		clearReceivers(child)
	}
}

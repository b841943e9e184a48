package muon

import (
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Monitor observes every event the stage dispatches, before the target
// node's receivers run. Monitors see events whose target has been removed
// (cancelled drags), which per-node receivers by definition cannot.
type Monitor func(Event)

// Stage is the top-level object that owns the node tree, the translator
// state, and the dispatch pipeline for one process. Standalone applications
// have exactly one stage; a nested application's stage renders to the frame
// channel instead of a window.
type Stage struct {
	root    *Node
	cfg     Config
	focused *Node

	// ClearColor fills the background each frame.
	ClearColor Color

	// Translator state
	pointer pointerState
	rawSeq  uint64

	// Stage-level observers
	monitors []Monitor

	// Synthetic input (tests, demos); consumed one per Update like real input.
	injectQueue []RawEvent

	// Polled device state (standalone mode)
	poll pollState
}

// NewStage creates a stage with a root node of the given size at the origin.
func NewStage(width, height float64) *Stage {
	return NewStageWithConfig(width, height, DefaultConfig())
}

// NewStageWithConfig creates a stage with explicit translator configuration.
func NewStageWithConfig(width, height float64, cfg Config) *Stage {
	root := NewNode("root", 0, 0, width, height)
	s := &Stage{root: root, cfg: cfg, ClearColor: ColorWhite}
	root.st = s
	return s
}

// Root returns the stage's root node.
func (s *Stage) Root() *Node {
	return s.root
}

// Config returns the stage's translator configuration.
func (s *Stage) Config() Config {
	return s.cfg
}

// SetConfig replaces the translator configuration. Takes effect on the next
// raw event; an in-progress gesture keeps its recorded state.
func (s *Stage) SetConfig(cfg Config) {
	s.cfg = cfg
}

// AddMonitor registers a stage-level event observer.
func (s *Stage) AddMonitor(m Monitor) {
	s.monitors = append(s.monitors, m)
}

// HitTest returns the deepest, most-recently-added visible node containing
// the point in root coordinates, or nil.
func (s *Stage) HitTest(x, y float64) *Node {
	return s.root.HitTest(x, y)
}

// Focus gives keyboard focus to the node, removing it from the previous
// holder. Pass nil to clear focus. Key events are routed to the focused node.
func (s *Stage) Focus(n *Node) {
	if s.focused == n {
		return
	}
	if s.focused != nil {
		s.focused.Focused = false
		s.focused.emitPropertyChange("focused", true, false)
	}
	s.focused = n
	if n != nil {
		n.Focused = true
		n.emitPropertyChange("focused", false, true)
	}
}

// FocusedNode returns the node holding keyboard focus, or nil.
func (s *Stage) FocusedNode() *Node {
	return s.focused
}

// dispatch runs stage monitors and then the target node's receivers.
// Monitor and receiver failures are isolated per callback.
func (s *Stage) dispatch(evt Event) {
	for _, m := range s.monitors {
		runMonitor(m, evt)
	}
	deliver(evt)
}

func runMonitor(m Monitor, evt Event) {
	defer func() {
		if cause := recover(); cause != nil {
			slog.Error("muon: monitor panicked", "category", evt.Category.String(), "cause", cause)
		}
	}()
	m(evt)
}

// nextRaw stamps a locally produced raw event with a sequence number and the
// current time.
func (s *Stage) nextRaw(kind RawKind, x, y float64) RawEvent {
	s.rawSeq++
	return RawEvent{Kind: kind, X: x, Y: y, Time: time.Now(), Seq: s.rawSeq}
}

// Update advances the stage by one frame: it consumes pending injected input
// or polls the real input devices, translating and dispatching each raw event
// to completion before the next. Call from your ebiten.Game Update method.
func (s *Stage) Update() {
	if s.consumeInjected() {
		return
	}
	s.pollInput()
}

// Draw paints the node tree onto the screen in child order, topmost last.
// Call from your ebiten.Game Draw method.
func (s *Stage) Draw(screen *ebiten.Image) {
	screen.Fill(s.ClearColor.toRGBA())
	paintNode(s.root, screen, 0, 0)
}

// Close tears down every bridge session owned by proxy nodes in the tree.
// Safe to call at any time and more than once; the bridge terminates workers
// that would otherwise be orphaned. Only the current tree is walked: a proxy
// removed earlier via RemoveChild must be disposed separately.
func (s *Stage) Close() {
	closeSessions(s.root)
}

func closeSessions(n *Node) {
	if n.session != nil {
		n.session.Close()
	}
	for _, child := range n.children {
		closeSessions(child)
	}
}

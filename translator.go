package muon

import (
	"log/slog"
	"math"
)

// pointerState tracks the single in-progress pointer interaction needed to
// recognize multi-step gestures (click vs drag).
type pointerState struct {
	down     bool
	button   MouseButton
	downTime int64 // unix nanos of the button-down raw event
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	origin   *Node // node under the pointer at button-down; drag target is sticky
	dragging bool
}

func (ps *pointerState) reset() {
	*ps = pointerState{}
}

// Feed consumes one raw input event, translating it into zero or more
// semantic events and dispatching them to completion before returning.
// Dispatch is single-threaded and synchronous: the rendering loop feeds one
// raw event at a time.
func (s *Stage) Feed(raw RawEvent) {
	switch raw.Kind {
	case RawPointerDown, RawPointerUp, RawPointerMove:
		s.feedPointer(raw)
	case RawKeyDown, RawKeyUp:
		s.feedKey(raw)
	case RawQuit:
		s.dispatch(Event{Category: CategoryRaw, Raw: raw, Target: s.root})
	}
}

func (s *Stage) feedPointer(raw RawEvent) {
	ps := &s.pointer
	target := s.HitTest(raw.X, raw.Y)

	// A press that landed on a proxy node starts a forwarded interaction:
	// every pointer event until the release goes over the bridge, translated
	// into nested coordinates, instead of being dispatched locally. The
	// nested process runs its own full translate/dispatch pipeline.
	if ps.down && ps.origin != nil && ps.origin.session != nil {
		s.forwardRaw(ps.origin, raw)
		s.trackPointer(raw, target)
		return
	}
	if !ps.down && target != nil && target.session != nil {
		s.forwardRaw(target, raw)
		s.trackPointer(raw, target)
		return
	}

	// Raw passthrough re-hit-tests every event, unlike drag targeting.
	if target != nil {
		s.dispatch(Event{Category: CategoryRaw, Raw: raw, Target: target})
	}

	switch raw.Kind {
	case RawPointerDown:
		if ps.down {
			return // a second button while one is held does not restart the gesture
		}
		ps.down = true
		ps.button = raw.Button
		ps.downTime = raw.Time.UnixNano()
		ps.startX, ps.startY = raw.X, raw.Y
		ps.lastX, ps.lastY = raw.X, raw.Y
		ps.origin = target
		ps.dragging = false

	case RawPointerMove:
		if !ps.down {
			return
		}
		if !s.originLive() {
			s.cancelDrag(raw)
			return
		}
		dx := raw.X - ps.startX
		dy := raw.Y - ps.startY
		if !ps.dragging && math.Hypot(dx, dy) > s.cfg.DragMinDistance {
			ps.dragging = true
			s.dispatch(s.dragEvent(CategoryDragStart, raw))
		}
		if ps.dragging {
			s.dispatch(s.dragEvent(CategoryDragMove, raw))
		}
		ps.lastX, ps.lastY = raw.X, raw.Y

	case RawPointerUp:
		if !ps.down {
			return
		}
		if !s.originLive() {
			s.cancelDrag(raw)
			return
		}
		switch {
		case ps.dragging:
			s.dispatch(s.dragEvent(CategoryDragEnd, raw))
		case ps.origin != nil && target == ps.origin && s.withinClickWindow(raw):
			s.dispatch(Event{Category: CategoryClick, Raw: raw, Target: ps.origin})
		case ps.origin != nil:
			// Held too long or released elsewhere: reinterpreted as a drag.
			s.dispatch(s.dragEvent(CategoryDragStart, raw))
			s.dispatch(s.dragEvent(CategoryDragEnd, raw))
		}
		ps.reset()
	}
}

// withinClickWindow reports whether the release stayed inside the configured
// click time window. A non-positive ClickMaxDuration disables the check.
func (s *Stage) withinClickWindow(raw RawEvent) bool {
	if s.cfg.ClickMaxDuration <= 0 {
		return true
	}
	return raw.Time.UnixNano()-s.pointer.downTime <= int64(s.cfg.ClickMaxDuration)
}

// dragEvent builds a drag-phase event. Drag targeting is sticky: the target
// is always the node where the drag originated, even if the pointer has left
// its bounds or all node bounds entirely.
func (s *Stage) dragEvent(category Category, raw RawEvent) Event {
	ps := &s.pointer
	return Event{
		Category: category,
		Raw:      raw,
		Target:   ps.origin,
		StartX:   ps.startX,
		StartY:   ps.startY,
		DeltaX:   raw.X - ps.startX,
		DeltaY:   raw.Y - ps.startY,
		MoveX:    raw.X - ps.lastX,
		MoveY:    raw.Y - ps.lastY,
	}
}

// originLive reports whether the drag origin node is still part of this
// stage's tree. A nil origin (press over empty space) counts as live.
func (s *Stage) originLive() bool {
	origin := s.pointer.origin
	if origin == nil {
		return true
	}
	return !origin.disposed && origin.Root() == s.root
}

// cancelDrag ends the in-progress gesture because its origin node was removed
// from the tree. The drag-end carries the cancellation flag; the origin's
// receivers are already detached, so only stage monitors observe it.
func (s *Stage) cancelDrag(raw RawEvent) {
	ps := &s.pointer
	err := &TargetLostError{Node: ps.origin.Name}
	slog.Warn("muon: drag cancelled", "error", err)
	evt := s.dragEvent(CategoryDragEnd, raw)
	evt.Cancelled = true
	s.dispatch(evt)
	ps.reset()
}

// trackPointer keeps the minimal down/position bookkeeping while events are
// being forwarded to a nested session rather than translated locally.
func (s *Stage) trackPointer(raw RawEvent, target *Node) {
	ps := &s.pointer
	switch raw.Kind {
	case RawPointerDown:
		if !ps.down {
			ps.down = true
			ps.button = raw.Button
			ps.downTime = raw.Time.UnixNano()
			ps.startX, ps.startY = raw.X, raw.Y
			ps.origin = target
		}
	case RawPointerUp:
		ps.reset()
	}
	ps.lastX, ps.lastY = raw.X, raw.Y
}

func (s *Stage) feedKey(raw RawEvent) {
	target := s.focused
	if target != nil && (target.disposed || target.Root() != s.root) {
		// The focus holder left the tree. Drop focus so keys stop routing to
		// it; a detached proxy must no longer receive forwarded input.
		target.Focused = false
		s.focused = nil
		target = nil
	}
	if target != nil && target.session != nil {
		s.forwardRaw(target, raw)
		return
	}
	s.dispatch(Event{Category: CategoryRaw, Raw: raw, Target: target})
}

// forwardRaw translates a raw event into the proxy node's nested coordinate
// space and sends it over the session's input channel. Events forwarded to a
// dead session are dropped; the session reports that once via its status
// callback, not per event.
func (s *Stage) forwardRaw(proxy *Node, raw RawEvent) {
	ax, ay := proxy.AbsolutePosition()
	raw.X -= ax
	raw.Y -= ay
	proxy.session.Forward(raw)
}

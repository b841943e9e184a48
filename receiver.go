package muon

import "log/slog"

// Handler is a receiver callback. It is invoked synchronously on the dispatch
// thread with the event and the node the receiver matched on; it must not
// block indefinitely.
type Handler func(Event, *Node)

// Receiver binds a handler to one semantic event category, with optional
// per-receiver filter state. A single receiver instance may be attached to
// many nodes simultaneously (shared, not cloned), so one handler can
// aggregate events from a group of nodes.
type Receiver struct {
	category Category
	fn       Handler

	// attrs filters property-change dispatch by attribute name. Empty means
	// all attributes match. Only consulted for CategoryPropertyChange.
	attrs map[string]struct{}

	// kinds filters raw dispatch by raw event kind. Empty means all kinds
	// match. Only consulted for CategoryRaw.
	kinds map[RawKind]struct{}
}

// NewReceiver creates a receiver for the given category with no filter.
func NewReceiver(category Category, fn Handler) *Receiver {
	return &Receiver{category: category, fn: fn}
}

// OnClick creates a click receiver.
func OnClick(fn Handler) *Receiver {
	return NewReceiver(CategoryClick, fn)
}

// OnDragStart creates a drag-start receiver.
func OnDragStart(fn Handler) *Receiver {
	return NewReceiver(CategoryDragStart, fn)
}

// OnDragMove creates a drag-move receiver.
func OnDragMove(fn Handler) *Receiver {
	return NewReceiver(CategoryDragMove, fn)
}

// OnDragEnd creates a drag-end receiver. The handler also sees cancelled
// drags (Event.Cancelled set) when it is attached to a still-live node.
func OnDragEnd(fn Handler) *Receiver {
	return NewReceiver(CategoryDragEnd, fn)
}

// OnPropertyChange creates a property-change receiver that matches only the
// named attributes. With no names, every attribute matches.
func OnPropertyChange(fn Handler, attrs ...string) *Receiver {
	r := NewReceiver(CategoryPropertyChange, fn)
	if len(attrs) > 0 {
		r.attrs = make(map[string]struct{}, len(attrs))
		for _, a := range attrs {
			r.attrs[a] = struct{}{}
		}
	}
	return r
}

// OnRaw creates a raw-passthrough receiver that matches only the given raw
// kinds. With no kinds, every raw event matches. Proxy nodes use raw
// receivers to forward input across the process boundary.
func OnRaw(fn Handler, kinds ...RawKind) *Receiver {
	r := NewReceiver(CategoryRaw, fn)
	if len(kinds) > 0 {
		r.kinds = make(map[RawKind]struct{}, len(kinds))
		for _, k := range kinds {
			r.kinds[k] = struct{}{}
		}
	}
	return r
}

// Category returns the semantic category this receiver is bound to.
func (r *Receiver) Category() Category {
	return r.category
}

// matches applies the receiver's filter state to an event of its category.
func (r *Receiver) matches(evt Event) bool {
	switch r.category {
	case CategoryPropertyChange:
		if len(r.attrs) == 0 {
			return true
		}
		_, ok := r.attrs[evt.Attr]
		return ok
	case CategoryRaw:
		if len(r.kinds) == 0 {
			return true
		}
		_, ok := r.kinds[evt.Raw.Kind]
		return ok
	default:
		return true
	}
}

// --- Attachment ---

// Attach registers the receiver under this node's bucket for the receiver's
// category. Attaching the same receiver instance twice to the same node is a
// no-op, so a shared receiver is invoked at most once per dispatch per node.
func (n *Node) Attach(r *Receiver) {
	if r == nil {
		return
	}
	if n.receivers == nil {
		n.receivers = make(map[Category][]*Receiver)
	}
	bucket := n.receivers[r.category]
	for _, existing := range bucket {
		if existing == r {
			return
		}
	}
	n.receivers[r.category] = append(bucket, r)
}

// Detach removes the receiver from this node. Other nodes sharing the same
// receiver instance are unaffected.
func (n *Node) Detach(r *Receiver) {
	bucket := n.receivers[r.category]
	for i, existing := range bucket {
		if existing == r {
			copy(bucket[i:], bucket[i+1:])
			bucket[len(bucket)-1] = nil
			n.receivers[r.category] = bucket[:len(bucket)-1]
			return
		}
	}
}

// Receivers returns the node's receivers for a category, in attachment
// order. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Receivers(category Category) []*Receiver {
	return n.receivers[category]
}

// --- Dispatch ---

// deliver invokes the target node's receivers for the event's category, in
// attachment order. Every matching receiver runs; a panicking handler is
// recovered, logged, and never prevents the remaining receivers from running.
// The bucket is snapshotted first: a handler may attach or detach receivers
// on the node it is running for (a one-shot receiver detaches itself), and
// that must not disturb the in-flight iteration.
func deliver(evt Event) {
	n := evt.Target
	if n == nil {
		return
	}
	bucket := n.receivers[evt.Category]
	if len(bucket) == 0 {
		return
	}
	snapshot := append([]*Receiver(nil), bucket...)
	for _, r := range snapshot {
		if !r.matches(evt) {
			continue
		}
		invoke(r, evt, n)
	}
}

// invoke runs a single receiver with per-receiver panic isolation. One
// misbehaving handler must not break the input pipeline.
func invoke(r *Receiver, evt Event, n *Node) {
	defer func() {
		if cause := recover(); cause != nil {
			err := &HandlerError{Category: evt.Category, Node: n.Name, Cause: cause}
			slog.Error("muon: receiver panicked", "error", err)
		}
	}()
	r.fn(evt, n)
}

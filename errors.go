package muon

import "fmt"

// StructureError reports an invalid tree mutation: attaching a node that
// already has a parent, or an attach that would create a cycle. Surfaced at
// attach time; the tree is left unchanged.
type StructureError struct {
	Op     string // "add"
	Node   string
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("muon: %s %q: %s", e.Op, e.Node, e.Reason)
}

// TargetLostError reports that the origin node of an in-progress drag was
// removed from the tree. The drag is cancelled, not fatal: a drag-end event
// with Cancelled set is routed to stage monitors.
type TargetLostError struct {
	Node string
}

func (e *TargetLostError) Error() string {
	return fmt.Sprintf("muon: drag origin %q removed mid-gesture, drag cancelled", e.Node)
}

// HandlerError reports a receiver callback that panicked during dispatch.
// The panic is recovered per-receiver; remaining receivers still run and
// translator state is unaffected.
type HandlerError struct {
	Category Category
	Node     string
	Cause    any
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("muon: %s receiver on %q panicked: %v", e.Category, e.Node, e.Cause)
}

// BridgeStartupError reports a nested application worker that failed to
// signal readiness. The session is Crashed and the error is returned by
// StartApp.
type BridgeStartupError struct {
	Path  string
	Cause error
}

func (e *BridgeStartupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("muon: nested app %q failed to start: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("muon: nested app %q failed to start", e.Path)
}

func (e *BridgeStartupError) Unwrap() error { return e.Cause }

// BridgeChannelError reports a channel read/write failure after a session
// reached Running. The session transitions to Crashed; the proxy node keeps
// rendering the last received frame.
type BridgeChannelError struct {
	Direction string // "input" or "frame"
	Cause     error
}

func (e *BridgeChannelError) Error() string {
	return fmt.Sprintf("muon: bridge %s channel: %v", e.Direction, e.Cause)
}

func (e *BridgeChannelError) Unwrap() error { return e.Cause }

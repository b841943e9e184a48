package muon

import (
	"testing"
)

func TestAttachIdempotent(t *testing.T) {
	n := NewNode("n", 0, 0, 10, 10)
	calls := 0
	r := OnClick(func(Event, *Node) { calls++ })
	n.Attach(r)
	n.Attach(r)

	deliver(Event{Category: CategoryClick, Target: n})
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (double attach must be a no-op)", calls)
	}
}

func TestSharedReceiverAcrossNodes(t *testing.T) {
	a := NewNode("a", 0, 0, 10, 10)
	b := NewNode("b", 0, 0, 10, 10)
	var targets []string
	r := OnClick(func(_ Event, n *Node) { targets = append(targets, n.Name) })
	a.Attach(r)
	b.Attach(r)

	deliver(Event{Category: CategoryClick, Target: a})
	deliver(Event{Category: CategoryClick, Target: b})

	if len(targets) != 2 || targets[0] != "a" || targets[1] != "b" {
		t.Errorf("targets = %v, want [a b] (once per dispatch per node)", targets)
	}
}

func TestDispatchAttachmentOrder(t *testing.T) {
	n := NewNode("n", 0, 0, 10, 10)
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		n.Attach(OnClick(func(Event, *Node) { order = append(order, i) }))
	}

	deliver(Event{Category: CategoryClick, Target: n})
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}

func TestPanickingReceiverIsolated(t *testing.T) {
	n := NewNode("n", 0, 0, 10, 10)
	var survived int
	n.Attach(OnClick(func(Event, *Node) { panic("bad handler") }))
	n.Attach(OnClick(func(Event, *Node) { survived++ }))

	deliver(Event{Category: CategoryClick, Target: n})
	deliver(Event{Category: CategoryClick, Target: n})
	if survived != 2 {
		t.Errorf("sibling receiver ran %d times, want 2 (failure must not stop dispatch)", survived)
	}
}

func TestDetachReceiver(t *testing.T) {
	n := NewNode("n", 0, 0, 10, 10)
	calls := 0
	r := OnClick(func(Event, *Node) { calls++ })
	keep := OnClick(func(Event, *Node) {})
	n.Attach(r)
	n.Attach(keep)
	n.Detach(r)

	deliver(Event{Category: CategoryClick, Target: n})
	if calls != 0 {
		t.Errorf("detached receiver ran %d times, want 0", calls)
	}
	if got := len(n.Receivers(CategoryClick)); got != 1 {
		t.Errorf("remaining receivers = %d, want 1", got)
	}
}

func TestReceiverDetachingItselfMidDispatch(t *testing.T) {
	n := NewNode("n", 0, 0, 10, 10)
	var calls []string
	var once *Receiver
	once = OnClick(func(_ Event, node *Node) {
		calls = append(calls, "once")
		node.Detach(once)
	})
	n.Attach(once)
	n.Attach(OnClick(func(Event, *Node) { calls = append(calls, "sibling") }))

	deliver(Event{Category: CategoryClick, Target: n})
	if len(calls) != 2 || calls[0] != "once" || calls[1] != "sibling" {
		t.Fatalf("calls = %v, want [once sibling] (self-detach must not skip siblings)", calls)
	}

	// The one-shot receiver is gone on the next dispatch.
	calls = calls[:0]
	deliver(Event{Category: CategoryClick, Target: n})
	if len(calls) != 1 || calls[0] != "sibling" {
		t.Errorf("calls = %v, want [sibling]", calls)
	}
}

func TestReceiverAttachingMidDispatch(t *testing.T) {
	n := NewNode("n", 0, 0, 10, 10)
	calls := 0
	late := OnClick(func(Event, *Node) { calls++ })
	n.Attach(OnClick(func(_ Event, node *Node) { node.Attach(late) }))

	// A receiver attached during dispatch joins from the next event on.
	deliver(Event{Category: CategoryClick, Target: n})
	if calls != 0 {
		t.Errorf("late receiver ran %d times during its attaching dispatch, want 0", calls)
	}
	deliver(Event{Category: CategoryClick, Target: n})
	if calls != 1 {
		t.Errorf("late receiver ran %d times on the next dispatch, want 1", calls)
	}
}

func TestPropertyChangeAttrFilter(t *testing.T) {
	n := NewNode("n", 0, 0, 10, 10)
	var widths, all int
	n.Attach(OnPropertyChange(func(Event, *Node) { widths++ }, "width"))
	n.Attach(OnPropertyChange(func(Event, *Node) { all++ }))

	n.Set("width", 50)
	n.Set("color", "red")

	if widths != 1 {
		t.Errorf("filtered receiver calls = %d, want 1", widths)
	}
	if all != 2 {
		t.Errorf("unfiltered receiver calls = %d, want 2", all)
	}
}

func TestPropertyChangeCarriesOldAndNew(t *testing.T) {
	n := NewNode("n", 0, 0, 10, 10)
	var got Event
	n.Attach(OnPropertyChange(func(evt Event, _ *Node) { got = evt }, "label"))

	n.Set("label", "first")
	if got.Attr != "label" || got.Old != nil || got.New != "first" {
		t.Errorf("first change = (%v, %v -> %v)", got.Attr, got.Old, got.New)
	}
	n.Set("label", "second")
	if got.Old != "first" || got.New != "second" {
		t.Errorf("second change = (%v -> %v), want (first -> second)", got.Old, got.New)
	}
	if n.Attr("label") != "second" {
		t.Errorf("Attr = %v, want second", n.Attr("label"))
	}
}

func TestRawKindFilter(t *testing.T) {
	n := NewNode("n", 0, 0, 10, 10)
	var downs, any int
	n.Attach(OnRaw(func(Event, *Node) { downs++ }, RawPointerDown))
	n.Attach(OnRaw(func(Event, *Node) { any++ }))

	deliver(Event{Category: CategoryRaw, Raw: RawEvent{Kind: RawPointerDown}, Target: n})
	deliver(Event{Category: CategoryRaw, Raw: RawEvent{Kind: RawPointerMove}, Target: n})

	if downs != 1 {
		t.Errorf("kind-filtered calls = %d, want 1", downs)
	}
	if any != 2 {
		t.Errorf("unfiltered calls = %d, want 2", any)
	}
}

func TestMonitorObservesDispatch(t *testing.T) {
	stage := NewStage(100, 100)
	n := NewNode("n", 0, 0, 50, 50)
	mustAdd(t, stage.Root(), n)

	var seen []Category
	stage.AddMonitor(func(evt Event) { seen = append(seen, evt.Category) })
	stage.AddMonitor(func(Event) { panic("bad monitor") }) // must not break the pipeline

	n.Set("value", 7)
	if len(seen) != 1 || seen[0] != CategoryPropertyChange {
		t.Errorf("monitor saw %v, want [property-change]", seen)
	}
}

func TestPropertyChangeOnDetachedNode(t *testing.T) {
	// A node outside any stage still delivers to its own receivers.
	n := NewNode("orphan", 0, 0, 10, 10)
	calls := 0
	n.Attach(OnPropertyChange(func(Event, *Node) { calls++ }))
	n.Set("x", 1)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

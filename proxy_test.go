package muon

import (
	"testing"
	"time"
)

// proxyStage builds a stage with one proxy node at (30,40) sized 50x50,
// backed by a detached session that queues instead of writing.
func proxyStage(t *testing.T) (*Stage, *Node, *Session) {
	t.Helper()
	s := newSession("app")
	proxy := NewProxy("child", s, 30, 40)
	proxy.SetSize(50, 50)
	stage := NewStage(640, 480)
	mustAdd(t, stage.Root(), proxy)
	return stage, proxy, s
}

func TestProxyForwardsInNestedCoordinates(t *testing.T) {
	stage, proxy, s := proxyStage(t)
	local := 0
	proxy.Attach(OnClick(func(Event, *Node) { local++ }))
	proxy.Attach(OnRaw(func(Event, *Node) { local++ }))

	feedPointer(stage, RawPointerDown, 35, 45, t0)
	feedPointer(stage, RawPointerUp, 35, 45, t0.Add(50*time.Millisecond))

	if s.queue.len() != 2 {
		t.Fatalf("forwarded records = %d, want 2", s.queue.len())
	}
	m, _ := s.queue.pop()
	if m.Kind != RawPointerDown || m.X != 5 || m.Y != 5 {
		t.Errorf("forwarded down = %+v, want (5,5) in nested space", m)
	}
	m, _ = s.queue.pop()
	if m.Kind != RawPointerUp {
		t.Errorf("forwarded up kind = %v", m.Kind)
	}
	if local != 0 {
		t.Errorf("local dispatches = %d; events over a proxy must not dispatch locally", local)
	}
}

func TestProxyForwardingIsStickyWhileHeld(t *testing.T) {
	stage, _, s := proxyStage(t)

	feedPointer(stage, RawPointerDown, 35, 45, t0)
	// The pointer leaves the proxy bounds mid-press; the nested app still
	// owns the gesture until release.
	feedPointer(stage, RawPointerMove, 200, 200, t0.Add(10*time.Millisecond))
	feedPointer(stage, RawPointerUp, 200, 200, t0.Add(20*time.Millisecond))

	if s.queue.len() != 3 {
		t.Fatalf("forwarded records = %d, want 3", s.queue.len())
	}
	s.queue.pop() // down
	m, _ := s.queue.pop()
	if m.Kind != RawPointerMove || m.X != 170 || m.Y != 160 {
		t.Errorf("forwarded move = %+v, want (170,160) in nested space", m)
	}

	// After release the gesture is over; plain moves route locally again.
	feedPointer(stage, RawPointerMove, 200, 200, t0.Add(30*time.Millisecond))
	if s.queue.len() != 0 {
		t.Error("move after release must not be forwarded")
	}
}

func TestHeldGestureElsewhereIsNotCaptured(t *testing.T) {
	stage, _, s := proxyStage(t)
	grab := NewNode("grab", 500, 10, 40, 40)
	mustAdd(t, stage.Root(), grab)

	// A drag that starts outside the proxy stays local even when the
	// pointer crosses the proxy bounds.
	feedPointer(stage, RawPointerDown, 510, 20, t0)
	feedPointer(stage, RawPointerMove, 35, 45, t0.Add(10*time.Millisecond))
	feedPointer(stage, RawPointerUp, 35, 45, t0.Add(20*time.Millisecond))

	if s.queue.len() != 0 {
		t.Errorf("forwarded records = %d, want 0", s.queue.len())
	}
}

func TestHoverOverProxyIsForwarded(t *testing.T) {
	stage, _, s := proxyStage(t)

	feedPointer(stage, RawPointerMove, 40, 50, t0)

	if s.queue.len() != 1 {
		t.Fatalf("forwarded records = %d, want 1", s.queue.len())
	}
	m, _ := s.queue.pop()
	if m.Kind != RawPointerMove || m.X != 10 || m.Y != 10 {
		t.Errorf("forwarded hover = %+v, want (10,10) in nested space", m)
	}
}

func TestFocusedProxyForwardsKeys(t *testing.T) {
	stage, proxy, s := proxyStage(t)
	stage.Focus(proxy)

	stage.Feed(RawEvent{Kind: RawKeyDown, Key: 7, Time: t0})

	if s.queue.len() != 1 {
		t.Fatalf("forwarded records = %d, want 1", s.queue.len())
	}
	m, _ := s.queue.pop()
	if m.Kind != RawKeyDown || m.Key != 7 {
		t.Errorf("forwarded key = %+v, want key 7 down", m)
	}
}

func TestDetachedFocusedProxyStopsReceivingKeys(t *testing.T) {
	stage, proxy, s := proxyStage(t)
	stage.Focus(proxy)

	stage.Root().RemoveChild(proxy)
	stage.Feed(RawEvent{Kind: RawKeyDown, Key: 7, Time: t0})

	if s.queue.len() != 0 {
		t.Errorf("forwarded records = %d; a detached proxy must not receive keys", s.queue.len())
	}
	if stage.FocusedNode() != nil {
		t.Error("focus must be dropped when its holder leaves the tree")
	}
	if proxy.Focused {
		t.Error("detached node must not keep the focused flag")
	}
}

func TestProxyAccessors(t *testing.T) {
	_, proxy, s := proxyStage(t)
	if !proxy.IsProxy() || proxy.Session() != s {
		t.Error("proxy must expose its session")
	}
	plain := NewNode("plain", 0, 0, 10, 10)
	if plain.IsProxy() || plain.Session() != nil {
		t.Error("ordinary nodes have no session")
	}
}

func TestDisposeClosesSession(t *testing.T) {
	_, proxy, s := proxyStage(t)
	proxy.Dispose()
	if s.State() != SessionClosed {
		t.Errorf("session state after dispose = %v, want closed", s.State())
	}
}

func TestStageCloseClosesSessions(t *testing.T) {
	stage, _, s := proxyStage(t)
	stage.Close()
	if s.State() != SessionClosed {
		t.Errorf("session state after stage close = %v, want closed", s.State())
	}
}

package muon

// NewProxy creates a proxy node that renders the output of a nested
// application session instead of its own content. Exactly one proxy node
// owns one session: the proxy resizes itself to the frame size the nested
// app reports, forwards input landing in its bounds over the session's input
// channel, and closes the session when disposed.
//
// Until the first frame arrives (and as a crash placeholder if none ever
// does) the node's Background is painted.
func NewProxy(name string, session *Session, x, y float64) *Node {
	n := NewNode(name, x, y, 0, 0)
	n.session = session
	n.Background = Color{R: 0.85, G: 0.85, B: 0.85, A: 1}
	return n
}

// Session returns the bridge session owned by this proxy node, or nil for
// ordinary nodes.
func (n *Node) Session() *Session {
	return n.session
}

// IsProxy reports whether this node renders a nested application.
func (n *Node) IsProxy() bool {
	return n.session != nil
}

// Package muon is a node-hierarchy UI event toolkit for [Ebitengine].
//
// Muon provides the scene tree, hit testing, semantic event translation
// (click, drag, property-change), per-node receiver dispatch, and a process
// bridge that lets one application embed another running application as a
// node in its own tree.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	stage := muon.NewStage(640, 480)
//	button := muon.NewNode("button", 20, 20, 120, 40)
//	button.Attach(muon.OnClick(func(evt muon.Event, n *muon.Node) {
//		// ...
//	}))
//	stage.Root().Add(button)
//	muon.Run(stage, muon.RunConfig{Title: "My App"})
//
// For full control, implement [ebiten.Game] yourself and call
// [Stage.Update] and [Stage.Draw] directly.
//
// # Events and receivers
//
// Raw input from the game loop is translated into semantic events scoped to
// nodes: a press and release over the same node within the configured
// thresholds is a click; a held pointer that moves past the drag distance
// becomes a drag whose events stick to the node where it started; attribute
// mutation via [Node.Set] pushes property-change events. Receivers are
// attached per node and category; all matching receivers run in attachment
// order, and a panicking handler never breaks the pipeline.
//
// # Nesting applications
//
// [StartApp] spawns another muon application as a worker process and returns
// a [Session]; [NewProxy] wraps the session in a node that renders the
// worker's frames and forwards input into it. The worker itself calls [Run]
// unchanged: when [IsNested] reports true, it renders to the frame channel
// instead of opening a window.
//
// [Ebitengine]: https://ebitengine.org
package muon

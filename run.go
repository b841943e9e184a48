package muon

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// game adapts a Stage to the ebiten.Game interface.
type game struct {
	stage *Stage
}

func (g *game) Update() error {
	g.stage.Update()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.stage.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.stage.root.Width), int(g.stage.root.Height)
}

// Run drives the stage to completion. Standalone it opens a window and runs
// the ebiten game loop; nested (IsNested) it suppresses the window and runs
// the frame-channel loop instead, so the same application code behaves
// identically either way. Bridge sessions owned by the tree are torn down on
// return.
func Run(stage *Stage, cfg RunConfig) error {
	if IsNested() {
		return RunNested(stage, cfg)
	}
	defer stage.Close()
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = int(stage.root.Width)
	}
	if h <= 0 {
		h = int(stage.root.Height)
	}
	ebiten.SetWindowSize(w, h)
	return ebiten.RunGame(&game{stage: stage})
}

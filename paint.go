package muon

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// whitePixel is a 1x1 white image stretched for solid background fills.
var whitePixel *ebiten.Image

func init() {
	whitePixel = ebiten.NewImage(1, 1)
	whitePixel.Fill(color.White)
}

// toRGBA converts to a premultiplied 8-bit color.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(c.R * c.A * 255),
		G: uint8(c.G * c.A * 255),
		B: uint8(c.B * c.A * 255),
		A: uint8(c.A * 255),
	}
}

// paintNode draws a node and then its children in child order (topmost
// last), offset by the accumulated ancestor translation. The core only
// supplies bounds, background fills, user canvases, and (for proxy nodes)
// the latest frame received from the nested application.
func paintNode(n *Node, screen *ebiten.Image, ox, oy float64) {
	if !n.Visible {
		return
	}
	ax, ay := ox+n.X, oy+n.Y

	switch {
	case n.session != nil:
		blitFrame(n, screen, ax, ay)
	case n.customImage != nil:
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(ax, ay)
		screen.DrawImage(n.customImage, op)
	case n.Background.A > 0:
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(n.Width, n.Height)
		op.GeoM.Translate(ax, ay)
		op.ColorScale.Scale(float32(n.Background.R), float32(n.Background.G), float32(n.Background.B), float32(n.Background.A))
		screen.DrawImage(whitePixel, op)
	}

	// Indexed iteration: blitFrame dispatches property-change events, whose
	// handlers may mutate the child list being painted.
	for i := 0; i < len(n.children); i++ {
		paintNode(n.children[i], screen, ax, ay)
	}
}

// blitFrame paints a proxy node with the most recent frame pushed by its
// nested application. A missing or late frame reuses the previous upload; if
// no frame has ever arrived (or the session crashed before one did) the
// node's background acts as the placeholder.
func blitFrame(n *Node, screen *ebiten.Image, ax, ay float64) {
	f := n.session.LatestFrame()
	if f == nil {
		if n.Background.A > 0 {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(n.Width, n.Height)
			op.GeoM.Translate(ax, ay)
			op.ColorScale.Scale(float32(n.Background.R), float32(n.Background.G), float32(n.Background.B), float32(n.Background.A))
			screen.DrawImage(whitePixel, op)
		}
		return
	}

	if n.frameImg == nil || n.frameImg.Bounds().Dx() != f.Width || n.frameImg.Bounds().Dy() != f.Height {
		n.frameImg = ebiten.NewImage(f.Width, f.Height)
		n.frameSeq = 0
	}
	if f.Seq != n.frameSeq {
		n.frameImg.WritePixels(f.Pixels)
		n.frameSeq = f.Seq
	}
	// The proxy resizes to match the size the nested app reports.
	if n.Width != float64(f.Width) || n.Height != float64(f.Height) {
		n.SetSize(float64(f.Width), float64(f.Height))
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(ax, ay)
	screen.DrawImage(n.frameImg, op)
}

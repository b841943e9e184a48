package muon

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// pollState remembers the device state from the previous frame so that the
// poll-based ebiten API can be turned into a stream of transition events.
type pollState struct {
	down         bool
	button       MouseButton
	lastX, lastY float64
	started      bool
	keyBuf       []ebiten.Key
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// pollInput reads the mouse and keyboard once per frame and feeds the
// resulting raw events through the translator in arrival order: motion
// first, then button transitions, then key transitions.
func (s *Stage) pollInput() {
	p := &s.poll
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	mods := readModifiers()

	// If a button is already down, keep the captured button so the gesture
	// is not re-attributed mid-interaction.
	var pressed bool
	button := p.button
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		if !p.down {
			switch {
			case left:
				button = MouseButtonLeft
			case right:
				button = MouseButtonRight
			default:
				button = MouseButtonMiddle
			}
		}
	}

	if p.started && (x != p.lastX || y != p.lastY) {
		raw := s.nextRaw(RawPointerMove, x, y)
		raw.Button = button
		raw.Modifiers = mods
		s.Feed(raw)
	}
	p.started = true
	p.lastX, p.lastY = x, y

	switch {
	case pressed && !p.down:
		p.down = true
		p.button = button
		raw := s.nextRaw(RawPointerDown, x, y)
		raw.Button = button
		raw.Modifiers = mods
		s.Feed(raw)
	case !pressed && p.down:
		p.down = false
		raw := s.nextRaw(RawPointerUp, x, y)
		raw.Button = button
		raw.Modifiers = mods
		s.Feed(raw)
	}

	p.keyBuf = inpututil.AppendJustPressedKeys(p.keyBuf[:0])
	for _, k := range p.keyBuf {
		raw := s.nextRaw(RawKeyDown, x, y)
		raw.Key = int(k)
		raw.Modifiers = mods
		s.Feed(raw)
	}
	p.keyBuf = inpututil.AppendJustReleasedKeys(p.keyBuf[:0])
	for _, k := range p.keyBuf {
		raw := s.nextRaw(RawKeyUp, x, y)
		raw.Key = int(k)
		raw.Modifiers = mods
		s.Feed(raw)
	}
}

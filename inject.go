package muon

import "time"

// InjectPress queues a synthetic pointer press (left button) at the given
// root coordinates. The event is consumed on the next Update, through the
// same translator path as real input.
func (s *Stage) InjectPress(x, y float64) {
	raw := s.nextRaw(RawPointerDown, x, y)
	raw.Button = MouseButtonLeft
	s.injectQueue = append(s.injectQueue, raw)
}

// InjectMove queues a synthetic pointer move at the given root coordinates.
func (s *Stage) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, s.nextRaw(RawPointerMove, x, y))
}

// InjectRelease queues a synthetic pointer release at the given root
// coordinates.
func (s *Stage) InjectRelease(x, y float64) {
	raw := s.nextRaw(RawPointerUp, x, y)
	raw.Button = MouseButtonLeft
	s.injectQueue = append(s.injectQueue, raw)
}

// InjectClick is a convenience that queues a press followed by a release at
// the same coordinates. Consumes two frames.
func (s *Stage) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, and release at
// (toX, toY). Minimum frames is 2 (press + release).
func (s *Stage) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectRelease(toX, toY)
}

// InjectKey queues a synthetic key press/release pair for the given key code.
func (s *Stage) InjectKey(key int) {
	down := s.nextRaw(RawKeyDown, s.poll.lastX, s.poll.lastY)
	down.Key = key
	up := s.nextRaw(RawKeyUp, s.poll.lastX, s.poll.lastY)
	up.Key = key
	up.Time = down.Time.Add(time.Millisecond)
	s.injectQueue = append(s.injectQueue, down, up)
}

// consumeInjected pops one queued synthetic event and feeds it through the
// translator. Returns true if an event was consumed, in which case real
// device input is skipped this frame.
func (s *Stage) consumeInjected() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	raw := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]
	s.Feed(raw)
	return true
}

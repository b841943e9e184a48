package muon

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"time"
)

// nestedEnv marks a process as a nested-application worker. Set by StartApp
// on the worker's environment.
const nestedEnv = "MUON_NESTED"

// IsNested reports whether the current process runs as a nested application
// inside another one. Application code queries this to adjust its output
// path: nested apps render to the frame channel instead of opening their own
// top-level window.
func IsNested() bool {
	return os.Getenv(nestedEnv) == "1"
}

// RunNested runs the child side of the bridge: it signals readiness,
// consumes forwarded raw events from stdin through the stage's own
// translate/dispatch pipeline, and pushes rendered frames to stdout whenever
// the output changes. Returns when the parent closes the input channel or a
// quit event arrives.
func RunNested(stage *Stage, cfg RunConfig) error {
	defer stage.Close()
	return runNested(stage, os.Stdin, os.Stdout, cfg.frameInterval())
}

func runNested(stage *Stage, in io.Reader, out io.Writer, interval time.Duration) error {
	enc := json.NewEncoder(out)
	if err := enc.Encode(wireMsg{T: msgReady}); err != nil {
		return &BridgeChannelError{Direction: "frame", Cause: err}
	}

	events := make(chan RawEvent, 64)
	go readInputChannel(in, events)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastFrame []byte
	var frameSeq uint64
	for {
		select {
		case raw, ok := <-events:
			if !ok {
				return nil
			}
			if raw.Kind == RawQuit {
				stage.Feed(raw)
				_ = enc.Encode(wireMsg{T: msgBye})
				return nil
			}
			stage.Feed(raw)
		case <-ticker.C:
			px, w, h := renderFrame(stage)
			if px == nil || bytes.Equal(px, lastFrame) {
				continue
			}
			frameSeq++
			if err := enc.Encode(wireMsg{T: msgFrame, Seq: frameSeq, W: w, H: h, Px: px}); err != nil {
				return &BridgeChannelError{Direction: "frame", Cause: err}
			}
			lastFrame = px
		}
	}
}

// readInputChannel decodes the parent's event records into raws. Closes the
// channel on EOF (parent teardown) or a goodbye marker.
func readInputChannel(in io.Reader, events chan<- RawEvent) {
	defer close(events)
	dec := json.NewDecoder(in)
	for {
		var m wireMsg
		if err := dec.Decode(&m); err != nil {
			return
		}
		switch m.T {
		case msgEvent:
			events <- m.rawEvent()
		case msgBye:
			return
		}
	}
}

// --- Software rasterizer ---

// renderFrame rasterizes the node tree into a premultiplied RGBA buffer.
// Nested workers have no window, so background fills are produced in
// software; pixel-perfect component rendering is the standalone path's job.
func renderFrame(s *Stage) ([]byte, int, int) {
	w, h := int(s.root.Width), int(s.root.Height)
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}
	px := make([]byte, w*h*4)
	fillRect(px, w, h, 0, 0, w, h, s.ClearColor)
	softPaint(s.root, px, w, h, 0, 0)
	return px, w, h
}

func softPaint(n *Node, px []byte, w, h int, ox, oy float64) {
	if !n.Visible {
		return
	}
	ax, ay := ox+n.X, oy+n.Y
	if n.Background.A > 0 {
		fillRect(px, w, h, int(ax), int(ay), int(n.Width), int(n.Height), n.Background)
	}
	for i := 0; i < len(n.children); i++ {
		softPaint(n.children[i], px, w, h, ax, ay)
	}
}

// fillRect composites a solid rectangle into the buffer with source-over
// blending, clipped to the buffer bounds.
func fillRect(px []byte, w, h, x, y, rw, rh int, c Color) {
	if c.A <= 0 {
		return
	}
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+rw, w), min(y+rh, h)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	src := c.toRGBA()
	opaque := c.A >= 1
	for row := y0; row < y1; row++ {
		i := (row*w + x0) * 4
		for col := x0; col < x1; col++ {
			if opaque {
				px[i+0] = src.R
				px[i+1] = src.G
				px[i+2] = src.B
				px[i+3] = src.A
			} else {
				inv := uint32(255 - src.A)
				px[i+0] = uint8(uint32(src.R) + uint32(px[i+0])*inv/255)
				px[i+1] = uint8(uint32(src.G) + uint32(px[i+1])*inv/255)
				px[i+2] = uint8(uint32(src.B) + uint32(px[i+2])*inv/255)
				px[i+3] = uint8(uint32(src.A) + uint32(px[i+3])*inv/255)
			}
			i += 4
		}
	}
}

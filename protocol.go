package muon

import "time"

// Wire message types. Both bridge channels carry newline-delimited JSON
// records of this shape: the input channel (parent to child) carries "ev"
// records, the frame channel (child to parent) carries "frame" records plus
// the "ready" and "bye" control markers. Sequence numbers on both directions
// allow coalesce and drop detection.
const (
	msgEvent = "ev"
	msgFrame = "frame"
	msgReady = "ready"
	msgBye   = "bye"
)

type wireMsg struct {
	T   string `json:"t"`
	Seq uint64 `json:"seq,omitempty"`

	// Event fields (t == "ev"). Coordinates are in nested space.
	Kind   RawKind      `json:"k,omitempty"`
	X      float64      `json:"x,omitempty"`
	Y      float64      `json:"y,omitempty"`
	Button MouseButton  `json:"b,omitempty"`
	Key    int          `json:"key,omitempty"`
	Rune   rune         `json:"r,omitempty"`
	Mod    KeyModifiers `json:"m,omitempty"`
	TS     int64        `json:"ts,omitempty"` // unix nanoseconds

	// Frame fields (t == "frame"). Pixels are RGBA, base64 on the wire.
	W  int    `json:"w,omitempty"`
	H  int    `json:"h,omitempty"`
	Px []byte `json:"px,omitempty"`
}

// encodeRaw packs a raw event for the input channel.
func encodeRaw(raw RawEvent) wireMsg {
	return wireMsg{
		T:      msgEvent,
		Kind:   raw.Kind,
		X:      raw.X,
		Y:      raw.Y,
		Button: raw.Button,
		Key:    raw.Key,
		Rune:   raw.Rune,
		Mod:    raw.Modifiers,
		TS:     raw.Time.UnixNano(),
	}
}

// rawEvent unpacks an input-channel record on the child side.
func (m wireMsg) rawEvent() RawEvent {
	return RawEvent{
		Kind:      m.Kind,
		X:         m.X,
		Y:         m.Y,
		Button:    m.Button,
		Key:       m.Key,
		Rune:      m.Rune,
		Modifiers: m.Mod,
		Time:      time.Unix(0, m.TS),
		Seq:       m.Seq,
	}
}

// Frame is one rendered frame received from a nested application. Pixels are
// RGBA with premultiplied alpha, row-major, Width*Height*4 bytes.
type Frame struct {
	Seq    uint64
	Width  int
	Height int
	Pixels []byte
}

package muon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// SessionState is the lifecycle state of one nested-application session.
// Transitions: Starting -> Running -> (Stopping | Crashed) -> Closed.
type SessionState uint8

const (
	SessionStarting SessionState = iota // worker spawned, readiness not yet acknowledged
	SessionRunning                      // worker acknowledged, channels live
	SessionStopping                     // explicit teardown in progress
	SessionCrashed                      // startup failure, channel failure, or unexpected worker exit
	SessionClosed                       // terminal; worker reaped, channels closed
)

// String returns the state name.
func (st SessionState) String() string {
	switch st {
	case SessionStarting:
		return "starting"
	case SessionRunning:
		return "running"
	case SessionStopping:
		return "stopping"
	case SessionCrashed:
		return "crashed"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StatusFunc observes session state transitions. err is non-nil for
// transitions caused by a failure.
type StatusFunc func(state SessionState, err error)

// Session represents one running nested application: the worker process
// handle, the input channel carrying forwarded events, and the frame channel
// carrying rendered output. Exactly one proxy node owns one session.
//
// Both channels are asynchronous from the parent's perspective: Forward never
// blocks the caller, and LatestFrame returns whatever has arrived so far.
type Session struct {
	mu       sync.Mutex
	state    SessionState
	onStatus StatusFunc
	frame    *Frame

	queue *eventQueue
	seq   uint64 // outbound event sequence, accessed only from the dispatch thread

	cmd   *exec.Cmd
	path  string
	ready chan struct{}
	done  chan struct{}

	readyOnce sync.Once
	doneOnce  sync.Once
	closeOnce sync.Once
	dropOnce  sync.Once
}

func newSession(path string) *Session {
	return &Session{
		state: SessionStarting,
		queue: newEventQueue(),
		path:  path,
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// StartApp spawns the given entry point as an isolated nested-application
// worker with its own tree, translator, and dispatcher, establishes the
// event and frame channels over its stdin/stdout, and waits for the worker
// to acknowledge readiness within cfg.StartupTimeout.
//
// On startup failure or timeout the session transitions to Crashed, the
// worker is terminated, and a *BridgeStartupError is returned.
func StartApp(ctx context.Context, path string, args []string, cfg Config) (*Session, error) {
	s := newSession(path)

	cmd := exec.Command(path, args...)
	cmd.Env = append(os.Environ(), nestedEnv+"=1")
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, s.failStartup(err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, s.failStartup(err)
	}
	if err := cmd.Start(); err != nil {
		return nil, s.failStartup(err)
	}
	s.cmd = cmd
	s.connect(stdin, stdout)
	go func() {
		s.workerGone(cmd.Wait())
	}()

	if err := s.awaitReady(ctx, cfg.StartupTimeout); err != nil {
		return nil, err
	}
	return s, nil
}

// connect starts the channel goroutines over an established transport.
// Split out from StartApp so tests can drive a session over in-memory pipes.
func (s *Session) connect(in io.WriteCloser, out io.Reader) {
	go s.writeLoop(in)
	go s.readLoop(out)
}

// awaitReady blocks until the worker acknowledges readiness, the timeout
// elapses, the worker dies, or ctx is cancelled.
func (s *Session) awaitReady(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.ready:
		s.setState(SessionRunning, nil)
		return nil
	case <-timer.C:
		err := &BridgeStartupError{Path: s.path, Cause: errors.New("readiness timeout")}
		s.setState(SessionCrashed, err)
		s.kill()
		return err
	case <-s.done:
		err := &BridgeStartupError{Path: s.path, Cause: errors.New("worker exited before signalling readiness")}
		s.setState(SessionCrashed, err)
		return err
	case <-ctx.Done():
		err := &BridgeStartupError{Path: s.path, Cause: ctx.Err()}
		s.setState(SessionCrashed, err)
		s.kill()
		return err
	}
}

func (s *Session) failStartup(cause error) error {
	err := &BridgeStartupError{Path: s.path, Cause: cause}
	s.setState(SessionCrashed, err)
	return err
}

// OnStatus registers the status callback invoked on every state transition.
func (s *Session) OnStatus(fn StatusFunc) {
	s.mu.Lock()
	s.onStatus = fn
	s.mu.Unlock()
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Forward queues a raw event (already translated into nested coordinates)
// for delivery over the input channel. It never blocks the caller: queued
// pointer-moves are coalesced under backpressure, while button and key
// events are never dropped. Events forwarded after the session left Running
// are dropped silently, reported once.
func (s *Session) Forward(raw RawEvent) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state != SessionRunning && state != SessionStarting {
		s.dropOnce.Do(func() {
			slog.Warn("muon: session not running, forwarded events dropped",
				"app", s.path, "state", state.String())
		})
		return
	}
	s.seq++
	m := encodeRaw(raw)
	m.Seq = s.seq
	s.queue.push(m)
}

// LatestFrame returns the most recent frame received from the worker, or nil
// if none has arrived yet. After a crash the last received frame remains
// available so the proxy can freeze on it.
func (s *Session) LatestFrame() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Close tears the session down: Stopping, worker terminated, channels
// closed, Closed. Idempotent and safe to invoke at any time; the bridge owns
// terminating the worker so it is never orphaned when the parent goes first.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.setState(SessionStopping, nil)
		s.queue.push(wireMsg{T: msgBye})
		s.queue.close()
		s.kill()
		s.setState(SessionClosed, nil)
	})
}

func (s *Session) kill() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
}

// setState applies a transition and notifies the status callback. Closed is
// terminal; late failure reports after Closed are ignored.
func (s *Session) setState(state SessionState, err error) {
	s.mu.Lock()
	if s.state == state || s.state == SessionClosed {
		s.mu.Unlock()
		return
	}
	s.state = state
	cb := s.onStatus
	s.mu.Unlock()

	if err != nil {
		slog.Warn("muon: session state", "app", s.path, "state", state.String(), "error", err)
	} else {
		slog.Debug("muon: session state", "app", s.path, "state", state.String())
	}
	if cb != nil {
		cb(state, err)
	}
}

// workerGone handles worker process termination, graceful or not.
func (s *Session) workerGone(waitErr error) {
	s.doneOnce.Do(func() { close(s.done) })
	s.queue.close()

	s.mu.Lock()
	stopping := s.state == SessionStopping || s.state == SessionClosed
	s.mu.Unlock()
	if stopping {
		s.setState(SessionClosed, nil)
		return
	}
	err := waitErr
	if err == nil {
		err = errors.New("worker exited")
	}
	s.setState(SessionCrashed, &BridgeChannelError{Direction: "frame", Cause: err})
}

// writeLoop drains the outbound queue onto the input channel. A write
// failure after Running transitions the session to Crashed; the dispatch
// loop is never unwound.
func (s *Session) writeLoop(w io.WriteCloser) {
	defer w.Close()
	enc := json.NewEncoder(w)
	for {
		m, ok := s.queue.pop()
		if !ok {
			if s.queue.isClosed() {
				return
			}
			select {
			case <-s.queue.notify:
				continue
			case <-s.done:
				return
			}
		}
		if err := enc.Encode(m); err != nil {
			s.channelFailed("input", err)
			return
		}
	}
}

// readLoop consumes the frame channel: readiness, frames, and the goodbye
// marker. Frames arriving out of order (stale sequence numbers) are dropped.
func (s *Session) readLoop(r io.Reader) {
	dec := json.NewDecoder(r)
	for {
		var m wireMsg
		if err := dec.Decode(&m); err != nil {
			if !errors.Is(err, io.EOF) {
				s.channelFailed("frame", err)
			}
			return
		}
		switch m.T {
		case msgReady:
			s.readyOnce.Do(func() { close(s.ready) })
		case msgFrame:
			s.storeFrame(m)
		case msgBye:
			return
		}
	}
}

func (s *Session) storeFrame(m wireMsg) {
	if m.W <= 0 || m.H <= 0 || len(m.Px) != m.W*m.H*4 {
		slog.Warn("muon: malformed frame received", "app", s.path, "seq", m.Seq)
		return
	}
	f := &Frame{Seq: m.Seq, Width: m.W, Height: m.H, Pixels: m.Px}
	s.mu.Lock()
	if s.frame == nil || f.Seq > s.frame.Seq {
		s.frame = f
	}
	s.mu.Unlock()
}

func (s *Session) channelFailed(direction string, cause error) {
	s.setState(SessionCrashed, &BridgeChannelError{Direction: direction, Cause: cause})
	s.queue.close()
}

// --- Outbound event queue ---

// eventQueue is the backpressure boundary between the parent's dispatch
// thread and the input channel writer. push never blocks: when the newest
// queued record is an unconsumed pointer-move, a fresh pointer-move
// supersedes it in place. Button, key, and control records always append, so
// they are never coalesced or dropped and their relative order is preserved.
type eventQueue struct {
	mu     sync.Mutex
	items  []wireMsg
	notify chan struct{}
	closed bool
}

func newEventQueue() *eventQueue {
	return &eventQueue{notify: make(chan struct{}, 1)}
}

func (q *eventQueue) push(m wireMsg) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	if m.T == msgEvent && m.Kind == RawPointerMove && len(q.items) > 0 {
		last := &q.items[len(q.items)-1]
		if last.T == msgEvent && last.Kind == RawPointerMove {
			*last = m
			q.mu.Unlock()
			q.wake()
			return
		}
	}
	q.items = append(q.items, m)
	q.mu.Unlock()
	q.wake()
}

// pop removes the oldest record without blocking. The second return is false
// when the queue is empty.
func (q *eventQueue) pop() (wireMsg, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return wireMsg{}, false
	}
	m := q.items[0]
	copy(q.items, q.items[1:])
	q.items[len(q.items)-1] = wireMsg{}
	q.items = q.items[:len(q.items)-1]
	return m, true
}

func (q *eventQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *eventQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.items) == 0
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

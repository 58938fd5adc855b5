package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tokenScope/internal/lifecycle"
)

const (
	maxMessageSize = 4096
	writeWait      = 10 * time.Second
	outboxSize     = 64
)

// Session actions sent by clients.
const (
	ActionLookup = "lookup"
	ActionInput  = "input"
	ActionRetry  = "retry"
	ActionClear  = "clear"
)

// Frame types pushed to clients.
const (
	FrameState = "state"
	FrameError = "error"
)

type sessionRequest struct {
	Action  string `json:"action"`
	Address string `json:"address,omitempty"`
}

type sessionFrame struct {
	Type  string           `json:"type"`
	State *lifecycle.State `json:"state,omitempty"`
	Error string           `json:"error,omitempty"`
}

// frameQueue buffers outbound frames without ever blocking the producer. When
// full it drops the oldest frame, which a newer state supersedes anyway.
type frameQueue struct {
	mu      sync.Mutex
	frames  []sessionFrame
	limit   int
	dropped int
	ready   chan struct{}
}

func newFrameQueue(limit int) *frameQueue {
	return &frameQueue{limit: limit, ready: make(chan struct{}, 1)}
}

func (q *frameQueue) put(frame sessionFrame) {
	q.mu.Lock()
	if len(q.frames) >= q.limit {
		q.frames = q.frames[1:]
		q.dropped++
	}
	q.frames = append(q.frames, frame)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *frameQueue) take() []sessionFrame {
	q.mu.Lock()
	defer q.mu.Unlock()
	frames := q.frames
	q.frames = nil
	return frames
}

// session binds one WebSocket connection to one lookup controller. All writes
// go through the outbox so the connection has a single writer.
type session struct {
	conn   *websocket.Conn
	ctrl   *lifecycle.Controller
	logger *zap.Logger
	ctx    context.Context
	outbox *frameQueue
	wg     sync.WaitGroup
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.sessions.Add(1)
	defer s.sessions.Done()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := &session{
		conn:   conn,
		logger: s.logger.With(zap.String("remote", r.RemoteAddr)),
		ctx:    ctx,
		outbox: newFrameQueue(outboxSize),
	}
	sess.ctrl = s.newController(lifecycle.WithOnChange(sess.pushState))

	go func() {
		select {
		case <-ctx.Done():
		case <-s.closing:
		}
		cancel()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		sess.writeLoop()
		cancel()
	}()

	sess.logger.Debug("session opened")
	sess.pushState(sess.ctrl.State())
	sess.readLoop()

	cancel()
	sess.wg.Wait()
	<-writerDone
	sess.logger.Debug("session closed")
}

func (sess *session) readLoop() {
	sess.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				sess.ctx.Err() == nil {
				sess.logger.Debug("session read failed", zap.Error(err))
			}
			return
		}

		var req sessionRequest
		if err := json.Unmarshal(data, &req); err != nil {
			sess.push(sessionFrame{Type: FrameError, Error: "invalid message"})
			continue
		}
		sess.dispatch(req)
	}
}

func (sess *session) dispatch(req sessionRequest) {
	switch req.Action {
	case ActionLookup:
		sess.async(func(ctx context.Context) { sess.ctrl.Lookup(ctx, req.Address) })
	case ActionRetry:
		sess.async(func(ctx context.Context) { sess.ctrl.Retry(ctx) })
	case ActionInput:
		sess.ctrl.Input(req.Address)
	case ActionClear:
		sess.ctrl.Clear()
	default:
		sess.push(sessionFrame{Type: FrameError, Error: "unknown action: " + req.Action})
	}
}

// async runs fn without blocking the read loop, so a later lookup can
// supersede one that is still in flight.
func (sess *session) async(fn func(ctx context.Context)) {
	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		fn(sess.ctx)
	}()
}

func (sess *session) pushState(state lifecycle.State) {
	sess.push(sessionFrame{Type: FrameState, State: &state})
}

// push never blocks: it runs under the controller lock via WithOnChange.
func (sess *session) push(frame sessionFrame) {
	sess.outbox.put(frame)
}

func (sess *session) writeLoop() {
	for {
		select {
		case <-sess.outbox.ready:
			for _, frame := range sess.outbox.take() {
				_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := sess.conn.WriteJSON(frame); err != nil {
					if !errors.Is(err, websocket.ErrCloseSent) && sess.ctx.Err() == nil {
						sess.logger.Debug("session write failed", zap.Error(err))
					}
					return
				}
			}
		case <-sess.ctx.Done():
			return
		}
	}
}

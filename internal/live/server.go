// Package live bridges a browser canvas to a drawing session over WebSocket.
// Clients send JSON events; the server answers with the session's draw ops.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gyaneshwarpardhi/graphboard/internal/engine"
	"github.com/gyaneshwarpardhi/graphboard/internal/event"
	"github.com/gyaneshwarpardhi/graphboard/internal/metrics"
	"github.com/gyaneshwarpardhi/graphboard/internal/render/stream"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	replyQueue = 16
)

// ErrNoStream means the session was created without the stream backend.
var ErrNoStream = errors.New("session has no stream backend")

// Reply answers an export request or reports a rejected event.
type Reply struct {
	EventID string `json:"event_id,omitempty"`
	Export  string `json:"export,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Server upgrades HTTP requests into live session connections.
type Server struct {
	eng      *engine.Engine
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewServer creates a live server for the engine's sessions.
func NewServer(eng *engine.Engine) *Server {
	return &Server{
		eng: eng,
		upgrader: websocket.Upgrader{
			// Canvas pages may be served from anywhere.
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		log: slog.Default().With("component", "live"),
	}
}

// Subscribe attaches to a session's op stream on the session's shard, so the
// replay and the channel line up with the events around them. A subscription
// the shard makes after the caller gave up is released straight away.
func (s *Server) Subscribe(ctx context.Context, sessionID string) ([]stream.Op, <-chan stream.Op, func(), error) {
	var (
		mu        sync.Mutex
		abandoned bool
		replay    []stream.Op
		ops       <-chan stream.Op
		cancel    func()
		found     bool
	)
	err := s.eng.Inspect(ctx, sessionID, func(sess *engine.Session) {
		b, ok := sess.Backend(stream.Name)
		if !ok {
			return
		}
		st, ok := b.(*stream.Stream)
		if !ok {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		found = true
		if abandoned {
			return
		}
		replay, ops, cancel = st.Subscribe()
	})
	if err != nil {
		mu.Lock()
		abandoned = true
		late := cancel
		mu.Unlock()
		if late != nil {
			late()
		}
		return nil, nil, nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	if !found {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrNoStream, sessionID)
	}
	return replay, ops, cancel, nil
}

// Serve upgrades the request and runs the connection until the client leaves.
// The caller has already checked that the session exists and has a stream.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, sessionID string, replay []stream.Op, ops <-chan stream.Op, cancel func()) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		s.log.Warn("websocket upgrade failed", "session", sessionID, "err", err)
		return
	}
	c := &client{
		srv:     s,
		session: sessionID,
		conn:    conn,
		replies: make(chan Reply, replyQueue),
		done:    make(chan struct{}),
		log:     s.log.With("session", sessionID),
	}
	metrics.LiveSubscribers.Inc()
	defer metrics.LiveSubscribers.Dec()
	c.run(replay, ops, cancel)
}

// client is one WebSocket connection.
type client struct {
	srv     *Server
	session string
	conn    *websocket.Conn
	replies chan Reply
	done    chan struct{}
	log     *slog.Logger
}

func (c *client) run(replay []stream.Op, ops <-chan stream.Op, cancel func()) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writer(replay, ops)
	}()

	c.reader()

	close(c.done)
	cancel()
	wg.Wait()
	c.conn.Close()
	c.log.Info("live client disconnected")
}

func (c *client) reader() {
	c.conn.SetReadLimit(64 << 10)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("unexpected close", "err", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		c.handle(data)
	}
}

func (c *client) handle(data []byte) {
	var ev event.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		c.reply(Reply{Error: fmt.Sprintf("invalid JSON: %s", err)})
		return
	}
	ev.Session = c.session
	ev.Stamp(time.Now())
	if err := ev.Validate(); err != nil {
		c.reply(Reply{EventID: ev.ID, Error: err.Error()})
		return
	}

	if ev.Type == event.Export {
		res, err := c.srv.eng.ProcessSync(context.Background(), &ev)
		if err != nil {
			c.reply(Reply{EventID: ev.ID, Error: err.Error()})
			return
		}
		c.reply(Reply{EventID: ev.ID, Export: res.Export})
		return
	}
	if err := c.srv.eng.ProcessAsync(&ev); err != nil {
		c.reply(Reply{EventID: ev.ID, Error: err.Error()})
	}
}

// reply queues a control frame, dropping it if the writer is behind.
func (c *client) reply(r Reply) {
	select {
	case c.replies <- r:
	default:
		c.log.Warn("reply queue full, dropping", "event", r.EventID)
	}
}

func (c *client) writer(replay []stream.Op, ops <-chan stream.Op) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if !c.write(stream.Op{Op: stream.OpClear}) {
		return
	}
	for _, op := range replay {
		if !c.write(op) {
			return
		}
	}
	for {
		select {
		case op, ok := <-ops:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}
			if !c.write(op) {
				return
			}
		case r := <-c.replies:
			if !c.write(r) {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) write(v any) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(v); err != nil {
		c.log.Debug("write failed", "err", err)
		return false
	}
	return true
}

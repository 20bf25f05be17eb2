package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/graphboard/internal/config"
	"github.com/gyaneshwarpardhi/graphboard/internal/engine"
	"github.com/gyaneshwarpardhi/graphboard/internal/event"
	"github.com/gyaneshwarpardhi/graphboard/internal/render"
	"github.com/gyaneshwarpardhi/graphboard/internal/render/raster"
	"github.com/gyaneshwarpardhi/graphboard/internal/render/stream"
)

// frame is either a draw op or a reply.
type frame struct {
	stream.Op
	Reply
}

func newEngine(t *testing.T, backends ...string) *engine.Engine {
	t.Helper()
	board := config.Default()
	board.Canvas.Backends = backends
	reg := render.NewRegistry()
	reg.Register(raster.Name, raster.New)
	reg.Register(stream.Name, stream.New)
	ctx, cancel := context.WithCancel(context.Background())
	eng := engine.New(ctx, board, reg)
	t.Cleanup(func() {
		cancel()
		eng.Shutdown()
	})
	return eng
}

func dial(t *testing.T, eng *engine.Engine, sessionID string) *websocket.Conn {
	t.Helper()
	srv := NewServer(eng)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		replay, ops, cancel, err := srv.Subscribe(r.Context(), sessionID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		srv.Serve(w, r, sessionID, replay, ops, cancel)
	}))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestLive_ReplayThenStream(t *testing.T) {
	eng := newEngine(t, raster.Name, stream.Name)
	sess, err := eng.CreateSession()
	require.NoError(t, err)

	// One vertex exists before the client connects.
	for _, ev := range []event.Event{
		{Session: sess.ID, Type: event.ToggleVertex},
		{Session: sess.ID, Type: event.Click, X: 100, Y: 100},
	} {
		_, err := eng.ProcessSync(context.Background(), &ev)
		require.NoError(t, err)
	}

	conn := dial(t, eng, sess.ID)

	f := readFrame(t, conn)
	assert.Equal(t, stream.OpClear, f.Op.Op)
	f = readFrame(t, conn)
	require.Equal(t, stream.OpVertex, f.Op.Op)
	assert.Equal(t, 0, f.Vertex.ID)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "click", "x": 300, "y": 300}))
	f = readFrame(t, conn)
	require.Equal(t, stream.OpVertex, f.Op.Op)
	assert.Equal(t, 1, f.Vertex.ID)
	assert.Equal(t, "1", f.Vertex.Label)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "export"}))
	f = readFrame(t, conn)
	assert.Equal(t, "[[],\r\n[]]", f.Export)
	assert.NotEmpty(t, f.EventID)
}

func TestLive_RejectsBadEvents(t *testing.T) {
	eng := newEngine(t, stream.Name)
	sess, err := eng.CreateSession()
	require.NoError(t, err)
	conn := dial(t, eng, sess.ID)
	assert.Equal(t, stream.OpClear, readFrame(t, conn).Op.Op)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	f := readFrame(t, conn)
	assert.Contains(t, f.Error, "invalid JSON")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "drag"}))
	f = readFrame(t, conn)
	assert.Contains(t, f.Error, "unknown type")
}

func TestSubscribe_Errors(t *testing.T) {
	eng := newEngine(t, raster.Name)
	srv := NewServer(eng)

	_, _, _, err := srv.Subscribe(context.Background(), "missing")
	assert.True(t, errors.Is(err, engine.ErrSessionNotFound))

	sess, err := eng.CreateSession()
	require.NoError(t, err)
	_, _, _, err = srv.Subscribe(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrNoStream)
}

func TestSubscribe_TimedOutLeavesNoSubscriber(t *testing.T) {
	board := config.Default()
	board.Engine.EventTimeoutMs = 50
	board.Canvas.Backends = []string{stream.Name}
	reg := render.NewRegistry()
	reg.Register(stream.Name, stream.New)
	ctx, cancel := context.WithCancel(context.Background())
	eng := engine.New(ctx, board, reg)
	t.Cleanup(func() {
		cancel()
		eng.Shutdown()
	})
	sess, err := eng.CreateSession()
	require.NoError(t, err)

	// Hold the session's shard so the subscription runs only after the
	// caller has timed out.
	started, release := make(chan struct{}), make(chan struct{})
	go func() {
		_ = eng.Inspect(context.Background(), sess.ID, func(*engine.Session) {
			close(started)
			<-release
		})
	}()
	<-started

	_, _, _, err = NewServer(eng).Subscribe(context.Background(), sess.ID)
	require.ErrorIs(t, err, engine.ErrTimeout)
	close(release)

	subscribers := -1
	require.Eventually(t, func() bool {
		return eng.Inspect(context.Background(), sess.ID, func(s *engine.Session) {
			b, _ := s.Backend(stream.Name)
			subscribers = b.(*stream.Stream).Subscribers()
		}) == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, subscribers)
}

func TestFrameJSON(t *testing.T) {
	b, err := json.Marshal(Reply{EventID: "e1", Export: "[]"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event_id":"e1","export":"[]"}`, string(b))
}

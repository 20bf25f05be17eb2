package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/graphboard/internal/config"
	"github.com/gyaneshwarpardhi/graphboard/internal/controller"
	"github.com/gyaneshwarpardhi/graphboard/internal/engine"
	"github.com/gyaneshwarpardhi/graphboard/internal/event"
	"github.com/gyaneshwarpardhi/graphboard/internal/graph"
	"github.com/gyaneshwarpardhi/graphboard/internal/live"
	"github.com/gyaneshwarpardhi/graphboard/internal/metrics"
	"github.com/gyaneshwarpardhi/graphboard/internal/render/raster"
	"github.com/gyaneshwarpardhi/graphboard/internal/render/stream"
)

const maxBatchSize = 100

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    *engine.Engine
	loader *config.Loader
	live   *live.Server
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes. loader may be nil
// when the server runs on built-in defaults.
func New(eng *engine.Engine, loader *config.Loader) http.Handler {
	h := &Handler{eng: eng, loader: loader, live: live.NewServer(eng), mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/sessions", h.createSession)
	h.mux.HandleFunc("GET /v1/sessions", h.listSessions)
	h.mux.HandleFunc("DELETE /v1/sessions/{id}", h.deleteSession)
	h.mux.HandleFunc("POST /v1/sessions/{id}/events", h.ingestEvent)
	h.mux.HandleFunc("POST /v1/sessions/{id}/events/batch", h.ingestBatch)
	h.mux.HandleFunc("GET /v1/sessions/{id}/adjacency", h.adjacency)
	h.mux.HandleFunc("GET /v1/sessions/{id}/graph", h.graphView)
	h.mux.HandleFunc("GET /v1/sessions/{id}/surface.png", h.surfacePNG)
	h.mux.HandleFunc("GET /v1/sessions/{id}/live", h.liveSession)
	h.mux.HandleFunc("GET /v1/config", h.showConfig)
	h.mux.HandleFunc("POST /v1/config/reload", h.reloadConfig)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// POST /v1/sessions — start a new drawing board.
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.eng.CreateSession()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         s.ID,
		"created_at": s.CreatedAt,
	})
}

// GET /v1/sessions — list live session ids.
func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": h.eng.Sessions(),
	})
}

// DELETE /v1/sessions/{id}
func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.eng.DeleteSession(r.PathValue("id")); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/sessions/{id}/events — synchronous single-event ingestion.
func (h *Handler) ingestEvent(w http.ResponseWriter, r *http.Request) {
	var ev event.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	ev.Session = r.PathValue("id")
	ev.Stamp(time.Now())
	if err := ev.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.eng.ProcessSync(r.Context(), &ev)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /v1/sessions/{id}/events/batch — async batch ingestion (up to 100
// events), applied in order.
func (h *Handler) ingestBatch(w http.ResponseWriter, r *http.Request) {
	var events []*event.Event
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(events) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one event")
		return
	}
	if len(events) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(events), maxBatchSize))
		return
	}
	id := r.PathValue("id")
	for i, ev := range events {
		if ev == nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("events[%d]: null event", i))
			return
		}
		if err := ev.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("events[%d]: %s", i, err))
			return
		}
	}
	if _, err := h.eng.Session(id); err != nil {
		writeEngineError(w, err)
		return
	}

	now := time.Now()
	jobID := uuid.New().String()
	queued := 0
	for _, ev := range events {
		ev.Session = id
		ev.Stamp(now)
		// A full queue drops the rest so later events never overtake earlier ones.
		if err := h.eng.ProcessAsync(ev); err != nil {
			break
		}
		queued++
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":   jobID,
		"total":    len(events),
		"queued":   queued,
		"rejected": len(events) - queued,
	})
}

// GET /v1/sessions/{id}/adjacency — the exact export text.
func (h *Handler) adjacency(w http.ResponseWriter, r *http.Request) {
	var out string
	err := h.eng.Inspect(r.Context(), r.PathValue("id"), func(s *engine.Session) {
		out = s.Controller().Export()
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

// graphView is the JSON picture of a session.
type graphView struct {
	ID          string                  `json:"id"`
	Mode        controller.Mode         `json:"mode"`
	Radius      float64                 `json:"radius"`
	PendingEdge *int                    `json:"pending_edge,omitempty"`
	PendingText string                  `json:"pending_text,omitempty"`
	Selected    *int                    `json:"selected,omitempty"`
	Vertices    []*graph.Vertex         `json:"vertices"`
	Edges       []graph.Edge            `json:"edges"`
	Annotations []controller.Annotation `json:"annotations"`
	Subscribers int                     `json:"live_subscribers"`
}

// GET /v1/sessions/{id}/graph
func (h *Handler) graphView(w http.ResponseWriter, r *http.Request) {
	var view graphView
	err := h.eng.Inspect(r.Context(), r.PathValue("id"), func(s *engine.Session) {
		c := s.Controller()
		g := c.Graph()
		view = graphView{
			ID:          s.ID,
			Mode:        c.Mode(),
			Radius:      c.Radius(),
			Edges:       g.Edges(),
			Annotations: c.Annotations(),
		}
		// Deep copies; the vertices keep changing after the shard moves on.
		for _, v := range g.Vertices() {
			cp := *v
			view.Vertices = append(view.Vertices, &cp)
		}
		if id, ok := c.PendingEdgeStart(); ok {
			view.PendingEdge = &id
		}
		if id, ok := c.Selected(); ok {
			view.Selected = &id
		}
		view.PendingText, _ = c.PendingText()
		if b, ok := s.Backend(stream.Name); ok {
			if st, ok := b.(*stream.Stream); ok {
				view.Subscribers = st.Subscribers()
			}
		}
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if view.Vertices == nil {
		view.Vertices = []*graph.Vertex{}
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /v1/sessions/{id}/surface.png — the raster backend as PNG.
func (h *Handler) surfacePNG(w http.ResponseWriter, r *http.Request) {
	var (
		buf    bytes.Buffer
		found  bool
		encErr error
	)
	err := h.eng.Inspect(r.Context(), r.PathValue("id"), func(s *engine.Session) {
		b, ok := s.Backend(raster.Name)
		if !ok {
			return
		}
		rs, ok := b.(*raster.Surface)
		if !ok {
			return
		}
		found = true
		encErr = rs.EncodePNG(&buf)
	})
	switch {
	case err != nil:
		writeEngineError(w, err)
	case !found:
		writeError(w, http.StatusConflict, "session has no raster backend")
	case encErr != nil:
		writeError(w, http.StatusInternalServerError, encErr.Error())
	default:
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

// GET /v1/sessions/{id}/live — WebSocket upgrade.
func (h *Handler) liveSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	replay, ops, cancel, err := h.live.Subscribe(r.Context(), id)
	if errors.Is(err, live.ErrNoStream) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.live.Serve(w, r, id, replay, ops, cancel)
}

// GET /v1/config — the active board config.
func (h *Handler) showConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.Config())
}

// POST /v1/config/reload — hot-reload the board config from disk.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	if h.loader == nil {
		writeError(w, http.StatusNotFound, "server is running without a config file")
		return
	}
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.eng.SwapConfig(cfg)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"version":  cfg.Version,
		"path":     h.loader.Path(),
	})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 if the fullest shard queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
			"shards":            h.eng.Shards(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
		"shards":            h.eng.Shards(),
	})
}

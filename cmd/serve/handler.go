package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	ai "github.com/tabletalk-ai/tabletalk"
	"github.com/tabletalk-ai/tabletalk/compare"
	"github.com/tabletalk-ai/tabletalk/session"
	"github.com/tabletalk-ai/tabletalk/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO(deploy): restrict origins once the frontend host is fixed.
		return true
	},
}

// Handler serves the query endpoints over the compare service.
type Handler struct {
	svc     *compare.Service
	manager *ws.Manager
}

// NewHandler creates the HTTP handler set for the given service.
func NewHandler(svc *compare.Service, manager *ws.Manager) *Handler {
	return &Handler{svc: svc, manager: manager}
}

// queryRequest is the JSON body shared by the query endpoints.
type queryRequest struct {
	ComparisonID string `json:"comparison_id"`
	Question     string `json:"question"`
	Variant      string `json:"variant,omitempty"`
	Model        string `json:"model,omitempty"`
	ChannelID    string `json:"channel_id,omitempty"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

// Query handles POST /query: blocking execution, answer only.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	req, opts, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	answer, err := h.svc.Query(r.Context(), req.ComparisonID, req.Question, opts...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Answer: answer})
}

// QueryStream handles POST /query/stream: thoughts and the answer are
// delivered as Server-Sent Events as the backend produces them.
func (h *Handler) QueryStream(w http.ResponseWriter, r *http.Request) {
	req, opts, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	flusher, okFlush := w.(http.Flusher)
	if !okFlush {
		slog.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	stream, err := h.svc.QueryStream(r.Context(), req.ComparisonID, req.Question, opts...)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range stream.Events() {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, payload)
		flusher.Flush()
	}

	if err := stream.Err(); err != nil {
		fmt.Fprintf(w, "event: error\ndata: %q\n\n", err.Error())
		flusher.Flush()
	}
}

// QueryPush handles POST /query/push: thoughts go out-of-band over the
// websocket channel named in the request; the answer comes back here.
func (h *Handler) QueryPush(w http.ResponseWriter, r *http.Request) {
	req, opts, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	if req.ChannelID == "" {
		http.Error(w, "channel_id is required", http.StatusBadRequest)
		return
	}

	answer, err := h.svc.QueryPush(r.Context(), req.ComparisonID, req.Question, req.ChannelID, opts...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Answer: answer})
}

// Connect handles GET /ws: upgrades the connection, registers it as a
// push channel, and tells the client its channel id in the first frame.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := h.manager.Register(conn)
	if err := h.manager.Send(id, fmt.Sprintf(`{"kind":"channel","text":%q}`, id)); err != nil {
		slog.Warn("failed to greet push channel", "channel_id", id, "error", err)
		h.manager.Unregister(id)
		return
	}

	// Reader loop exists only to observe the peer going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.manager.Unregister(id)
				return
			}
		}
	}()
}

func (h *Handler) parseRequest(w http.ResponseWriter, r *http.Request) (*queryRequest, []compare.Option, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, nil, false
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}
	if req.ComparisonID == "" || req.Question == "" {
		http.Error(w, "comparison_id and question are required", http.StatusBadRequest)
		return nil, nil, false
	}

	var opts []compare.Option
	if req.Variant != "" {
		variant, err := session.ParseVariant(req.Variant)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, nil, false
		}
		opts = append(opts, compare.WithVariant(variant))
	}
	if req.Model != "" {
		opts = append(opts, compare.WithModel(req.Model))
	}

	return &req, opts, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ai.ErrUnsupportedVariant):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ai.ErrDatasetUnavailable):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ai.ErrChannelNotFound), errors.Is(err, ai.ErrChannelClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ai.ErrExecutionTimeout):
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

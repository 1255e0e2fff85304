package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/jankeeper/jankeeper/realtime"
	"github.com/jankeeper/jankeeper/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origin once it is deployed.
		return true
	},
}

type WebSocketHandler struct {
	hub            *realtime.Hub
	sectionService services.SectionService
}

func NewWebSocketHandler(hub *realtime.Hub, sectionService services.SectionService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, sectionService: sectionService}
}

// ServeSection subscribes the connection to one section's change feed.
// Clients connect to /ws/sections/{sectionID}.
func (h *WebSocketHandler) ServeSection(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "sectionID")
	if sectionID == "" {
		http.Error(w, "missing section ID", http.StatusBadRequest)
		return
	}

	if _, err := h.sectionService.Get(r.Context(), sectionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed",
			slog.String("section_id", sectionID),
			slog.Any("error", err),
		)
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: "section_" + sectionID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

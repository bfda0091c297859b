package handler

import (
	"net/http"

	"teledrive-web/internal/middleware"
	"teledrive-web/internal/websocket"
)

type WSHandler struct {
	hub *websocket.Hub
}

func NewWSHandler(hub *websocket.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Serve upgrades the connection and binds it to the caller's session
// so only that session's drive events are pushed to it.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionFromContext(r.Context())
	websocket.ServeWS(h.hub, token, w, r)
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/session"
)

// sessionHandler handles session introspection and reset.
type sessionHandler struct {
	store  *session.Store
	logger *slog.Logger
}

func newSessionHandler(store *session.Store, logger *slog.Logger) *sessionHandler {
	return &sessionHandler{store: store, logger: logger}
}

func (h *sessionHandler) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/sessions/{id}", h.info)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", h.clear)
}

// SessionInfoResponse is the session introspection shape.
type SessionInfoResponse struct {
	SessionID       string     `json:"sessionId"`
	Exists          bool       `json:"exists"`
	MessageCount    int        `json:"messageCount,omitempty"`
	LastActivity    *time.Time `json:"lastActivity,omitempty"`
	HasQueryHistory bool       `json:"hasQueryHistory,omitempty"`
}

func (h *sessionHandler) info(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	info := h.store.Info(id)

	resp := SessionInfoResponse{SessionID: id, Exists: info.Exists}
	if info.Exists {
		resp.MessageCount = info.MessageCount
		resp.LastActivity = &info.LastActivity
		resp.HasQueryHistory = info.HasQueryHistory
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}

// clear removes a session. Idempotent: clearing an unknown session still
// acknowledges success.
func (h *sessionHandler) clear(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.store.Clear(id)
	writeJSON(w, http.StatusOK, map[string]string{
		"sessionId": id,
		"status":    "cleared",
	}, h.logger)
}

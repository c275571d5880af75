package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/convo"
)

// MaxMessageLength bounds a single user message.
const MaxMessageLength = 4096

// chatHandler handles the conversation endpoint.
type chatHandler struct {
	orch   Conversation
	logger *slog.Logger
}

func newChatHandler(orch Conversation, logger *slog.Logger) *chatHandler {
	return &chatHandler{orch: orch, logger: logger}
}

func (h *chatHandler) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/chat", h.chat)
}

// ChatRequest is the request body for one conversation turn.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// ChatResponse wraps the turn result with the session it belongs to.
type ChatResponse struct {
	SessionID string       `json:"sessionId"`
	Type      string       `json:"type"`
	Response  string       `json:"response"`
	Debug     *convo.Debug `json:"debug,omitempty"`
}

// chat processes one user turn. Validation rejects empty session ids and
// blank messages before the orchestrator is ever invoked.
func (h *chatHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "missing_session_id", "sessionId is required", h.logger)
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "empty_message", "message must not be empty", h.logger)
		return
	}
	if len(message) > MaxMessageLength {
		writeError(w, http.StatusBadRequest, "message_too_long", "message exceeds maximum length", h.logger)
		return
	}

	result := h.orch.Process(r.Context(), req.SessionID, message)

	writeJSON(w, http.StatusOK, ChatResponse{
		SessionID: req.SessionID,
		Type:      result.Type,
		Response:  result.Response,
		Debug:     result.Debug,
	}, h.logger)
}

package httpapi

import (
	"net/http"
	"strings"

	logx "github.com/bayti-store/server/pkg/logger"
	"github.com/google/uuid"
)

type chatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Query          string `json:"query"`
}

type chatResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

// handleAssistantChat is intentionally forgiving: any provider or storage
// failure surfaces as a single generic retryable error.
func (s *Server) handleAssistantChat(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "assistant is not configured"})
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	reply, err := s.assistant.Chat(r.Context(), req.ConversationID, req.Query)
	if err != nil {
		logx.Error().Err(err).Str("conversationID", req.ConversationID).Msg("assistant chat failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "assistant is unavailable, please try again"})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{ConversationID: req.ConversationID, Reply: reply})
}

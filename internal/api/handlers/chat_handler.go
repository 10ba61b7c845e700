package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/askpeer/askpeer-be/internal/auth"
	"github.com/askpeer/askpeer-be/internal/models"
	"github.com/askpeer/askpeer-be/internal/services"
)

// ChatHandler handles HTTP requests for the AI assistant.
type ChatHandler struct {
	service services.ChatServiceProvider
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service services.ChatServiceProvider) *ChatHandler {
	return &ChatHandler{service: service}
}

// ChatPayload is the JSON body for one assistant turn.
type ChatPayload struct {
	Prompt string `json:"prompt"`
}

// Respond handles one assistant exchange. On a gateway failure nothing is
// persisted, so the client can simply retry the same prompt.
func (h *ChatHandler) Respond(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var payload ChatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	answer, err := h.service.Respond(r.Context(), claims.UserID, payload.Prompt)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Assistant exchange failed")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// History returns the caller's recent turns in chronological order.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	turns, err := h.service.History(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to load chat history")
		writeDomainError(w, err)
		return
	}
	if turns == nil {
		turns = []models.ChatTurn{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": turns})
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/askpeer/askpeer-be/internal/auth"
	"github.com/askpeer/askpeer-be/internal/models"
	"github.com/askpeer/askpeer-be/internal/services"
)

// AnswerHandler handles HTTP requests for answers and answer summaries.
type AnswerHandler struct {
	service   services.AnswerServiceProvider
	summaries services.SummaryServiceProvider
	validate  *validator.Validate
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(service services.AnswerServiceProvider, summaries services.SummaryServiceProvider) *AnswerHandler {
	return &AnswerHandler{service: service, summaries: summaries, validate: validator.New()}
}

// CreateAnswerPayload is the JSON body for posting an answer.
type CreateAnswerPayload struct {
	QuestionID int64  `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
}

// UpdateAnswerPayload is the JSON body for editing an answer.
type UpdateAnswerPayload struct {
	Answer string `json:"answer" validate:"required"`
}

// GetForQuestion handles listing all answers to a question.
func (h *AnswerHandler) GetForQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question_id")
		return
	}

	answers, err := h.service.GetAnswersForQuestion(r.Context(), questionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if answers == nil {
		answers = []models.Answer{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"answers": answers})
}

// Create handles posting a new answer.
func (h *AnswerHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var payload CreateAnswerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "question_id and answer are required")
		return
	}

	id, err := h.service.CreateAnswer(r.Context(), payload.QuestionID, claims.UserID, payload.Answer)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "answer posted successfully",
		"answerId": id,
	})
}

// Update handles editing an answer the caller owns.
func (h *AnswerHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid answer id")
		return
	}

	var payload UpdateAnswerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "answer is required")
		return
	}

	if err := h.service.UpdateAnswer(r.Context(), id, claims.UserID, payload.Answer); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "answer updated successfully"})
}

// Delete handles deleting an answer the caller owns.
func (h *AnswerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid answer id")
		return
	}

	if err := h.service.DeleteAnswer(r.Context(), id, claims.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "answer deleted successfully"})
}

// Summary handles the on-demand AI summary of a question's answers.
func (h *AnswerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question_id")
		return
	}

	summary, err := h.summaries.SummarizeAnswers(r.Context(), questionID)
	if err != nil {
		log.Warn().Err(err).Int64("question_id", questionID).Msg("Failed to summarize answers")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

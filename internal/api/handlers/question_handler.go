package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/askpeer/askpeer-be/internal/auth"
	"github.com/askpeer/askpeer-be/internal/models"
	"github.com/askpeer/askpeer-be/internal/services"
)

// QuestionHandler handles HTTP requests for questions.
type QuestionHandler struct {
	service  services.QuestionServiceProvider
	validate *validator.Validate
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(service services.QuestionServiceProvider) *QuestionHandler {
	return &QuestionHandler{service: service, validate: validator.New()}
}

// QuestionPayload is the JSON body for creating or editing a question.
type QuestionPayload struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Tag         *string `json:"tag" validate:"omitempty,max=20"`
}

// GetAll handles listing all questions.
func (h *QuestionHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.GetAllQuestions(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list questions")
		writeDomainError(w, err)
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// Get handles retrieving a single question by id.
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	question, err := h.service.GetQuestion(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"question": question})
}

// Create handles posting a new question.
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var payload QuestionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "title and description are required; tag must be at most 20 characters")
		return
	}

	id, err := h.service.CreateQuestion(r.Context(), claims.UserID, payload.Title, payload.Description, payload.Tag)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to create question")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "question posted successfully",
		"questionId": id,
	})
}

// Update handles editing a question the caller owns.
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	var payload QuestionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "title and description are required; tag must be at most 20 characters")
		return
	}

	if err := h.service.UpdateQuestion(r.Context(), id, claims.UserID, payload.Title, payload.Description, payload.Tag); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "question updated successfully"})
}

// Delete handles deleting a question the caller owns.
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	if err := h.service.DeleteQuestion(r.Context(), id, claims.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "question deleted successfully"})
}

// pathID parses a numeric URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/askpeer/askpeer-be/internal/auth"
	"github.com/askpeer/askpeer-be/internal/services"
)

const maxProfilePictureBytes = 5 << 20 // 5MB

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	service  services.UserServiceProvider
	tokens   *auth.TokenService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens *auth.TokenService) *UserHandler {
	return &UserHandler{
		service:  service,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username  string `json:"username" validate:"required"`
	Firstname string `json:"firstname" validate:"required"`
	Lastname  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "all fields are required and the password must be at least 8 characters")
		return
	}

	user, err := h.service.Register(r.Context(), payload.Username, payload.Firstname, payload.Lastname, payload.Email, payload.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	writeJSON(w, http.StatusCreated, map[string]string{"message": "user registered successfully"})
}

// Login handles user authentication and token issuance.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.service.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		writeDomainError(w, err)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Username)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate token")
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Check validates the caller's token and echoes the claim back.
func (h *UserHandler) Check(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication invalid")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username": claims.Username,
		"userid":   claims.UserID,
	})
}

// ForgotPassword issues a password reset email. The response is 200 whether
// or not the email belongs to an account.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.service.ForgotPassword(r.Context(), payload.Email); err != nil {
		log.Error().Err(err).Msg("Forgot password flow failed")
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "if an account exists with this email, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token from the URL.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	var payload struct {
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "newPassword must be at least 8 characters")
		return
	}

	if err := h.service.ResetPassword(r.Context(), token, payload.NewPassword); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset successful"})
}

// UploadProfilePicture stores a new avatar for the caller.
func (h *UserHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxProfilePictureBytes)
	if err := r.ParseMultipartForm(maxProfilePictureBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("profilePicture")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if !isImageFilename(header.Filename) {
		writeError(w, http.StatusBadRequest, "only image files are allowed")
		return
	}

	url, err := h.service.UploadProfilePicture(r.Context(), claims.UserID, header.Filename, file, header.Size)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to upload profile picture")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":           "profile picture uploaded successfully",
		"profilePictureUrl": url,
	})
}

// GetProfilePicture returns the caller's avatar URL, or null.
func (h *UserHandler) GetProfilePicture(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	url, err := h.service.GetProfilePicture(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"profilePicture": url})
}

// RemoveProfilePicture clears the caller's avatar.
func (h *UserHandler) RemoveProfilePicture(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	if err := h.service.RemoveProfilePicture(r.Context(), claims.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "profile picture removed successfully"})
}

func isImageFilename(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

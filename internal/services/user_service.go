package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/askpeer/askpeer-be/internal/mail"
	"github.com/askpeer/askpeer-be/internal/models"
	"github.com/askpeer/askpeer-be/internal/storage"
)

const resetTokenTTL = 15 * time.Minute

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, firstname, lastname, email, password string) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	UploadProfilePicture(ctx context.Context, userID int64, fileName string, file io.Reader, size int64) (string, error)
	GetProfilePicture(ctx context.Context, userID int64) (*string, error)
	RemoveProfilePicture(ctx context.Context, userID int64) error
}

// UserService provides business logic for user accounts.
type UserService struct {
	db            *sql.DB
	mailer        mail.Mailer
	objects       storage.ObjectStore
	publicBaseURL string
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, mailer mail.Mailer, objects storage.ObjectStore, publicBaseURL string) *UserService {
	return &UserService{db: db, mailer: mailer, objects: objects, publicBaseURL: publicBaseURL}
}

// Register creates a new user, hashing their password. A duplicate email
// fails with ErrConflict.
func (s *UserService) Register(ctx context.Context, username, firstname, lastname, email, password string) (models.User, error) {
	var existing int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ?", email).Scan(&existing)
	if err == nil {
		return models.User{}, models.ErrConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("failed to check existing email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, firstname, lastname, email, password_hash) VALUES (?, ?, ?, ?, ?)",
		username, firstname, lastname, email, string(hashedPassword))
	if err != nil {
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}

	return models.User{
		ID:        id,
		Username:  username,
		Firstname: firstname,
		Lastname:  lastname,
		Email:     email,
	}, nil
}

// Authenticate verifies a user's credentials. Unknown email and wrong
// password both fail with ErrUnauthenticated.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, firstname, lastname, email, password_hash FROM users WHERE email = ?", email).
		Scan(&user.ID, &user.Username, &user.Firstname, &user.Lastname, &user.Email, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.ErrUnauthenticated
		}
		return models.User{}, fmt.Errorf("failed to query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, models.ErrUnauthenticated
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	var picture sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, firstname, lastname, email, profile_picture, created_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Username, &user.Firstname, &user.Lastname, &user.Email, &picture, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if picture.Valid {
		user.ProfilePicture = &picture.String
	}
	return user, nil
}

// ForgotPassword issues a one-time reset token and mails the reset link. It
// returns nil whether or not the email belongs to an account, so callers
// cannot enumerate accounts.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	var userID int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ?", email).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("failed to look up email: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	// Only the hash is stored; the raw token travels in the email link.
	hashed := sha256.Sum256([]byte(token))
	expires := time.Now().Add(resetTokenTTL)

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET reset_token = ?, reset_token_expires = ? WHERE id = ?",
		hex.EncodeToString(hashed[:]), expires, userID)
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password/%s", s.publicBaseURL, token)
	if err := s.mailer.SendPasswordReset(email, resetLink); err != nil {
		// Delivery is best-effort; the client response stays uniform.
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to send password reset mail")
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password. Invalid,
// already-used and expired tokens all fail with ErrValidation.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	hashed := sha256.Sum256([]byte(token))

	var userID int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM users WHERE reset_token = ? AND reset_token_expires > ?",
		hex.EncodeToString(hashed[:]), time.Now()).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrValidation
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expires = NULL WHERE id = ?",
		string(hashedPassword), userID)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// UploadProfilePicture stores a new avatar and returns its public URL. The
// previous object, if any, is removed after the database points at the new
// one.
func (s *UserService) UploadProfilePicture(ctx context.Context, userID int64, fileName string, file io.Reader, size int64) (string, error) {
	var current sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT profile_picture FROM users WHERE id = ?", userID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("failed to load current profile picture: %w", err)
	}

	objectName, err := s.objects.UploadProfilePicture(ctx, userID, fileName, file, size)
	if err != nil {
		return "", fmt.Errorf("failed to store profile picture: %w", err)
	}

	_, err = s.db.ExecContext(ctx, "UPDATE users SET profile_picture = ? WHERE id = ?", objectName, userID)
	if err != nil {
		return "", fmt.Errorf("failed to update profile picture: %w", err)
	}

	if current.Valid && current.String != "" {
		if err := s.objects.RemoveProfilePicture(ctx, current.String); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to remove old profile picture")
		}
	}

	return s.objects.PublicURL(objectName), nil
}

// GetProfilePicture returns the public URL of the user's avatar, or nil when
// none is set.
func (s *UserService) GetProfilePicture(ctx context.Context, userID int64) (*string, error) {
	var current sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT profile_picture FROM users WHERE id = ?", userID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load profile picture: %w", err)
	}
	if !current.Valid || current.String == "" {
		return nil, nil
	}
	url := s.objects.PublicURL(current.String)
	return &url, nil
}

// RemoveProfilePicture clears the user's avatar.
func (s *UserService) RemoveProfilePicture(ctx context.Context, userID int64) error {
	var current sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT profile_picture FROM users WHERE id = ?", userID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to load profile picture: %w", err)
	}

	_, err = s.db.ExecContext(ctx, "UPDATE users SET profile_picture = NULL WHERE id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to clear profile picture: %w", err)
	}

	if current.Valid && current.String != "" {
		if err := s.objects.RemoveProfilePicture(ctx, current.String); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to remove profile picture object")
		}
	}
	return nil
}

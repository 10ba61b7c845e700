package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/askpeer/askpeer-be/internal/models"
)

// AnswerServiceProvider defines the interface for answer services.
type AnswerServiceProvider interface {
	GetAnswersForQuestion(ctx context.Context, questionID int64) ([]models.Answer, error)
	CreateAnswer(ctx context.Context, questionID, userID int64, content string) (int64, error)
	UpdateAnswer(ctx context.Context, id, callerID int64, content string) error
	DeleteAnswer(ctx context.Context, id, callerID int64) error
}

// AnswerService provides business logic for answer management.
type AnswerService struct {
	db *sql.DB
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(db *sql.DB) *AnswerService {
	return &AnswerService{db: db}
}

// GetAnswersForQuestion retrieves all answers for a question in insertion
// order. The question itself must exist.
func (s *AnswerService) GetAnswersForQuestion(ctx context.Context, questionID int64) ([]models.Answer, error) {
	if err := s.questionExists(ctx, questionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.question_id, a.user_id, u.username, a.content, a.created_at
		FROM answers a
		JOIN users u ON a.user_id = u.id
		WHERE a.question_id = ?
		ORDER BY a.id ASC`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.UserID, &a.Username, &a.Content, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer row: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// CreateAnswer inserts a new answer owned by userID. The parent question must
// exist.
func (s *AnswerService) CreateAnswer(ctx context.Context, questionID, userID int64, content string) (int64, error) {
	if err := s.questionExists(ctx, questionID); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO answers (question_id, user_id, content) VALUES (?, ?, ?)",
		questionID, userID, content)
	if err != nil {
		return 0, fmt.Errorf("failed to insert answer: %w", err)
	}
	return res.LastInsertId()
}

// UpdateAnswer edits an answer after verifying the caller owns it.
func (s *AnswerService) UpdateAnswer(ctx context.Context, id, callerID int64, content string) error {
	if err := requireOwnership(ctx, s.answerOwner, id, callerID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, "UPDATE answers SET content = ? WHERE id = ?", content, id)
	if err != nil {
		return fmt.Errorf("failed to update answer: %w", err)
	}
	return nil
}

// DeleteAnswer removes an answer after verifying the caller owns it.
func (s *AnswerService) DeleteAnswer(ctx context.Context, id, callerID int64) error {
	if err := requireOwnership(ctx, s.answerOwner, id, callerID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, "DELETE FROM answers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete answer: %w", err)
	}
	return nil
}

func (s *AnswerService) answerOwner(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := s.db.QueryRowContext(ctx, "SELECT user_id FROM answers WHERE id = ?", id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("failed to load answer owner: %w", err)
	}
	return ownerID, nil
}

func (s *AnswerService) questionExists(ctx context.Context, questionID int64) error {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM questions WHERE id = ?", questionID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to check question: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/askpeer/askpeer-be/internal/models"
)

// QuestionServiceProvider defines the interface for question services.
type QuestionServiceProvider interface {
	GetAllQuestions(ctx context.Context) ([]models.Question, error)
	GetQuestion(ctx context.Context, id int64) (models.Question, error)
	CreateQuestion(ctx context.Context, userID int64, title, description string, tag *string) (int64, error)
	UpdateQuestion(ctx context.Context, id, callerID int64, title, description string, tag *string) error
	DeleteQuestion(ctx context.Context, id, callerID int64) error
}

// QuestionService provides business logic for question management.
type QuestionService struct {
	db *sql.DB
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(db *sql.DB) *QuestionService {
	return &QuestionService{db: db}
}

// GetAllQuestions retrieves all questions, newest first, with the owner's
// username joined in.
func (s *QuestionService) GetAllQuestions(ctx context.Context) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.id, q.user_id, u.username, q.title, q.description, q.tag, q.created_at
		FROM questions q
		JOIN users u ON q.user_id = u.id
		ORDER BY q.created_at DESC, q.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		var tag sql.NullString
		if err := rows.Scan(&q.ID, &q.UserID, &q.Username, &q.Title, &q.Description, &tag, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		if tag.Valid {
			q.Tag = &tag.String
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetQuestion retrieves a single question by its ID.
func (s *QuestionService) GetQuestion(ctx context.Context, id int64) (models.Question, error) {
	var q models.Question
	var tag sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT q.id, q.user_id, u.username, q.title, q.description, q.tag, q.created_at
		FROM questions q
		JOIN users u ON q.user_id = u.id
		WHERE q.id = ?`, id).
		Scan(&q.ID, &q.UserID, &q.Username, &q.Title, &q.Description, &tag, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Question{}, models.ErrNotFound
		}
		return models.Question{}, fmt.Errorf("failed to get question: %w", err)
	}
	if tag.Valid {
		q.Tag = &tag.String
	}
	return q, nil
}

// CreateQuestion inserts a new question owned by userID and returns its id.
func (s *QuestionService) CreateQuestion(ctx context.Context, userID int64, title, description string, tag *string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO questions (user_id, title, description, tag) VALUES (?, ?, ?, ?)",
		userID, title, description, tag)
	if err != nil {
		return 0, fmt.Errorf("failed to insert question: %w", err)
	}
	return res.LastInsertId()
}

// UpdateQuestion edits a question after verifying the caller owns it.
func (s *QuestionService) UpdateQuestion(ctx context.Context, id, callerID int64, title, description string, tag *string) error {
	if err := requireOwnership(ctx, s.questionOwner, id, callerID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"UPDATE questions SET title = ?, description = ?, tag = ? WHERE id = ?",
		title, description, tag, id)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

// DeleteQuestion removes a question after verifying the caller owns it.
// Answers cascade with the question.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id, callerID int64) error {
	if err := requireOwnership(ctx, s.questionOwner, id, callerID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, "DELETE FROM questions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

func (s *QuestionService) questionOwner(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := s.db.QueryRowContext(ctx, "SELECT user_id FROM questions WHERE id = ?", id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("failed to load question owner: %w", err)
	}
	return ownerID, nil
}

package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/askpeer/askpeer-be/internal/models"
)

// ConversationStore persists the per-user append-only chat log.
type ConversationStore interface {
	// AppendExchange writes exactly two ordered rows (user then assistant)
	// for one exchange, all-or-nothing.
	AppendExchange(ctx context.Context, userID int64, userText, assistantText string) error

	// RecentTurns returns the most recent limit turns, most recent first.
	RecentTurns(ctx context.Context, userID int64, limit int) ([]models.ChatTurn, error)
}

// SQLConversationStore is a ConversationStore over the chat_turns table.
type SQLConversationStore struct {
	db *sql.DB
}

// NewSQLConversationStore creates a SQLConversationStore.
func NewSQLConversationStore(db *sql.DB) *SQLConversationStore {
	return &SQLConversationStore{db: db}
}

// AppendExchange inserts the user/assistant pair in one transaction, so two
// concurrent exchanges for the same user can interleave only as complete
// pairs and a gateway failure upstream never leaves an orphan user row.
func (s *SQLConversationStore) AppendExchange(ctx context.Context, userID int64, userText, assistantText string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin exchange append: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO chat_turns (user_id, role, content) VALUES (?, ?, ?)",
		userID, models.RoleUser, userText); err != nil {
		return fmt.Errorf("failed to insert user turn: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO chat_turns (user_id, role, content) VALUES (?, ?, ?)",
		userID, models.RoleAssistant, assistantText); err != nil {
		return fmt.Errorf("failed to insert assistant turn: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit exchange: %w", err)
	}
	return nil
}

// RecentTurns returns the newest limit turns for a user, newest first.
// Callers that need chronological order reverse the slice.
func (s *SQLConversationStore) RecentTurns(ctx context.Context, userID int64, limit int) ([]models.ChatTurn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, role, content, created_at
		FROM chat_turns
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat turns: %w", err)
	}
	defer rows.Close()

	var turns []models.ChatTurn
	for rows.Next() {
		var t models.ChatTurn
		if err := rows.Scan(&t.Sequence, &t.UserID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

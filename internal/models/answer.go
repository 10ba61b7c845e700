package models

import "time"

// Answer represents an answer to a question. Ownership is scoped to the
// answer row, independent of the parent question's owner.
type Answer struct {
	ID         int64     `json:"answer_id"`
	QuestionID int64     `json:"question_id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

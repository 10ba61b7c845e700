package models

import "time"

// Question represents a forum question. UserID is the owning creator and is
// immutable after creation; it is the sole authorization predicate for
// mutation.
type Question struct {
	ID          int64     `json:"question_id"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tag         *string   `json:"tag"`
	CreatedAt   time.Time `json:"created_at"`
}

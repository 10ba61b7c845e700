package models

import "time"

// Chat turn roles. Turns are always persisted in user/assistant pairs.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one row of a user's append-only conversation log. Sequence is
// the insertion-ordered row id; a conversation is the ordered sequence of a
// user's turns.
type ChatTurn struct {
	Sequence  int64     `json:"-"`
	UserID    int64     `json:"-"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"-"`
}

// Exchange is one user message paired with the assistant reply that was
// persisted with it.
type Exchange struct {
	Human string `json:"human"`
	Model string `json:"model"`
}

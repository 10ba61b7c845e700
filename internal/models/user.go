package models

import "time"

// User represents a user account in the system.
type User struct {
	ID             int64     `json:"userid"`
	Username       string    `json:"username"`
	Firstname      string    `json:"firstname"`
	Lastname       string    `json:"lastname"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // Never expose this to the client
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

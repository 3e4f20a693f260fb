package models

import "time"

type User struct {
	ID    string
	Name  string
	Email string
	// Password is the encoded password hash, never the plaintext.
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity is the caller resolved from a session.
type Identity struct {
	UserID    string
	Email     string
	SessionID string
}

package models

import "time"

type Task struct {
	ID        string
	UserID    string
	Text      string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskPatch holds the optional fields of a task update. A nil field
// is left unchanged.
type TaskPatch struct {
	Text      *string
	Completed *bool
}

func (p TaskPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

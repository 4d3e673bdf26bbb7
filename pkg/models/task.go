package models

import "time"

// HomeworkTask represents a single homework item owned by a user. Tasks are
// created and completed by the planner UI; the dispatcher only reads them.
type HomeworkTask struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Subject   string    `json:"subject" db:"subject"` // Display label, e.g. "Math"
	Title     string    `json:"title" db:"title"`
	Completed bool      `json:"completed" db:"completed"`
	DueAt     time.Time `json:"due_at" db:"due_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

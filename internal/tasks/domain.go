package tasks

import "time"

// ResourceCode is the permission-rule resource code for tasks.
const ResourceCode = "task"

// Task is a record owned by an account.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnedBy returns the owning account ID.
func (t Task) OwnedBy() int64 { return t.OwnerID }

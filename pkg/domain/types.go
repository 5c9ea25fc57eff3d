// Package domain holds the entity kinds the schema table can declare as
// return types. Field tags line up with the column names the backend
// operations return.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	TaskID    int64      `json:"task_id"`
	ProjectID int64      `json:"project_id"`
	OwnerKey  string     `json:"account_key"`
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	Done      bool       `json:"done"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type Project struct {
	ProjectID int64     `json:"project_id"`
	Key       uuid.UUID `json:"project_key"`
	Name      string    `json:"name"`
	OwnerKey  string    `json:"account_key"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}

type Account struct {
	AccountKey  string    `json:"account_key"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

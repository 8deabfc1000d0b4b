// Package entity defines the domain entities for the tasks feature.
package entity

import "time"

// Task is a single to-do item owned by exactly one user.
type Task struct {
	// ID is the unique identifier for the task.
	ID string

	// UserID is the owner. Every lookup is filtered by it.
	UserID string

	Title       string
	Description string
	Completed   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

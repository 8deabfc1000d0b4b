// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
type User struct {
	// ID is the unique identifier for the user.
	ID string

	// Name is the display name. It is the only field a user can change.
	Name string

	// Email is the lower-cased address used for login.
	// It must be unique across all users.
	Email string

	// PasswordHash is the bcrypt digest of the password.
	// It never leaves the server.
	PasswordHash string

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

// Package usecase implements the business logic for the auth feature.
package usecase

import "task_backend/internal/platform/apperr"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = apperr.NotFound("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = apperr.Conflict("email already registered")

	// ErrInvalidCredentials is returned when the email is unknown or the password does not match.
	ErrInvalidCredentials = apperr.Unauthenticated("invalid credentials")

	// ErrAllFieldsRequired is returned when a registration field is empty after trimming.
	ErrAllFieldsRequired = apperr.Validation("all fields are required")

	// ErrInvalidEmail is returned when an email does not look like local@domain.tld.
	ErrInvalidEmail = apperr.Validation("invalid email format")

	// ErrPasswordTooShort is returned when a password is shorter than MinPasswordLength.
	ErrPasswordTooShort = apperr.Validation("password must be at least 6 characters")

	// ErrLoginFieldsRequired is returned when email or password is missing at login.
	ErrLoginFieldsRequired = apperr.Validation("email and password are required")

	// ErrNameRequired is returned when a profile update carries an empty name.
	ErrNameRequired = apperr.Validation("name is required")

	// ErrNameTooLong is returned when a name exceeds MaxNameLength.
	ErrNameTooLong = apperr.Validation("name must be at most 100 characters")
)

// Package usecase implements the business logic for the tasks feature.
package usecase

import "task_backend/internal/platform/apperr"

var (
	// ErrTaskNotFound is returned when a task does not exist or belongs to another user.
	// The two cases are indistinguishable to the caller.
	ErrTaskNotFound = apperr.NotFound("task not found")

	// ErrTitleRequired is returned when a new task has no title after trimming.
	ErrTitleRequired = apperr.Validation("title is required")

	// ErrTitleEmpty is returned when an update sets the title to blank.
	ErrTitleEmpty = apperr.Validation("title cannot be empty")

	// ErrTitleTooLong is returned when a title exceeds MaxTitleLength.
	ErrTitleTooLong = apperr.Validation("title must be at most 200 characters")

	// ErrDescriptionTooLong is returned when a description exceeds MaxDescriptionLength.
	ErrDescriptionTooLong = apperr.Validation("description must be at most 1000 characters")

	// ErrSearchTooLong is returned when the search term exceeds MaxTitleLength.
	ErrSearchTooLong = apperr.Validation("search must be at most 200 characters")
)

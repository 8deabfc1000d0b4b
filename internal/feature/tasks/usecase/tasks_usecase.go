package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"task_backend/internal/feature/tasks/domain/entity"
)

const (
	// MaxTitleLength は件名の最大文字数です。
	MaxTitleLength = 200
	// MaxDescriptionLength は説明の最大文字数です。
	MaxDescriptionLength = 1000
	// MaxListSize は一覧で返す最大件数です。ページングは行いません。
	MaxListSize = 100
)

// TaskPatch lists the fields an update changes. A nil field is left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// TaskRepository はタスクの永続化レイヤーを抽象化します。
// 全ての操作はuserIDで絞り込まれ、他人のタスクは存在しないものとして扱われます。
type TaskRepository interface {
	// List returns the user's tasks newest first. An empty search matches every task;
	// otherwise search is a case-insensitive literal substring of the title.
	List(ctx context.Context, userID, search string, limit int) ([]entity.Task, error)

	// Create persists a task and sets its ID and timestamps.
	Create(ctx context.Context, task *entity.Task) error

	// FindByID returns ErrTaskNotFound unless the task exists and belongs to userID.
	FindByID(ctx context.Context, userID, id string) (*entity.Task, error)

	// Update applies patch atomically and returns the updated task, or ErrTaskNotFound.
	Update(ctx context.Context, userID, id string, patch TaskPatch) (*entity.Task, error)

	// Delete removes the task, or returns ErrTaskNotFound.
	Delete(ctx context.Context, userID, id string) error
}

// CreateTaskInput is the input of Create.
type CreateTaskInput struct {
	Title       string
	Description string
}

// tasksUsecase はタスク操作のユースケースです。
type tasksUsecase struct {
	tasks TaskRepository
}

// NewTasksUsecase はtasksUsecaseの新しいインスタンスを生成します。
func NewTasksUsecase(tasks TaskRepository) *tasksUsecase {
	return &tasksUsecase{tasks: tasks}
}

// List はユーザーのタスクを新しい順に最大MaxListSize件返します。
func (u *tasksUsecase) List(ctx context.Context, userID, search string) ([]entity.Task, error) {
	search = strings.TrimSpace(search)
	if utf8.RuneCountInString(search) > MaxTitleLength {
		return nil, ErrSearchTooLong
	}
	tasks, err := u.tasks.List(ctx, userID, search, MaxListSize)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []entity.Task{}
	}
	return tasks, nil
}

// Create は新しいタスクを作成します。completedは常にfalseで始まります。
func (u *tasksUsecase) Create(ctx context.Context, userID string, in CreateTaskInput) (*entity.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, ErrTitleTooLong
	}
	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	task := &entity.Task{UserID: userID, Title: title, Description: description}
	if err := u.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update は指定されたフィールドだけを変更します。
// 空のpatchは何も変更せず現在のタスクを返します。
func (u *tasksUsecase) Update(ctx context.Context, userID, id string, patch TaskPatch) (*entity.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		if utf8.RuneCountInString(title) > MaxTitleLength {
			return nil, ErrTitleTooLong
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if utf8.RuneCountInString(description) > MaxDescriptionLength {
			return nil, ErrDescriptionTooLong
		}
		patch.Description = &description
	}

	if patch.IsEmpty() {
		return u.tasks.FindByID(ctx, userID, id)
	}
	return u.tasks.Update(ctx, userID, id, patch)
}

// Delete はタスクを削除します。
func (u *tasksUsecase) Delete(ctx context.Context, userID, id string) error {
	return u.tasks.Delete(ctx, userID, id)
}

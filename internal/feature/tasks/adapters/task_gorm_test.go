package adapters

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
	"task_backend/internal/platform/db/dbtest"
)

func ptr[T any](v T) *T { return &v }

func newGormRepo(t *testing.T) *taskGorm {
	t.Helper()
	return NewTaskGorm(dbtest.SQLite(t, &TaskModel{}))
}

// seed creates tasks for userID with strictly increasing creation times.
func seed(t *testing.T, repo usecase.TaskRepository, userID string, titles ...string) []entity.Task {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]entity.Task, 0, len(titles))
	for i, title := range titles {
		task := &entity.Task{UserID: userID, Title: title, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(context.Background(), task))
		out = append(out, *task)
	}
	return out
}

func TestTaskGorm_Create(t *testing.T) {
	repo := newGormRepo(t)
	userID := uuid.NewString()

	task := &entity.Task{UserID: userID, Title: "Buy milk", Description: "2L"}
	require.NoError(t, repo.Create(context.Background(), task))

	assert.NoError(t, uuid.Validate(task.ID))
	assert.False(t, task.Completed)
	assert.False(t, task.CreatedAt.IsZero())

	found, err := repo.FindByID(context.Background(), userID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", found.Title)
	assert.Equal(t, "2L", found.Description)
}

func TestTaskGorm_List(t *testing.T) {
	repo := newGormRepo(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	seed(t, repo, alice, "Buy milk", "Walk dog", "MILK the cow", "100% done", "snake_case")
	seed(t, repo, bob, "Bob's milk")

	testCases := []struct {
		name   string
		search string
		limit  int
		want   []string
	}{
		{name: "newest first", want: []string{"snake_case", "100% done", "MILK the cow", "Walk dog", "Buy milk"}},
		{name: "case-insensitive substring", search: "milk", want: []string{"MILK the cow", "Buy milk"}},
		{name: "percent is literal", search: "%", want: []string{"100% done"}},
		{name: "underscore is literal", search: "e_c", want: []string{"snake_case"}},
		{name: "no match", search: "zzz", want: []string{}},
		{name: "limit", limit: 2, want: []string{"snake_case", "100% done"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tasks, err := repo.List(context.Background(), alice, tc.search, tc.limit)
			require.NoError(t, err)

			titles := make([]string, 0, len(tasks))
			for _, task := range tasks {
				assert.Equal(t, alice, task.UserID, "must only see own tasks")
				titles = append(titles, task.Title)
			}
			assert.Equal(t, tc.want, titles)
		})
	}
}

func TestTaskGorm_ListCap(t *testing.T) {
	repo := newGormRepo(t)
	userID := uuid.NewString()
	titles := make([]string, 0, usecase.MaxListSize+5)
	for i := 0; i < usecase.MaxListSize+5; i++ {
		titles = append(titles, fmt.Sprintf("task %03d", i))
	}
	seed(t, repo, userID, titles...)

	tasks, err := repo.List(context.Background(), userID, "", usecase.MaxListSize)

	require.NoError(t, err)
	assert.Len(t, tasks, usecase.MaxListSize)
	assert.Equal(t, "task 104", tasks[0].Title)
}

func TestTaskGorm_Ownership(t *testing.T) {
	repo := newGormRepo(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	task := seed(t, repo, alice, "private")[0]
	ctx := context.Background()

	_, err := repo.FindByID(ctx, bob, task.ID)
	assert.ErrorIs(t, err, usecase.ErrTaskNotFound)

	_, err = repo.Update(ctx, bob, task.ID, usecase.TaskPatch{Title: ptr("hijacked")})
	assert.ErrorIs(t, err, usecase.ErrTaskNotFound)

	err = repo.Delete(ctx, bob, task.ID)
	assert.ErrorIs(t, err, usecase.ErrTaskNotFound)

	// the owner's task is untouched
	found, err := repo.FindByID(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", found.Title)
}

func TestTaskGorm_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update leaves other fields", func(t *testing.T) {
		repo := newGormRepo(t)
		userID := uuid.NewString()
		task := &entity.Task{UserID: userID, Title: "Buy milk", Description: "2L"}
		require.NoError(t, repo.Create(ctx, task))

		updated, err := repo.Update(ctx, userID, task.ID, usecase.TaskPatch{Completed: ptr(true)})

		require.NoError(t, err)
		assert.True(t, updated.Completed)
		assert.Equal(t, "Buy milk", updated.Title)
		assert.Equal(t, "2L", updated.Description)
	})

	t.Run("false and empty string are written", func(t *testing.T) {
		repo := newGormRepo(t)
		userID := uuid.NewString()
		task := &entity.Task{UserID: userID, Title: "t", Description: "d"}
		require.NoError(t, repo.Create(ctx, task))
		_, err := repo.Update(ctx, userID, task.ID, usecase.TaskPatch{Completed: ptr(true)})
		require.NoError(t, err)

		updated, err := repo.Update(ctx, userID, task.ID, usecase.TaskPatch{Completed: ptr(false), Description: ptr("")})

		require.NoError(t, err)
		assert.False(t, updated.Completed)
		assert.Equal(t, "", updated.Description)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		repo := newGormRepo(t)

		_, err := repo.Update(ctx, uuid.NewString(), "abc", usecase.TaskPatch{Title: ptr("x")})

		assert.ErrorIs(t, err, usecase.ErrTaskNotFound)
	})
}

func TestTaskGorm_Delete(t *testing.T) {
	repo := newGormRepo(t)
	userID := uuid.NewString()
	task := seed(t, repo, userID, "to delete")[0]
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, userID, task.ID))

	_, err := repo.FindByID(ctx, userID, task.ID)
	assert.ErrorIs(t, err, usecase.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, userID, task.ID), usecase.ErrTaskNotFound, "second delete")
}

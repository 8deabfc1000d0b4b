// Package dto はtasksフィーチャーのリクエスト/レスポンスDTOを定義します。
package dto

import (
	"time"

	"task_backend/internal/feature/tasks/domain/entity"
)

// CreateTaskReq は POST /api/tasks のリクエストボディです。
type CreateTaskReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateTaskReq は PUT /api/tasks/:id のリクエストボディです。
// ポインタで「未指定」と「ゼロ値」を区別します。
type UpdateTaskReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TaskRes はタスクのレスポンスDTOです。
type TaskRes struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MessageRes は本文がメッセージだけのレスポンスです。
type MessageRes struct {
	Message string `json:"message"`
}

// NewTaskRes はエンティティからTaskResを生成します。
func NewTaskRes(t *entity.Task) TaskRes {
	return TaskRes{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTaskListRes は一覧レスポンスを生成します。空でもnullではなく[]を返します。
func NewTaskListRes(tasks []entity.Task) []TaskRes {
	out := make([]TaskRes, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskRes(&tasks[i]))
	}
	return out
}

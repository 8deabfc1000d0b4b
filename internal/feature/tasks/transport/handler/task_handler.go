// Package handler はtasksフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/transport/http/dto"
	"task_backend/internal/feature/tasks/usecase"
	"task_backend/internal/platform/apperr"
	"task_backend/internal/platform/http/bind"
	jwtmw "task_backend/internal/platform/jwt"
)

// TasksUsecase はタスク操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type TasksUsecase interface {
	List(ctx context.Context, userID, search string) ([]entity.Task, error)
	Create(ctx context.Context, userID string, in usecase.CreateTaskInput) (*entity.Task, error)
	Update(ctx context.Context, userID, id string, patch usecase.TaskPatch) (*entity.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

// TasksHandler はタスクのHTTPリクエストを処理します。
// 全ての操作は認証済みユーザーのタスクに限定されます。
type TasksHandler struct {
	uc TasksUsecase
}

// NewTasksHandler はTasksHandlerの新しいインスタンスを生成します。
func NewTasksHandler(uc TasksUsecase) *TasksHandler {
	return &TasksHandler{uc: uc}
}

// List は GET /api/tasks?search= を処理します。
func (h *TasksHandler) List(c *gin.Context) {
	userID, ok := jwtmw.MustUserID(c)
	if !ok {
		return
	}
	tasks, err := h.uc.List(c.Request.Context(), userID, c.Query("search"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskListRes(tasks))
}

// Create は POST /api/tasks を処理します。
func (h *TasksHandler) Create(c *gin.Context) {
	userID, ok := jwtmw.MustUserID(c)
	if !ok {
		return
	}
	var req dto.CreateTaskReq
	if err := bind.JSON(c, &req); err != nil {
		slog.Warn("create task validation failed", "error", err, "user_id", userID, "remote_addr", c.ClientIP())
		apperr.Respond(c, err)
		return
	}
	task, err := h.uc.Create(c.Request.Context(), userID, usecase.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTaskRes(task))
}

// Update は PUT /api/tasks/:id を処理します。送られたフィールドだけを変更します。
func (h *TasksHandler) Update(c *gin.Context) {
	userID, ok := jwtmw.MustUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateTaskReq
	if err := bind.JSON(c, &req); err != nil {
		slog.Warn("update task validation failed", "error", err, "user_id", userID, "remote_addr", c.ClientIP())
		apperr.Respond(c, err)
		return
	}
	task, err := h.uc.Update(c.Request.Context(), userID, c.Param("id"), usecase.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskRes(task))
}

// Delete は DELETE /api/tasks/:id を処理します。
func (h *TasksHandler) Delete(c *gin.Context) {
	userID, ok := jwtmw.MustUserID(c)
	if !ok {
		return
	}
	if err := h.uc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "task deleted successfully"})
}

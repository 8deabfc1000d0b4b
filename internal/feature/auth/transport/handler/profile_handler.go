package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"task_backend/internal/feature/auth/domain/entity"
	"task_backend/internal/feature/auth/transport/http/dto"
	"task_backend/internal/platform/apperr"
	"task_backend/internal/platform/http/bind"
	jwtmw "task_backend/internal/platform/jwt"
)

// ProfileUsecase はプロフィール操作のユースケースを定義します。
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID, name string) (*entity.User, error)
}

// ProfileHandler は認証済みユーザー自身のプロフィールを扱います。
type ProfileHandler struct {
	profiles ProfileUsecase
}

// NewProfileHandler はProfileHandlerを生成します。
func NewProfileHandler(profiles ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get は GET /api/user/profile を処理します。
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := jwtmw.MustUserID(c)
	if !ok {
		return
	}
	user, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProfileRes(user))
}

// Update は PUT /api/user/profile を処理します。名前のみ変更できます。
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := jwtmw.MustUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileReq
	if err := bind.JSON(c, &req); err != nil {
		slog.Warn("profile update validation failed", "error", err, "user_id", userID, "remote_addr", c.ClientIP())
		apperr.Respond(c, err)
		return
	}
	user, err := h.profiles.UpdateProfile(c.Request.Context(), userID, req.Name)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	slog.Info("profile updated", "user_id", userID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewProfileRes(user))
}

// Package adapters はtasksフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
)

// TaskModel is the GORM row for a task.
type TaskModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `gorm:"type:varchar(36);not null;index:idx_tasks_user_created,priority:1"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:varchar(1000);not null;default:''"`
	Completed   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null;index:idx_tasks_user_created,priority:2,sort:desc"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (TaskModel) TableName() string {
	return "tasks"
}

// BeforeCreate assigns a UUID when the caller left ID empty.
func (m *TaskModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *TaskModel) toEntity() entity.Task {
	return entity.Task{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Completed:   m.Completed,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type taskGorm struct {
	db *gorm.DB
}

var _ usecase.TaskRepository = (*taskGorm)(nil)

// NewTaskGorm はGORM接続を使うTaskRepositoryを生成します。
func NewTaskGorm(db *gorm.DB) *taskGorm {
	return &taskGorm{db: db}
}

// likeEscaper escapes LIKE wildcards so the search term matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *taskGorm) List(ctx context.Context, userID, search string, limit int) ([]entity.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern)
	}
	q = q.Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []TaskModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Task, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out, nil
}

func (r *taskGorm) Create(ctx context.Context, task *entity.Task) error {
	m := TaskModel{
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*task = m.toEntity()
	return nil
}

func (r *taskGorm) FindByID(ctx context.Context, userID, id string) (*entity.Task, error) {
	return findTask(r.db.WithContext(ctx), userID, id)
}

// Update は所有者とIDの両方に一致する行だけを更新します。
func (r *taskGorm) Update(ctx context.Context, userID, id string, patch usecase.TaskPatch) (*entity.Task, error) {
	if uuid.Validate(id) != nil {
		return nil, usecase.ErrTaskNotFound
	}
	changes := map[string]any{}
	if patch.Title != nil {
		changes["title"] = *patch.Title
	}
	if patch.Description != nil {
		changes["description"] = *patch.Description
	}
	if patch.Completed != nil {
		changes["completed"] = *patch.Completed
	}

	var updated *entity.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(changes) > 0 {
			res := tx.Model(&TaskModel{}).Where("id = ? AND user_id = ?", id, userID).Updates(changes)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return usecase.ErrTaskNotFound
			}
		}
		t, err := findTask(tx, userID, id)
		if err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *taskGorm) Delete(ctx context.Context, userID, id string) error {
	if uuid.Validate(id) != nil {
		return usecase.ErrTaskNotFound
	}
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&TaskModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrTaskNotFound
	}
	return nil
}

func findTask(db *gorm.DB, userID, id string) (*entity.Task, error) {
	if uuid.Validate(id) != nil {
		return nil, usecase.ErrTaskNotFound
	}
	var m TaskModel
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrTaskNotFound
		}
		return nil, err
	}
	t := m.toEntity()
	return &t, nil
}

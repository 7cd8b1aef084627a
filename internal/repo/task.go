package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/task_manager/internal/models"
)

// TaskFilter narrows a scoped list. Empty fields are ignored.
type TaskFilter struct {
	Status   string
	Priority string
}

func (r *Repo) CreateTask(ctx context.Context, t *models.Task) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

// TaskByID resolves a task inside the caller's scope. A row owned by someone
// else is indistinguishable from a missing row.
func (r *Repo) TaskByID(ctx context.Context, id string, scope TaskScope) (*models.Task, error) {
	var task models.Task
	q := scope.apply(r.DB.WithContext(ctx).Where("id = ?", id))
	if err := q.First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *Repo) ListTasks(ctx context.Context, scope TaskScope, filter TaskFilter, offset, limit int) ([]models.Task, int64, error) {
	q := scope.apply(r.DB.WithContext(ctx).Model(&models.Task{}))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *Repo) SaveTask(ctx context.Context, t *models.Task) error {
	return r.DB.WithContext(ctx).Save(t).Error
}

func (r *Repo) DeleteTask(ctx context.Context, id string, scope TaskScope) error {
	result := scope.apply(r.DB.WithContext(ctx).Where("id = ?", id)).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TasksInScope loads the full in-scope set for the statistics snapshot.
func (r *Repo) TasksInScope(ctx context.Context, scope TaskScope) ([]models.Task, error) {
	var tasks []models.Task
	q := scope.apply(r.DB.WithContext(ctx).Model(&models.Task{}))
	if err := q.Select("status", "priority", "due_date").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

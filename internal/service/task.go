package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/task_manager/internal/events"
	"github.com/Skotchmaster/task_manager/internal/logging"
	"github.com/Skotchmaster/task_manager/internal/models"
	"github.com/Skotchmaster/task_manager/internal/repo"
	"github.com/Skotchmaster/task_manager/internal/search"
	"github.com/Skotchmaster/task_manager/internal/util"
)

type TaskService struct {
	Repo     *repo.Repo
	Search   *search.Index
	Producer *events.Producer
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// UpdateTaskInput carries only the fields the client sent; nil leaves the
// current value alone.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
}

type TaskStats struct {
	TotalTasks  int `json:"total_tasks"`
	Pending     int `json:"pending"`
	InProgress  int `json:"in_progress"`
	Completed   int `json:"completed"`
	Cancelled   int `json:"cancelled"`
	UrgentTasks int `json:"urgent_tasks"`
	Overdue     int `json:"overdue"`
}

func (s *TaskService) List(ctx context.Context, scope repo.TaskScope, filter repo.TaskFilter, page, limit int) ([]models.Task, util.Pagination, error) {
	offset, limit := util.Calculate(page, limit)
	if page < 1 {
		page = 1
	}

	tasks, total, err := s.Repo.ListTasks(ctx, scope, filter, offset, limit)
	if err != nil {
		return nil, util.Pagination{}, err
	}
	return tasks, util.Paginate(page, limit, total), nil
}

func (s *TaskService) Get(ctx context.Context, id string, scope repo.TaskScope) (*models.Task, error) {
	return s.Repo.TaskByID(ctx, id, scope)
}

func (s *TaskService) Create(ctx context.Context, ownerID string, in CreateTaskInput) (*models.Task, error) {
	task := &models.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		UserID:      ownerID,
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	if err := s.Repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	s.index(ctx, task)
	s.publish(ctx, task.UserID, map[string]any{
		"type":   "task_created",
		"taskID": task.ID,
		"userID": task.UserID,
	})

	return task, nil
}

func (s *TaskService) Update(ctx context.Context, id string, scope repo.TaskScope, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.Repo.TaskByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	if err := s.Repo.SaveTask(ctx, task); err != nil {
		return nil, err
	}

	s.index(ctx, task)
	s.publish(ctx, task.UserID, map[string]any{
		"type":   "task_updated",
		"taskID": task.ID,
		"userID": task.UserID,
	})

	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id string, scope repo.TaskScope) error {
	if err := s.Repo.DeleteTask(ctx, id, scope); err != nil {
		return err
	}

	if err := s.Search.DeleteTask(ctx, id); err != nil {
		logging.FromContext(ctx).Error("search delete error", "task_id", id, "error", err)
	}
	s.publish(ctx, scope.UserID, map[string]any{
		"type":   "task_deleted",
		"taskID": id,
	})

	return nil
}

// Stats is a point-in-time snapshot over the caller's visible set, counted
// in memory off a single query.
func (s *TaskService) Stats(ctx context.Context, scope repo.TaskScope) (*TaskStats, error) {
	tasks, err := s.Repo.TasksInScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stats := &TaskStats{TotalTasks: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusCancelled:
			stats.Cancelled++
		}
		if t.Priority == models.PriorityUrgent {
			stats.UrgentTasks++
		}
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != models.StatusCompleted {
			stats.Overdue++
		}
	}
	return stats, nil
}

func (s *TaskService) FindInIndex(ctx context.Context, query string, scope repo.TaskScope, from, size int) (int64, []models.Task, error) {
	return s.Search.Search(ctx, query, scope.UserID, scope.Admin, from, size)
}

func (s *TaskService) Indexed() bool {
	return s.Search != nil && s.Search.ES != nil
}

func (s *TaskService) index(ctx context.Context, task *models.Task) {
	if err := s.Search.IndexTask(ctx, task); err != nil {
		logging.FromContext(ctx).Error("search index error", "task_id", task.ID, "error", err)
	}
}

func (s *TaskService) publish(ctx context.Context, key string, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, events.TopicTaskEvents, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", events.TopicTaskEvents, "error", err)
	}
}

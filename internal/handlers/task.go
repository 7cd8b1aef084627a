package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/task_manager/internal/httpx"
	"github.com/Skotchmaster/task_manager/internal/middleware"
	"github.com/Skotchmaster/task_manager/internal/models"
	"github.com/Skotchmaster/task_manager/internal/repo"
	"github.com/Skotchmaster/task_manager/internal/service"
	"github.com/Skotchmaster/task_manager/internal/util"
)

type TaskHandler struct {
	Svc *service.TaskService
}

func scopeFrom(c echo.Context) repo.TaskScope {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	role, _ := c.Get(middleware.CtxRole).(string)
	return repo.TaskScope{
		UserID: userID,
		Admin:  role == models.RoleAdmin,
	}
}

func (h *TaskHandler) List(c echo.Context) error {
	filter := repo.TaskFilter{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
	}
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		return httpx.BadRequest("Invalid status value")
	}
	if filter.Priority != "" && !models.ValidPriority(filter.Priority) {
		return httpx.BadRequest("Invalid priority value")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)

	tasks, pagination, err := h.Svc.List(c.Request().Context(), scopeFrom(c), filter, page, limit)
	if err != nil {
		return err
	}

	return httpx.OK(c, echo.Map{
		"tasks":      tasks,
		"pagination": pagination,
	}, "Tasks retrieved successfully")
}

func (h *TaskHandler) Get(c echo.Context) error {
	task, err := h.Svc.Get(c.Request().Context(), c.Param("id"), scopeFrom(c))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return httpx.NotFound("Task not found")
		}
		return err
	}

	return httpx.OK(c, echo.Map{"task": task}, "Task retrieved successfully")
}

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

func (h *TaskHandler) Create(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("Invalid request body")
	}

	var fields []httpx.FieldError
	if req.Title == "" {
		fields = append(fields, httpx.FieldError{Field: "title", Message: "Title is required"})
	} else if len(req.Title) > 200 {
		fields = append(fields, httpx.FieldError{Field: "title", Message: "Title must not exceed 200 characters"})
	}
	if req.Status != "" && !models.ValidStatus(req.Status) {
		fields = append(fields, httpx.FieldError{Field: "status", Message: "Invalid status value"})
	}
	if req.Priority != "" && !models.ValidPriority(req.Priority) {
		fields = append(fields, httpx.FieldError{Field: "priority", Message: "Invalid priority value"})
	}
	if len(fields) > 0 {
		return httpx.Validation(fields)
	}

	ownerID, _ := c.Get(middleware.CtxUserID).(string)
	task, err := h.Svc.Create(c.Request().Context(), ownerID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return err
	}

	return httpx.Created(c, echo.Map{"task": task}, "Task created successfully")
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

func (h *TaskHandler) Update(c echo.Context) error {
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("Invalid request body")
	}

	if req.Status != nil && !models.ValidStatus(*req.Status) {
		return httpx.BadRequest("Invalid status value")
	}
	if req.Priority != nil && !models.ValidPriority(*req.Priority) {
		return httpx.BadRequest("Invalid priority value")
	}
	if req.Title != nil && (*req.Title == "" || len(*req.Title) > 200) {
		return httpx.BadRequest("Title must be between 1 and 200 characters")
	}

	task, err := h.Svc.Update(c.Request().Context(), c.Param("id"), scopeFrom(c), service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return httpx.NotFound("Task not found")
		}
		return err
	}

	return httpx.OK(c, echo.Map{"task": task}, "Task updated successfully")
}

func (h *TaskHandler) Delete(c echo.Context) error {
	err := h.Svc.Delete(c.Request().Context(), c.Param("id"), scopeFrom(c))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return httpx.NotFound("Task not found")
		}
		return err
	}

	return httpx.OK(c, nil, "Task deleted successfully")
}

func (h *TaskHandler) Stats(c echo.Context) error {
	stats, err := h.Svc.Stats(c.Request().Context(), scopeFrom(c))
	if err != nil {
		return err
	}

	return httpx.OK(c, echo.Map{"stats": stats}, "Task statistics retrieved successfully")
}

func (h *TaskHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return httpx.BadRequest("Query parameter q is required")
	}
	if !h.Svc.Indexed() {
		return httpx.NewAPIError(http.StatusServiceUnavailable, "Search is not available")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	from, size := util.Calculate(page, limit)

	total, tasks, err := h.Svc.FindInIndex(c.Request().Context(), q, scopeFrom(c), from, size)
	if err != nil {
		return err
	}

	return httpx.OK(c, echo.Map{
		"total": total,
		"tasks": tasks,
	}, "Tasks retrieved successfully")
}

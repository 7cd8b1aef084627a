package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/task_manager/internal/httpx"
	"github.com/Skotchmaster/task_manager/internal/middleware"
	"github.com/Skotchmaster/task_manager/internal/repo"
	"github.com/Skotchmaster/task_manager/internal/service"
	"github.com/Skotchmaster/task_manager/internal/util"
)

type UserHandler struct {
	Svc *service.UserService
}

func (h *UserHandler) List(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)

	users, pagination, err := h.Svc.List(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}

	return httpx.OK(c, echo.Map{
		"users":      users,
		"pagination": pagination,
	}, "Users retrieved successfully")
}

func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.Svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return httpx.NotFound("User not found")
		}
		return err
	}

	return httpx.OK(c, echo.Map{"user": user}, "User retrieved successfully")
}

func (h *UserHandler) Delete(c echo.Context) error {
	callerID, _ := c.Get(middleware.CtxUserID).(string)

	err := h.Svc.Delete(c.Request().Context(), callerID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfDelete):
			return httpx.BadRequest("You cannot delete your own account")
		case errors.Is(err, repo.ErrNotFound):
			return httpx.NotFound("User not found")
		}
		return err
	}

	return httpx.OK(c, nil, "User deleted successfully")
}

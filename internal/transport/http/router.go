package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/task_manager/internal/handlers"
	mw "github.com/Skotchmaster/task_manager/internal/middleware"
)

type Deps struct {
	DB          *gorm.DB
	AuthHandler *handlers.AuthHandler
	TaskHandler *handlers.TaskHandler
	UserHandler *handlers.UserHandler
	Auth        *mw.Auth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"success":   true,
			"message":   "Server is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/me", d.AuthHandler.Me, d.Auth.Authenticate)
	auth.POST("/logout", d.AuthHandler.Logout, d.Auth.Authenticate)

	tasks := v1.Group("/tasks", d.Auth.Authenticate)
	tasks.GET("/stats", d.TaskHandler.Stats)
	tasks.GET("/search", d.TaskHandler.Search)
	tasks.GET("", d.TaskHandler.List)
	tasks.POST("", d.TaskHandler.Create)
	tasks.GET("/:id", d.TaskHandler.Get)
	tasks.PUT("/:id", d.TaskHandler.Update)
	tasks.DELETE("/:id", d.TaskHandler.Delete)

	users := v1.Group("/users", d.Auth.Authenticate, mw.RequireAdmin)
	users.GET("", d.UserHandler.List)
	users.GET("/:id", d.UserHandler.Get)
	users.DELETE("/:id", d.UserHandler.Delete)
}

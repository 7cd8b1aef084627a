package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/task_manager/internal/httpx"
	"github.com/Skotchmaster/task_manager/internal/models"
	"github.com/Skotchmaster/task_manager/internal/tokens"
)

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

type Auth struct {
	Tokens *tokens.Manager
}

func NewAuth(m *tokens.Manager) *Auth {
	return &Auth{Tokens: m}
}

// Authenticate pulls the access token from the accessToken cookie or, failing
// that, an Authorization: Bearer header, verifies it and attaches the decoded
// identity to the request context. No stored state is read or written.
func (m *Auth) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := ""
		if cookie, err := c.Cookie("accessToken"); err == nil && cookie.Value != "" {
			token = cookie.Value
		} else if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}

		if token == "" {
			return httpx.Unauthorized("Unauthorized request")
		}

		claims, err := m.Tokens.VerifyAccessToken(token)
		if err != nil {
			return httpx.Unauthorized("Invalid or expired token")
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRole, claims.Role)

		return next(c)
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, _ := c.Get(CtxRole).(string)
		if role == "" {
			return httpx.Unauthorized("Unauthorized request")
		}
		if role != models.RoleAdmin {
			return httpx.Forbidden("Access forbidden. Admin only.")
		}
		return next(c)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/task_manager/internal/httpx"
	"github.com/Skotchmaster/task_manager/internal/models"
	"github.com/Skotchmaster/task_manager/internal/tokens"
)

func newTokenManager() *tokens.Manager {
	return &tokens.Manager{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     time.Hour,
		RefreshTTL:    10 * time.Hour,
	}
}

func newContext(t *testing.T, cookies []*http.Cookie, header string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func apiCode(t *testing.T, err error) int {
	t.Helper()
	apiErr, ok := err.(*httpx.APIError)
	require.True(t, ok, "expected APIError, got %v", err)
	return apiErr.Code
}

func TestAuthenticateMissingToken(t *testing.T) {
	auth := NewAuth(newTokenManager())
	c := newContext(t, nil, "")

	err := auth.Authenticate(okHandler)(c)
	require.Equal(t, http.StatusUnauthorized, apiCode(t, err))
}

func TestAuthenticateCookie(t *testing.T) {
	m := newTokenManager()
	auth := NewAuth(m)

	token, err := m.IssueAccessToken("user-1", "user@example.com", models.RoleUser)
	require.NoError(t, err)

	c := newContext(t, []*http.Cookie{{Name: "accessToken", Value: token}}, "")
	require.NoError(t, auth.Authenticate(okHandler)(c))
	require.Equal(t, "user-1", c.Get(CtxUserID))
	require.Equal(t, "user@example.com", c.Get(CtxEmail))
	require.Equal(t, models.RoleUser, c.Get(CtxRole))
}

func TestAuthenticateBearer(t *testing.T) {
	m := newTokenManager()
	auth := NewAuth(m)

	token, err := m.IssueAccessToken("user-1", "user@example.com", models.RoleUser)
	require.NoError(t, err)

	c := newContext(t, nil, "Bearer "+token)
	require.NoError(t, auth.Authenticate(okHandler)(c))
	require.Equal(t, "user-1", c.Get(CtxUserID))
}

func TestAuthenticateCookieTakesPrecedence(t *testing.T) {
	m := newTokenManager()
	auth := NewAuth(m)

	token, err := m.IssueAccessToken("cookie-user", "cookie@example.com", models.RoleUser)
	require.NoError(t, err)

	// A garbage bearer header does not matter when the cookie is valid.
	c := newContext(t, []*http.Cookie{{Name: "accessToken", Value: token}}, "Bearer garbage")
	require.NoError(t, auth.Authenticate(okHandler)(c))
	require.Equal(t, "cookie-user", c.Get(CtxUserID))
}

func TestAuthenticateInvalidToken(t *testing.T) {
	auth := NewAuth(newTokenManager())

	c := newContext(t, []*http.Cookie{{Name: "accessToken", Value: "garbage"}}, "")
	err := auth.Authenticate(okHandler)(c)
	require.Equal(t, http.StatusUnauthorized, apiCode(t, err))

	expired := newTokenManager()
	expired.AccessTTL = -time.Minute
	token, signErr := expired.IssueAccessToken("user-1", "user@example.com", models.RoleUser)
	require.NoError(t, signErr)

	c = newContext(t, []*http.Cookie{{Name: "accessToken", Value: token}}, "")
	err = auth.Authenticate(okHandler)(c)
	require.Equal(t, http.StatusUnauthorized, apiCode(t, err))
}

func TestRequireAdmin(t *testing.T) {
	c := newContext(t, nil, "")
	c.Set(CtxRole, models.RoleAdmin)
	require.NoError(t, RequireAdmin(okHandler)(c))

	c = newContext(t, nil, "")
	c.Set(CtxRole, models.RoleUser)
	err := RequireAdmin(okHandler)(c)
	require.Equal(t, http.StatusForbidden, apiCode(t, err))

	// No identity attached at all: unauthorized, not forbidden.
	c = newContext(t, nil, "")
	err = RequireAdmin(okHandler)(c)
	require.Equal(t, http.StatusUnauthorized, apiCode(t, err))
}

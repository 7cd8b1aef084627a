package handlers_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/task_manager/internal/models"
)

func signupBody(username, email, password string) map[string]string {
	return map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/v1/auth/signup", signupBody("test_user", "test@example.com", "password"))
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := env.decode(rec)
	require.True(t, resp.Success)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var data struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, "test_user", data.User.Username)
	require.Equal(t, models.RoleUser, data.User.Role)
	require.NotEmpty(t, data.User.ID)
	require.NotEmpty(t, data.Token)

	// The password hash never leaves the server.
	require.NotContains(t, rec.Body.String(), "password")
	require.NotContains(t, rec.Body.String(), "Hash")

	cookies := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c.HttpOnly && c.Secure
	}
	require.True(t, cookies["accessToken"])
	require.True(t, cookies["refreshToken"])

	var stored models.User
	require.NoError(t, env.DB.Where("email = ?", "test@example.com").First(&stored).Error)
	require.NotNil(t, stored.RefreshToken)
}

func TestSignupDuplicate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/v1/auth/signup", signupBody("test_user", "test@example.com", "password"))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Same email, different username.
	rec = env.request(http.MethodPost, "/api/v1/auth/signup", signupBody("other_user", "test@example.com", "password"))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.False(t, env.decode(rec).Success)

	// Same username, different email.
	rec = env.request(http.MethodPost, "/api/v1/auth/signup", signupBody("test_user", "other@example.com", "password"))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/v1/auth/signup", signupBody("test_user", "not-an-email", "short"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := env.decode(rec)
	require.False(t, resp.Success)
	require.Len(t, resp.Errors, 2)

	rec = env.request(http.MethodPost, "/api/v1/auth/signup", map[string]string{"username": "test_user"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("test_user", "test@example.com", "password", models.RoleUser)

	recUnknown := env.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password",
	})
	recWrongPw := env.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrong_password",
	})

	// Unknown account and wrong password are indistinguishable.
	require.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	require.Equal(t, http.StatusUnauthorized, recWrongPw.Code)
	require.Equal(t, recUnknown.Body.String(), recWrongPw.Body.String())
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("test_user", "test@example.com", "password", models.RoleUser)

	rec := env.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := env.decode(rec)
	require.True(t, resp.Success)

	var data struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)

	claims, err := env.Tokens.VerifyAccessToken(data.Token)
	require.NoError(t, err)
	require.Equal(t, data.User.ID, claims.Subject)
	require.Equal(t, "test@example.com", claims.Email)
}

func TestLoginOverwritesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("test_user", "test@example.com", "password", models.RoleUser)

	body := map[string]string{"email": "test@example.com", "password": "password"}
	env.request(http.MethodPost, "/api/v1/auth/login", body)

	var first models.User
	require.NoError(t, env.DB.First(&first, "id = ?", user.ID).Error)
	require.NotNil(t, first.RefreshToken)

	env.request(http.MethodPost, "/api/v1/auth/login", body)

	var second models.User
	require.NoError(t, env.DB.First(&second, "id = ?", user.ID).Error)
	require.NotNil(t, second.RefreshToken)
	require.NotEqual(t, *first.RefreshToken, *second.RefreshToken)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("test_user", "test@example.com", "password", models.RoleUser)

	rec := env.request(http.MethodGet, "/api/v1/auth/me", nil, env.accessCookie(user))
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.decode(rec).Data, &data))
	require.Equal(t, user.ID, data.User.ID)
	require.Equal(t, user.Email, data.User.Email)
	require.Equal(t, models.RoleUser, data.User.Role)
}

func TestMeBearerHeader(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("test_user", "test@example.com", "password", models.RoleUser)

	token, err := env.Tokens.IssueAccessToken(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	req := newRequest(http.MethodGet, "/api/v1/auth/me")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serve(env, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMeWithoutToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, env.decode(rec).Success)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("test_user", "test@example.com", "password", models.RoleUser)
	cookie := env.accessCookie(user)

	rec := env.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodPost, "/api/v1/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.User
	require.NoError(t, env.DB.First(&stored, "id = ?", user.ID).Error)
	require.Nil(t, stored.RefreshToken)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "accessToken" || c.Name == "refreshToken" {
			require.True(t, c.MaxAge < 0 || c.Value == "")
		}
	}

	// Stateless access tokens: the one already issued keeps working until
	// its expiry, logout only revokes the refresh side.
	rec = env.request(http.MethodGet, "/api/v1/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	// Logging out again is not an error.
	rec = env.request(http.MethodPost, "/api/v1/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupUsernameCharset(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/v1/auth/signup", signupBody("bad user!", "test@example.com", "password"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := env.decode(rec)
	require.False(t, resp.Success)
	found := false
	for _, e := range resp.Errors {
		if e["field"] == "username" && strings.Contains(e["message"], "letters") {
			found = true
		}
	}
	require.True(t, found)
}

package handlers

import (
	"errors"
	"net/mail"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/task_manager/internal/httpx"
	"github.com/Skotchmaster/task_manager/internal/middleware"
	"github.com/Skotchmaster/task_manager/internal/repo"
	"github.com/Skotchmaster/task_manager/internal/service"
)

type AuthHandler struct {
	Svc *service.AuthService
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validateSignup(req signupRequest) []httpx.FieldError {
	var fields []httpx.FieldError
	if len(req.Username) < 3 || len(req.Username) > 50 {
		fields = append(fields, httpx.FieldError{Field: "username", Message: "Username must be between 3 and 50 characters"})
	} else if !usernameRe.MatchString(req.Username) {
		fields = append(fields, httpx.FieldError{Field: "username", Message: "Username can only contain letters, numbers, and underscores"})
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields = append(fields, httpx.FieldError{Field: "email", Message: "Please provide a valid email address"})
	}
	if len(req.Password) < 6 {
		fields = append(fields, httpx.FieldError{Field: "password", Message: "Password must be at least 6 characters long"})
	}
	return fields
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("Invalid request body")
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return httpx.BadRequest("All fields are required")
	}
	if fields := validateSignup(req); len(fields) > 0 {
		return httpx.Validation(fields)
	}

	res, err := h.Svc.Signup(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repo.ErrUserExists) {
			return httpx.Conflict("User with this email or username already exists")
		}
		return err
	}

	h.setSessionCookies(c, res)

	return httpx.Created(c, echo.Map{
		"user":  res.User,
		"token": res.AccessToken,
	}, "User registered successfully")
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return httpx.BadRequest("Email and password are required")
	}

	res, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return httpx.Unauthorized("Invalid credentials")
		}
		return err
	}

	h.setSessionCookies(c, res)

	return httpx.OK(c, echo.Map{
		"user":  res.User,
		"token": res.AccessToken,
	}, "Login successful")
}

// Me echoes the identity already verified by the middleware. No store
// lookup: out-of-band role changes show up only after the token is reissued.
func (h *AuthHandler) Me(c echo.Context) error {
	return httpx.OK(c, echo.Map{
		"user": echo.Map{
			"id":    c.Get(middleware.CtxUserID),
			"email": c.Get(middleware.CtxEmail),
			"role":  c.Get(middleware.CtxRole),
		},
	}, "User profile retrieved successfully")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)

	if err := h.Svc.Logout(c.Request().Context(), userID); err != nil {
		return err
	}

	c.SetCookie(DeleteCookie("accessToken", "/"))
	c.SetCookie(DeleteCookie("refreshToken", "/"))

	return httpx.OK(c, nil, "Logged out successfully")
}

func (h *AuthHandler) setSessionCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(CreateCookie("accessToken", res.AccessToken, "/", res.AccessExp))
	c.SetCookie(CreateCookie("refreshToken", res.RefreshToken, "/", res.RefreshExp))
}

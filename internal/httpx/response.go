package httpx

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the uniform success envelope.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// APIFault is the uniform failure envelope. Data carries the message so
// clients can read one field regardless of outcome.
type APIFault struct {
	StatusCode int          `json:"statusCode"`
	Data       string       `json:"data"`
	Success    bool         `json:"success"`
	Errors     []FieldError `json:"errors"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func JSON(c echo.Context, code int, data any, message string) error {
	return c.JSON(code, APIResponse{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func Created(c echo.Context, data any, message string) error {
	return JSON(c, http.StatusCreated, data, message)
}

func OK(c echo.Context, data any, message string) error {
	return JSON(c, http.StatusOK, data, message)
}

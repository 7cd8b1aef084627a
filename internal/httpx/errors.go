package httpx

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/task_manager/internal/logging"
)

// APIError is the one error kind handlers return. Anything else reaching the
// error handler is treated as an internal fault and hidden from the client.
type APIError struct {
	Code    int
	Message string
	Errors  []FieldError
}

func (e *APIError) Error() string { return e.Message }

func NewAPIError(code int, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, message)
}

func Unauthorized(message string) *APIError {
	return NewAPIError(http.StatusUnauthorized, message)
}

func Forbidden(message string) *APIError {
	return NewAPIError(http.StatusForbidden, message)
}

func NotFound(message string) *APIError {
	return NewAPIError(http.StatusNotFound, message)
}

func Conflict(message string) *APIError {
	return NewAPIError(http.StatusConflict, message)
}

func Validation(fields []FieldError) *APIError {
	return &APIError{Code: http.StatusBadRequest, Message: "Validation failed", Errors: fields}
}

// ErrorHandler renders every failure as the APIFault envelope. 5xx details
// are logged, never returned.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal Server Error"
	var fields []FieldError

	var apiErr *APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
		message = apiErr.Message
		fields = apiErr.Errors
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if s, ok := httpErr.Message.(string); ok {
			message = s
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request failed",
			"status", code, "error", err)
		message = "Internal Server Error"
	}

	if fields == nil {
		fields = []FieldError{}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, APIFault{
		StatusCode: code,
		Data:       message,
		Success:    false,
		Errors:     fields,
	})
}

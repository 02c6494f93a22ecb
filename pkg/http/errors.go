package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"CryptoBrain/pkg/logger"
)

// AppError is an error with an HTTP status and a stable code.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{Code: code, Field: field, Message: message, Status: status}
}

func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError wraps the underlying cause. It is logged, never rendered.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func NotFoundErrorf(format string, a ...interface{}) *AppError {
	return NewAppError("ERR_NOT_FOUND", "", fmt.Sprintf(format, a...), http.StatusNotFound)
}

func BadRequestErrorf(format string, a ...interface{}) *AppError {
	return NewAppError("ERR_BAD_REQUEST", "", fmt.Sprintf(format, a...), http.StatusBadRequest)
}

func ConflictErrorf(format string, a ...interface{}) *AppError {
	return NewAppError("ERR_CONFLICT", "", fmt.Sprintf(format, a...), http.StatusConflict)
}

func TooManyRequestsError() *AppError {
	return NewAppError("ERR_RATE_LIMITED", "", "Too many requests", http.StatusTooManyRequests)
}

func InternalErrorf(format string, a ...interface{}) *AppError {
	return NewAppError("ERR_INTERNAL", "", fmt.Sprintf(format, a...), http.StatusInternalServerError)
}

// ErrorHandler renders AppError, echo.HTTPError and validation failures in
// the APIResponse envelope. Anything else is a logged 500.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var (
			appErr *AppError
			valErr ValidationErrors
			he     *echo.HTTPError
		)
		switch {
		case errors.As(err, &valErr):
			_ = DataResponse(c, http.StatusBadRequest, []ValidationError(valErr))
		case errors.As(err, &appErr):
			if appErr.Status >= http.StatusInternalServerError {
				log.Error("request failed",
					logger.String("path", c.Path()),
					logger.String("code", appErr.Code),
					logger.Error(err),
				)
			}
			_ = DataResponse(c, appErr.Status, []*AppError{appErr})
		case errors.As(err, &he):
			_ = DataResponse(c, he.Code, fmt.Sprint(he.Message))
		default:
			log.Error("unhandled request error", logger.String("path", c.Path()), logger.Error(err))
			_ = DataResponse(c, http.StatusInternalServerError, "Something went wrong")
		}
	}
}

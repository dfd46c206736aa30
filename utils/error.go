package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorCode is the closed set of failure kinds the gateway can report.
type ErrorCode string

const (
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeRateLimited  ErrorCode = "RATE_LIMITED"

	CodeInvalidEnvelope ErrorCode = "INVALID_ENVELOPE"
	CodeMissingParam    ErrorCode = "MISSING_PARAM"
	CodeInvalidRange    ErrorCode = "INVALID_RANGE"
	CodeInvalidWhen     ErrorCode = "INVALID_WHEN"
	CodeInPast          ErrorCode = "IN_PAST"

	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeAmbiguous      ErrorCode = "AMBIGUOUS"
	CodeInternalIdUsed ErrorCode = "INTERNAL_ID_USED"

	CodeEventNotFound      ErrorCode = "EVENT_NOT_FOUND"
	CodeMissingCalendarRef ErrorCode = "MISSING_CALENDAR_REFERENCE"
	CodeForbidden          ErrorCode = "FORBIDDEN"

	CodeInternal ErrorCode = "INTERNAL"
)

// ServiceError is a typed domain failure. Details carries disambiguation data
// where relevant (e.g. the candidate list for an ambiguous name).
type ServiceError struct {
	Code    ErrorCode
	Message string
	Details any
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Errf builds a ServiceError with a formatted message.
func Errf(code ErrorCode, format string, args ...any) *ServiceError {
	return &ServiceError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapErr builds a ServiceError around an underlying error.
func WrapErr(code ErrorCode, err error, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message, Err: err}
}

// AsServiceError extracts the typed failure from err, or classifies it as
// Internal when it carries no code.
func AsServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return &ServiceError{Code: CodeInternal, Message: "an unexpected error occurred", Err: err}
}

// HTTPStatus maps every error code to an external HTTP status. The mapping is
// total over the closed code set.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeNotFound, CodeEventNotFound:
		return http.StatusNotFound
	case CodeAmbiguous:
		return http.StatusConflict
	case CodeInvalidEnvelope, CodeMissingParam, CodeInvalidRange,
		CodeInvalidWhen, CodeInPast, CodeInternalIdUsed, CodeMissingCalendarRef:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler is a middleware to catch panics and return a structured
// Internal failure without leaking detail to the caller.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"status":  "error",
					"error":   string(CodeInternal),
					"message": "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

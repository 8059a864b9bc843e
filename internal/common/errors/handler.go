// internal/common/errors/handler.go
package errors

import (
	"net/http"
	"time"
)

// Logger is the subset of the logging interface the handler needs; keeping
// it local avoids an import cycle with internal/common/logger.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler normalizes arbitrary errors into StandardError and routes
// them to the log with the appropriate severity.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalizes err, logs it, and returns the StandardError for the
// caller to surface (HTTP response, CLI exit).
func (h *ErrorHandler) Handle(err error) *StandardError {
	stdErr := h.normalizeError(err)

	fields := map[string]interface{}{
		"code":      stdErr.Code,
		"category":  GetErrorCategory(stdErr.Code),
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	}

	// Reference and substitution errors are recovered conditions; only
	// load-time and store failures are operator-actionable.
	switch GetErrorCategory(stdErr.Code) {
	case "REFERENCE", "SUBSTITUTION":
		h.logger.Warn(stdErr.Message, fields)
	default:
		h.logger.Error(stdErr.Message, fields)
	}

	return stdErr
}

// HTTPStatus maps an error code to the status the serve endpoint returns.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeTaskNotFound:
		return http.StatusNotFound
	case ErrCodeSelectionInvalid, ErrCodeSelectionKindMismatch:
		return http.StatusBadRequest
	case ErrCodeSelectionStoreUnavailable, ErrCodeCatalogFetchFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// normalizeError ensures we always have a StandardError.
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

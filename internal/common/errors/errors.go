// Package errors provides standardized error handling for catalog loading
// and override compilation.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Catalog / configuration-shape errors are load-time failures; reference
// and substitution errors are recovered during compilation and only ever
// logged.
const (
	ErrCodeCatalogLoadFailed    ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeCatalogSchemaInvalid ErrorCode = "CATALOG_SCHEMA_INVALID"
	ErrCodeCatalogFetchFailed   ErrorCode = "CATALOG_FETCH_FAILED"
	ErrCodeMalformedOption      ErrorCode = "MALFORMED_OPTION"

	ErrCodeTaskNotFound   ErrorCode = "TASK_NOT_FOUND"
	ErrCodeOptionNotFound ErrorCode = "OPTION_NOT_FOUND"
	ErrCodeCaseNotFound   ErrorCode = "CASE_NOT_FOUND"

	ErrCodeSelectionKindMismatch ErrorCode = "SELECTION_KIND_MISMATCH"
	ErrCodeSelectionInvalid      ErrorCode = "SELECTION_INVALID"

	ErrCodeTemplateSubstitutionFailed ErrorCode = "TEMPLATE_SUBSTITUTION_FAILED"
	ErrCodeFragmentParseFailed        ErrorCode = "FRAGMENT_PARSE_FAILED"

	ErrCodeSelectionStoreUnavailable ErrorCode = "SELECTION_STORE_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewCatalogLoadFailedError creates a non-retryable catalog read error.
func NewCatalogLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogLoadFailed,
		Message:   "Failed to load catalog file",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogSchemaInvalidError creates a non-retryable schema validation error.
func NewCatalogSchemaInvalidError(path string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogSchemaInvalid,
		Message:   "Catalog document does not match schema",
		Details:   fmt.Sprintf("path: %s, %s", path, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogFetchFailedError creates a retryable remote fetch error.
func NewCatalogFetchFailedError(url string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogFetchFailed,
		Message:   "Failed to fetch remote catalog",
		Details:   fmt.Sprintf("url: %s, error: %s", url, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedOptionError creates a non-retryable configuration-shape error.
// Rejected at load time, never reached by the resolution engine.
func NewMalformedOptionError(optionID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedOption,
		Message:   "Malformed option definition",
		Details:   fmt.Sprintf("option: %s, %s", optionID, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaskNotFoundError creates a non-retryable missing-task error. The
// compiler maps this to the empty-array sentinel rather than raising.
func NewTaskNotFoundError(taskID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaskNotFound,
		Message:   "Task not found in catalog",
		Details:   fmt.Sprintf("taskId: %s", taskID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOptionNotFoundError creates the diagnostic for an unknown option
// reference. Logged at warning level only, never propagated.
func NewOptionNotFoundError(optionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOptionNotFound,
		Message:   "Referenced option not found in registry",
		Details:   fmt.Sprintf("option: %s", optionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCaseNotFoundError creates the diagnostic for a selection naming a
// case the option does not declare.
func NewCaseNotFoundError(optionID, caseName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCaseNotFound,
		Message:   "Selected case not declared by option",
		Details:   fmt.Sprintf("option: %s, case: %s", optionID, caseName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSelectionKindMismatchError creates the diagnostic for a stored
// selection whose kind disagrees with the option definition.
func NewSelectionKindMismatchError(optionID, selectionKind, optionKind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSelectionKindMismatch,
		Message:   "Selection kind does not match option kind",
		Details:   fmt.Sprintf("option: %s, selection: %s, definition: %s", optionID, selectionKind, optionKind),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateSubstitutionFailedError creates the diagnostic for a slot
// value that cannot be coerced to its declared type. The affected fragment
// is dropped; compilation of the remaining fragments continues.
func NewTemplateSubstitutionFailedError(optionID, slot string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateSubstitutionFailed,
		Message:   "Placeholder substitution failed",
		Details:   fmt.Sprintf("option: %s, slot: %s, error: %s", optionID, slot, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFragmentParseFailedError creates the diagnostic for a fragment that
// does not survive substitution as structured JSON.
func NewFragmentParseFailedError(optionID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFragmentParseFailed,
		Message:   "Substituted fragment is not valid JSON",
		Details:   fmt.Sprintf("option: %s, error: %s", optionID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSelectionStoreUnavailableError creates a retryable store access error.
func NewSelectionStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSelectionStoreUnavailable,
		Message:   "Selection store access failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSelectionInvalidError creates a non-retryable selection document error.
func NewSelectionInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSelectionInvalid,
		Message:   "Selection document failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSelectionStoreUnavailable:
		return 3
	case ErrCodeCatalogFetchFailed:
		return 2
	default:
		return 0 // configuration and reference errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "MALFORMED"):
		return "CATALOG"
	case strings.Contains(codeStr, "SELECTION"):
		return "SELECTION"
	case strings.Contains(codeStr, "TEMPLATE") || strings.Contains(codeStr, "FRAGMENT"):
		return "SUBSTITUTION"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "REFERENCE"
	default:
		return "OTHER"
	}
}
